package mail

import "context"

// Mailer dispatches the notification emails the flows depend on. Delivery
// failure surfaces as common.ErrTransientIO so callers can retry the whole
// operation.
type Mailer interface {
	SendEmailVerification(ctx context.Context, to, code string) error
	SendPasswordReset(ctx context.Context, to, token string) error
	SendEmailChangeVerification(ctx context.Context, to, code string) error
	SendEmailChangeNotification(ctx context.Context, oldAddr, newAddr string) error
}
