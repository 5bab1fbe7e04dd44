package mail

import (
	"context"
	"log/slog"
)

// LogMailer writes notifications to the log instead of delivering them.
// Default driver for local development.
type LogMailer struct {
	Log *slog.Logger
}

func (m *LogMailer) SendEmailVerification(ctx context.Context, to, code string) error {
	m.Log.InfoContext(ctx, "email verification", "to", to, "code", code)
	return nil
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, to, token string) error {
	m.Log.InfoContext(ctx, "password reset", "to", to, "token", token)
	return nil
}

func (m *LogMailer) SendEmailChangeVerification(ctx context.Context, to, code string) error {
	m.Log.InfoContext(ctx, "email change verification", "to", to, "code", code)
	return nil
}

func (m *LogMailer) SendEmailChangeNotification(ctx context.Context, oldAddr, newAddr string) error {
	m.Log.InfoContext(ctx, "email change notification", "old", oldAddr, "new", newAddr)
	return nil
}
