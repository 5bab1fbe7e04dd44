package mail

import (
	"context"
	"fmt"

	"Gin_postgres_redis_auth_service/common"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SESMailer sends through Amazon SES v2.
type SESMailer struct {
	client *sesv2.Client
	from   string
}

func NewSESMailer(ctx context.Context, region, from string) (*SESMailer, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &SESMailer{client: sesv2.NewFromConfig(cfg), from: from}, nil
}

func (m *SESMailer) send(ctx context.Context, to, subject, html string) error {
	_, err := m.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.from),
		Destination:      &types.Destination{ToAddresses: []string{to}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(html)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: send email to %s: %v", common.ErrTransientIO, to, err)
	}
	return nil
}

func (m *SESMailer) SendEmailVerification(ctx context.Context, to, code string) error {
	html := fmt.Sprintf(`<p>Your verification code is:</p><h2 style="letter-spacing:8px">%s</h2>
<p>It expires in 15 minutes. If you didn't create an account, ignore this email.</p>`, code)
	return m.send(ctx, to, "Verify your email", html)
}

func (m *SESMailer) SendPasswordReset(ctx context.Context, to, token string) error {
	html := fmt.Sprintf(`<p>You requested a password reset. Your reset token:</p><p><code>%s</code></p>
<p>It expires in 15 minutes. If you didn't request this, ignore this email.</p>`, token)
	return m.send(ctx, to, "Reset your password", html)
}

func (m *SESMailer) SendEmailChangeVerification(ctx context.Context, to, code string) error {
	html := fmt.Sprintf(`<p>Use this code to confirm your new email address:</p><h2 style="letter-spacing:8px">%s</h2>
<p>It expires in 10 minutes. If you didn't request this change, ignore this email.</p>`, code)
	return m.send(ctx, to, "Verify your new email address", html)
}

func (m *SESMailer) SendEmailChangeNotification(ctx context.Context, oldAddr, newAddr string) error {
	html := fmt.Sprintf(`<p>Your account email was changed from <strong>%s</strong> to <strong>%s</strong>.</p>
<p>If you did not make this change, contact support immediately.</p>`, oldAddr, newAddr)
	return m.send(ctx, oldAddr, "Your email address has been changed", html)
}
