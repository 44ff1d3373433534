package mailer

import (
	"context"

	"go.uber.org/zap"
)

// LogMailer logs emails instead of sending them. Used in development or when
// the Brevo client is not configured.
type LogMailer struct {
	logger *zap.SugaredLogger
}

func NewLogMailer(logger *zap.SugaredLogger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendVerification(ctx context.Context, email, name, otp string) error {
	m.logger.Infow("verification email (not sent)", "to", email, "name", name, "otp", otp)
	return nil
}

func (m *LogMailer) SendWelcome(ctx context.Context, email, name string) error {
	m.logger.Infow("welcome email (not sent)", "to", email, "name", name)
	return nil
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, email, name, rawToken string) error {
	m.logger.Infow("password reset email (not sent)", "to", email, "name", name, "token", rawToken)
	return nil
}
