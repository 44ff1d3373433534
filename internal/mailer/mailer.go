package mailer

import "context"

// Mailer delivers account lifecycle emails. Implementations are best-effort
// transports, the caller decides whether a delivery failure fails the
// request.
type Mailer interface {
	SendVerification(ctx context.Context, email, name, otp string) error
	SendWelcome(ctx context.Context, email, name string) error
	SendPasswordReset(ctx context.Context, email, name, rawToken string) error
}
