package services

import (
	"context"
	"errors"
	"time"

	"github.com/aaryankalra/auth-starter-kit/internal/models"
)

var (
	ErrValidation         = errors.New("all fields are required")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("please verify your email before logging in")
	ErrAlreadyVerified    = errors.New("user already verified")
	ErrInvalidOTP         = errors.New("invalid OTP")
	ErrOTPExpired         = errors.New("OTP has expired")
	ErrInvalidResetToken  = errors.New("token is invalid or expired")
	ErrIncorrectPassword  = errors.New("current password is incorrect")
	ErrSamePassword       = errors.New("new password should be different from current password")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrInternal           = errors.New("internal server error")
)

// Policy bundles the tunable security constants the lifecycle manager
// operates under. Zero values are filled in by Normalize.
type Policy struct {
	JWTSecret      string
	SessionTTL     time.Duration
	OTPTTL         time.Duration
	OTPLength      int
	ResetTokenTTL  time.Duration
	MinPasswordLen int
	BcryptCost     int
	// MailBestEffort controls whether a failed email delivery fails the
	// operation that triggered it. The triggering state change is kept
	// either way.
	MailBestEffort bool
}

// Normalize applies the default policy constants to unset fields.
func (p *Policy) Normalize() {
	if p.SessionTTL == 0 {
		p.SessionTTL = 7 * 24 * time.Hour
	}
	if p.OTPTTL == 0 {
		p.OTPTTL = 10 * time.Minute
	}
	if p.OTPLength == 0 {
		p.OTPLength = 6
	}
	if p.ResetTokenTTL == 0 {
		p.ResetTokenTTL = 15 * time.Minute
	}
	if p.MinPasswordLen == 0 {
		p.MinPasswordLen = 6
	}
}

// AuthService defines the credential lifecycle operations.
type AuthService interface {
	Signup(ctx context.Context, name, email, password string) (*models.User, error)
	VerifyOTP(ctx context.Context, email, otp string) error
	ResendOTP(ctx context.Context, email string) error
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	Logout(ctx context.Context) error
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, rawToken, newPassword string) error
	UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	VerifySessionToken(token string) (string, error)
}

// UserService defines profile operations for authenticated users.
type UserService interface {
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.User, error)
}
