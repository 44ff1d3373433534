package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aaryankalra/auth-starter-kit/internal/mailer"
	"github.com/aaryankalra/auth-starter-kit/internal/models"
	"github.com/aaryankalra/auth-starter-kit/internal/repository"
	"github.com/aaryankalra/auth-starter-kit/internal/utils"
	"go.uber.org/zap"
)

// dummyHash is a valid bcrypt digest of a throwaway string. Login compares
// against it when no account matches the email, so the unknown-email path
// costs the same as the wrong-password path.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

type authService struct {
	userRepo repository.UserRepository
	mail     mailer.Mailer
	policy   Policy
	logger   *zap.Logger
}

// NewAuthService constructs the credential lifecycle manager with its
// injected collaborators.
func NewAuthService(userRepo repository.UserRepository, mail mailer.Mailer, policy Policy, logger *zap.Logger) AuthService {
	policy.Normalize()
	return &authService{
		userRepo: userRepo,
		mail:     mail,
		policy:   policy,
		logger:   logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates an unverified account with a hashed password and an
// outstanding OTP, then emails the code.
func (s *authService) Signup(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, ErrValidation
	}
	if len(password) < s.policy.MinPasswordLen {
		return nil, ErrValidation
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, ErrUserAlreadyExists
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		s.logger.Error("signup: lookup failed", zap.Error(err))
		return nil, ErrInternal
	}

	hash, err := utils.HashPassword(password, s.policy.BcryptCost)
	if err != nil {
		s.logger.Error("signup: password hashing failed", zap.Error(err))
		return nil, ErrInternal
	}

	otp, err := utils.GenerateOTP(s.policy.OTPLength)
	if err != nil {
		s.logger.Error("signup: otp generation failed", zap.Error(err))
		return nil, ErrInternal
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		IsVerified:   false,
	}
	user.SetOTP(otp, time.Now().Add(s.policy.OTPTTL))

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrUserAlreadyExists
		}
		s.logger.Error("signup: create failed", zap.Error(err))
		return nil, ErrInternal
	}

	if err := s.deliver("verification email", func() error {
		return s.mail.SendVerification(ctx, user.Email, user.Name, otp)
	}); err != nil {
		return nil, err
	}
	return user, nil
}

// VerifyOTP flips the account to verified when the presented code matches
// the outstanding one and has not expired. The code is single-use: both OTP
// fields are cleared in the same save that sets the verified flag.
func (s *authService) VerifyOTP(ctx context.Context, email, otp string) error {
	user, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return ErrAlreadyVerified
	}
	if user.OTP == nil || user.OTPExpiresAt == nil || *user.OTP != otp {
		return ErrInvalidOTP
	}
	if time.Now().After(*user.OTPExpiresAt) {
		return ErrOTPExpired
	}

	user.IsVerified = true
	user.ClearOTP()
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("verify otp: update failed", zap.Error(err))
		return ErrInternal
	}

	return s.deliver("welcome email", func() error {
		return s.mail.SendWelcome(ctx, user.Email, user.Name)
	})
}

// ResendOTP overwrites the outstanding OTP with a fresh code and expiry.
func (s *authService) ResendOTP(ctx context.Context, email string) error {
	user, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return ErrAlreadyVerified
	}

	otp, err := utils.GenerateOTP(s.policy.OTPLength)
	if err != nil {
		s.logger.Error("resend otp: otp generation failed", zap.Error(err))
		return ErrInternal
	}
	user.SetOTP(otp, time.Now().Add(s.policy.OTPTTL))
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("resend otp: update failed", zap.Error(err))
		return ErrInternal
	}

	return s.deliver("verification email", func() error {
		return s.mail.SendVerification(ctx, user.Email, user.Name, otp)
	})
}

// Login verifies credentials and issues a session token. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *authService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	email = normalizeEmail(email)
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Burn a hash comparison anyway so response time does not
			// reveal whether the account exists.
			_ = utils.CheckPassword(password, dummyHash)
			return "", nil, ErrInvalidCredentials
		}
		s.logger.Error("login: lookup failed", zap.Error(err))
		return "", nil, ErrInternal
	}

	if err := utils.CheckPassword(password, user.PasswordHash); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !user.IsVerified {
		return "", nil, ErrEmailNotVerified
	}

	token, _, err := utils.GenerateSessionToken(user.ID.Hex(), s.policy.JWTSecret, s.policy.SessionTTL)
	if err != nil {
		s.logger.Error("login: token issuance failed", zap.Error(err))
		return "", nil, ErrInternal
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		// Auth already succeeded, losing the timestamp is acceptable.
		s.logger.Warn("login: failed to update last login time", zap.String("user_id", user.ID.Hex()), zap.Error(err))
	}

	return token, user, nil
}

// Logout is stateless under the signed-token scheme. The transport layer
// discards its credential, nothing is revoked server-side.
func (s *authService) Logout(ctx context.Context) error {
	return nil
}

// ForgotPassword stores a reset-token digest on the matching account and
// emails the raw token. The response is identical whether or not the
// account exists.
func (s *authService) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = normalizeEmail(email)
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", nil
		}
		s.logger.Error("forgot password: lookup failed", zap.Error(err))
		return "", ErrInternal
	}

	raw, hash, err := utils.GenerateResetToken()
	if err != nil {
		s.logger.Error("forgot password: token generation failed", zap.Error(err))
		return "", ErrInternal
	}
	user.SetResetToken(hash, time.Now().Add(s.policy.ResetTokenTTL))
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("forgot password: update failed", zap.Error(err))
		return "", ErrInternal
	}

	if err := s.deliver("password reset email", func() error {
		return s.mail.SendPasswordReset(ctx, user.Email, user.Name, raw)
	}); err != nil {
		return "", err
	}
	return raw, nil
}

// ResetPassword replaces the password of the account holding the digest of
// the presented token, provided it has not expired. Both reset fields are
// cleared in the same save, so a token works exactly once.
func (s *authService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	if len(newPassword) < s.policy.MinPasswordLen {
		return ErrWeakPassword
	}

	hash := utils.HashResetToken(rawToken)
	user, err := s.userRepo.FindByResetTokenHash(ctx, hash, time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrInvalidResetToken
		}
		s.logger.Error("reset password: lookup failed", zap.Error(err))
		return ErrInternal
	}

	newHash, err := utils.HashPassword(newPassword, s.policy.BcryptCost)
	if err != nil {
		s.logger.Error("reset password: password hashing failed", zap.Error(err))
		return ErrInternal
	}

	user.PasswordHash = newHash
	user.ClearResetToken()
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("reset password: update failed", zap.Error(err))
		return ErrInternal
	}
	return nil
}

// UpdatePassword changes the password of an authenticated user after
// re-checking the current one.
func (s *authService) UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("update password: lookup failed", zap.Error(err))
		return ErrInternal
	}

	if currentPassword == newPassword {
		return ErrSamePassword
	}
	if err := utils.CheckPassword(currentPassword, user.PasswordHash); err != nil {
		return ErrIncorrectPassword
	}
	if len(newPassword) < s.policy.MinPasswordLen {
		return ErrWeakPassword
	}

	hash, err := utils.HashPassword(newPassword, s.policy.BcryptCost)
	if err != nil {
		s.logger.Error("update password: password hashing failed", zap.Error(err))
		return ErrInternal
	}
	user.PasswordHash = hash
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("update password: update failed", zap.Error(err))
		return ErrInternal
	}
	return nil
}

// VerifySessionToken checks a presented session token and returns the user
// ID it is bound to.
func (s *authService) VerifySessionToken(token string) (string, error) {
	userID, err := utils.ParseSessionToken(token, s.policy.JWTSecret)
	if err != nil {
		return "", err
	}
	return userID, nil
}

func (s *authService) findByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("user lookup failed", zap.Error(err))
		return nil, ErrInternal
	}
	return user, nil
}

// deliver runs an email send and applies the delivery policy: failures are
// always logged, and fail the operation unless MailBestEffort is set. The
// state change that triggered the email is never rolled back.
func (s *authService) deliver(what string, send func() error) error {
	if err := send(); err != nil {
		s.logger.Warn("failed to send "+what, zap.Error(err))
		if !s.policy.MailBestEffort {
			return ErrInternal
		}
	}
	return nil
}
