package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aaryankalra/auth-starter-kit/internal/models"
	"github.com/aaryankalra/auth-starter-kit/internal/repository"
	"github.com/aaryankalra/auth-starter-kit/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// --- fakes ---

// fakeUserRepo is an in-memory UserRepository. It stores copies so callers
// cannot mutate stored records through returned pointers.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]models.User // keyed by email
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]models.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.Email]; ok {
		return repository.ErrDuplicateEmail
	}
	u.ID = primitive.NewObjectID()
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	r.users[u.Email] = *u
	return nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := u
	return &cp, nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID.Hex() == id {
			cp := u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) FindByResetTokenHash(ctx context.Context, hash string, now time.Time) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ResetTokenHash != nil && *u.ResetTokenHash == hash &&
			u.ResetTokenExpiresAt != nil && u.ResetTokenExpiresAt.After(now) {
			cp := u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for email, stored := range r.users {
		if stored.ID == u.ID {
			if email != u.Email {
				if _, taken := r.users[u.Email]; taken {
					return repository.ErrDuplicateEmail
				}
				delete(r.users, email)
			}
			u.UpdatedAt = time.Now().UTC()
			r.users[u.Email] = *u
			return nil
		}
	}
	return repository.ErrUserNotFound
}

// get returns the stored record directly, for assertions.
func (r *fakeUserRepo) get(t *testing.T, email string) models.User {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		t.Fatalf("no stored user for %q", email)
	}
	return u
}

// put overwrites the stored record, for test setup.
func (r *fakeUserRepo) put(u models.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.Email] = u
}

type sentMail struct {
	kind  string // "verification", "welcome", "reset"
	to    string
	otp   string
	token string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) SendVerification(ctx context.Context, email, name, otp string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{kind: "verification", to: email, otp: otp})
	return nil
}

func (m *fakeMailer) SendWelcome(ctx context.Context, email, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{kind: "welcome", to: email})
	return nil
}

func (m *fakeMailer) SendPasswordReset(ctx context.Context, email, name, rawToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{kind: "reset", to: email, token: rawToken})
	return nil
}

func (m *fakeMailer) last(t *testing.T) sentMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		t.Fatal("no mail sent")
	}
	return m.sent[len(m.sent)-1]
}

func testPolicy() Policy {
	return Policy{
		JWTSecret:  "test-secret",
		BcryptCost: bcrypt.MinCost,
	}
}

func newTestAuthService(t *testing.T) (AuthService, *fakeUserRepo, *fakeMailer) {
	t.Helper()
	repo := newFakeUserRepo()
	mail := &fakeMailer{}
	svc := NewAuthService(repo, mail, testPolicy(), zap.NewNop())
	return svc, repo, mail
}

// --- tests ---

func TestSignupVerifyLogin_Flow(t *testing.T) {
	t.Parallel()
	svc, repo, mail := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Signup(ctx, "Alice", "alice@x.com", "secret1")
	require.NoError(t, err)
	assert.False(t, user.IsVerified)
	require.NotNil(t, user.OTP)
	require.NotNil(t, user.OTPExpiresAt)
	assert.Len(t, *user.OTP, 6)
	assert.NotEqual(t, "secret1", user.PasswordHash)

	otp := mail.last(t).otp
	assert.Equal(t, *user.OTP, otp)

	// Login before verification is rejected.
	_, _, err = svc.Login(ctx, "alice@x.com", "secret1")
	assert.ErrorIs(t, err, ErrEmailNotVerified)

	// Wrong code is rejected without clearing the outstanding OTP.
	err = svc.VerifyOTP(ctx, "alice@x.com", "000000")
	if otp == "000000" {
		t.Skip("generated OTP collided with the wrong-code fixture")
	}
	assert.ErrorIs(t, err, ErrInvalidOTP)
	assert.NotNil(t, repo.get(t, "alice@x.com").OTP)

	require.NoError(t, svc.VerifyOTP(ctx, "alice@x.com", otp))
	stored := repo.get(t, "alice@x.com")
	assert.True(t, stored.IsVerified)
	assert.Nil(t, stored.OTP)
	assert.Nil(t, stored.OTPExpiresAt)
	assert.Equal(t, "welcome", mail.last(t).kind)

	// Verified flag never reverts, a second verification attempt fails.
	assert.ErrorIs(t, svc.VerifyOTP(ctx, "alice@x.com", otp), ErrAlreadyVerified)

	token, loggedIn, err := svc.Login(ctx, "alice@x.com", "secret1")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.NotNil(t, loggedIn.LastLoginAt)

	userID, err := svc.VerifySessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, loggedIn.ID.Hex(), userID)
}

func TestSignup_NormalizesEmail(t *testing.T) {
	t.Parallel()
	svc, repo, _ := newTestAuthService(t)

	user, err := svc.Signup(context.Background(), "Bob", "  Bob@Example.COM ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", user.Email)
	repo.get(t, "bob@example.com")
}

func TestSignup_Duplicate_DoesNotMutateExisting(t *testing.T) {
	t.Parallel()
	svc, repo, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "Alice", "alice@x.com", "secret1")
	require.NoError(t, err)
	before := repo.get(t, "alice@x.com")

	_, err = svc.Signup(ctx, "Mallory", "alice@x.com", "different1")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	after := repo.get(t, "alice@x.com")
	assert.Equal(t, before, after)
}

func TestSignup_Validation(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	cases := []struct {
		name, userName, email, password string
	}{
		{"empty name", "", "a@x.com", "secret1"},
		{"empty email", "Alice", "", "secret1"},
		{"empty password", "Alice", "a@x.com", ""},
		{"short password", "Alice", "a@x.com", "abc"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Signup(ctx, tc.userName, tc.email, tc.password)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestVerifyOTP_Expiry(t *testing.T) {
	t.Parallel()
	svc, repo, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Signup(ctx, "Alice", "alice@x.com", "secret1")
	require.NoError(t, err)
	otp := *user.OTP

	// Just past expiry fails.
	stored := repo.get(t, "alice@x.com")
	past := time.Now().Add(-time.Second)
	stored.OTPExpiresAt = &past
	repo.put(stored)
	assert.ErrorIs(t, svc.VerifyOTP(ctx, "alice@x.com", otp), ErrOTPExpired)

	// Just before expiry succeeds.
	stored = repo.get(t, "alice@x.com")
	future := time.Now().Add(time.Second)
	stored.OTPExpiresAt = &future
	repo.put(stored)
	assert.NoError(t, svc.VerifyOTP(ctx, "alice@x.com", otp))
}

func TestVerifyOTP_UnknownUser(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestAuthService(t)
	assert.ErrorIs(t, svc.VerifyOTP(context.Background(), "ghost@x.com", "123456"), ErrUserNotFound)
}

func TestResendOTP(t *testing.T) {
	t.Parallel()
	svc, repo, mail := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Signup(ctx, "Alice", "alice@x.com", "secret1")
	require.NoError(t, err)
	first := *user.OTP

	require.NoError(t, svc.ResendOTP(ctx, "alice@x.com"))
	stored := repo.get(t, "alice@x.com")
	require.NotNil(t, stored.OTP)
	require.NotNil(t, stored.OTPExpiresAt)
	assert.Equal(t, *stored.OTP, mail.last(t).otp)

	// The old code no longer works once overwritten.
	if first != *stored.OTP {
		assert.ErrorIs(t, svc.VerifyOTP(ctx, "alice@x.com", first), ErrInvalidOTP)
	}

	require.NoError(t, svc.VerifyOTP(ctx, "alice@x.com", *stored.OTP))
	assert.ErrorIs(t, svc.ResendOTP(ctx, "alice@x.com"), ErrAlreadyVerified)

	assert.ErrorIs(t, svc.ResendOTP(ctx, "ghost@x.com"), ErrUserNotFound)
}

func TestLogin_UniformInvalidCredentials(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "Alice", "alice@x.com", "secret1")
	require.NoError(t, err)

	_, _, errWrongPassword := svc.Login(ctx, "alice@x.com", "wrong-password")
	_, _, errUnknownEmail := svc.Login(ctx, "nobody@x.com", "whatever")

	// Both failure modes surface the exact same error value, so the
	// response shape cannot leak account existence.
	assert.ErrorIs(t, errWrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, errUnknownEmail, ErrInvalidCredentials)
	assert.Equal(t, errWrongPassword.Error(), errUnknownEmail.Error())
}

func TestForgotPassword_UniformSuccess(t *testing.T) {
	t.Parallel()
	svc, repo, mail := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "Alice", "alice@x.com", "secret1")
	require.NoError(t, err)

	// Unknown account: success, no token, no mail.
	before := len(mail.sent)
	raw, err := svc.ForgotPassword(ctx, "unknown@x.com")
	require.NoError(t, err)
	assert.Empty(t, raw)
	assert.Len(t, mail.sent, before)

	// Known account: raw token out, only its hash stored.
	raw, err = svc.ForgotPassword(ctx, "alice@x.com")
	require.NoError(t, err)
	require.NotEmpty(t, raw)
	assert.Equal(t, raw, mail.last(t).token)

	stored := repo.get(t, "alice@x.com")
	require.NotNil(t, stored.ResetTokenHash)
	require.NotNil(t, stored.ResetTokenExpiresAt)
	assert.NotEqual(t, raw, *stored.ResetTokenHash)
	assert.Equal(t, utils.HashResetToken(raw), *stored.ResetTokenHash)
}

func TestResetPassword_SingleUse(t *testing.T) {
	t.Parallel()
	svc, repo, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Signup(ctx, "Alice", "alice@x.com", "secret1")
	require.NoError(t, err)
	require.NoError(t, svc.VerifyOTP(ctx, "alice@x.com", *user.OTP))

	raw, err := svc.ForgotPassword(ctx, "alice@x.com")
	require.NoError(t, err)

	require.NoError(t, svc.ResetPassword(ctx, raw, "brand-new-pass"))

	stored := repo.get(t, "alice@x.com")
	assert.Nil(t, stored.ResetTokenHash)
	assert.Nil(t, stored.ResetTokenExpiresAt)

	// Old password dead, new one works.
	_, _, err = svc.Login(ctx, "alice@x.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "alice@x.com", "brand-new-pass")
	assert.NoError(t, err)

	// Second use of the same token is rejected.
	assert.ErrorIs(t, svc.ResetPassword(ctx, raw, "another-pass"), ErrInvalidResetToken)
}

func TestResetPassword_ExpiredToken(t *testing.T) {
	t.Parallel()
	svc, repo, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "Alice", "alice@x.com", "secret1")
	require.NoError(t, err)
	raw, err := svc.ForgotPassword(ctx, "alice@x.com")
	require.NoError(t, err)

	stored := repo.get(t, "alice@x.com")
	past := time.Now().Add(-time.Second)
	stored.ResetTokenExpiresAt = &past
	repo.put(stored)

	assert.ErrorIs(t, svc.ResetPassword(ctx, raw, "brand-new-pass"), ErrInvalidResetToken)
}

func TestResetPassword_WeakPassword(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestAuthService(t)
	assert.ErrorIs(t, svc.ResetPassword(context.Background(), "whatever", "abc"), ErrWeakPassword)
}

func TestUpdatePassword(t *testing.T) {
	t.Parallel()
	svc, repo, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Signup(ctx, "Alice", "alice@x.com", "secret1")
	require.NoError(t, err)
	id := user.ID.Hex()

	// Same password is rejected before any hashing, record untouched.
	before := repo.get(t, "alice@x.com")
	assert.ErrorIs(t, svc.UpdatePassword(ctx, id, "secret1", "secret1"), ErrSamePassword)
	assert.Equal(t, before, repo.get(t, "alice@x.com"))

	assert.ErrorIs(t, svc.UpdatePassword(ctx, id, "wrong", "new-secret"), ErrIncorrectPassword)
	assert.ErrorIs(t, svc.UpdatePassword(ctx, id, "secret1", "abc"), ErrWeakPassword)
	assert.ErrorIs(t, svc.UpdatePassword(ctx, primitive.NewObjectID().Hex(), "secret1", "new-secret"), ErrUserNotFound)

	require.NoError(t, svc.UpdatePassword(ctx, id, "secret1", "new-secret"))
	assert.NoError(t, utils.CheckPassword("new-secret", repo.get(t, "alice@x.com").PasswordHash))
}

func TestLogout_AlwaysSucceeds(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestAuthService(t)
	assert.NoError(t, svc.Logout(context.Background()))
}

func TestMailFailurePolicy(t *testing.T) {
	t.Parallel()

	t.Run("fail closed", func(t *testing.T) {
		repo := newFakeUserRepo()
		mail := &fakeMailer{err: errors.New("smtp down")}
		svc := NewAuthService(repo, mail, testPolicy(), zap.NewNop())

		_, err := svc.Signup(context.Background(), "Alice", "alice@x.com", "secret1")
		assert.ErrorIs(t, err, ErrInternal)
		// The record was still created: delivery failure never rolls back
		// the state change that triggered it.
		repo.get(t, "alice@x.com")
	})

	t.Run("best effort", func(t *testing.T) {
		repo := newFakeUserRepo()
		mail := &fakeMailer{err: errors.New("smtp down")}
		policy := testPolicy()
		policy.MailBestEffort = true
		svc := NewAuthService(repo, mail, policy, zap.NewNop())

		user, err := svc.Signup(context.Background(), "Alice", "alice@x.com", "secret1")
		require.NoError(t, err)
		assert.NotNil(t, user.OTP)
	})
}

func TestVerifySessionToken_Invalid(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestAuthService(t)

	_, err := svc.VerifySessionToken("not.a.token")
	assert.ErrorIs(t, err, utils.ErrInvalidToken)
}
