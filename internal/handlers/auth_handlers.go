package handlers

import (
	"time"

	"github.com/aaryankalra/auth-starter-kit/internal/models"
	"github.com/aaryankalra/auth-starter-kit/internal/services"
	"github.com/aaryankalra/auth-starter-kit/internal/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const sessionCookie = "token"

// AuthHandler exposes the credential lifecycle operations over HTTP. The
// session token travels both as a JSON field and as an httpOnly cookie, the
// service underneath only ever sees opaque strings.
type AuthHandler struct {
	svc           services.AuthService
	validate      *validator.Validate
	sessionTTL    time.Duration
	secureCookies bool
	logger        *zap.Logger
}

func NewAuthHandler(svc services.AuthService, sessionTTL time.Duration, secureCookies bool, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		svc:           svc,
		validate:      validator.New(),
		sessionTTL:    sessionTTL,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

// parseAndValidate binds and validates the request body. When it reports
// !ok the 400 response has already been written and the returned error is
// what the handler should pass back to fiber.
func (h *AuthHandler) parseAndValidate(c *fiber.Ctx, req interface{}) (bool, error) {
	if err := c.BodyParser(req); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid request body",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "validation failed",
			"errors":  utils.FormatValidationErrors(err),
		})
	}
	return true, nil
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req models.SignupRequest
	if ok, err := h.parseAndValidate(c, &req); !ok {
		return err
	}

	user, err := h.svc.Signup(c.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusCreated, "User created successfully. Please verify your email via OTP.", fiber.Map{
		"user": user,
	})
}

func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req models.VerifyOTPRequest
	if ok, err := h.parseAndValidate(c, &req); !ok {
		return err
	}

	if err := h.svc.VerifyOTP(c.Context(), req.Email, req.OTP); err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusOK, "Email verified successfully.", nil)
}

func (h *AuthHandler) ResendOTP(c *fiber.Ctx) error {
	var req models.ResendOTPRequest
	if ok, err := h.parseAndValidate(c, &req); !ok {
		return err
	}

	if err := h.svc.ResendOTP(c.Context(), req.Email); err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusOK, "A new OTP has been sent to your email.", nil)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if ok, err := h.parseAndValidate(c, &req); !ok {
		return err
	}

	token, user, err := h.svc.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    token,
		HTTPOnly: true,
		Secure:   h.secureCookies,
		SameSite: fiber.CookieSameSiteStrictMode,
		Expires:  time.Now().Add(h.sessionTTL),
	})

	return success(c, fiber.StatusOK, "User logged in successfully.", fiber.Map{
		"token": token,
		"user":  user,
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.svc.Logout(c.Context()); err != nil {
		return fail(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    "",
		HTTPOnly: true,
		Secure:   h.secureCookies,
		SameSite: fiber.CookieSameSiteStrictMode,
		Expires:  time.Now().Add(-time.Hour),
	})
	return success(c, fiber.StatusOK, "Logged out successfully.", nil)
}

// ForgotPassword answers identically whether or not the account exists. The
// raw reset token only ever leaves through the email channel.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req models.ForgotPasswordRequest
	if ok, err := h.parseAndValidate(c, &req); !ok {
		return err
	}

	if _, err := h.svc.ForgotPassword(c.Context(), req.Email); err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusOK, "If user exists, a link to reset password was sent.", nil)
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req models.ResetPasswordRequest
	if ok, err := h.parseAndValidate(c, &req); !ok {
		return err
	}

	if err := h.svc.ResetPassword(c.Context(), c.Params("token"), req.Password); err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusOK, "Password reset successfully.", nil)
}
