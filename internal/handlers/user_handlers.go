package handlers

import (
	"github.com/aaryankalra/auth-starter-kit/internal/middlewares"
	"github.com/aaryankalra/auth-starter-kit/internal/models"
	"github.com/aaryankalra/auth-starter-kit/internal/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// UserHandler exposes profile operations for authenticated users.
type UserHandler struct {
	authSvc  services.AuthService
	userSvc  services.UserService
	validate *validator.Validate
	logger   *zap.Logger
}

func NewUserHandler(authSvc services.AuthService, userSvc services.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		authSvc:  authSvc,
		userSvc:  userSvc,
		validate: validator.New(),
		logger:   logger,
	}
}

func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	userID, ok := middlewares.UserIDFromCtx(c)
	if !ok {
		return fail(c, services.ErrUnauthenticated)
	}

	user, err := h.userSvc.GetProfile(c.Context(), userID)
	if err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusOK, "Profile loaded successfully.", fiber.Map{"user": user})
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, ok := middlewares.UserIDFromCtx(c)
	if !ok {
		return fail(c, services.ErrUnauthenticated)
	}

	var req models.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "validation failed")
	}

	user, err := h.userSvc.UpdateProfile(c.Context(), userID, req)
	if err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusOK, "Profile updated successfully.", fiber.Map{"user": user})
}

func (h *UserHandler) UpdatePassword(c *fiber.Ctx) error {
	userID, ok := middlewares.UserIDFromCtx(c)
	if !ok {
		return fail(c, services.ErrUnauthenticated)
	}

	var req models.UpdatePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "validation failed")
	}

	if err := h.authSvc.UpdatePassword(c.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusOK, "Password updated successfully.", nil)
}
