package handlers

import (
	"errors"

	"github.com/aaryankalra/auth-starter-kit/internal/services"
	"github.com/aaryankalra/auth-starter-kit/internal/utils"
	"github.com/gofiber/fiber/v2"
)

func success(c *fiber.Ctx, status int, message string, extra fiber.Map) error {
	body := fiber.Map{"success": true, "message": message}
	for k, v := range extra {
		body[k] = v
	}
	return c.Status(status).JSON(body)
}

func fail(c *fiber.Ctx, err error) error {
	return c.Status(statusForError(err)).JSON(fiber.Map{
		"success": false,
		"message": err.Error(),
	})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrInvalidOTP),
		errors.Is(err, services.ErrOTPExpired),
		errors.Is(err, services.ErrAlreadyVerified),
		errors.Is(err, services.ErrInvalidResetToken),
		errors.Is(err, services.ErrWeakPassword),
		errors.Is(err, services.ErrSamePassword):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrUserAlreadyExists):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrUnauthenticated),
		errors.Is(err, services.ErrIncorrectPassword),
		errors.Is(err, utils.ErrInvalidToken),
		errors.Is(err, utils.ErrTokenExpired):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrEmailNotVerified):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrUserNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}
