package routes

import (
	"github.com/aaryankalra/auth-starter-kit/internal/handlers"
	"github.com/aaryankalra/auth-starter-kit/internal/middlewares"
	"github.com/aaryankalra/auth-starter-kit/internal/services"
	"github.com/gofiber/fiber/v2"
)

// Setup registers all API routes.
func Setup(app *fiber.App, ah *handlers.AuthHandler, uh *handlers.UserHandler, authSvc services.AuthService) {
	api := app.Group("/api")

	api.Get("/ping", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Connected."})
	})

	auth := api.Group("/v1/auth")
	auth.Post("/signup", ah.Signup)
	auth.Post("/verify", ah.VerifyOTP)
	auth.Post("/resend-otp", ah.ResendOTP)
	auth.Post("/login", ah.Login)
	auth.Post("/logout", ah.Logout)
	auth.Post("/forgot", ah.ForgotPassword)
	auth.Post("/reset/:token", ah.ResetPassword)

	user := api.Group("/v1/user", middlewares.RequireAuth(authSvc))
	user.Get("/profile", uh.GetProfile)
	user.Put("/profile", uh.UpdateProfile)
	user.Post("/update-password", uh.UpdatePassword)
}
