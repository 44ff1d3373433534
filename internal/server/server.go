package server

import (
	"github.com/aaryankalra/auth-starter-kit/internal/config"
	"github.com/aaryankalra/auth-starter-kit/internal/handlers"
	"github.com/aaryankalra/auth-starter-kit/internal/middlewares"
	"github.com/aaryankalra/auth-starter-kit/internal/routes"
	"github.com/aaryankalra/auth-starter-kit/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"
)

// New initializes the Fiber application with config, middlewares, and routes.
func New(cfg *config.Config, ah *handlers.AuthHandler, uh *handlers.UserHandler, authSvc services.AuthService, logger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.App.ReadTimeout,
		WriteTimeout: cfg.App.WriteTimeout,
		IdleTimeout:  cfg.App.IdleTimeout,
	})

	app.Use(cors.New())
	app.Use(middlewares.RequestLogger(logger))

	routes.Setup(app, ah, uh, authSvc)

	return app
}
