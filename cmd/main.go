package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aaryankalra/auth-starter-kit/internal/config"
	"github.com/aaryankalra/auth-starter-kit/internal/database"
	"github.com/aaryankalra/auth-starter-kit/internal/handlers"
	"github.com/aaryankalra/auth-starter-kit/internal/mailer"
	"github.com/aaryankalra/auth-starter-kit/internal/repository"
	"github.com/aaryankalra/auth-starter-kit/internal/server"
	"github.com/aaryankalra/auth-starter-kit/internal/services"
	"github.com/aaryankalra/auth-starter-kit/internal/utils"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := utils.NewLogger(cfg.App.Env)
	defer func() {
		_ = logger.Sync()
	}()
	sugar := logger.Sugar()
	sugar.Infof("Starting auth-starter-kit in %s environment on port %d", cfg.App.Env, cfg.App.Port)

	db, mongoClient, err := database.ConnectMongo(cfg.Mongo.URI, cfg.Mongo.Database, sugar)
	if err != nil {
		sugar.Fatal(err)
	}

	var mail mailer.Mailer
	brevo := mailer.NewBrevoMailer(cfg.Mail.BrevoAPIKey, cfg.Mail.FromEmail, cfg.Mail.FromName, cfg.App.ClientURL)
	if cfg.Mail.Enabled && brevo.IsConfigured() {
		sugar.Info("Brevo mailer configured")
		mail = brevo
	} else {
		sugar.Warn("Mailer not configured, emails will be logged instead of sent")
		mail = mailer.NewLogMailer(sugar)
	}

	policy := services.Policy{
		JWTSecret:      cfg.JWT.Secret,
		SessionTTL:     time.Duration(cfg.JWT.SessionTTLDays) * 24 * time.Hour,
		OTPTTL:         time.Duration(cfg.Security.OtpTTLMinutes) * time.Minute,
		OTPLength:      cfg.Security.OtpLength,
		ResetTokenTTL:  time.Duration(cfg.Security.ResetTokenTTLMinutes) * time.Minute,
		MinPasswordLen: cfg.Security.MinPasswordLength,
		BcryptCost:     cfg.Security.PasswordHashCost,
		MailBestEffort: cfg.Mail.BestEffort,
	}

	userRepo := repository.NewMongoUserRepo(db, cfg.Mongo.Collection)
	authSvc := services.NewAuthService(userRepo, mail, policy, logger)
	userSvc := services.NewUserService(userRepo, logger)

	secureCookies := cfg.App.Env != "development"
	ah := handlers.NewAuthHandler(authSvc, policy.SessionTTL, secureCookies, logger)
	uh := handlers.NewUserHandler(authSvc, userSvc, logger)

	app := server.New(cfg, ah, uh, authSvc, logger)

	go func() {
		listenAddr := fmt.Sprintf(":%d", cfg.App.Port)
		sugar.Infof("Server listening on %s", listenAddr)
		if err := app.Listen(listenAddr); err != nil {
			sugar.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	sugar.Info("Shutting down server...")

	ctxShut, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()

	if err := app.ShutdownWithContext(ctxShut); err != nil {
		sugar.Errorf("Fiber app shutdown error: %v", err)
	}
	if err := mongoClient.Disconnect(ctxShut); err != nil {
		sugar.Errorf("MongoDB disconnect error: %v", err)
	}

	sugar.Info("Graceful shutdown complete")
}
