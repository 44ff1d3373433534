package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type AppCfg struct {
	Env          string        `yaml:"env"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	ClientURL    string        `yaml:"client_url"`
}

type JWTCfg struct {
	Secret         string `yaml:"secret"`
	SessionTTLDays int    `yaml:"sessionTTLDays"`
}

type MongoCfg struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

type MailCfg struct {
	BrevoAPIKey string `yaml:"brevoAPIKey"`
	FromEmail   string `yaml:"fromEmail"`
	FromName    string `yaml:"fromName"`
	Enabled     bool   `yaml:"enabled"`
	BestEffort  bool   `yaml:"bestEffort"`
}

type SecurityCfg struct {
	OtpLength            int `yaml:"otpLength"`
	OtpTTLMinutes        int `yaml:"otpTTLMinutes"`
	ResetTokenTTLMinutes int `yaml:"resetTokenTTLMinutes"`
	MinPasswordLength    int `yaml:"minPasswordLength"`
	PasswordHashCost     int `yaml:"passwordHashCost"`
}

type Config struct {
	App      AppCfg      `yaml:"app"`
	JWT      JWTCfg      `yaml:"jwt"`
	Mongo    MongoCfg    `yaml:"mongo"`
	Mail     MailCfg     `yaml:"mail"`
	Security SecurityCfg `yaml:"security"`
}

// Load reads the YAML config file, applies environment overrides, fills in
// defaults, and fails fast when required settings are missing.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if b, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
		}
	}

	override := func(env string, apply func(string)) {
		if v := os.Getenv(env); v != "" {
			apply(v)
		}
	}
	overrideInt := func(env string, apply func(int)) {
		if v := os.Getenv(env); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				apply(n)
			}
		}
	}

	override("APP_ENV", func(v string) { cfg.App.Env = v })
	overrideInt("APP_PORT", func(n int) { cfg.App.Port = n })
	override("CLIENT_URL", func(v string) { cfg.App.ClientURL = v })
	override("JWT_SECRET", func(v string) { cfg.JWT.Secret = v })
	overrideInt("JWT_SESSION_TTL_DAYS", func(n int) { cfg.JWT.SessionTTLDays = n })
	override("MONGO_URI", func(v string) { cfg.Mongo.URI = v })
	override("MONGO_DB", func(v string) { cfg.Mongo.Database = v })
	override("MONGO_COLLECTION", func(v string) { cfg.Mongo.Collection = v })
	override("BREVO_API_KEY", func(v string) { cfg.Mail.BrevoAPIKey = v })
	override("MAIL_FROM_EMAIL", func(v string) { cfg.Mail.FromEmail = v })
	override("MAIL_FROM_NAME", func(v string) { cfg.Mail.FromName = v })
	overrideInt("OTP_LENGTH", func(n int) { cfg.Security.OtpLength = n })
	overrideInt("OTP_TTL_MINUTES", func(n int) { cfg.Security.OtpTTLMinutes = n })
	overrideInt("RESET_TOKEN_TTL_MINUTES", func(n int) { cfg.Security.ResetTokenTTLMinutes = n })
	overrideInt("MIN_PASSWORD_LENGTH", func(n int) { cfg.Security.MinPasswordLength = n })
	overrideInt("PASSWORD_HASH_COST", func(n int) { cfg.Security.PasswordHashCost = n })

	if v := os.Getenv("MAIL_ENABLED"); v == "true" {
		cfg.Mail.Enabled = true
	}
	if v := os.Getenv("MAIL_BEST_EFFORT"); v == "true" {
		cfg.Mail.BestEffort = true
	}

	applyDefaults(cfg)

	if cfg.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required (set in .env or config.yaml)")
	}
	if cfg.Mongo.URI == "" {
		return nil, errors.New("MONGO_URI is required")
	}
	if cfg.Mail.Enabled && (cfg.Mail.BrevoAPIKey == "" || cfg.Mail.FromEmail == "" || cfg.Mail.FromName == "") {
		return nil, errors.New("mail enabled but missing BrevoAPIKey, FromEmail, or FromName")
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == 0 {
		cfg.App.Port = 5000
	}
	if cfg.App.ReadTimeout == 0 {
		cfg.App.ReadTimeout = 10 * time.Second
	}
	if cfg.App.WriteTimeout == 0 {
		cfg.App.WriteTimeout = 10 * time.Second
	}
	if cfg.App.IdleTimeout == 0 {
		cfg.App.IdleTimeout = 60 * time.Second
	}
	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = "auth"
	}
	if cfg.Mongo.Collection == "" {
		cfg.Mongo.Collection = "users"
	}
	if cfg.JWT.SessionTTLDays == 0 {
		cfg.JWT.SessionTTLDays = 7
	}
	if cfg.Security.OtpLength == 0 {
		cfg.Security.OtpLength = 6
	}
	if cfg.Security.OtpTTLMinutes == 0 {
		cfg.Security.OtpTTLMinutes = 10
	}
	if cfg.Security.ResetTokenTTLMinutes == 0 {
		cfg.Security.ResetTokenTTLMinutes = 15
	}
	if cfg.Security.MinPasswordLength == 0 {
		cfg.Security.MinPasswordLength = 6
	}
}
