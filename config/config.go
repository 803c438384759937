package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds everything the server needs, read from the environment.
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	Session SessionConfig
	SMTP    SMTPConfig
	Uploads UploadConfig
	Contact ContactConfig

	GenerateModels       bool `env:"GENERATE_MODELS" envDefault:"false"`
	GenerateColumnReport bool `env:"GENERATE_COLUMN_REPORT" envDefault:"false"`
}

type ServerConfig struct {
	Port                string   `env:"PORT" envDefault:"8080"`
	Environment         string   `env:"APP_ENV" envDefault:"development"`
	LogLevel            string   `env:"LOG_LEVEL" envDefault:"info"`
	ReadTimeoutSeconds  int      `env:"READ_TIMEOUT_SECONDS" envDefault:"180"`
	WriteTimeoutSeconds int      `env:"WRITE_TIMEOUT_SECONDS" envDefault:"180"`
	IdleTimeoutSeconds  int      `env:"IDLE_TIMEOUT_SECONDS" envDefault:"180"`
	AcceptedOrigins     []string `env:"ACCEPTED_ORIGINS" envSeparator:","`
	TrustedProxy        bool     `env:"TRUSTED_PROXY" envDefault:"false"`
}

type DBConfig struct {
	Type string `env:"DB_TYPE" envDefault:"postgres"`
	URL  string `env:"DATABASE_URL"`
}

type SessionConfig struct {
	Secret string `env:"SESSION_SECRET"`
}

type SMTPConfig struct {
	Host           string `env:"SMTP_HOST" envDefault:"smtp.gmail.com"`
	Port           int    `env:"SMTP_PORT" envDefault:"587"`
	Username       string `env:"SMTP_USERNAME"`
	Password       string `env:"SMTP_PASSWORD"`
	From           string `env:"SMTP_FROM"`
	TimeoutSeconds int    `env:"SMTP_TIMEOUT_SECONDS" envDefault:"10"`
	Recipient      string `env:"CONTACT_RECIPIENT"`
}

type UploadConfig struct {
	ImagesDir   string `env:"UPLOAD_IMAGES_DIR" envDefault:"static/images"`
	CVsDir      string `env:"UPLOAD_CVS_DIR" envDefault:"static/cvs"`
	ToolsDir    string `env:"UPLOAD_TOOLS_DIR" envDefault:"static/tools"`
	MaxUploadMB int64  `env:"MAX_UPLOAD_MB" envDefault:"16"`
}

type ContactConfig struct {
	RatePerMinute float64 `env:"CONTACT_RATE_PER_MINUTE" envDefault:"5"`
	Burst         int     `env:"CONTACT_BURST" envDefault:"3"`
	RedisURL      string  `env:"REDIS_URL"`
}

// Load reads an optional .env file and parses the environment into a Config.
func Load(envFiles ...string) (*Config, error) {
	// a missing .env is fine, the process environment still applies
	_ = godotenv.Load(envFiles...)

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	switch strings.ToLower(c.DB.Type) {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_TYPE %q", c.DB.Type)
	}
	if c.DB.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}

func (c ServerConfig) Address() string {
	return fmt.Sprintf("0.0.0.0:%s", c.Port)
}

func (c ServerConfig) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

func (c ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}

func (c ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSeconds) * time.Second
}

func (c ServerConfig) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutSeconds) * time.Second
}

func (c SMTPConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ContactRecipient is where contact-form mail goes; defaults to the sender address.
func (c SMTPConfig) ContactRecipient() string {
	if c.Recipient != "" {
		return c.Recipient
	}
	return c.From
}

func (c UploadConfig) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}
