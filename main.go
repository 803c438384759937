package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	api "github.com/rpupo63/portfolio-backend/api"
	"github.com/rpupo63/portfolio-backend/config"
	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/flash"
	"github.com/rpupo63/portfolio-backend/metrics"
	"github.com/rpupo63/portfolio-backend/models"
	"github.com/rpupo63/portfolio-backend/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	setupLogging(cfg.Server)
	log.Info().Str("env", cfg.Server.Environment).Str("dbType", cfg.DB.Type).Msg("Initializing app...")

	db, err := database.Open(cfg.DB, log.With().Str("component", "gorm").Logger())
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}

	// If generating models, run generation and exit
	if cfg.GenerateModels {
		log.Info().Msg("Generating models and query helpers...")
		if err := models.GenerateModels(db, "./query"); err != nil {
			log.Fatal().Err(err).Msg("Error generating models")
		}
		return
	}

	// If generating column mismatch report, run report and exit
	if cfg.GenerateColumnReport {
		log.Info().Msg("Generating column mismatch report...")
		report, err := models.ColumnMismatchReport(db)
		if err != nil {
			log.Fatal().Err(err).Msg("Error generating column report")
		}
		models.WriteColumnMismatchReport(os.Stdout, report)
		return
	}

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Error migrating database")
	}

	currentDB := database.New(db)
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = currentDB.Ping(pingCtx)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("Error testing database connection")
	}

	files, err := services.NewFileStore(cfg.Uploads.ImagesDir, cfg.Uploads.CVsDir, cfg.Uploads.ToolsDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Error preparing upload directories")
	}

	mailer := services.NewSMTPMailer(services.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		Timeout:  cfg.SMTP.Timeout(),
	})
	if cfg.SMTP.From == "" {
		log.Warn().Msg("SMTP_FROM is not set; contact messages will fail until it is")
	}

	limiter, closeLimiter := contactLimiter(cfg.Contact)
	defer closeLimiter()

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)

	server, err := api.NewServer(cfg, api.Dependencies{
		Database:       currentDB,
		Files:          files,
		Mailer:         mailer,
		Flash:          flash.NewStore(sessionSecret(cfg.Session)),
		ContactLimiter: limiter,
		MetricsHandler: promhttp.Handler(),
		StartupTime:    time.Now(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing server")
	}

	// Start and listenToInterrupt each send at most once; neither may block after shutdown
	errChannel := make(chan error, 2)

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Err(fatalErr).Dur("uptime", server.Uptime()).Msg("Closing server")

	server.ShutdownGracefully(30 * time.Second)
}

func setupLogging(cfg config.ServerConfig) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

// contactLimiter picks the shared Redis limiter when REDIS_URL is set and the
// in-process one otherwise.
func contactLimiter(cfg config.ContactConfig) (api.RateLimiter, func()) {
	if cfg.RatePerMinute <= 0 {
		log.Info().Msg("Contact form rate limiting disabled")
		return nil, func() {}
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Error parsing REDIS_URL")
		}
		client := redis.NewClient(opts)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("Redis unreachable; falling back to in-memory rate limiting")
			_ = client.Close()
		} else {
			return api.NewRedisRateLimiter(client, cfg.RatePerMinute, cfg.Burst, time.Minute), func() { _ = client.Close() }
		}
	}

	return api.NewMemoryRateLimiter(cfg.RatePerMinute, cfg.Burst), func() {}
}

// sessionSecret returns SESSION_SECRET, or a random per-process key so flash
// cookies still work in development.
func sessionSecret(cfg config.SessionConfig) []byte {
	if cfg.Secret != "" {
		return []byte(cfg.Secret)
	}
	log.Warn().Msg("SESSION_SECRET is not set; using a random key, flash messages will not survive a restart")
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		log.Fatal().Err(err).Msg("Error generating session secret")
	}
	return secret
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
