package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rpupo63/portfolio-backend/config"
	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/flash"
	"github.com/rpupo63/portfolio-backend/services"
	"github.com/rs/zerolog/log"
)

// Dependencies are the collaborators the handlers are built from.
type Dependencies struct {
	Database       database.Database
	Files          *services.FileStore
	Mailer         services.Mailer
	Flash          *flash.Store
	ContactLimiter RateLimiter
	MetricsHandler http.Handler
	StartupTime    time.Time
}

type Server struct {
	*http.Server
	startupTime time.Time
}

func NewServer(cfg *config.Config, deps Dependencies) (Server, error) {
	// Capture startup time
	if deps.StartupTime.IsZero() {
		deps.StartupTime = time.Now()
	}

	router, err := newRouter(cfg, deps)
	if err != nil {
		return Server{}, err
	}

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout(),  // Timeout for reading the entire request
		WriteTimeout: cfg.Server.WriteTimeout(), // Timeout for writing the response
		IdleTimeout:  cfg.Server.IdleTimeout(),  // Timeout for idle connections
	}

	return Server{server, deps.StartupTime}, nil
}

func newRouter(cfg *config.Config, deps Dependencies) (*chi.Mux, error) {
	if deps.Files == nil || deps.Mailer == nil || deps.Flash == nil {
		return nil, fmt.Errorf("router needs a file store, a mailer and a flash store")
	}

	if err := deps.Flash.Validate(); err != nil {
		return nil, err
	}

	rd, err := newRenderer(deps.Flash)
	if err != nil {
		return nil, err
	}

	maxBody := cfg.Uploads.MaxUploadBytes()
	handlers := initializeHandlers(deps, rd, maxBody, cfg.SMTP.ContactRecipient())

	chiRouter := chi.NewRouter()
	// Forwarding headers are client-controlled unless a proxy in front rewrites them
	if cfg.Server.TrustedProxy {
		chiRouter.Use(middleware.RealIP)
	}
	chiRouter.Use(middleware.RequestID)
	chiRouter.Use(LogInternalServerErrors)
	chiRouter.Use(HTTPLoggingMiddleware(cfg.Server.IsDevelopment()))
	chiRouter.Use(MetricsMiddleware)

	// Apply CORS middleware
	if len(cfg.Server.AcceptedOrigins) > 0 {
		chiRouter.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.AcceptedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	setupOperationalRoutes(chiRouter, handlers, deps.MetricsHandler)
	setupStaticRoutes(chiRouter, deps.Files)
	chiRouter.Group(func(r chi.Router) {
		r.Use(MaxBodySize(maxBody))
		setupSiteRoutes(r, handlers, rateLimitContact(deps.ContactLimiter, rd))
	})

	return chiRouter, nil
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}

// Uptime is how long the server has been up.
func (s Server) Uptime() time.Duration {
	return time.Since(s.startupTime)
}
