package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/xiaoyuanzhu-com/todos/api"
	"github.com/xiaoyuanzhu-com/todos/config"
	"github.com/xiaoyuanzhu-com/todos/db"
	"github.com/xiaoyuanzhu-com/todos/log"
	"github.com/xiaoyuanzhu-com/todos/notifications"
	"github.com/xiaoyuanzhu-com/todos/session"
	"github.com/xiaoyuanzhu-com/todos/views"
	"github.com/xiaoyuanzhu-com/todos/workers/sweeper"
)

// Server owns and coordinates all application components
type Server struct {
	cfg *config.Config

	// Components (owned by server)
	database     *db.DB
	notifService *notifications.Service
	sweeper      *sweeper.Worker
	sessions     *session.Manager

	// HTTP
	router *gin.Engine
	http   *http.Server
}

// New creates a new server with all components initialized
func New(cfg *config.Config) (*Server, error) {
	s := &Server{cfg: cfg}

	// 1. Open database
	log.Info().Str("path", cfg.DatabasePath).Str("driver", cfg.DBDriver).Msg("initializing database")
	database, err := db.Open(toDBConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	s.database = database

	// 2. Create notifications service
	s.notifService = notifications.NewService()

	// 3. Create session sweeper and manager
	s.sweeper = sweeper.NewWorker(toSweeperConfig(cfg), s.database)
	s.sessions = session.NewManager(toSessionConfig(cfg), s.database)

	// 4. Setup HTTP router
	if err := s.setupRouter(); err != nil {
		s.database.Close()
		return nil, err
	}

	log.Info().Msg("server initialized successfully")
	return s, nil
}

// setupRouter creates and configures the Gin router
func (s *Server) setupRouter() error {
	if !s.cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()

	// Middleware
	s.router.Use(gin.Recovery())
	s.router.Use(log.GinLogger())

	// Security headers (production only)
	if !s.cfg.IsDevelopment() {
		s.router.Use(securityHeadersMiddleware())
	}

	// Gzip compression (skip SSE)
	s.router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{
		"/api/events",
	})))

	s.router.SetTrustedProxies(nil)

	tmpl, err := views.Templates()
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}
	s.router.SetHTMLTemplate(tmpl)

	// Static files don't need a session
	s.router.StaticFS("/static", views.Static())

	// Ignore .well-known requests
	s.router.GET("/.well-known/*path", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	api.SetupRoutes(s.router, api.NewHandlers(s.notifService), s.sessions.Middleware())
	return nil
}

// securityHeadersMiddleware adds security headers for production
func securityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// HSTS - enforce HTTPS for 1 year, include subdomains
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")

		// Prevent MIME type sniffing
		c.Header("X-Content-Type-Options", "nosniff")

		// Clickjacking protection
		c.Header("X-Frame-Options", "SAMEORIGIN")

		// Referrer policy - don't leak full URLs to other origins
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		c.Next()
	}
}

// Start starts the session sweeper and the HTTP server (blocks)
func (s *Server) Start() error {
	log.Info().Msg("starting server components")

	s.sweeper.Start()

	s.http = &http.Server{
		Addr:     s.cfg.Addr(),
		Handler:  s.router,
		ErrorLog: log.StdErrorLogger(), // Route Go's internal HTTP errors through zerolog
	}

	log.Info().
		Str("addr", s.http.Addr).
		Str("env", s.cfg.Env).
		Msg("HTTP server starting")

	return s.http.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("shutting down server")

	// 1. Close notification service so SSE handlers return
	s.notifService.Shutdown()

	// 2. Shutdown HTTP server (stop accepting new requests and wait for existing ones)
	if s.http != nil {
		if err := s.http.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("http server shutdown error")
		}
	}

	// 3. Stop the sweeper
	s.sweeper.Stop()

	// Close database last
	if s.database != nil {
		if err := s.database.Close(); err != nil {
			log.Error().Err(err).Msg("database close error")
			return err
		}
	}

	log.Info().Msg("server shutdown complete")
	return nil
}

// Router returns the HTTP handler
func (s *Server) Router() *gin.Engine { return s.router }
