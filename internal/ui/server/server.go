package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/constella-app/constella-web/internal/logger"
	"github.com/constella-app/constella-web/internal/ui/auth"
	"github.com/constella-app/constella-web/internal/ui/client"
	"github.com/constella-app/constella-web/internal/ui/config"
	"github.com/constella-app/constella-web/internal/ui/handlers"
	"github.com/constella-app/constella-web/internal/ui/middleware"
	"github.com/constella-app/constella-web/internal/ui/templates"
	"github.com/constella-app/constella-web/internal/ui/wizardstore"
)

const (
	// ServerShutdownTimeout is the timeout for graceful server shutdown
	ServerShutdownTimeout = 10 * time.Second

	// RequestTimeout bounds every request, including CV extraction
	RequestTimeout = 60 * time.Second

	// form posts without a file
	maxFormBytes = 64 * 1024
)

type Server struct {
	router   *chi.Mux
	config   *config.Config
	logger   *slog.Logger
	sessions *auth.SessionService
	store    wizardstore.Store
}

// New creates the UI server. The store holds the signup wizard state and is owned by the caller.
func New(cfg *config.Config, logger *slog.Logger, store wizardstore.Store) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		config:   cfg,
		logger:   logger,
		sessions: auth.NewSessionService(cfg.Environment),
		store:    store,
	}

	s.setupMiddleware()
	s.registerRoutes()
	return s
}

// Handler returns the router (used by tests)
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) registerRoutes() {
	handlerService := &handlers.HandlerService{
		Sessions:       s.sessions,
		ApiClient:      client.NewClient(s.config.APIBaseURL, s.config.APITimeout),
		Store:          s.store,
		Environment:    s.config.Environment,
		MaxUploadBytes: int64(s.config.MaxUploadBytes),
		WizardTTLSecs:  int(s.config.WizardTTL.Seconds()),
	}

	s.router.Get("/health/live", handlerService.HandleLiveness)

	// Static assets (no auth required)
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(templates.Static()))))

	// Public pages
	s.router.Get("/", handlerService.HandleHome)
	s.router.Get("/login", handlerService.HandleLogin)
	s.router.Get("/signup", handlerService.HandleSignup)
	s.router.Post("/logout", handlerService.HandleLogout)

	// form posts
	s.router.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(s.config.RateLimitRPS, s.config.RateLimitBurst))

		r.With(middleware.RequestSizeLimit(maxFormBytes)).Post("/login", handlerService.HandleLoginPost)

		// leave room for the multipart envelope around the largest allowed file
		r.With(middleware.RequestSizeLimit(int64(s.config.MaxUploadBytes)+maxFormBytes)).Post("/signup/*", handlerService.HandleSignupAction)
	})

	// Protected routes (require authentication)
	s.router.Group(func(r chi.Router) {
		r.Use(s.sessions.RequireAuth)

		r.Get("/dashboard", handlerService.HandleDashboard)
	})
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(logger.RequestLogging(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(chimiddleware.Timeout(RequestTimeout))
	s.router.Use(middleware.SecurityHeaders(s.config.Environment))
	s.router.Use(s.sessions.LoadSession)
}

// Start runs the server until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	server := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		s.logger.Info("UI server listening", slog.String("address", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
		s.logger.Info("Shutting down UI server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), ServerShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Server forced to shutdown", slog.String("error", err.Error()))
			return err
		}
	}

	return nil
}
