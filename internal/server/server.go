// Package server wires the store, services, handlers and background poller
// into one HTTP server.
//
// This is the composition root: every dependency is built here (or in
// cmd/server) and passed down. Handlers only see services, services only see
// repository interfaces.
//
// ROUTES:
//
//	POST   /signup               → register (rate limited)
//	POST   /login                → authenticate (rate limited)
//	GET    /me                   → current user (bearer token or cookie; only when JWT_SECRET is set)
//	POST   /add_event            → create event
//	GET    /get_events?email=    → list events for an owner
//	DELETE /delete_event/{id}    → delete event
//	PUT    /update_event/{id}    → partial update
//	GET    /health               → store connectivity probe
//	GET    /metrics              → Prometheus exposition
//
// MIDDLEWARE ORDER:
// RequestID → RealIP → Logger → Recoverer → metrics → CORS. CORS runs last so
// preflight requests are still logged and counted.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/chronoflow/internal/auth"
	"github.com/sakif/chronoflow/internal/config"
	"github.com/sakif/chronoflow/internal/handler"
	"github.com/sakif/chronoflow/internal/metrics"
	"github.com/sakif/chronoflow/internal/middleware"
	"github.com/sakif/chronoflow/internal/poller"
	"github.com/sakif/chronoflow/internal/repository"
	"github.com/sakif/chronoflow/internal/service"
)

// shutdownTimeout bounds how long in-flight requests get after a signal.
const shutdownTimeout = 30 * time.Second

// Server owns the router, the store and the due-event poller. The store is
// closed when Run returns.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	store  repository.Store
	tokens *auth.TokenService // nil when JWT_SECRET is unset
	poller *poller.Poller
}

// New builds the server around an open store. It does not start listening
// or polling; see Run.
func New(cfg config.Config, store repository.Store, logger *slog.Logger, opts ...poller.Option) (*Server, error) {
	var tokens *auth.TokenService
	if cfg.Auth.JWTSecret != "" {
		t, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry)
		if err != nil {
			return nil, fmt.Errorf("creating token service: %w", err)
		}
		tokens = t
	} else {
		logger.Warn("JWT_SECRET not set, token issuance and /me are disabled")
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		store:  store,
		tokens: tokens,
		poller: poller.New(store, cfg.Poller.Interval, logger, opts...),
	}
	s.setupRoutes()
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	// === Global Middleware ===
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(metrics.HTTPMiddleware)
	s.router.Use(middleware.CORS(s.config.CORS.AllowedOrigins, s.logger))

	// === Services ===
	authService := service.NewAuthService(s.store, auth.NewPasswordService(), s.tokens, s.logger)
	eventService := service.NewEventService(s.store, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	eventHandler := handler.NewEventHandler(eventService, s.logger)
	healthHandler := handler.NewHealthHandler(s.store, s.logger)

	// === Auth Routes ===
	s.router.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(s.config.RateLimit.LoginPerMinute, func(req *http.Request) {
			metrics.RateLimitedTotal.WithLabelValues(req.URL.Path).Inc()
			s.logger.Warn("rate limit exceeded", slog.String("path", req.URL.Path))
		}))
		r.Post("/signup", authHandler.HandleSignup)
		r.Post("/login", authHandler.HandleLogin)
	})

	if s.tokens != nil {
		s.router.With(auth.RequireAuth(s.tokens)).Get("/me", authHandler.HandleMe)
	}

	// === Event Routes ===
	s.router.Post("/add_event", eventHandler.HandleAdd)
	s.router.Get("/get_events", eventHandler.HandleList)
	s.router.Delete("/delete_event/{id}", eventHandler.HandleDelete)
	s.router.Put("/update_event/{id}", eventHandler.HandleUpdate)

	// === Operations ===
	s.router.Get("/health", healthHandler.HandleHealth)
	s.router.Handle("/metrics", metrics.Handler())
}

// Start runs the server until SIGINT or SIGTERM.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run starts the poller, serves HTTP until ctx is cancelled, then shuts down
// in order: stop accepting requests, drain in-flight ones, stop the poller,
// close the store.
func (s *Server) Run(ctx context.Context) error {
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.store.Close(closeCtx); err != nil {
			s.logger.Error("closing store failed", slog.String("error", err.Error()))
		}
	}()

	srv := &http.Server{
		Addr:         s.config.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.poller.Start(context.WithoutCancel(ctx))
	defer s.poller.Stop()

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("store", s.config.Store.Driver),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil

	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}
	return nil
}
