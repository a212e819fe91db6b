// Package server is the composition root: it wires the database,
// repositories, services, session manager, and handlers together and
// owns the route table.
//
// DEPENDENCY FLOW:
//
//	main.go builds a Config → server.New assembles
//	sqlite.DB → services → handlers → chi routes
//
// Each layer only receives what it needs: services get repository
// interfaces, handlers get services, and nothing below the handler
// layer knows HTTP exists.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/dojo-secrets/internal/auth"
	"github.com/sakif/dojo-secrets/internal/handler"
	"github.com/sakif/dojo-secrets/internal/middleware"
	sqliteRepo "github.com/sakif/dojo-secrets/internal/repository/sqlite"
	"github.com/sakif/dojo-secrets/internal/service"
	"github.com/sakif/dojo-secrets/internal/session"
)

// Config holds server configuration, read from the environment by main.
type Config struct {
	Port          int
	TemplateDir   string
	StaticDir     string
	DBPath        string
	SessionSecret string
}

// Server owns the router and the database connection; the connection is
// closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain and the route table.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes wires middleware, handlers, and the route table.
//
// ROUTES:
//
//	GET  /                         → landing page (login + register forms)
//	POST /register                 → create account, log in, → /secrets
//	POST /login                    → authenticate, → /secrets
//	GET  /logout                   → destroy session, → /
//	GET  /secrets                  → secrets wall (members only)
//	POST /secrets                  → post a secret, → /secrets
//	GET  /secrets/{id}             → single secret with comments
//	POST /secrets/{id}/comments    → add comment, → /secrets/{id}
//	POST /secrets/{id}/delete      → delete secret, → /secrets
//	POST /comments/{id}/delete     → delete comment, → parent secret
//	GET  /static/*                 → stylesheets
//
// Every write answers with a redirect; pages are only ever the response
// to a GET. Unknown paths land on the error page, not the default 404.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.SessionSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	sessions := session.NewManager(s.db.Sessions(), tokens, s.logger)
	s.router.Use(sessions.Middleware)

	renderer, err := handler.NewRenderer(s.config.TemplateDir, s.logger)
	if err != nil {
		return fmt.Errorf("parsing templates: %w", err)
	}

	authService := service.NewAuthService(s.db.Users(), auth.NewPasswordService(), s.logger)
	secretService := service.NewSecretService(s.db.Secrets(), s.db.Comments(), s.db.Users(), s.logger)

	authHandler := handler.NewAuthHandler(authService, sessions, renderer, s.logger)
	secretHandler := handler.NewSecretHandler(secretService, sessions, renderer, s.logger)

	fileServer := http.FileServer(http.Dir(s.config.StaticDir))
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	s.router.Get("/", authHandler.HandleHome)
	s.router.Post("/register", authHandler.HandleRegister)
	s.router.Post("/login", authHandler.HandleLogin)
	s.router.Get("/logout", authHandler.HandleLogout)

	s.router.Get("/secrets", secretHandler.HandleList)
	s.router.Post("/secrets", secretHandler.HandleCreate)
	s.router.Get("/secrets/{id}", secretHandler.HandleView)
	s.router.Post("/secrets/{id}/comments", secretHandler.HandleAddComment)
	s.router.Post("/secrets/{id}/delete", secretHandler.HandleDeleteSecret)
	s.router.Post("/comments/{id}/delete", secretHandler.HandleDeleteComment)

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		renderer.RenderError(w, http.StatusNotFound, "That page does not exist")
	})

	return nil
}

// Router exposes the assembled handler, mainly for httptest servers.
func (s *Server) Router() http.Handler {
	return s.router
}

// Close releases the server's resources without starting it. Start calls
// this itself; it exists for callers that only used Router.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests, and
// close the database so the WAL is flushed.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
