// Package server wires the application together: database, services,
// handlers, middleware, and routes. It is the composition root — every
// dependency is constructed here and nowhere else.
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

	"github.com/sakif/task-manager/internal/auth"
	"github.com/sakif/task-manager/internal/handler"
	"github.com/sakif/task-manager/internal/middleware"
	sqliteRepo "github.com/sakif/task-manager/internal/repository/sqlite"
	"github.com/sakif/task-manager/internal/service"
)

// Config holds server configuration, loaded in cmd/server from the
// environment. TokenSecret is read once at startup and never changes — it's
// the only process-wide state the auth path depends on.
type Config struct {
	Port        int
	DBPath      string
	TokenSecret string
}

// Server owns the router and the database connection. The connection is
// closed during graceful shutdown so pending writes are flushed and the
// file lock released.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New builds the full dependency chain:
//
//	sqlite.DB → AccountService/TaskService → handlers → routes
//
// Services receive repository interfaces (not *sqlite.DB), handlers receive
// services — each layer sees only what it needs.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	tokens, err := auth.NewTokenService(cfg.TokenSecret)
	if err != nil {
		return nil, fmt.Errorf("creating token service: %w", err)
	}

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

	s.setupRoutes(tokens)

	return s, nil
}

// setupRoutes configures middleware and the route table.
//
// ROUTE TABLE:
//
//	POST   /user             → register (open)
//	POST   /user/login       → login (open)
//	POST   /user/auth        → echo decoded claims (token)
//	GET    /user/{id}        → fetch own account (token)
//	PUT    /user/{id}        → update own account (token)
//	DELETE /user/{id}        → delete own account + tasks (token)
//	GET    /tasks            → list own tasks (token)
//	POST   /tasks            → create own task (token)
//	GET    /tasks/{id}       → fetch own task (token)
//	PUT    /tasks/{id}       → update own task (token)
//	DELETE /tasks/all        → bulk delete, returns count (token)
//	DELETE /tasks/completed  → bulk delete completed, returns count (token)
//	DELETE /tasks/{id}       → delete own task (token)
//
// /tasks/all and /tasks/completed are registered before /tasks/{id} so the
// literal segments win over the wildcard — same ordering the route table has
// always required.
func (s *Server) setupRoutes(tokens *auth.TokenService) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	passwords := auth.NewPasswordService()
	accountService := service.NewAccountService(s.db.Accounts(), passwords, tokens, s.logger)
	taskService := service.NewTaskService(s.db.Tasks(), s.logger)

	accountHandler := handler.NewAccountHandler(accountService, s.logger)
	taskHandler := handler.NewTaskHandler(taskService, s.logger)

	requireAuth := auth.RequireAuth(tokens)

	s.router.Route("/user", func(r chi.Router) {
		r.Post("/", accountHandler.HandleRegister)
		r.Post("/login", accountHandler.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/auth", accountHandler.HandleAuth)
			r.Get("/{id}", accountHandler.HandleGet)
			r.Put("/{id}", accountHandler.HandleUpdate)
			r.Delete("/{id}", accountHandler.HandleDelete)
		})
	})

	s.router.Route("/tasks", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", taskHandler.HandleList)
		r.Post("/", taskHandler.HandleCreate)
		r.Delete("/all", taskHandler.HandleDeleteAll)
		r.Delete("/completed", taskHandler.HandleDeleteCompleted)
		r.Get("/{id}", taskHandler.HandleGet)
		r.Put("/{id}", taskHandler.HandleUpdate)
		r.Delete("/{id}", taskHandler.HandleDelete)
	})
}

// Router exposes the configured router, mainly for httptest servers.
func (s *Server) Router() http.Handler {
	return s.router
}

// Close releases the server's resources (the database connection).
func (s *Server) Close() error {
	return s.db.Close()
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests ten
// seconds to finish, close the database.
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", slog.Int("port", s.config.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		s.db.Close()
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		s.db.Close()
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}

	s.logger.Info("server stopped gracefully")
	return nil
}
