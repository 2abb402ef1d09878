// Package server exposes the workspace over HTTP with JSON bodies and a
// cookie session.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/Now-Tiger/Flow/internal/app"
	"github.com/Now-Tiger/Flow/internal/config"
)

type Server struct {
	svc    *app.Services
	cfg    config.ServerConfig
	logger *slog.Logger
}

func New(svc *app.Services, cfg config.ServerConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{svc: svc, cfg: cfg, logger: logger}
}

// Handler returns the full route table wrapped in recovery, logging and
// session middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST /auth/signup", s.handleSignup)
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("POST /auth/logout", s.handleLogout)
	mux.HandleFunc("GET /auth/me", s.handleMe)

	ws := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, s.requireSession(h))
	}
	ws("POST /workspace/generate", s.handleGenerate)
	ws("POST /workspace/chat", s.handleChat)
	ws("GET /workspace/projects", s.handleListProjects)
	ws("POST /workspace/projects", s.handleCreateProject)
	ws("GET /workspace/projects/{id}/details", s.handleProjectDetails)
	ws("PATCH /workspace/projects/{id}/status", s.handleProjectStatus)
	ws("DELETE /workspace/projects/{id}/delete", s.handleDeleteProject)
	ws("GET /workspace/projects/{id}/export", s.handleExport)
	ws("PATCH /workspace/projects/{id}/tasks/reorder", s.handleReorderTasks)
	ws("PUT /workspace/projects/{id}/tasks/{taskId}", s.handleUpdateTask)
	ws("GET /workspace/projects/{id}/tasks/{taskId}/edits", s.handleTaskEdits)

	return s.withRecovery(s.withLogging(withSession(mux)))
}

// Run serves on cfg.Addr until ctx is cancelled, then drains in-flight
// requests for at most cfg.ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http_listen", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	s.logger.Info("http_shutdown", "timeout", timeout.String())
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
