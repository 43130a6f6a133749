// Package api provides the furigana REST API server.
package api

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/FocuswithJustin/furigana/core/furigana"
	"github.com/FocuswithJustin/furigana/core/lesson"
	"github.com/FocuswithJustin/furigana/internal/cache"
	"github.com/FocuswithJustin/furigana/internal/logging"
	"github.com/FocuswithJustin/furigana/internal/server"
)

const (
	slowRequestThreshold = 500 * time.Millisecond
	shutdownTimeout      = 5 * time.Second
)

// Server serves the furigana API.
type Server struct {
	cfg     Config
	engine  *furigana.Engine
	store   *lesson.Store // nil when no lessons directory is configured
	renders *cache.TTLCache[[32]byte, RenderResult]
	started time.Time
}

// New builds a server from cfg.
func New(cfg Config) (*Server, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Server{
		cfg:     cfg,
		engine:  cfg.Engine,
		started: time.Now(),
	}
	if cfg.LessonsDir != "" {
		s.store = lesson.NewStore(cfg.LessonsDir)
	}
	if cfg.CacheTTL > 0 {
		s.renders = cache.New[[32]byte, RenderResult](cfg.CacheTTL, cfg.CacheSize)
	}
	return s, nil
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	if len(s.cfg.AllowedOrigins) > 0 {
		logging.SecurityEvent("cors_configured", "api",
			"mode", "restricted",
			"allowed_origins_count", len(s.cfg.AllowedOrigins))
	}

	return server.Chain(s.setupRoutes(),
		logging.RequestIDMiddleware,
		logging.LoggingMiddleware,
		server.SlowRequestMiddleware(slowRequestThreshold),
		server.CORSMiddleware(server.CORSConfig{AllowedOrigins: s.cfg.AllowedOrigins}),
		server.SecurityHeaders(server.APICSPConfig()),
	)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /render", s.handleRender)
	mux.HandleFunc("POST /parse", s.handleParse)
	mux.HandleFunc("GET /lessons", s.handleLessons)
	mux.HandleFunc("GET /lessons/{slug}", s.handleLesson)
	mux.HandleFunc("GET /lessons/{slug}/hash", s.handleLessonHash)

	return mux
}

// Start runs the API server until ctx is cancelled, then shuts it down.
func Start(ctx context.Context, cfg Config) error {
	s, err := New(cfg)
	if err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lessonsDir := "(disabled)"
	if s.cfg.LessonsDir != "" {
		if abs, err := filepath.Abs(s.cfg.LessonsDir); err == nil {
			lessonsDir = abs
		}
	}
	logging.ServerStartup("rest_api", "http", s.cfg.Port,
		"lessons_dir", lessonsDir,
		"cache_ttl", s.cfg.CacheTTL.String())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logging.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
