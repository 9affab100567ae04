// Package server provides the HTTP API for ranking and report retrieval.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/bugloc/bugloc/internal/config"
	"github.com/bugloc/bugloc/internal/indexer"
	"github.com/bugloc/bugloc/internal/search"
	"github.com/bugloc/bugloc/internal/storage"
)

// Server is the HTTP server for the ranking API. The project index pair is
// swapped atomically on rebuild, so in-flight requests keep ranking against
// the snapshot they started with.
type Server struct {
	engine *search.Engine
	store  *storage.Store
	config *config.ServerConfig
	logger *zap.Logger
	server *http.Server

	mu      sync.RWMutex
	project *indexer.Project
}

// NewServer creates a server with the given dependencies.
func NewServer(
	engine *search.Engine,
	project *indexer.Project,
	store *storage.Store,
	cfg *config.ServerConfig,
	logger *zap.Logger,
) *Server {
	return &Server{
		engine:  engine,
		store:   store,
		config:  cfg,
		logger:  logger,
		project: project,
	}
}

// Project returns the current index pair snapshot.
func (s *Server) Project() *indexer.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.project
}

// SetProject swaps in a freshly built index pair.
func (s *Server) SetProject(p *indexer.Project) {
	s.mu.Lock()
	s.project = p
	s.mu.Unlock()
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/rank", s.handleRank)
	r.Get("/api/v1/results/{bugID}", s.handleGetResults)
	r.Get("/api/v1/reports/{family}", s.handleGetReport)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops. A shutdown via
// Stop surfaces as http.ErrServerClosed.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.mu.Lock()
	s.server = srv
	s.mu.Unlock()
	s.logger.Info("Starting server", zap.String("addr", addr))
	return srv.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.RLock()
	srv := s.server
	s.mu.RUnlock()
	if srv != nil {
		return srv.Shutdown(ctx)
	}
	return nil
}
