// Package httpapi exposes the Query Service's HTTP surface: /health,
// /providers, /query, /chat, /docsearch.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ragforge-io/ragcore/internal/core/ports/driven"
	"github.com/ragforge-io/ragcore/internal/core/ports/driving"
)

// Server wires the driving pipelines and a couple of read-only driven ports
// needed for /health and /providers into an http.Handler.
type Server struct {
	mux *http.ServeMux

	query      driving.QueryPipeline
	chat       driving.ChatPipeline
	registry   driven.ProviderRegistryStore
	chunkStore driven.ChunkStore
	embedder   driven.Embedder
	config     driving.Configuration
	logger     *slog.Logger
}

// Config carries the dependencies a Server needs.
type Config struct {
	Query         driving.QueryPipeline
	Chat          driving.ChatPipeline
	Registry      driven.ProviderRegistryStore
	ChunkStore    driven.ChunkStore
	Embedder      driven.Embedder
	Configuration driving.Configuration
	Logger        *slog.Logger
}

// New builds a Server and registers its routes.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		mux:        http.NewServeMux(),
		query:      cfg.Query,
		chat:       cfg.Chat,
		registry:   cfg.Registry,
		chunkStore: cfg.ChunkStore,
		embedder:   cfg.Embedder,
		config:     cfg.Configuration,
		logger:     logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /providers", s.handleListProviders)
	s.mux.HandleFunc("POST /query", s.handleQuery)
	s.mux.HandleFunc("POST /chat", s.handleChat)
	s.mux.HandleFunc("POST /docsearch", s.handleDocSearch)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	lw := &loggingResponseWriter{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(lw, r)
	s.logger.Info("http request",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status", lw.status),
		slog.Duration("elapsed", time.Since(start)),
	)
}

// NewHTTPServer builds a *http.Server bound to addr, serving s.
func NewHTTPServer(addr string, s *Server) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Shutdown gracefully stops srv, honoring ctx's deadline.
func Shutdown(ctx context.Context, srv *http.Server) error {
	return srv.Shutdown(ctx)
}
