// Package server provides the HTTP API for idhist.
//
// The API exposes the load → layout → render pipeline over REST:
//
//	GET  /healthz                      liveness probe
//	GET  /version                      build information
//	GET  /v1/ids                       list stable identifiers in the record store
//	GET  /v1/trees/{stableID}          full history tree for an identifier
//	GET  /v1/trees/{stableID}/layout   computed layout (grid axes + coordinates)
//	GET  /v1/trees/{stableID}/render   rendered artifact (svg, png, dot, json)
//	POST /v1/layout                    run the pipeline on posted options
//
// Layout responses are memoized in a bounded LRU keyed by tree content, so
// repeated requests for an unchanged tree skip recomputation while changed
// store events always produce a fresh layout. Pass refresh=true to bypass
// the memo outright.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/lineagelab/idhist/pkg/graphio"
	"github.com/lineagelab/idhist/pkg/pipeline"
	"github.com/lineagelab/idhist/pkg/store"
)

// DefaultLayoutMemoSize bounds the in-process layout memo.
const DefaultLayoutMemoSize = 256

// Config holds server dependencies and settings.
type Config struct {
	Runner *pipeline.Runner
	Store  store.Store // optional; tree endpoints 503 without it
	Logger *log.Logger

	// LayoutMemoSize overrides DefaultLayoutMemoSize when positive.
	LayoutMemoSize int
}

// Server is the idhist HTTP API.
type Server struct {
	router  chi.Router
	runner  *pipeline.Runner
	store   store.Store
	logger  *log.Logger
	layouts *lru.Cache[string, graphio.Layout]
}

// New creates a server with its routes registered.
func New(cfg Config) (*Server, error) {
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	size := cfg.LayoutMemoSize
	if size <= 0 {
		size = DefaultLayoutMemoSize
	}
	layouts, err := lru.New[string, graphio.Layout](size)
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:  chi.NewRouter(),
		runner:  cfg.Runner,
		store:   cfg.Store,
		logger:  cfg.Logger,
		layouts: layouts,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.router.Use(requestID)
	s.router.Use(s.logRequests)
	s.router.Use(recoverer(s.logger))

	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/version", s.handleVersion)

	s.router.Route("/v1", func(r chi.Router) {
		r.Get("/ids", s.handleListIDs)
		r.Post("/layout", s.handlePipeline)
		r.Route("/trees/{stableID}", func(r chi.Router) {
			r.Get("/", s.handleTree)
			r.Get("/layout", s.handleLayout)
			r.Get("/render", s.handleRender)
		})
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// shutdownGrace bounds how long in-flight requests may drain on shutdown.
const shutdownGrace = 5 * time.Second

// ListenAndServe runs the server on addr until the listener fails or ctx is
// cancelled. On cancellation in-flight requests get shutdownGrace to finish
// before the listener closes; a clean shutdown returns nil.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down", "grace", shutdownGrace)
		drainCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(drainCtx); err != nil {
			return err
		}
		<-errCh // http.ErrServerClosed
		return nil
	case err := <-errCh:
		return err
	}
}
