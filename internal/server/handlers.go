package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lineagelab/idhist/pkg/buildinfo"
	"github.com/lineagelab/idhist/pkg/cache"
	apperrors "github.com/lineagelab/idhist/pkg/errors"
	"github.com/lineagelab/idhist/pkg/graphio"
	"github.com/lineagelab/idhist/pkg/lineage"
	"github.com/lineagelab/idhist/pkg/pipeline"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"version": buildinfo.Version,
		"commit":  buildinfo.Commit,
		"date":    buildinfo.Date,
	})
}

func (s *Server) handleListIDs(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, errorResponse{
			Error:     "no record store configured",
			RequestID: RequestID(r.Context()),
		})
		return
	}

	limit := int64(0)
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			s.writeError(w, r, apperrors.New(apperrors.ErrCodeInvalidInput, "invalid limit: %q", v))
			return
		}
		limit = n
	}

	ids, err := s.store.StableIDs(r.Context(), r.URL.Query().Get("prefix"), limit)
	if err != nil {
		s.writeError(w, r, apperrors.Wrap(apperrors.ErrCodeStore, err, "list stable ids"))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"ids": ids, "count": len(ids)})
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	t, err := s.loadTree(w, r)
	if err != nil || t == nil {
		return
	}
	s.writeJSON(w, http.StatusOK, graphio.FromTree(t))
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	consolidate := r.URL.Query().Get("consolidate") == "true"
	refresh := r.URL.Query().Get("refresh") == "true"

	t, err := s.loadTree(w, r)
	if err != nil || t == nil {
		return
	}

	// The memo key hashes the loaded tree, so a store whose events changed
	// never serves the previous layout.
	memoKey := layoutMemoKey(t, consolidate)
	if memoKey != "" && !refresh {
		if layout, ok := s.layouts.Get(memoKey); ok {
			s.writeJSON(w, http.StatusOK, layout)
			return
		}
	}

	if consolidate {
		t.Consolidate()
	}
	t.CalculateCoords()

	layout := graphio.FromLayout(t)
	if memoKey != "" {
		s.layouts.Add(memoKey, layout)
	}
	s.writeJSON(w, http.StatusOK, layout)
}

// layoutMemoKey derives the memo key from tree content. An empty key
// disables memoization for the request.
func layoutMemoKey(t *lineage.Tree, consolidate bool) string {
	data, err := graphio.MarshalTree(graphio.FromTree(t))
	if err != nil {
		return ""
	}
	return cache.Hash(data) + "?consolidate=" + strconv.FormatBool(consolidate)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := q.Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "render"))
		return
	}

	opts := pipeline.Options{
		Source:      "store",
		StableID:    chi.URLParam(r, "stableID"),
		Consolidate: q.Get("consolidate") == "true",
		Detailed:    q.Get("detailed") == "true",
		Formats:     []string{format},
		Logger:      s.logger,
	}
	if s.store == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, errorResponse{
			Error:     "no record store configured",
			RequestID: RequestID(r.Context()),
		})
		return
	}
	opts.Loader = storeLoader(s)

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

// handlePipeline runs the full pipeline on posted options. File inputs are
// rejected: the API only serves store-backed trees.
func (s *Server) handlePipeline(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		s.writeError(w, r, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "decode request"))
		return
	}
	if opts.Input != "" {
		s.writeError(w, r, apperrors.New(apperrors.ErrCodeInvalidInput, "file inputs are not accepted over the API"))
		return
	}
	if err := apperrors.ValidateStableID(opts.StableID); err != nil {
		s.writeError(w, r, err)
		return
	}
	if opts.Source == "" {
		opts.Source = "store"
	}
	if s.store == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, errorResponse{
			Error:     "no record store configured",
			RequestID: RequestID(r.Context()),
		})
		return
	}
	opts.Logger = s.logger
	opts.Loader = storeLoader(s)

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	artifacts := make(map[string]string, len(result.Artifacts))
	for format, data := range result.Artifacts {
		artifacts[format] = string(data)
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"tree_hash": result.TreeHash,
		"layout":    result.Layout,
		"artifacts": artifacts,
		"stats": map[string]any{
			"nodes":  result.Stats.NodeCount,
			"links":  result.Stats.LinkCount,
			"merged": result.Stats.Merged,
			"moves":  result.Stats.Moves,
		},
	})
}

// loadTree fetches the history tree for the request's stableID parameter.
// On failure the error response has already been written; callers just
// return. A nil tree with nil error means the store is missing.
func (s *Server) loadTree(w http.ResponseWriter, r *http.Request) (*lineage.Tree, error) {
	if s.store == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, errorResponse{
			Error:     "no record store configured",
			RequestID: RequestID(r.Context()),
		})
		return nil, nil
	}
	stableID := chi.URLParam(r, "stableID")
	if err := apperrors.ValidateStableID(stableID); err != nil {
		s.writeError(w, r, err)
		return nil, err
	}
	t, err := s.store.History(r.Context(), stableID)
	if err != nil {
		s.writeError(w, r, err)
		return nil, err
	}
	return t, nil
}

// storeLoader adapts the server's record store to the pipeline.
func storeLoader(s *Server) pipeline.Loader {
	return pipeline.LoaderFunc(func(ctx context.Context, opts pipeline.Options) (*lineage.Tree, error) {
		return s.store.History(ctx, opts.StableID)
	})
}

func contentType(format string) string {
	switch format {
	case pipeline.FormatSVG:
		return "image/svg+xml"
	case pipeline.FormatPNG:
		return "image/png"
	case pipeline.FormatDOT:
		return "text/vnd.graphviz"
	default:
		return "application/json"
	}
}
