// Package handler exposes the search service over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/searcher/executor"
	apperrors "github.com/Adithya-Monish-Kumar-K/herbal-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/pkg/metrics"
)

// Rebuilder triggers a corpus rebuild. *indexer.Service satisfies it.
type Rebuilder interface {
	Rebuild(ctx context.Context) (*indexer.RebuildResult, error)
}

type Handler struct {
	executor  *executor.Executor
	cache     *cache.QueryCache
	rebuilder Rebuilder
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// New creates a Handler. queryCache and m may be nil.
func New(exec *executor.Executor, queryCache *cache.QueryCache, rebuilder Rebuilder, m *metrics.Metrics) *Handler {
	return &Handler{
		executor:  exec,
		cache:     queryCache,
		rebuilder: rebuilder,
		metrics:   m,
		logger:    logger.Component("search-handler"),
	}
}

// Register mounts every route on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/documents/{id}", h.Document)
	mux.HandleFunc("GET /api/v1/explain", h.Explain)
	mux.HandleFunc("GET /api/v1/features", h.Features)
	mux.HandleFunc("GET /api/v1/status", h.Status)
	mux.HandleFunc("POST /api/v1/admin/rebuild", h.Rebuild)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	limit, ok := h.parseLimit(w, r)
	if !ok {
		return
	}

	gen, err := h.executor.Generation()
	if err != nil {
		h.countQuery("no_index")
		h.writeAppError(w, err)
		return
	}
	ctx = logger.WithGeneration(ctx, gen.ID)
	log = logger.FromContext(ctx)
	plan := h.executor.Plan(query)
	result, cacheHit, err := h.cache.GetOrCompute(ctx, gen.ID, plan.Normalized, limit, func(ctx context.Context) (*executor.SearchResult, error) {
		return h.executor.Execute(ctx, plan, limit)
	})
	if err != nil {
		h.countQuery("error")
		log.Error("search execution failed", "query", query, "error", err)
		h.writeAppError(w, err)
		return
	}
	// result may be shared with concurrent callers; copy before echoing the
	// caller's own query string.
	out := *result
	out.Query = query

	latency := time.Since(start)
	if h.metrics != nil {
		cacheStatus := "miss"
		if cacheHit {
			cacheStatus = "hit"
		}
		h.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(latency.Seconds())
		h.metrics.SearchResultsCount.Observe(float64(len(out.Results)))
	}
	if out.TotalHits == 0 {
		h.countQuery("zero_result")
	} else {
		h.countQuery("hit")
	}
	log.Info("search completed",
		"query", query,
		"total_hits", out.TotalHits,
		"returned", len(out.Results),
		"cache_hit", cacheHit,
		"latency_ms", latency.Milliseconds(),
	)
	h.writeJSON(w, http.StatusOK, &out)
}

func (h *Handler) Document(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	detail, err := h.executor.Document(r.Context(), id, r.URL.Query().Get("q"))
	if err != nil {
		h.writeAppError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) Explain(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	limit, ok := h.parseLimit(w, r)
	if !ok {
		return
	}
	ex, err := h.executor.Explain(r.Context(), query, limit)
	if err != nil {
		h.writeAppError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, ex)
}

func (h *Handler) Features(w http.ResponseWriter, r *http.Request) {
	rep, err := h.executor.Features(r.Context())
	if err != nil {
		h.writeAppError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rep)
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	info, err := h.executor.Info()
	if err != nil {
		h.writeAppError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, info)
}

// Rebuild runs detached from the request context so a client disconnect does
// not abandon a half-finished build.
func (h *Handler) Rebuild(w http.ResponseWriter, r *http.Request) {
	if h.rebuilder == nil {
		h.writeError(w, http.StatusServiceUnavailable, "rebuild is not available on this instance")
		return
	}
	log := logger.FromContext(r.Context())
	res, err := h.rebuilder.Rebuild(context.WithoutCancel(r.Context()))
	if err != nil {
		log.Error("rebuild failed", "error", err)
		h.writeAppError(w, err)
		return
	}
	log.Info("rebuild completed", "generation", res.GenerationID, "documents", res.Documents)
	h.writeJSON(w, http.StatusOK, res)
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.cache.Stats())
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	deleted, err := h.cache.Invalidate(r.Context())
	if err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"status": "invalidated", "keys_deleted": deleted})
}

// parseLimit reads ?limit=. A missing value means the executor default; a
// value that is not a positive integer is rejected.
func (h *Handler) parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return h.executor.Limit(0), true
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 1 {
		h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return 0, false
	}
	return h.executor.Limit(parsed), true
}

func (h *Handler) countQuery(resultType string) {
	if h.metrics != nil {
		h.metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
	}
}

func (h *Handler) writeAppError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatusCode(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		msg = "internal error"
	}
	h.writeError(w, status, msg)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
