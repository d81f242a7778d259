// Package server exposes the searcher registry as an HTTP JSON API: the
// embedding-host surface for callers that hold handles across requests.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/lexmatch/lexmatch/internal/registry"
	"github.com/lexmatch/lexmatch/internal/types"
)

// Handler holds the HTTP handlers for the lexmatch API.
type Handler struct {
	store   *registry.Store
	sets    *SetIndex
	logger  *slog.Logger
	metrics *Metrics
}

// NewHandler creates a Handler backed by the given store. sets and metrics
// may be nil when those surfaces are disabled.
func NewHandler(store *registry.Store, sets *SetIndex, metrics *Metrics, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{store: store, sets: sets, logger: logger, metrics: metrics}
}

// RegisterRoutes registers all API routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /searchers", h.handleCreate)
	mux.HandleFunc("POST /searchers/load", h.handleLoad)
	mux.HandleFunc("POST /searchers/{handle}/match", h.handleMatch)
	mux.HandleFunc("POST /searchers/{handle}/subst", h.handleSubst)
	mux.HandleFunc("GET /searchers/{handle}/record", h.handleSave)
	mux.HandleFunc("DELETE /searchers/{handle}", h.handleFree)

	mux.HandleFunc("GET /sets", h.handleListSets)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":    "healthy",
			"searchers": h.store.Len(),
		})
	})

	if h.metrics != nil {
		mux.Handle("GET /metrics", h.metrics.Handler())
	}
}

// WithRequestLog wraps next with request-id tagging and slog access
// logging.
func WithRequestLog(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		started := time.Now()
		next.ServeHTTP(w, r)
		logger.Info("request",
			"id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(started),
		)
	})
}

func (h *Handler) observe(op string, err error, started time.Time) {
	if h.metrics != nil {
		h.metrics.observe(op, err, started)
	}
}

func parseHandle(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("handle"), 10, 64)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	var req struct {
		Keywords []types.Keyword `json:"keywords"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.observe("create", err, started)
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Keywords) == 0 {
		h.observe("create", errors.New("no keywords"), started)
		writeError(w, http.StatusBadRequest, "at least one keyword is required")
		return
	}
	for i, k := range req.Keywords {
		if k.Pattern == "" {
			h.observe("create", errors.New("empty pattern"), started)
			writeError(w, http.StatusBadRequest, "keyword "+strconv.Itoa(i+1)+" has an empty pattern")
			return
		}
	}

	handle := h.store.Create(req.Keywords)
	h.observe("create", nil, started)
	writeJSON(w, http.StatusCreated, map[string]int64{"handle": handle})
}

func (h *Handler) handleMatch(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	handle, err := parseHandle(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid handle: "+r.PathValue("handle"))
		return
	}
	var req struct {
		Text string     `json:"text"`
		Mode types.Mode `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	matches, err := h.store.Match(handle, req.Text, req.Mode)
	h.observe("match", err, started)
	if err != nil {
		if errors.Is(err, registry.ErrInvalidHandle) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if matches == nil {
		matches = []types.Match{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"matches": matches})
}

func (h *Handler) handleSubst(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	handle, err := parseHandle(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid handle: "+r.PathValue("handle"))
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := h.store.Subst(handle, req.Text)
	h.observe("subst", err, started)
	if err != nil {
		if errors.Is(err, registry.ErrInvalidHandle) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": result})
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	handle, err := parseHandle(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid handle: "+r.PathValue("handle"))
		return
	}

	record, err := h.store.Save(handle)
	h.observe("save", err, started)
	if err != nil {
		if errors.Is(err, registry.ErrInvalidHandle) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"record": record})
}

func (h *Handler) handleLoad(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	var req struct {
		Record string `json:"record"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	handle, err := h.store.Load(req.Record)
	h.observe("load", err, started)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"handle": handle})
}

func (h *Handler) handleFree(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	handle, err := parseHandle(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid handle: "+r.PathValue("handle"))
		return
	}

	err = h.store.Free(handle)
	h.observe("free", err, started)
	if err != nil {
		if errors.Is(err, registry.ErrInvalidHandle) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "freed"})
}

func (h *Handler) handleListSets(w http.ResponseWriter, _ *http.Request) {
	if h.sets == nil {
		writeJSON(w, http.StatusOK, map[string]any{"sets": map[string]int64{}})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sets": h.sets.Snapshot()})
}
