// Package http serves the read-only catalog endpoints.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/louisbranch/cardclash/internal/platform/logging"
	"github.com/louisbranch/cardclash/internal/services/catalog/storage"
)

// Reader is the part of the catalog store the endpoints need.
type Reader interface {
	ListActive(ctx context.Context) ([]storage.CatalogEntry, error)
	Get(ctx context.Context, id string) (storage.CatalogEntry, error)
}

type entryResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Kind        string `json:"kind"`
	PriceCents  int64  `json:"price_cents"`
	Currency    string `json:"currency"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type listResponse struct {
	Entries []entryResponse `json:"entries"`
}

// CatalogHandler serves GET /api/catalog and GET /api/catalog/{id}.
type CatalogHandler struct {
	store  Reader
	logger *zap.Logger
}

// NewCatalogHandler builds catalog handlers over store.
func NewCatalogHandler(store Reader, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{store: store, logger: logging.OrNop(logger)}
}

// List returns the active entries ordered by name.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	entries, err := h.store.ListActive(r.Context())
	if err != nil {
		h.logger.Error("list catalog", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		return
	}
	resp := listResponse{Entries: make([]entryResponse, 0, len(entries))}
	for _, entry := range entries {
		resp.Entries = append(resp.Entries, toEntryResponse(entry))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get returns one active entry. Inactive entries are reported as missing.
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	id := r.PathValue("id")
	entry, err := h.store.Get(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && !entry.Active) {
		writeError(w, http.StatusNotFound, codeNotFound, "catalog entry not found")
		return
	}
	if err != nil {
		h.logger.Error("get catalog entry", zap.String("entry_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, toEntryResponse(entry))
}

func toEntryResponse(entry storage.CatalogEntry) entryResponse {
	return entryResponse{
		ID:          entry.ID,
		Name:        entry.Name,
		Description: entry.Description,
		Kind:        entry.Kind,
		PriceCents:  entry.PriceCents,
		Currency:    entry.Currency,
		CreatedAt:   entry.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   entry.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// HealthHandler reports basic liveness for the service.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// NotFoundHandler returns a JSON 404 response for unknown routes.
func NotFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "not found")
	})
}

// NewRouter mounts the catalog routes, the health check and request logging.
func NewRouter(store Reader, logger *zap.Logger) http.Handler {
	catalog := NewCatalogHandler(store, logger)
	mux := http.NewServeMux()
	mux.HandleFunc("/health", HealthHandler)
	mux.HandleFunc("/api/catalog", catalog.List)
	mux.HandleFunc("/api/catalog/{id}", catalog.Get)
	mux.Handle("/", NotFoundHandler())
	return RequestLogger(mux, logger)
}
