package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dsjohal14/songstack/internal/scope/db"
	"github.com/rs/zerolog"
)

// Defaults for HandlerOption values
const (
	DefaultStoreTimeout = 5 * time.Second
	maxBodyBytes        = 1 << 20
)

// Handler contains HTTP handlers for the API
type Handler struct {
	store          db.Storage
	logger         zerolog.Logger
	conflictStatus int
	storeTimeout   time.Duration
}

// HandlerOption configures a Handler
type HandlerOption func(*Handler)

// WithConflictStatus sets the status returned for a duplicate create (302 or 409)
func WithConflictStatus(status int) HandlerOption {
	return func(h *Handler) {
		h.conflictStatus = status
	}
}

// WithStoreTimeout bounds each store call
func WithStoreTimeout(d time.Duration) HandlerOption {
	return func(h *Handler) {
		if d > 0 {
			h.storeTimeout = d
		}
	}
}

// NewHandler creates a new HTTP handler
func NewHandler(store db.Storage, logger zerolog.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{
		store:          store,
		logger:         logger,
		conflictStatus: http.StatusFound,
		storeTimeout:   DefaultStoreTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// storeContext derives the per-call store deadline from the request
func (h *Handler) storeContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.storeTimeout)
}

// Helper functions used across all handlers

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeMessage writes a {"message": ...} response
func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, MessageResponse{Message: message})
}

// writeError writes an error response with the given status code
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
