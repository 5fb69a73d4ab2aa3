package handlers

import (
	"context"
	"net/http"
	"time"

	"familyregistry/internal/storage"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler serves stored uploads and the health check
type SystemHandler struct {
	uploads storage.Uploader
	store   Pinger
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(uploads storage.Uploader, store Pinger) *SystemHandler {
	return &SystemHandler{uploads: uploads, store: store}
}

// ServeUpload returns a previously stored file
func (h *SystemHandler) ServeUpload(w http.ResponseWriter, r *http.Request) {
	h.uploads.Serve(w, r, r.PathValue("name"))
}

// Health reports whether the record store answers
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		respondWithError(w, http.StatusServiceUnavailable, "unavailable", "Health check failed", err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}
