package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger is the slice of database/sql used by the health check.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports store reachability.
type HealthHandler struct {
	db      Pinger
	timeout time.Duration
}

// NewHealthHandler creates a HealthHandler checking the given database.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{
		db:      db,
		timeout: 2 * time.Second,
	}
}

// Check handles GET /health. A reachable store answers 200, anything else
// degrades to 503 with the failure reason.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		slog.Warn("health check failed", "error", err)
		RespondWithJSON(w, r, http.StatusServiceUnavailable, map[string]string{
			"Database": err.Error(),
		})
		return
	}

	RespondWithJSON(w, r, http.StatusOK, map[string]string{
		"Database": "OK",
	})
}
