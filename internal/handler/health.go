package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// timestampLayout is local time without a zone, microsecond precision.
const timestampLayout = "2006-01-02T15:04:05.000000"

// Pinger is satisfied by every repository.Store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

type HealthHandler struct {
	db     Pinger
	logger *slog.Logger
	now    func() time.Time
}

func NewHealthHandler(db Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger, now: time.Now}
}

// HandleHealth → GET /health
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		h.logger.Warn("health check failed", slog.String("error", err.Error()))
		writeJSON(w, h.logger, http.StatusInternalServerError, HealthResponse{
			Status:    "unhealthy",
			Database:  "disconnected",
			Error:     err.Error(),
			Timestamp: h.now().Format(timestampLayout),
		})
		return
	}

	writeJSON(w, h.logger, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Database:  "connected",
		Timestamp: h.now().Format(timestampLayout),
	})
}
