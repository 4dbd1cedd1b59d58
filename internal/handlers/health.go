package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/storyloom/storyloom/internal/storage"
)

type HealthResponse struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Service    string            `json:"service"`
	Components map[string]string `json:"components"`
}

type HealthHandler struct {
	storage  storage.Storage
	sessions storage.SessionStore
	logger   *slog.Logger
}

func NewHealthHandler(st storage.Storage, sessions storage.SessionStore, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		storage:  st,
		sessions: sessions,
		logger:   logger,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Health check requested",
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr)

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := make(map[string]string)
	overallStatus := "healthy"

	if err := h.storage.Ping(ctx); err != nil {
		h.logger.Warn("Storage health check failed", "error", err)
		components["storage"] = "unhealthy"
		overallStatus = "degraded"
	} else {
		components["storage"] = "healthy"
	}

	if err := h.sessions.Ping(ctx); err != nil {
		h.logger.Warn("Session store health check failed", "error", err)
		components["sessions"] = "unhealthy"
		overallStatus = "degraded"
	} else {
		components["sessions"] = "healthy"
	}

	statusCode := http.StatusOK
	if overallStatus != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, h.logger, statusCode, HealthResponse{
		Status:     overallStatus,
		Timestamp:  time.Now().UTC(),
		Service:    "storyloom",
		Components: components,
	})
}
