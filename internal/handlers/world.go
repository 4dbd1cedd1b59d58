package handlers

import (
	"log/slog"
	"net/http"

	"github.com/storyloom/storyloom/internal/storage"
)

// WorldHandler exposes the dynamic world document.
type WorldHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewWorldHandler(storage storage.Storage, logger *slog.Logger) *WorldHandler {
	return &WorldHandler{
		storage: storage,
		logger:  logger,
	}
}

// ServeHTTP handles GET /v1/world (read) and DELETE /v1/world (reset).
func (h *WorldHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r)
	case http.MethodDelete:
		h.handleDelete(w, r)
	default:
		methodNotAllowed(w, h.logger, r, "GET, DELETE")
	}
}

func (h *WorldHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	world, err := h.storage.LoadWorld(r.Context())
	if err != nil {
		h.logger.Error("Failed to load world document", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load world document")
		return
	}
	if world == nil {
		writeError(w, h.logger, http.StatusNotFound, "No world document exists. Select a character first.")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, world)
}

func (h *WorldHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.DeleteWorld(r.Context()); err != nil {
		h.logger.Error("Failed to delete world document", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete world document")
		return
	}
	h.logger.Info("World document deleted", "remote_addr", r.RemoteAddr)
	w.WriteHeader(http.StatusNoContent)
}
