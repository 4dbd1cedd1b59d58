package handlers

import (
	"log/slog"
	"net/http"

	"github.com/storyloom/storyloom/internal/storage"
)

// HistoryHandler exposes the durable chat-history archive.
type HistoryHandler struct {
	storage  storage.Storage
	sessions storage.SessionStore
	logger   *slog.Logger
}

func NewHistoryHandler(storage storage.Storage, sessions storage.SessionStore, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{
		storage:  storage,
		sessions: sessions,
		logger:   logger,
	}
}

// ServeHTTP handles GET /v1/history (list sessions) and DELETE /v1/history
// (clear the archive and the live session lists it references).
func (h *HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		records, err := h.storage.LoadHistory(r.Context())
		if err != nil {
			h.logger.Error("Failed to load history", "error", err)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to load chat history")
			return
		}
		writeJSON(w, h.logger, http.StatusOK, records)

	case http.MethodDelete:
		// Drop the live session lists first so a concurrent turn cannot
		// re-archive a conversation the caller just erased.
		records, err := h.storage.LoadHistory(r.Context())
		if err != nil {
			h.logger.Error("Failed to load history before delete", "error", err)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete chat history")
			return
		}
		for _, record := range records {
			if err := h.sessions.Clear(r.Context(), record.SessionID); err != nil {
				h.logger.Error("Failed to clear session", "session_id", record.SessionID, "error", err)
				writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete chat history")
				return
			}
		}
		if err := h.storage.DeleteHistory(r.Context()); err != nil {
			h.logger.Error("Failed to delete history", "error", err)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete chat history")
			return
		}
		h.logger.Info("Chat history deleted", "sessions", len(records), "remote_addr", r.RemoteAddr)
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, h.logger, r, "GET, DELETE")
	}
}
