package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/storyloom/storyloom/internal/worker"
	"github.com/storyloom/storyloom/pkg/chat"
)

// ChatHandler handles one conversational turn per request.
type ChatHandler struct {
	processor *worker.TurnProcessor
	logger    *slog.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(processor *worker.TurnProcessor, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		processor: processor,
		logger:    logger,
	}
}

// ServeHTTP handles POST /v1/chat.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, h.logger, r, "POST")
		return
	}

	var request chat.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.logger.Warn("Invalid chat request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'message' field.")
		return
	}
	if err := request.Validate(); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.Info("Chat turn requested",
		"session_id", request.SessionID,
		"remote_addr", r.RemoteAddr)

	response, err := h.processor.ProcessTurn(r.Context(), request)
	if err != nil {
		switch {
		case errors.Is(err, worker.ErrSetupRequired):
			writeError(w, h.logger, http.StatusConflict, "No character selected. Run setup before chatting.")
		case strings.Contains(err.Error(), "not found"):
			writeError(w, h.logger, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("Turn processing failed", "error", err, "session_id", request.SessionID)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to generate response. Please try again.")
		}
		return
	}

	writeJSON(w, h.logger, http.StatusOK, response)
}
