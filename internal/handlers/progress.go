package handlers

import (
	"log/slog"
	"net/http"

	"github.com/storyloom/storyloom/internal/storage"
	"github.com/storyloom/storyloom/pkg/world"
)

// ProgressReport combines story totals with the played character's status.
type ProgressReport struct {
	Character string         `json:"character"`
	Progress  world.Progress `json:"progress"`
	Status    string         `json:"status"`
}

// ProgressHandler reports story progress and alternative-ending previews.
type ProgressHandler struct {
	storage storage.Storage
	logger  *slog.Logger

	// endingsOnly switches the handler to the endings-preview view.
	endingsOnly bool
}

func NewProgressHandler(storage storage.Storage, logger *slog.Logger) *ProgressHandler {
	return &ProgressHandler{storage: storage, logger: logger}
}

// NewEndingsHandler serves the alternative-ending previews.
func NewEndingsHandler(storage storage.Storage, logger *slog.Logger) *ProgressHandler {
	return &ProgressHandler{storage: storage, logger: logger, endingsOnly: true}
}

// ServeHTTP handles GET /v1/progress and GET /v1/endings.
func (h *ProgressHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, h.logger, r, "GET")
		return
	}

	doc, err := h.storage.LoadWorld(r.Context())
	if err != nil {
		h.logger.Error("Failed to load world document", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load world document")
		return
	}
	if doc == nil {
		writeError(w, h.logger, http.StatusNotFound, "No world document exists. Select a character first.")
		return
	}

	if h.endingsOnly {
		writeJSON(w, h.logger, http.StatusOK, doc.EndingPreviews(doc.User.CharacterPlayed))
		return
	}

	report := ProgressReport{
		Character: doc.User.CharacterPlayed,
		Progress:  doc.Progress(),
		Status:    doc.CharacterStatus(doc.User.CharacterPlayed),
	}
	writeJSON(w, h.logger, http.StatusOK, report)
}
