package handlers

import (
	"log/slog"
	"net/http"

	"github.com/storyloom/storyloom/internal/storage"
)

// SetupStatus reports what remains before play can begin.
type SetupStatus struct {
	KnowledgeGraphExists bool   `json:"knowledge_graph_exists"`
	CharacterSelected    bool   `json:"character_selected"`
	SelectedCharacter    string `json:"selected_character,omitempty"`
	BookTitle            string `json:"book_title,omitempty"`
}

// SetupHandler reports setup progress for clients.
type SetupHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewSetupHandler(storage storage.Storage, logger *slog.Logger) *SetupHandler {
	return &SetupHandler{
		storage: storage,
		logger:  logger,
	}
}

// ServeHTTP handles GET /v1/setup.
func (h *SetupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, h.logger, r, "GET")
		return
	}

	status := SetupStatus{}

	kg, err := h.storage.LoadKnowledgeGraph(r.Context())
	if err != nil {
		h.logger.Error("Failed to load knowledge graph", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load knowledge graph")
		return
	}
	if kg != nil {
		status.KnowledgeGraphExists = true
		status.BookTitle = kg.BookInfo.Title
	}

	world, err := h.storage.LoadWorld(r.Context())
	if err != nil {
		h.logger.Error("Failed to load world document", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load world document")
		return
	}
	if world != nil {
		status.CharacterSelected = true
		status.SelectedCharacter = world.User.CharacterPlayed
	}

	writeJSON(w, h.logger, http.StatusOK, status)
}
