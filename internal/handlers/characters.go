package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/storyloom/storyloom/internal/storage"
	"github.com/storyloom/storyloom/pkg/world"
)

// CharacterSummary is the list-view shape of a playable character.
type CharacterSummary struct {
	Name              string   `json:"name"`
	PersonalityTraits []string `json:"personality_traits,omitempty"`
	SkillsOrPowers    []string `json:"skills_or_powers,omitempty"`
	Items             []string `json:"items,omitempty"`
	Backstory         string   `json:"backstory,omitempty"`
}

// SelectCharacterRequest starts a new playthrough as the named character.
type SelectCharacterRequest struct {
	Character string `json:"character"`
	Language  string `json:"language,omitempty"`
}

// CharactersHandler lists playable characters and handles selection.
type CharactersHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewCharactersHandler(storage storage.Storage, logger *slog.Logger) *CharactersHandler {
	return &CharactersHandler{
		storage: storage,
		logger:  logger,
	}
}

// ServeHTTP routes GET /v1/characters and POST /v1/characters/select.
func (h *CharactersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.HasSuffix(strings.TrimSuffix(r.URL.Path, "/"), "/select") {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, h.logger, r, "POST")
			return
		}
		h.handleSelect(w, r)
		return
	}

	if r.Method != http.MethodGet {
		methodNotAllowed(w, h.logger, r, "GET")
		return
	}
	h.handleList(w, r)
}

func (h *CharactersHandler) handleList(w http.ResponseWriter, r *http.Request) {
	kg, err := h.storage.LoadKnowledgeGraph(r.Context())
	if err != nil {
		h.logger.Error("Failed to load knowledge graph", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load knowledge graph")
		return
	}
	if kg == nil {
		writeError(w, h.logger, http.StatusNotFound, "No knowledge graph exists. Upload a book first.")
		return
	}

	summaries := make([]CharacterSummary, 0, len(kg.Characters))
	for _, c := range kg.Characters {
		summaries = append(summaries, CharacterSummary{
			Name:              c.Name,
			PersonalityTraits: c.PersonalityTraits,
			SkillsOrPowers:    c.SkillsOrPowers,
			Items:             c.Items,
			Backstory:         c.Backstory,
		})
	}
	writeJSON(w, h.logger, http.StatusOK, summaries)
}

func (h *CharactersHandler) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req SelectCharacterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'character' field.")
		return
	}
	if req.Character == "" {
		writeError(w, h.logger, http.StatusBadRequest, "Character name is required.")
		return
	}

	kg, err := h.storage.LoadKnowledgeGraph(r.Context())
	if err != nil {
		h.logger.Error("Failed to load knowledge graph", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load knowledge graph")
		return
	}
	if kg == nil {
		writeError(w, h.logger, http.StatusConflict, "No knowledge graph exists. Upload a book first.")
		return
	}

	newWorld, err := world.NewDynamicWorld(kg, req.Character, req.Language)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	// Selecting a character abandons any prior playthrough.
	if err := h.storage.DeleteWorld(r.Context()); err != nil {
		h.logger.Error("Failed to clear previous world document", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to reset world document")
		return
	}
	if err := h.storage.SaveWorld(r.Context(), newWorld); err != nil {
		h.logger.Error("Failed to save world document", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save world document")
		return
	}

	h.logger.Info("Character selected",
		"character", newWorld.User.CharacterPlayed,
		"language", newWorld.User.Language)
	writeJSON(w, h.logger, http.StatusCreated, newWorld)
}
