package chat

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	// SenderUser marks a message typed by the player.
	SenderUser = "user"
	// SenderCharacter marks a message spoken by a story character.
	SenderCharacter = "character"
)

// PromptHistoryLimit bounds how many history messages are replayed into a
// prompt. The window is applied after filtering to the active character's
// lines plus all user lines.
const PromptHistoryLimit = 10

// ChatMessage is a single message in a conversation. Character messages
// carry the character's name so multi-character histories can be filtered
// per character.
type ChatMessage struct {
	Sender    string    `json:"sender"`
	Character string    `json:"character,omitempty"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatRequest is a chat turn submitted by the player.
type ChatRequest struct {
	SessionID uuid.UUID `json:"session_id,omitempty"`
	Character string    `json:"character"`
	Message   string    `json:"message"`
}

// Validate checks the request. Character is optional; an empty value means
// the currently played character.
func (cr *ChatRequest) Validate() error {
	if cr.Message == "" {
		return fmt.Errorf("message cannot be empty")
	}
	return nil
}

// ChatResponse is the engine's reply to a chat turn. WorldUpdate carries a
// display label for the applied directive ("Item Acquired") and is empty
// when no directive was persisted this turn.
type ChatResponse struct {
	SessionID    uuid.UUID `json:"session_id,omitempty"`
	Response     string    `json:"response,omitempty"`
	WorldUpdated bool      `json:"world_updated"`
	WorldUpdate  string    `json:"world_update,omitempty"`
	Error        string    `json:"error,omitempty"`
}

// SessionRecord is one archived conversation thread in the history file.
type SessionRecord struct {
	SessionID uuid.UUID     `json:"session_id,omitempty"`
	Character string        `json:"character"`
	Timestamp time.Time     `json:"timestamp"`
	Messages  []ChatMessage `json:"messages"`
}

// WindowForCharacter filters history to the given character's lines plus
// all user lines, then keeps the most recent limit messages of that
// filtered set. This bounds prompt length while preserving the illusion of
// continuous memory.
func WindowForCharacter(history []ChatMessage, character string, limit int) []ChatMessage {
	filtered := make([]ChatMessage, 0, len(history))
	for _, msg := range history {
		if msg.Sender == SenderUser || msg.Character == character {
			filtered = append(filtered, msg)
		}
	}
	if limit > 0 && len(filtered) > limit {
		filtered = filtered[len(filtered)-limit:]
	}
	return filtered
}
