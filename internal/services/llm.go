package services

import (
	"context"
)

// LLMService defines the interface for generating character replies. The
// prompt is fully composed by the caller (system instructions, windowed
// history and the current user message); implementations only transport it.
type LLMService interface {
	// InitModel verifies the backing model is reachable on startup.
	InitModel(ctx context.Context, modelName string) error

	// Complete sends the composed prompt and returns the raw model reply,
	// including any world-update blocks it may contain.
	Complete(ctx context.Context, prompt string) (string, error)
}
