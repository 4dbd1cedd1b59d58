package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/storyloom/storyloom/internal/services"
	"github.com/storyloom/storyloom/internal/storage"
	"github.com/storyloom/storyloom/pkg/chat"
	"github.com/storyloom/storyloom/pkg/prompts"
	"github.com/storyloom/storyloom/pkg/world"
)

// ErrSetupRequired is returned when no character has been selected yet, so
// there is no world document to play against.
var ErrSetupRequired = errors.New("no character selected; run setup first")

const llmTimeout = 60 * time.Second

// TurnProcessor runs one conversational turn: prompt composition, the LLM
// call, world-update extraction and application, persistence, and history
// bookkeeping. It is used by both the HTTP handler and the console client.
type TurnProcessor struct {
	storage    storage.Storage
	sessions   storage.SessionStore
	llmService services.LLMService
	logger     *slog.Logger

	// analyzeActions enables the keyword consequence pass on top of the
	// model-driven world updates.
	analyzeActions bool
	now            func() time.Time
}

// NewTurnProcessor creates a new turn processor.
func NewTurnProcessor(
	st storage.Storage,
	sessions storage.SessionStore,
	llmService services.LLMService,
	analyzeActions bool,
	logger *slog.Logger,
) *TurnProcessor {
	return &TurnProcessor{
		storage:        st,
		sessions:       sessions,
		llmService:     llmService,
		logger:         logger,
		analyzeActions: analyzeActions,
		now:            time.Now,
	}
}

// WithClock overrides the processor clock (used in tests).
func (p *TurnProcessor) WithClock(now func() time.Time) *TurnProcessor {
	p.now = now
	return p
}

// ProcessTurn runs a single turn for the request's session. The returned
// response carries the cleaned reply text and whether the world document
// changed.
func (p *TurnProcessor) ProcessTurn(ctx context.Context, req chat.ChatRequest) (*chat.ChatResponse, error) {
	w, err := p.storage.LoadWorld(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load world document: %w", err)
	}
	if w == nil {
		return nil, ErrSetupRequired
	}

	character := req.Character
	if character == "" {
		character = w.User.CharacterPlayed
	}
	if w.FindCharacter(character) == nil {
		return nil, fmt.Errorf("character %q not found in world", character)
	}

	sessionID := req.SessionID
	if sessionID == uuid.Nil {
		sessionID = uuid.New()
	}

	history, err := p.sessions.Messages(ctx, sessionID)
	if err != nil {
		// A dead session store costs context, not the turn.
		p.logger.Error("Failed to load session history", "session_id", sessionID, "error", err)
		history = nil
	}

	prompt, err := prompts.New().
		WithWorld(w).
		WithCharacter(character).
		WithUserMessage(req.Message).
		WithHistory(history).
		WithHistoryLimit(chat.PromptHistoryLimit).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}

	llmCtx, cancel := context.WithTimeout(ctx, llmTimeout)
	defer cancel()

	p.logger.Debug("Sending turn to LLM", "session_id", sessionID, "character", character)
	raw, err := p.llmService.Complete(llmCtx, prompt)
	if err != nil {
		return nil, fmt.Errorf("LLM completion failed: %w", err)
	}

	update, cleaned := world.ExtractUpdate(raw)

	updater := world.NewUpdater(w, p.logger).WithClock(p.now)
	changed := false
	if update != nil {
		changed = updater.Apply(update)
	}
	if p.analyzeActions {
		consequences := world.AnalyzeResponse(req.Message)
		updater.ApplyConsequences(character, req.Message, consequences)
		changed = true
	}

	if changed {
		if err := p.storage.SaveWorld(ctx, w); err != nil {
			if errors.Is(err, storage.ErrVersionConflict) {
				p.logger.Warn("World changed under this turn; discarding its updates", "session_id", sessionID)
			} else {
				return nil, fmt.Errorf("failed to save world document: %w", err)
			}
			changed = false
		}
	}

	updateLabel := ""
	if changed && update != nil && update.Known() {
		updateLabel = update.Type.Label()
	}

	turnAt := p.now().UTC()
	userMsg := chat.ChatMessage{
		Sender:    chat.SenderUser,
		Content:   req.Message,
		Timestamp: turnAt,
	}
	characterMsg := chat.ChatMessage{
		Sender:    chat.SenderCharacter,
		Character: character,
		Content:   cleaned,
		Timestamp: turnAt,
	}
	if err := p.sessions.Append(ctx, sessionID, userMsg, characterMsg); err != nil {
		p.logger.Error("Failed to append session history", "session_id", sessionID, "error", err)
	}

	p.archiveSession(ctx, sessionID, character, turnAt)

	return &chat.ChatResponse{
		SessionID:    sessionID,
		Response:     cleaned,
		WorldUpdated: changed,
		WorldUpdate:  updateLabel,
	}, nil
}

// archiveSession rewrites the durable history record for this session from
// the live session store. Archive failures are logged, never fatal.
func (p *TurnProcessor) archiveSession(ctx context.Context, sessionID uuid.UUID, character string, at time.Time) {
	msgs, err := p.sessions.Messages(ctx, sessionID)
	if err != nil {
		p.logger.Error("Failed to read session for archive", "session_id", sessionID, "error", err)
		return
	}
	rec := chat.SessionRecord{
		SessionID: sessionID,
		Character: character,
		Timestamp: at,
		Messages:  msgs,
	}
	if err := p.storage.UpsertSessionRecord(ctx, rec); err != nil {
		p.logger.Error("Failed to archive session record", "session_id", sessionID, "error", err)
	}
}
