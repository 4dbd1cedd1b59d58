package worker

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyloom/storyloom/internal/services"
	"github.com/storyloom/storyloom/internal/storage"
	"github.com/storyloom/storyloom/pkg/chat"
	"github.com/storyloom/storyloom/pkg/world"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testGraph() *world.KnowledgeGraph {
	return &world.KnowledgeGraph{
		BookInfo: world.BookInfo{Title: "The Hollow Crown"},
		Characters: []world.Character{
			{Name: "Mira", Items: []string{"locket"}, SkillsOrPowers: []string{"navigation"}},
			{Name: "Tomas"},
		},
	}
}

func newTestProcessor(t *testing.T, analyze bool) (*TurnProcessor, *storage.MockStorage, *storage.MemorySessionStore, *services.MockLLMService) {
	t.Helper()

	st := storage.NewMockStorage()
	w, err := world.NewDynamicWorld(testGraph(), "Mira", "English")
	require.NoError(t, err)
	require.NoError(t, st.SaveWorld(context.Background(), w))

	sessions := storage.NewMemorySessionStore()
	llm := services.NewMockLLMService()
	proc := NewTurnProcessor(st, sessions, llm, analyze, testLogger())
	proc.WithClock(func() time.Time {
		return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	})
	return proc, st, sessions, llm
}

func TestProcessTurn_SetupRequired(t *testing.T) {
	st := storage.NewMockStorage()
	proc := NewTurnProcessor(st, storage.NewMemorySessionStore(), services.NewMockLLMService(), false, testLogger())

	_, err := proc.ProcessTurn(context.Background(), chat.ChatRequest{Message: "hello"})
	assert.ErrorIs(t, err, ErrSetupRequired)
}

func TestProcessTurn_AppliesWorldUpdate(t *testing.T) {
	proc, st, sessions, llm := newTestProcessor(t, false)
	llm.QueueResponse("I take the rope from the chest. [WORLD_UPDATE]{\"update_type\": \"item_acquired\", \"character\": \"Mira\", \"item\": \"rope\"}[/WORLD_UPDATE]")

	resp, err := proc.ProcessTurn(context.Background(), chat.ChatRequest{Message: "Grab the rope"})
	require.NoError(t, err)

	assert.Equal(t, "I take the rope from the chest.", resp.Response)
	assert.True(t, resp.WorldUpdated)
	assert.Equal(t, "Item Acquired", resp.WorldUpdate)
	assert.NotEqual(t, uuid.Nil, resp.SessionID)

	saved, err := st.LoadWorld(context.Background())
	require.NoError(t, err)
	mira := saved.FindCharacter("Mira")
	require.NotNil(t, mira)
	assert.True(t, mira.HasItem("rope"))
	assert.Equal(t, 2, saved.Version, "save should bump the document version")

	msgs, err := sessions.Messages(context.Background(), resp.SessionID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, chat.SenderUser, msgs[0].Sender)
	assert.Equal(t, "Grab the rope", msgs[0].Content)
	assert.Equal(t, "Mira", msgs[1].Character)
	assert.Equal(t, "I take the rope from the chest.", msgs[1].Content)

	records, err := st.LoadHistory(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, resp.SessionID, records[0].SessionID)
	assert.Len(t, records[0].Messages, 2)
}

func TestProcessTurn_MalformedUpdateIsSoftFailure(t *testing.T) {
	proc, st, _, llm := newTestProcessor(t, false)
	llm.QueueResponse("Something shifts. [WORLD_UPDATE]{not valid json[/WORLD_UPDATE]")

	resp, err := proc.ProcessTurn(context.Background(), chat.ChatRequest{Message: "look around"})
	require.NoError(t, err, "a malformed update block must not fail the turn")

	assert.Equal(t, "Something shifts.", resp.Response)
	assert.False(t, resp.WorldUpdated)
	assert.Empty(t, resp.WorldUpdate)

	saved, err := st.LoadWorld(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, saved.Version, "no update means no save")
}

func TestProcessTurn_PlainReplyDoesNotSave(t *testing.T) {
	proc, st, _, llm := newTestProcessor(t, false)
	llm.QueueResponse("The sea was calm that morning.")

	resp, err := proc.ProcessTurn(context.Background(), chat.ChatRequest{Message: "Tell me about the sea"})
	require.NoError(t, err)
	assert.False(t, resp.WorldUpdated)

	saved, err := st.LoadWorld(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, saved.Version)
}

func TestProcessTurn_AnalysisModeAlwaysPersists(t *testing.T) {
	proc, st, _, llm := newTestProcessor(t, true)
	llm.QueueResponse("You stand your ground.")

	resp, err := proc.ProcessTurn(context.Background(), chat.ChatRequest{Message: "I fight the guards"})
	require.NoError(t, err)
	assert.True(t, resp.WorldUpdated)
	assert.Empty(t, resp.WorldUpdate, "action analysis is not a directive")

	saved, err := st.LoadWorld(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, saved.Version)

	events := saved.Graph.Storyline.MainEvents
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.True(t, last.UserGenerated)
	assert.Equal(t, "User action: I fight the guards", last.Description)

	require.Len(t, saved.AlternativeEndings, 1)
}

func TestProcessTurn_LLMFailureLeavesNoHistory(t *testing.T) {
	proc, _, sessions, llm := newTestProcessor(t, false)
	llm.SetError(errors.New("upstream timeout"))

	sessionID := uuid.New()
	_, err := proc.ProcessTurn(context.Background(), chat.ChatRequest{SessionID: sessionID, Message: "hello"})
	require.Error(t, err)

	msgs, err := sessions.Messages(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Empty(t, msgs, "failed turns must not pollute history")
}

func TestProcessTurn_UnknownCharacter(t *testing.T) {
	proc, _, _, llm := newTestProcessor(t, false)
	llm.QueueResponse("unused")

	_, err := proc.ProcessTurn(context.Background(), chat.ChatRequest{Character: "Nobody", Message: "hello"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestProcessTurn_SessionContinuity(t *testing.T) {
	proc, _, sessions, llm := newTestProcessor(t, false)
	llm.QueueResponse("First reply.")
	llm.QueueResponse("Second reply.")

	first, err := proc.ProcessTurn(context.Background(), chat.ChatRequest{Message: "one"})
	require.NoError(t, err)

	second, err := proc.ProcessTurn(context.Background(), chat.ChatRequest{SessionID: first.SessionID, Message: "two"})
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, second.SessionID)

	msgs, err := sessions.Messages(context.Background(), first.SessionID)
	require.NoError(t, err)
	assert.Len(t, msgs, 4)

	// The second prompt should carry the first exchange as history.
	require.Len(t, llm.Prompts, 2)
	assert.Contains(t, llm.Prompts[1], "First reply.")
	assert.Contains(t, llm.Prompts[1], "User: one")
}
