package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyloom/storyloom/pkg/chat"
	"github.com/storyloom/storyloom/pkg/world"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testGraph() *world.KnowledgeGraph {
	return &world.KnowledgeGraph{
		BookInfo: world.BookInfo{Title: "The Hollow Crown", Author: "A. Reyes"},
		Characters: []world.Character{
			{Name: "Mira", Items: []string{"locket"}},
		},
	}
}

func TestFileStorage_WorldRoundTrip(t *testing.T) {
	fs := NewFileStorage(t.TempDir(), testLogger())
	ctx := context.Background()

	loaded, err := fs.LoadWorld(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded, "missing world document should load as nil")

	w, err := world.NewDynamicWorld(testGraph(), "Mira", "English")
	require.NoError(t, err)
	require.NoError(t, fs.SaveWorld(ctx, w))
	assert.Equal(t, 1, w.Version)

	loaded, err = fs.LoadWorld(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "Mira", loaded.User.CharacterPlayed)
	assert.Equal(t, 1, loaded.Version)

	require.NoError(t, fs.DeleteWorld(ctx))
	loaded, err = fs.LoadWorld(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestFileStorage_SaveWorldVersionConflict(t *testing.T) {
	fs := NewFileStorage(t.TempDir(), testLogger())
	ctx := context.Background()

	w, err := world.NewDynamicWorld(testGraph(), "Mira", "English")
	require.NoError(t, err)
	require.NoError(t, fs.SaveWorld(ctx, w))

	// Two turns load the same version; the second save must lose.
	first, err := fs.LoadWorld(ctx)
	require.NoError(t, err)
	second, err := fs.LoadWorld(ctx)
	require.NoError(t, err)

	require.NoError(t, fs.SaveWorld(ctx, first))
	err = fs.SaveWorld(ctx, second)
	assert.ErrorIs(t, err, ErrVersionConflict)
}

func TestFileStorage_LoadKnowledgeGraphYAML(t *testing.T) {
	dir := t.TempDir()
	yamlDoc := `book_info:
  title: The Hollow Crown
  author: A. Reyes
characters:
  - name: Mira
    items:
      - locket
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, graphFileYAML), []byte(yamlDoc), 0o644))

	fs := NewFileStorage(dir, testLogger())
	kg, err := fs.LoadKnowledgeGraph(context.Background())
	require.NoError(t, err)
	require.NotNil(t, kg)
	assert.Equal(t, "The Hollow Crown", kg.BookInfo.Title)
	require.Len(t, kg.Characters, 1)
	assert.Equal(t, []string{"locket"}, kg.Characters[0].Items)
}

func TestFileStorage_LoadKnowledgeGraphMissing(t *testing.T) {
	fs := NewFileStorage(t.TempDir(), testLogger())
	kg, err := fs.LoadKnowledgeGraph(context.Background())
	require.NoError(t, err)
	assert.Nil(t, kg)
}

func TestFileStorage_HistoryUpsert(t *testing.T) {
	fs := NewFileStorage(t.TempDir(), testLogger())
	ctx := context.Background()

	records, err := fs.LoadHistory(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	id := uuid.New()
	rec := chat.SessionRecord{
		SessionID: id,
		Character: "Mira",
		Timestamp: time.Now().UTC(),
		Messages: []chat.ChatMessage{
			{Sender: chat.SenderUser, Content: "hello"},
		},
	}
	require.NoError(t, fs.UpsertSessionRecord(ctx, rec))

	rec.Messages = append(rec.Messages, chat.ChatMessage{
		Sender:    chat.SenderCharacter,
		Character: "Mira",
		Content:   "well met",
	})
	require.NoError(t, fs.UpsertSessionRecord(ctx, rec))

	other := chat.SessionRecord{SessionID: uuid.New(), Character: "Tomas"}
	require.NoError(t, fs.UpsertSessionRecord(ctx, other))

	records, err = fs.LoadHistory(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2, "same session id should replace, not append")
	assert.Equal(t, id, records[0].SessionID)
	assert.Len(t, records[0].Messages, 2)

	require.NoError(t, fs.DeleteHistory(ctx))
	records, err = fs.LoadHistory(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFileStorage_CorruptHistoryDegradesToEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, historyFile), []byte("{not json"), 0o644))

	fs := NewFileStorage(dir, testLogger())
	records, err := fs.LoadHistory(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}
