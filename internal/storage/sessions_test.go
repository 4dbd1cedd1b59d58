package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyloom/storyloom/pkg/chat"
)

func setupTestRedis(t *testing.T) (*RedisSessionStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	store := NewRedisSessionStore(mr.Addr(), testLogger())
	return store, mr
}

func TestRedisSessionStore_AppendAndMessages(t *testing.T) {
	store, mr := setupTestRedis(t)
	defer mr.Close()
	defer store.Close()

	ctx := context.Background()
	sessionID := uuid.New()

	require.NoError(t, store.Ping(ctx))

	msgs, err := store.Messages(ctx, sessionID)
	require.NoError(t, err)
	assert.Empty(t, msgs, "fresh session should have no messages")

	now := time.Now().UTC()
	require.NoError(t, store.Append(ctx, sessionID,
		chat.ChatMessage{Sender: chat.SenderUser, Content: "What happened at the harbor?", Timestamp: now},
		chat.ChatMessage{Sender: chat.SenderCharacter, Character: "Mira", Content: "More than I can say here.", Timestamp: now},
	))
	require.NoError(t, store.Append(ctx, sessionID,
		chat.ChatMessage{Sender: chat.SenderUser, Content: "Try me.", Timestamp: now},
	))

	msgs, err = store.Messages(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, chat.SenderUser, msgs[0].Sender)
	assert.Equal(t, "Mira", msgs[1].Character)
	assert.Equal(t, "Try me.", msgs[2].Content)
}

func TestRedisSessionStore_SessionsAreIsolated(t *testing.T) {
	store, mr := setupTestRedis(t)
	defer mr.Close()
	defer store.Close()

	ctx := context.Background()
	a := uuid.New()
	b := uuid.New()

	require.NoError(t, store.Append(ctx, a, chat.ChatMessage{Sender: chat.SenderUser, Content: "first"}))
	require.NoError(t, store.Append(ctx, b, chat.ChatMessage{Sender: chat.SenderUser, Content: "second"}))

	msgs, err := store.Messages(ctx, a)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "first", msgs[0].Content)
}

func TestRedisSessionStore_Clear(t *testing.T) {
	store, mr := setupTestRedis(t)
	defer mr.Close()
	defer store.Close()

	ctx := context.Background()
	sessionID := uuid.New()

	require.NoError(t, store.Append(ctx, sessionID, chat.ChatMessage{Sender: chat.SenderUser, Content: "hello"}))
	require.NoError(t, store.Clear(ctx, sessionID))

	msgs, err := store.Messages(ctx, sessionID)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestRedisSessionStore_SkipsUnreadableEntries(t *testing.T) {
	store, mr := setupTestRedis(t)
	defer mr.Close()
	defer store.Close()

	ctx := context.Background()
	sessionID := uuid.New()

	require.NoError(t, store.Append(ctx, sessionID, chat.ChatMessage{Sender: chat.SenderUser, Content: "kept"}))
	_, err := mr.RPush(sessionKey(sessionID), "{broken")
	require.NoError(t, err)

	msgs, err := store.Messages(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "kept", msgs[0].Content)
}

func TestMemorySessionStore(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()
	sessionID := uuid.New()

	require.NoError(t, store.Ping(ctx))
	require.NoError(t, store.Append(ctx, sessionID,
		chat.ChatMessage{Sender: chat.SenderUser, Content: "hello"},
	))

	msgs, err := store.Messages(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	// Mutating the returned slice must not affect the store.
	msgs[0].Content = "changed"
	again, err := store.Messages(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, "hello", again[0].Content)

	require.NoError(t, store.Clear(ctx, sessionID))
	msgs, err = store.Messages(ctx, sessionID)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
