package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/storyloom/storyloom/pkg/chat"
	"github.com/storyloom/storyloom/pkg/world"
)

// ErrVersionConflict is returned by SaveWorld when the document on disk has
// moved past the version the caller loaded. The caller should reload and
// reapply rather than clobber the newer state.
var ErrVersionConflict = errors.New("world document version conflict")

// Storage defines persistence for the three world documents: the static
// knowledge graph (read-only), the dynamic world document, and the chat
// history archive. Every save is a whole-document rewrite.
type Storage interface {
	Ping(ctx context.Context) error
	Close() error

	// LoadKnowledgeGraph reads the static, book-derived graph.
	// Returns nil (no error) when no graph has been generated yet.
	LoadKnowledgeGraph(ctx context.Context) (*world.KnowledgeGraph, error)

	// LoadWorld reads the dynamic world document.
	// Returns nil (no error) when no character has been selected yet.
	LoadWorld(ctx context.Context) (*world.DynamicWorld, error)

	// SaveWorld rewrites the dynamic world document, incrementing its
	// version. Returns ErrVersionConflict when the stored document is
	// newer than the one being saved.
	SaveWorld(ctx context.Context, w *world.DynamicWorld) error

	// DeleteWorld removes the dynamic world document.
	DeleteWorld(ctx context.Context) error

	// LoadHistory reads the archived session records.
	LoadHistory(ctx context.Context) ([]chat.SessionRecord, error)

	// UpsertSessionRecord replaces the record with the same session id,
	// or appends a new one, and rewrites the history file.
	UpsertSessionRecord(ctx context.Context, rec chat.SessionRecord) error

	// DeleteHistory removes the history file.
	DeleteHistory(ctx context.Context) error
}

// SessionStore keeps live per-session conversation history. It is the fast
// half of the dual chat-history model; the Storage history file is the
// durable half.
type SessionStore interface {
	Ping(ctx context.Context) error
	Close() error

	// Append adds messages to the end of a session's history.
	Append(ctx context.Context, sessionID uuid.UUID, msgs ...chat.ChatMessage) error

	// Messages returns a session's history, oldest first. A session that
	// was never written to yields an empty slice.
	Messages(ctx context.Context, sessionID uuid.UUID) ([]chat.ChatMessage, error)

	// Clear removes a session's history.
	Clear(ctx context.Context, sessionID uuid.UUID) error
}
