package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/storyloom/storyloom/pkg/chat"
)

// Sessions idle out after a day; the durable copy lives in the history
// file.
const sessionTTL = 24 * time.Hour

// RedisSessionStore keeps live session history in Redis, one list per
// session.
type RedisSessionStore struct {
	client *redis.Client
	logger *slog.Logger
}

var _ SessionStore = (*RedisSessionStore)(nil)

// NewRedisSessionStore creates a session store backed by the Redis server
// at addr.
func NewRedisSessionStore(addr string, logger *slog.Logger) *RedisSessionStore {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisSessionStore{
		client: rdb,
		logger: logger,
	}
}

func sessionKey(sessionID uuid.UUID) string {
	return "session:" + sessionID.String()
}

func (r *RedisSessionStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisSessionStore) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	return nil
}

func (r *RedisSessionStore) Append(ctx context.Context, sessionID uuid.UUID, msgs ...chat.ChatMessage) error {
	if len(msgs) == 0 {
		return nil
	}

	key := sessionKey(sessionID)
	values := make([]interface{}, 0, len(msgs))
	for _, msg := range msgs {
		data, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("failed to marshal chat message: %w", err)
		}
		values = append(values, string(data))
	}

	pipe := r.client.TxPipeline()
	pipe.RPush(ctx, key, values...)
	pipe.Expire(ctx, key, sessionTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Failed to append session messages", "session_id", sessionID, "error", err)
		return fmt.Errorf("failed to append session messages: %w", err)
	}
	return nil
}

func (r *RedisSessionStore) Messages(ctx context.Context, sessionID uuid.UUID) ([]chat.ChatMessage, error) {
	key := sessionKey(sessionID)
	raw, err := r.client.LRange(ctx, key, 0, -1).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to load session messages: %w", err)
	}

	msgs := make([]chat.ChatMessage, 0, len(raw))
	for _, item := range raw {
		var msg chat.ChatMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			r.logger.Warn("Skipping unreadable session message", "session_id", sessionID, "error", err)
			continue
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func (r *RedisSessionStore) Clear(ctx context.Context, sessionID uuid.UUID) error {
	if err := r.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// WaitForConnection waits for Redis to become available (used during
// startup).
func (r *RedisSessionStore) WaitForConnection(ctx context.Context) error {
	const maxRetries = 30
	const retryDelay = 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)
			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}
		r.logger.Info("Redis connection established")
		return nil
	}
	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}
