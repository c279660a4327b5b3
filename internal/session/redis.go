package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisStore keeps conversation state in Redis so webhook replicas share
// it and restarts don't drop users mid-flow.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func sessionKey(telegramID int64) string {
	return fmt.Sprintf("session:%d", telegramID)
}

// Get returns the stored state, nil when the user is idle.
func (r *RedisStore) Get(ctx context.Context, telegramID int64) (*State, error) {
	raw, err := r.client.Get(ctx, sessionKey(telegramID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var state State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &state, nil
}

// Set stores the state with a TTL so abandoned flows expire on their own.
func (r *RedisStore) Set(ctx context.Context, telegramID int64, state State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(telegramID), raw, DefaultTTL).Err(); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// Clear removes any stored state for a user.
func (r *RedisStore) Clear(ctx context.Context, telegramID int64) error {
	if err := r.client.Del(ctx, sessionKey(telegramID)).Err(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
