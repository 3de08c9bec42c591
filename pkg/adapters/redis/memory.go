package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"
)

// DefaultMemoryPrefix namespaces memory keys.
const DefaultMemoryPrefix = "weft:memory:"

// Memory implements ports.MemoryStore on Redis, relying on key expiry for TTL.
type Memory struct {
	client *backend.Client
	prefix string
}

// NewMemory creates a Redis-backed memory store. An empty prefix selects
// DefaultMemoryPrefix.
func NewMemory(client *backend.Client, prefix string) *Memory {
	if prefix == "" {
		prefix = DefaultMemoryPrefix
	}
	return &Memory{client: client, prefix: prefix}
}

// Set stores value as JSON under key.
func (m *Memory) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal memory value: %w", err)
	}
	if err := m.client.Set(ctx, m.prefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write memory key: %w", err)
	}
	return nil
}

// Get reads key. Expired keys are reported as missing.
func (m *Memory) Get(ctx context.Context, key string) (any, bool, error) {
	data, err := m.client.Get(ctx, m.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read memory key: %w", err)
	}

	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal memory value: %w", err)
	}
	return value, true, nil
}

// Delete removes key.
func (m *Memory) Delete(ctx context.Context, key string) error {
	return m.client.Del(ctx, m.prefix+key).Err()
}
