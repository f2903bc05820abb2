// Package cache keeps the last fetched collection per actor so a page can be
// pre-populated before the authoritative fetch completes.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/freelancehub/dashboard-backend/internal/dashboard/domain"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "dash:list:" // dash:list:{kind}:{actor_id}

// ErrMiss is returned when nothing is cached for the actor.
var ErrMiss = errors.New("cache miss")

// Snapshot is a cached collection and the time it was stored.
type Snapshot[T any] struct {
	StoredAt time.Time           `json:"stored_at"`
	Items    []domain.Record[T] `json:"items"`
}

// ListCache stores one kind's collections in Redis. It is never authoritative:
// callers invalidate it on every mutation and overwrite it on every fetch.
type ListCache[T any] struct {
	client *redis.Client
	kind   string
	ttl    time.Duration
}

func NewListCache[T any](client *redis.Client, kind string, ttl time.Duration) *ListCache[T] {
	return &ListCache[T]{client: client, kind: kind, ttl: ttl}
}

func (c *ListCache[T]) key(actorID string) string {
	return fmt.Sprintf("%s%s:%s", keyPrefix, c.kind, actorID)
}

func (c *ListCache[T]) Get(ctx context.Context, actorID string) (*Snapshot[T], error) {
	data, err := c.client.Get(ctx, c.key(actorID)).Bytes()
	if err == redis.Nil {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached list: %w", err)
	}

	var snap Snapshot[T]
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached list: %w", err)
	}
	return &snap, nil
}

func (c *ListCache[T]) Set(ctx context.Context, actorID string, items []domain.Record[T]) error {
	data, err := json.Marshal(Snapshot[T]{StoredAt: time.Now().UTC(), Items: items})
	if err != nil {
		return fmt.Errorf("failed to marshal list: %w", err)
	}
	if err := c.client.Set(ctx, c.key(actorID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache list: %w", err)
	}
	return nil
}

func (c *ListCache[T]) Invalidate(ctx context.Context, actorID string) error {
	if err := c.client.Del(ctx, c.key(actorID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached list: %w", err)
	}
	return nil
}
