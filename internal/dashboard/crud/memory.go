package crud

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/freelancehub/dashboard-backend/internal/dashboard/domain"
	"github.com/google/uuid"
)

// MemoryRepository is an in-process Repository. Each instance owns its own
// state, so tests and demo deployments never share rows through globals.
type MemoryRepository[T any] struct {
	mu   sync.RWMutex
	rows map[string]*domain.Record[T]
	seq  map[string]int
	next int
	now  func() time.Time
}

func NewMemoryRepository[T any]() *MemoryRepository[T] {
	return &MemoryRepository[T]{
		rows: make(map[string]*domain.Record[T]),
		seq:  make(map[string]int),
		now:  time.Now,
	}
}

// WithClock replaces the timestamp source.
func (r *MemoryRepository[T]) WithClock(now func() time.Time) *MemoryRepository[T] {
	r.now = now
	return r
}

// FetchAll returns the owner's active rows, newest first.
func (r *MemoryRepository[T]) FetchAll(ctx context.Context, ownerID string) ([]domain.Record[T], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Record[T], 0, len(r.rows))
	for _, rec := range r.rows {
		if rec.OwnerID == ownerID && rec.Active() {
			out = append(out, *rec)
		}
	}
	r.sortNewestFirst(out)
	return out, nil
}

func (r *MemoryRepository[T]) FetchEveryOwner(ctx context.Context) ([]domain.Record[T], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Record[T], 0, len(r.rows))
	for _, rec := range r.rows {
		if rec.Active() {
			out = append(out, *rec)
		}
	}
	r.sortNewestFirst(out)
	return out, nil
}

// sortNewestFirst orders by created_at desc; insertion order breaks ties.
func (r *MemoryRepository[T]) sortNewestFirst(out []domain.Record[T]) {
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return r.seq[out[i].ID] > r.seq[out[j].ID]
	})
}

func (r *MemoryRepository[T]) Insert(ctx context.Context, ownerID string, data T) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if ownerID == "" {
		return "", domain.ErrActorMissing
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	id := uuid.New().String()
	r.rows[id] = &domain.Record[T]{
		ID:        id,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
		Data:      data,
	}
	r.next++
	r.seq[id] = r.next
	return id, nil
}

func (r *MemoryRepository[T]) Update(ctx context.Context, ownerID, id string, patch domain.Patch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.rows[id]
	if !ok || rec.OwnerID != ownerID || !rec.Active() {
		return domain.ErrNotFound
	}

	merged, err := mergePatch(rec.Data, patch)
	if err != nil {
		return err
	}
	rec.Data = merged
	rec.UpdatedAt = r.now().UTC()
	return nil
}

func (r *MemoryRepository[T]) SoftDelete(ctx context.Context, ownerID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.rows[id]
	if !ok || rec.OwnerID != ownerID || !rec.Active() {
		return domain.ErrNotFound
	}
	now := r.now().UTC()
	rec.DeletedAt = &now
	rec.UpdatedAt = now
	return nil
}

// Retained reports whether id is still stored, deleted or not.
func (r *MemoryRepository[T]) Retained(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rows[id]
	return ok
}

// mergePatch applies a JSON merge of patch onto data, the same shape the
// Postgres store applies with jsonb ||.
func mergePatch[T any](data T, patch domain.Patch) (T, error) {
	var zero T
	raw, err := json.Marshal(data)
	if err != nil {
		return zero, fmt.Errorf("failed to marshal record: %w", err)
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return zero, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	for k, v := range patch {
		fields[k] = v
	}
	raw, err = json.Marshal(fields)
	if err != nil {
		return zero, fmt.Errorf("failed to marshal patch: %w", err)
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, fmt.Errorf("failed to apply patch: %w", err)
	}
	return out, nil
}
