package crud

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/freelancehub/dashboard-backend/internal/dashboard/domain"
)

type note struct {
	Title    string  `json:"title" validate:"required,max=40"`
	Category string  `json:"category" validate:"omitempty,oneof=work home"`
	Priority int     `json:"priority" validate:"min=0,max=5"`
	Due      *string `json:"due,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// countingRepo wraps a MemoryRepository and counts store calls. Hooks, when
// set, replace the matching call.
type countingRepo struct {
	*MemoryRepository[note]

	fetches, inserts, updates, deletes atomic.Int32

	insertHook func(ctx context.Context) (string, error)
	deleteHook func(ctx context.Context, id string) error
}

func newCountingRepo() *countingRepo {
	return &countingRepo{MemoryRepository: NewMemoryRepository[note]()}
}

func (r *countingRepo) FetchAll(ctx context.Context, ownerID string) ([]domain.Record[note], error) {
	r.fetches.Add(1)
	return r.MemoryRepository.FetchAll(ctx, ownerID)
}

func (r *countingRepo) Insert(ctx context.Context, ownerID string, data note) (string, error) {
	r.inserts.Add(1)
	if r.insertHook != nil {
		return r.insertHook(ctx)
	}
	return r.MemoryRepository.Insert(ctx, ownerID, data)
}

func (r *countingRepo) Update(ctx context.Context, ownerID, id string, patch domain.Patch) error {
	r.updates.Add(1)
	return r.MemoryRepository.Update(ctx, ownerID, id, patch)
}

func (r *countingRepo) SoftDelete(ctx context.Context, ownerID, id string) error {
	r.deletes.Add(1)
	if r.deleteHook != nil {
		return r.deleteHook(ctx, id)
	}
	return r.MemoryRepository.SoftDelete(ctx, ownerID, id)
}

func (r *countingRepo) storeCalls() int32 {
	return r.inserts.Load() + r.updates.Load() + r.deletes.Load()
}

type fakeCache struct {
	mu          sync.Mutex
	sets        int
	invalidated int
}

func (c *fakeCache) Set(context.Context, string, []domain.Record[note]) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	return nil
}

func (c *fakeCache) Invalidate(context.Context, string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated++
	return nil
}

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }
