// Package notify carries user-facing outcome messages from the orchestrator
// to whoever displays them.
package notify

import (
	"context"
	"sync"

	"github.com/freelancehub/dashboard-backend/internal/dashboard/domain"
)

// Notifier delivers one notification to an actor.
type Notifier interface {
	Notify(ctx context.Context, actorID string, n domain.Notification) error
}

// Recorder keeps notifications in memory, per actor.
type Recorder struct {
	mu    sync.Mutex
	items map[string][]domain.Notification
}

func NewRecorder() *Recorder {
	return &Recorder{items: make(map[string][]domain.Notification)}
}

func (r *Recorder) Notify(_ context.Context, actorID string, n domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[actorID] = append(r.items[actorID], n)
	return nil
}

// For returns a copy of everything delivered to actorID.
func (r *Recorder) For(actorID string) []domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Notification(nil), r.items[actorID]...)
}

// Fanout delivers to every notifier and returns the first error.
type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, actorID string, n domain.Notification) error {
	var first error
	for _, nt := range f {
		if nt == nil {
			continue
		}
		if err := nt.Notify(ctx, actorID, n); err != nil && first == nil {
			first = err
		}
	}
	return first
}
