// Package scheduler queues scheduled workflows when their cron expression
// fires.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/freelancehub/dashboard-backend/internal/dashboard/crud"
	dash "github.com/freelancehub/dashboard-backend/internal/dashboard/domain"
	"github.com/freelancehub/dashboard-backend/internal/pipelines/domain"
)

// Queuer marks a workflow queued. The pipelines orchestrator satisfies it.
type Queuer interface {
	Update(ctx context.Context, actorID, id string, patch dash.Patch) (*crud.Result[domain.Workflow], error)
}

type entry struct {
	id    cron.EntryID
	spec  string
	owner string
}

type Scheduler struct {
	cron    *cron.Cron
	scanner crud.OwnerScanner[domain.Workflow]
	queue   Queuer
	logger  *zap.Logger
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]entry // workflow id
}

func New(scanner crud.OwnerScanner[domain.Workflow], queue Queuer, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:    cron.New(),
		scanner: scanner,
		queue:   queue,
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]entry),
	}
}

// Sync reconciles cron entries with the stored scheduled workflows and
// returns how many are registered.
func (s *Scheduler) Sync(ctx context.Context) (int, error) {
	records, err := s.scanner.FetchEveryOwner(ctx)
	if err != nil {
		return 0, fmt.Errorf("list workflows: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	wanted := make(map[string]struct{}, len(records))
	for _, rec := range records {
		wf := rec.Data
		if wf.Trigger != domain.TriggerSchedule || wf.Schedule == "" {
			continue
		}
		sched, err := domain.ParseSchedule(wf.Schedule)
		if err != nil {
			s.logger.Warn("skipping workflow with bad schedule",
				zap.String("workflow_id", rec.ID), zap.String("schedule", wf.Schedule), zap.Error(err))
			continue
		}
		wanted[rec.ID] = struct{}{}

		if cur, ok := s.entries[rec.ID]; ok {
			if cur.spec == wf.Schedule && cur.owner == rec.OwnerID {
				continue
			}
			s.cron.Remove(cur.id)
		}

		owner, id := rec.OwnerID, rec.ID
		eid := s.cron.Schedule(sched, cron.FuncJob(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := s.Queue(ctx, owner, id); err != nil {
				s.logger.Error("failed to queue scheduled workflow", zap.String("workflow_id", id), zap.Error(err))
			}
		}))
		s.entries[rec.ID] = entry{id: eid, spec: wf.Schedule, owner: rec.OwnerID}
	}

	for id, cur := range s.entries {
		if _, ok := wanted[id]; !ok {
			s.cron.Remove(cur.id)
			delete(s.entries, id)
		}
	}
	return len(s.entries), nil
}

// Queue marks one workflow queued now.
func (s *Scheduler) Queue(ctx context.Context, ownerID, workflowID string) error {
	_, err := s.queue.Update(ctx, ownerID, workflowID, dash.Patch{
		"status":      domain.StatusQueued,
		"last_run_at": s.now().UTC(),
	})
	if err != nil {
		return err
	}
	s.logger.Info("queued scheduled workflow", zap.String("workflow_id", workflowID), zap.String("owner_id", ownerID))
	return nil
}

// Run syncs, starts the cron loop, resyncs every interval and stops when ctx
// is done.
func (s *Scheduler) Run(ctx context.Context, resync time.Duration) error {
	n, err := s.Sync(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	s.logger.Info("scheduler started", zap.Int("workflows", n))

	s.cron.Start()
	defer func() { <-s.cron.Stop().Done() }()

	ticker := time.NewTicker(resync)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n, err := s.Sync(ctx); err != nil {
				s.logger.Warn("resync failed", zap.Error(err))
			} else {
				s.logger.Debug("resynced schedules", zap.Int("workflows", n))
			}
		}
	}
}

// Next reports the next fire time of a registered workflow.
func (s *Scheduler) Next(workflowID string) (time.Time, bool) {
	s.mu.Lock()
	cur, ok := s.entries[workflowID]
	s.mu.Unlock()
	if !ok {
		return time.Time{}, false
	}
	sched, err := domain.ParseSchedule(cur.spec)
	if err != nil {
		return time.Time{}, false
	}
	return sched.Next(s.now()), true
}
