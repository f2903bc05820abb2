package crud

import (
	"context"
	"fmt"
	"sync"

	"github.com/freelancehub/dashboard-backend/internal/dashboard/domain"
	"github.com/freelancehub/dashboard-backend/internal/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BulkResult reports a multi-item delete. Every id lands in exactly one of
// the two counts.
type BulkResult[T any] struct {
	Succeeded    int                 `json:"succeeded"`
	Failed       int                 `json:"failed"`
	Errors       map[string]string   `json:"errors,omitempty"`
	Notification domain.Notification `json:"notification"`
	Items        []domain.Record[T]  `json:"items"`
	RefetchError string              `json:"refetch_error,omitempty"`
}

// BulkDelete soft-deletes ids concurrently, then notifies once and refetches
// once. Duplicate ids are deleted once.
func (o *Orchestrator[T]) BulkDelete(ctx context.Context, actorID string, ids []string) (*BulkResult[T], error) {
	if actorID == "" {
		return nil, domain.ErrActorMissing
	}

	unique := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		err := &domain.ValidationError{Field: "ids", Message: "at least one id is required"}
		n := o.notification(domain.SeverityError, "Please fix the highlighted field", err.Error())
		o.deliver(ctx, actorID, n)
		return &BulkResult[T]{Notification: n}, err
	}

	ctx, span := o.opts.Tracer.Start(ctx, "crud.bulk_delete", trace.WithAttributes(
		attribute.String(tracing.KindKey, o.opts.Kind),
		attribute.String(tracing.ActorKey, actorID),
		attribute.Int("dashboard.bulk.requested", len(unique)),
	))
	defer span.End()

	var (
		mu     sync.Mutex
		failed = map[string]string{}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.BulkConcurrency)
	for _, id := range unique {
		g.Go(func() error {
			if err := o.repo.SoftDelete(gctx, actorID, id); err != nil {
				mu.Lock()
				failed[id] = storeMessage(err)
				mu.Unlock()
			}
			// per-item failures are counted, not propagated
			return nil
		})
	}
	_ = g.Wait()

	res := &BulkResult[T]{
		Succeeded: len(unique) - len(failed),
		Failed:    len(failed),
	}
	span.SetAttributes(attribute.Int("dashboard.bulk.failed", res.Failed))
	if len(failed) > 0 {
		res.Errors = failed
	}

	if res.Succeeded > 0 {
		o.invalidate(ctx, actorID)
	}

	var n domain.Notification
	switch {
	case res.Failed == 0:
		n = o.notification(domain.SeveritySuccess,
			fmt.Sprintf("%d %s deleted", res.Succeeded, lower(plural(o.opts.Label, res.Succeeded))), "")
	case res.Succeeded == 0:
		n = o.notification(domain.SeverityError,
			"Could not delete "+lower(plural(o.opts.Label, res.Failed)),
			fmt.Sprintf("%d of %d deletions failed.", res.Failed, len(unique)))
	default:
		n = o.notification(domain.SeverityWarning,
			fmt.Sprintf("%d %s deleted", res.Succeeded, lower(plural(o.opts.Label, res.Succeeded))),
			fmt.Sprintf("%d of %d deletions failed.", res.Failed, len(unique)))
	}
	res.Notification = n
	o.deliver(ctx, actorID, n)

	o.logger(ctx).Info("bulk delete finished",
		zap.String("kind", o.opts.Kind),
		zap.String("actor_id", actorID),
		zap.Int("succeeded", res.Succeeded),
		zap.Int("failed", res.Failed),
	)

	items, err := o.Fetch(ctx, actorID)
	if err != nil {
		res.RefetchError = err.Error()
		return res, nil
	}
	res.Items = items
	return res, nil
}

func plural(label string, n int) string {
	if n == 1 {
		return label
	}
	return label + "s"
}
