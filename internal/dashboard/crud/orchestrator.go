// Package crud runs every dashboard mutation through the same sequence:
// validate locally, call the store, notify the actor, then refetch the
// authoritative collection.
package crud

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/freelancehub/dashboard-backend/internal/dashboard/domain"
	"github.com/freelancehub/dashboard-backend/internal/dashboard/notify"
	"github.com/freelancehub/dashboard-backend/internal/logging"
	"github.com/freelancehub/dashboard-backend/internal/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const defaultBulkConcurrency = 4

// Options configures an Orchestrator for one dashboard kind.
type Options[T any] struct {
	// Kind is the collection name, e.g. "files".
	Kind string
	// Label is the singular noun used in notifications, e.g. "File".
	Label string
	// Describe names a payload in notification text.
	Describe func(T) string
	// Check and CheckPatch run after tag validation. On update, Check also
	// runs against the stored record with the patch merged in.
	Check      func(T) error
	CheckPatch func(domain.Patch) error

	Cache           Cache[T]
	Notifier        notify.Notifier
	Logger          *zap.Logger
	Tracer          trace.Tracer
	Now             func() time.Time
	BulkConcurrency int
}

// Result is the outcome of one mutation. On failure it still carries the
// error notification, and Items is nil.
type Result[T any] struct {
	ID           string              `json:"id,omitempty"`
	Notification domain.Notification `json:"notification"`
	Items        []domain.Record[T]  `json:"items"`
	// RefetchError is set when the mutation succeeded but the refetch did not.
	RefetchError string `json:"refetch_error,omitempty"`
}

type Orchestrator[T any] struct {
	repo      Repository[T]
	validator *Validator[T]
	opts      Options[T]
	group     singleflight.Group

	mu      sync.Mutex
	flights map[string]*flight
}

// flight is the context shared by one coalesced mutation. It is cancelled
// once every caller waiting on it has gone.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

func New[T any](repo Repository[T], opts Options[T]) *Orchestrator[T] {
	if opts.Label == "" {
		opts.Label = "Item"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.BulkConcurrency <= 0 {
		opts.BulkConcurrency = defaultBulkConcurrency
	}
	if opts.Tracer == nil {
		opts.Tracer = tracing.Tracer("dashboard/crud")
	}
	return &Orchestrator[T]{
		repo:      repo,
		validator: NewValidator[T](),
		opts:      opts,
		flights:   make(map[string]*flight),
	}
}

func (o *Orchestrator[T]) Kind() string {
	return o.opts.Kind
}

// Fetch returns the actor's active records and refreshes the cache.
func (o *Orchestrator[T]) Fetch(ctx context.Context, actorID string) ([]domain.Record[T], error) {
	if actorID == "" {
		return nil, domain.ErrActorMissing
	}
	items, err := o.repo.FetchAll(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Record[T]{}
	}
	if o.opts.Cache != nil {
		if err := o.opts.Cache.Set(ctx, actorID, items); err != nil {
			o.logger(ctx).Warn("failed to cache list", zap.String("kind", o.opts.Kind), zap.Error(err))
		}
	}
	return items, nil
}

func (o *Orchestrator[T]) Create(ctx context.Context, actorID string, data T) (*Result[T], error) {
	return o.Apply(ctx, actorID, domain.MutationRequest[T]{Op: domain.OpCreate, Data: data})
}

func (o *Orchestrator[T]) Update(ctx context.Context, actorID, id string, patch domain.Patch) (*Result[T], error) {
	return o.Apply(ctx, actorID, domain.MutationRequest[T]{Op: domain.OpUpdate, ID: id, Patch: patch})
}

func (o *Orchestrator[T]) Delete(ctx context.Context, actorID, id string) (*Result[T], error) {
	return o.Apply(ctx, actorID, domain.MutationRequest[T]{Op: domain.OpDelete, ID: id})
}

// Submit runs Apply as a cancellable Task.
func (o *Orchestrator[T]) Submit(ctx context.Context, actorID string, req domain.MutationRequest[T]) *Task[*Result[T]] {
	return Go(ctx, func(ctx context.Context) (*Result[T], error) {
		return o.Apply(ctx, actorID, req)
	})
}

// Apply validates req and, when valid, runs it against the store.
// Identical requests in flight for the same actor share one store call.
func (o *Orchestrator[T]) Apply(ctx context.Context, actorID string, req domain.MutationRequest[T]) (*Result[T], error) {
	if actorID == "" {
		return nil, domain.ErrActorMissing
	}

	err := o.validate(req)
	if err == nil {
		err = o.checkUpdate(ctx, actorID, req)
	}
	if err != nil {
		title, desc := "Please fix the highlighted field", err.Error()
		if !domain.IsValidation(err) {
			title, desc = o.failureTitle(req.Op), storeMessage(err)
		}
		n := o.notification(domain.SeverityError, title, desc)
		o.deliver(ctx, actorID, n)
		return &Result[T]{ID: req.ID, Notification: n}, err
	}

	key, err := dedupeKey(actorID, req)
	if err != nil {
		return nil, err
	}
	f := o.join(ctx, key)
	defer o.leave(key, f)

	ch := o.group.DoChan(key, func() (any, error) {
		return o.run(f.ctx, actorID, req)
	})
	select {
	case r := <-ch:
		if r.Shared {
			o.logger(ctx).Debug("coalesced duplicate mutation",
				zap.String("kind", o.opts.Kind), zap.String("op", string(req.Op)), zap.String("id", req.ID))
		}
		res, _ := r.Val.(*Result[T])
		return res, r.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// join registers a caller on the flight for key. The flight context keeps the
// first caller's values but not its cancellation.
func (o *Orchestrator[T]) join(ctx context.Context, key string) *flight {
	o.mu.Lock()
	defer o.mu.Unlock()
	f, ok := o.flights[key]
	if !ok {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{ctx: fctx, cancel: cancel}
		o.flights[key] = f
	}
	f.waiters++
	return f
}

func (o *Orchestrator[T]) leave(key string, f *flight) {
	o.mu.Lock()
	defer o.mu.Unlock()
	f.waiters--
	if f.waiters > 0 {
		return
	}
	f.cancel()
	if o.flights[key] == f {
		delete(o.flights, key)
	}
}

// checkUpdate runs Check against the stored record with the patch merged in,
// so an update cannot reach a state that create rejects. A missing record is
// left for the store call to report.
func (o *Orchestrator[T]) checkUpdate(ctx context.Context, actorID string, req domain.MutationRequest[T]) error {
	if req.Op != domain.OpUpdate || o.opts.Check == nil {
		return nil
	}
	items, err := o.repo.FetchAll(ctx, actorID)
	if err != nil {
		return &domain.StoreError{Op: string(req.Op), Err: err}
	}
	i := slices.IndexFunc(items, func(r domain.Record[T]) bool { return r.ID == req.ID })
	if i < 0 {
		return nil
	}
	merged, err := mergePatch(items[i].Data, req.Patch)
	if err != nil {
		return &domain.ValidationError{Message: err.Error()}
	}
	if err := o.validator.Struct(merged); err != nil {
		return err
	}
	return o.opts.Check(merged)
}

func (o *Orchestrator[T]) validate(req domain.MutationRequest[T]) error {
	switch req.Op {
	case domain.OpCreate:
		if err := o.validator.Struct(req.Data); err != nil {
			return err
		}
		if o.opts.Check != nil {
			return o.opts.Check(req.Data)
		}
	case domain.OpUpdate:
		if req.ID == "" {
			return &domain.ValidationError{Field: "id", Message: "is required"}
		}
		if err := o.validator.Patch(req.Patch); err != nil {
			return err
		}
		if o.opts.CheckPatch != nil {
			return o.opts.CheckPatch(req.Patch)
		}
	case domain.OpDelete:
		if req.ID == "" {
			return &domain.ValidationError{Field: "id", Message: "is required"}
		}
	default:
		return &domain.ValidationError{Field: "op", Message: fmt.Sprintf("unsupported operation %q", req.Op)}
	}
	return nil
}

func (o *Orchestrator[T]) run(ctx context.Context, actorID string, req domain.MutationRequest[T]) (*Result[T], error) {
	ctx, span := o.opts.Tracer.Start(ctx, "crud."+string(req.Op), trace.WithAttributes(
		attribute.String(tracing.KindKey, o.opts.Kind),
		attribute.String(tracing.OpKey, string(req.Op)),
		attribute.String(tracing.ActorKey, actorID),
	))
	defer span.End()

	log := o.logger(ctx).With(
		zap.String("kind", o.opts.Kind),
		zap.String("op", string(req.Op)),
		zap.String("actor_id", actorID),
	)

	id := req.ID
	var err error
	switch req.Op {
	case domain.OpCreate:
		id, err = o.repo.Insert(ctx, actorID, req.Data)
	case domain.OpUpdate:
		err = o.repo.Update(ctx, actorID, req.ID, req.Patch)
	case domain.OpDelete:
		err = o.repo.SoftDelete(ctx, actorID, req.ID)
	}
	if err != nil {
		log.Warn("mutation failed", zap.String("id", req.ID), zap.Error(err))
		tracing.SetError(span, err, attribute.String(tracing.IDKey, req.ID))
		n := o.notification(domain.SeverityError, o.failureTitle(req.Op), storeMessage(err))
		o.deliver(ctx, actorID, n)
		if !domain.IsNotFound(err) && !errors.Is(err, context.Canceled) {
			var se *domain.StoreError
			if !errors.As(err, &se) {
				err = &domain.StoreError{Op: string(req.Op), Err: err}
			}
		}
		return &Result[T]{ID: req.ID, Notification: n}, err
	}

	span.SetAttributes(attribute.String(tracing.IDKey, id))
	o.invalidate(ctx, actorID)

	n := o.notification(domain.SeveritySuccess, o.successTitle(req.Op), o.summary(req))
	o.deliver(ctx, actorID, n)
	log.Info("mutation applied", zap.String("id", id))

	res := &Result[T]{ID: id, Notification: n}
	items, err := o.Fetch(ctx, actorID)
	if err != nil {
		log.Warn("refetch after mutation failed", zap.Error(err))
		res.RefetchError = err.Error()
		return res, nil
	}
	res.Items = items
	return res, nil
}

func (o *Orchestrator[T]) invalidate(ctx context.Context, actorID string) {
	if o.opts.Cache == nil {
		return
	}
	if err := o.opts.Cache.Invalidate(ctx, actorID); err != nil {
		o.logger(ctx).Warn("failed to invalidate list cache", zap.String("kind", o.opts.Kind), zap.Error(err))
	}
}

func (o *Orchestrator[T]) deliver(ctx context.Context, actorID string, n domain.Notification) {
	if o.opts.Notifier == nil {
		return
	}
	// Delivery is best effort; the notification is also in the result.
	if err := o.opts.Notifier.Notify(context.WithoutCancel(ctx), actorID, n); err != nil {
		o.logger(ctx).Warn("failed to deliver notification", zap.String("kind", o.opts.Kind), zap.Error(err))
	}
}

func (o *Orchestrator[T]) notification(sev domain.Severity, title, description string) domain.Notification {
	return domain.Notification{
		Severity:    sev,
		Title:       title,
		Description: description,
		Kind:        o.opts.Kind,
		At:          o.opts.Now().UTC(),
	}
}

func (o *Orchestrator[T]) successTitle(op domain.Operation) string {
	switch op {
	case domain.OpCreate:
		return o.opts.Label + " created"
	case domain.OpUpdate:
		return o.opts.Label + " updated"
	default:
		return o.opts.Label + " deleted"
	}
}

func (o *Orchestrator[T]) failureTitle(op domain.Operation) string {
	switch op {
	case domain.OpCreate:
		return "Could not create " + lower(o.opts.Label)
	case domain.OpUpdate:
		return "Could not update " + lower(o.opts.Label)
	default:
		return "Could not delete " + lower(o.opts.Label)
	}
}

func (o *Orchestrator[T]) summary(req domain.MutationRequest[T]) string {
	if req.Op == domain.OpCreate && o.opts.Describe != nil {
		if d := o.opts.Describe(req.Data); d != "" {
			return fmt.Sprintf("%q was added.", d)
		}
	}
	switch req.Op {
	case domain.OpCreate:
		return "The new entry was added."
	case domain.OpUpdate:
		return "Your changes were saved."
	default:
		return "The entry was removed."
	}
}

func (o *Orchestrator[T]) logger(ctx context.Context) *zap.Logger {
	return logging.FromContext(ctx, o.opts.Logger)
}

func storeMessage(err error) string {
	switch {
	case domain.IsNotFound(err):
		return "It no longer exists or was already deleted."
	case errors.Is(err, context.Canceled):
		return "The request was canceled."
	default:
		return err.Error()
	}
}

func lower(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// dedupeKey identifies a mutation by actor, operation, target and payload.
func dedupeKey[T any](actorID string, req domain.MutationRequest[T]) (string, error) {
	var payload any = req.Patch
	if req.Op == domain.OpCreate {
		payload = req.Data
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to hash mutation payload: %w", err)
	}
	sum := sha256.Sum256(raw)
	return fmt.Sprintf("%s|%s|%s|%s", actorID, req.Op, req.ID, hex.EncodeToString(sum[:])), nil
}
