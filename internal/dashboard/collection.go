// Package dashboard wires one collection kind to its store, cache, notifier
// and HTTP resource.
package dashboard

import (
	"database/sql"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/freelancehub/dashboard-backend/internal/dashboard/cache"
	"github.com/freelancehub/dashboard-backend/internal/dashboard/crud"
	"github.com/freelancehub/dashboard-backend/internal/dashboard/domain"
	dashhttp "github.com/freelancehub/dashboard-backend/internal/dashboard/http"
	"github.com/freelancehub/dashboard-backend/internal/dashboard/listview"
	"github.com/freelancehub/dashboard-backend/internal/dashboard/notify"
	"github.com/freelancehub/dashboard-backend/internal/dashboard/repository"
)

// Deps is shared by every collection. SQL nil selects the in-memory store;
// Redis nil disables the list cache.
type Deps struct {
	SQL      *sql.DB
	Redis    *redis.Client
	Notifier notify.Notifier
	Logger   *zap.Logger
	CacheTTL time.Duration
	Now      func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// Collection is one wired kind.
type Collection[T any] struct {
	Kind  string
	Repo  crud.Repository[T]
	Orch  *crud.Orchestrator[T]
	cache *cache.ListCache[T]
	deps  Deps
}

// NewCollection fills the infrastructure fields of opts from d.
func NewCollection[T any](d Deps, opts crud.Options[T]) *Collection[T] {
	var repo crud.Repository[T]
	if d.SQL != nil {
		repo = repository.NewRecordRepository[T](d.SQL, opts.Kind)
	} else {
		repo = crud.NewMemoryRepository[T]()
	}

	var lc *cache.ListCache[T]
	if d.Redis != nil {
		lc = cache.NewListCache[T](d.Redis, opts.Kind, d.CacheTTL)
		opts.Cache = lc
	}
	if d.Notifier != nil {
		opts.Notifier = d.Notifier
	}
	if d.Logger != nil {
		opts.Logger = d.Logger.With(zap.String("kind", opts.Kind))
	}
	opts.Now = d.now

	return &Collection[T]{
		Kind:  opts.Kind,
		Repo:  repo,
		Orch:  crud.New(repo, opts),
		cache: lc,
		deps:  d,
	}
}

// Scanner returns the cross-owner reader when the store supports one.
func (c *Collection[T]) Scanner() (crud.OwnerScanner[T], bool) {
	s, ok := c.Repo.(crud.OwnerScanner[T])
	return s, ok
}

// Resource builds the HTTP handler set for the collection.
func (c *Collection[T]) Resource(view listview.Config[domain.Record[T]], present func(domain.Record[T]) any) *dashhttp.Resource[T] {
	opts := dashhttp.Options[T]{
		View:    view,
		Present: present,
		Now:     c.deps.now,
	}
	if c.cache != nil {
		opts.Cache = c.cache
	}
	return dashhttp.NewResource(c.Orch, opts)
}
