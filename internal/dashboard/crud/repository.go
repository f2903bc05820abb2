package crud

import (
	"context"

	"github.com/freelancehub/dashboard-backend/internal/dashboard/domain"
)

// Repository is the backing store of one dashboard kind. Every call is scoped
// to the owner; FetchAll never returns soft-deleted rows, and Update and
// SoftDelete report domain.ErrNotFound for missing or soft-deleted ids.
type Repository[T any] interface {
	FetchAll(ctx context.Context, ownerID string) ([]domain.Record[T], error)
	Insert(ctx context.Context, ownerID string, data T) (string, error)
	Update(ctx context.Context, ownerID, id string, patch domain.Patch) error
	SoftDelete(ctx context.Context, ownerID, id string) error
}

// OwnerScanner lists active records across every owner. Background jobs use
// it; request paths never do.
type OwnerScanner[T any] interface {
	FetchEveryOwner(ctx context.Context) ([]domain.Record[T], error)
}

// Cache is the optional actor-keyed snapshot cache.
type Cache[T any] interface {
	Set(ctx context.Context, actorID string, items []domain.Record[T]) error
	Invalidate(ctx context.Context, actorID string) error
}
