// Package repository persists dashboard records in Postgres. Every kind
// shares one table; payloads live in a JSONB column.
package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/freelancehub/dashboard-backend/internal/dashboard/domain"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

//go:embed schema.sql
var schema string

// Migrate creates the records table when it does not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate dashboard_records: %w", err)
	}
	return nil
}

// RecordRepository stores one kind of record.
type RecordRepository[T any] struct {
	db   *sql.DB
	kind string
}

func NewRecordRepository[T any](db *sql.DB, kind string) *RecordRepository[T] {
	return &RecordRepository[T]{db: db, kind: kind}
}

// FetchAll returns the owner's records that are not soft-deleted, newest first.
func (r *RecordRepository[T]) FetchAll(ctx context.Context, ownerID string) ([]domain.Record[T], error) {
	query := `
		SELECT id::text, owner_id, data, created_at, updated_at
		FROM dashboard_records
		WHERE owner_id = $1 AND kind = $2 AND deleted_at IS NULL
		ORDER BY created_at DESC, id
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID, r.kind)
	if err != nil {
		return nil, storeError("fetch", err)
	}
	defer rows.Close()
	return r.scan(rows)
}

// FetchEveryOwner returns active records of this kind across all owners.
func (r *RecordRepository[T]) FetchEveryOwner(ctx context.Context) ([]domain.Record[T], error) {
	query := `
		SELECT id::text, owner_id, data, created_at, updated_at
		FROM dashboard_records
		WHERE kind = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC, id
	`
	rows, err := r.db.QueryContext(ctx, query, r.kind)
	if err != nil {
		return nil, storeError("fetch", err)
	}
	defer rows.Close()
	return r.scan(rows)
}

func (r *RecordRepository[T]) scan(rows *sql.Rows) ([]domain.Record[T], error) {
	items := []domain.Record[T]{}
	for rows.Next() {
		var (
			rec       domain.Record[T]
			data      []byte
			createdAt time.Time
			updatedAt time.Time
		)
		if err := rows.Scan(&rec.ID, &rec.OwnerID, &data, &createdAt, &updatedAt); err != nil {
			return nil, storeError("fetch", err)
		}
		if err := json.Unmarshal(data, &rec.Data); err != nil {
			return nil, storeError("fetch", fmt.Errorf("record %s: %w", rec.ID, err))
		}
		rec.CreatedAt = createdAt.UTC()
		rec.UpdatedAt = updatedAt.UTC()
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("fetch", err)
	}
	return items, nil
}

func (r *RecordRepository[T]) Insert(ctx context.Context, ownerID string, data T) (string, error) {
	if ownerID == "" {
		return "", domain.ErrActorMissing
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s record: %w", r.kind, err)
	}

	query := `
		INSERT INTO dashboard_records (id, owner_id, kind, data)
		VALUES ($1, $2, $3, $4::jsonb)
		RETURNING id::text
	`
	var id string
	if err := r.db.QueryRowContext(ctx, query, uuid.New().String(), ownerID, r.kind, string(payload)).Scan(&id); err != nil {
		return "", storeError("create", err)
	}
	return id, nil
}

// Update merges patch into the stored payload (top-level keys replace).
func (r *RecordRepository[T]) Update(ctx context.Context, ownerID, id string, patch domain.Patch) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	payload, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("failed to marshal patch: %w", err)
	}

	query := `
		UPDATE dashboard_records
		SET data = data || $1::jsonb, updated_at = NOW()
		WHERE id = $2 AND owner_id = $3 AND kind = $4 AND deleted_at IS NULL
	`
	res, err := r.db.ExecContext(ctx, query, string(payload), id, ownerID, r.kind)
	if err != nil {
		return storeError("update", err)
	}
	return expectOneRow("update", res)
}

// SoftDelete marks the record deleted. The row stays in the table.
func (r *RecordRepository[T]) SoftDelete(ctx context.Context, ownerID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}

	query := `
		UPDATE dashboard_records
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND owner_id = $2 AND kind = $3 AND deleted_at IS NULL
	`
	res, err := r.db.ExecContext(ctx, query, id, ownerID, r.kind)
	if err != nil {
		return storeError("delete", err)
	}
	return expectOneRow("delete", res)
}

func expectOneRow(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return storeError(op, err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// storeError keeps the Postgres message and drops driver noise.
func storeError(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return &domain.StoreError{Op: op, Err: fmt.Errorf("%s (code %s)", pqErr.Message, pqErr.Code)}
	}
	return &domain.StoreError{Op: op, Err: err}
}
