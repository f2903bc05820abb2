package domain

import "time"

// Record wraps a dashboard payload with the columns the backing store owns.
// It is storage-agnostic and shared by the repository, orchestrator and HTTP layers.
type Record[T any] struct {
	ID        string     `json:"id" yaml:"id"`
	OwnerID   string     `json:"-" yaml:"-"`
	CreatedAt time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" yaml:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" yaml:"deleted_at,omitempty"`
	Data      T          `json:"data" yaml:"data"`
}

// Active reports whether the record has not been soft-deleted.
func (r Record[T]) Active() bool {
	return r.DeletedAt == nil
}

// Patch is a partial field set keyed by the payload's JSON field names.
type Patch map[string]any

// Operation names a mutation.
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// MutationRequest is built from a user action and consumed once by the orchestrator.
type MutationRequest[T any] struct {
	Op    Operation
	ID    string
	Data  T
	Patch Patch
}

// Severity of a user-facing notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notification is a transient, dismissible message describing an outcome.
type Notification struct {
	Severity    Severity  `json:"severity"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Kind        string    `json:"kind,omitempty"`
	At          time.Time `json:"at"`
}
