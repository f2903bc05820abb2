package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrValidation   = errors.New("validation failed")
	ErrUnknownSort  = errors.New("unknown sort key")
	ErrInvalidDate  = errors.New("invalid date")
	ErrCanceled     = errors.New("mutation canceled")
	ErrActorMissing = errors.New("actor id required")
)

// ValidationError names the field that failed a local check.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// StoreError carries a rejection from the backing store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err came from local validation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFound reports whether err means the record is missing or soft-deleted.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
