package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is.
var (
	ErrValidation           = errors.New("validation failed")
	ErrNotFound             = errors.New("not found")
	ErrReferentialIntegrity = errors.New("referential integrity violation")
	ErrDuplicate            = errors.New("duplicate")
	ErrAllocationConflict   = errors.New("id allocation conflict")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrStorage              = errors.New("storage failure")
)

// Error carries a kind, a caller-facing message and an optional cause.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) error {
	return newError(ErrValidation, format, args...)
}

func NotFound(format string, args ...any) error {
	return newError(ErrNotFound, format, args...)
}

func Referential(format string, args ...any) error {
	return newError(ErrReferentialIntegrity, format, args...)
}

func Duplicate(format string, args ...any) error {
	return newError(ErrDuplicate, format, args...)
}

func Unauthorized(format string, args ...any) error {
	return newError(ErrUnauthorized, format, args...)
}

// Conflict reports that the id computed by the allocator is already taken.
func Conflict(table, id string) error {
	return &Error{Kind: ErrAllocationConflict, Message: fmt.Sprintf("ID %s already exists in %s", id, table)}
}

// Storage wraps an unclassified persistence failure. Errors that already
// carry a kind are returned unchanged.
func Storage(err error) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	return &Error{Kind: ErrStorage, Message: err.Error(), Err: err}
}

// KindOf returns the kind of err, or ErrStorage for unclassified errors.
func KindOf(err error) error {
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrReferentialIntegrity, ErrDuplicate, ErrUnauthorized, ErrAllocationConflict} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return ErrStorage
}
