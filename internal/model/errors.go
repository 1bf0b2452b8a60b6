package model

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is checks across the error taxonomy.
var (
	ErrNotFound = errors.New("not found")
	ErrImport   = errors.New("import failed")

	ErrEmpty         = errors.New("must not be empty")
	ErrTooLong       = errors.New("is too long")
	ErrDuplicate     = errors.New("already exists")
	ErrSlugTaken     = errors.New("slug already in use")
	ErrUnaddressable = errors.New("produces an empty slug")
)

// ValidationError reports user input that violates a data-model invariant.
type ValidationError struct {
	Field  string // "title" | "message"
	Reason error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Reason }

// NotFoundError reports a missing list or task.
type NotFoundError struct {
	Kind string // "list" | "task"
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Key)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// Import failure reasons.
const (
	ImportInvalidJSON    = "invalid JSON"
	ImportInvalidShape   = "invalid shape"
	ImportDuplicateTasks = "duplicate tasks"
	ImportListExists     = "list already exists"
)

// ImportError reports a malformed or conflicting import payload.
type ImportError struct {
	Reason string
	Err    error // optional detail
}

func (e *ImportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("import: %s: %v", e.Reason, e.Err)
	}
	return "import: " + e.Reason
}

func (e *ImportError) Unwrap() error { return e.Err }

func (e *ImportError) Is(target error) bool { return target == ErrImport }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
