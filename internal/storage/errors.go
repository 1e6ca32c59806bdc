package storage

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an operation references a missing id.
// Operations documented as idempotent cleanup (e.g. removing an already
// deleted routine exercise) swallow it instead.
var ErrNotFound = errors.New("not found")

// StructuralError is a schema/migration failure. It is the only error
// class that aborts startup; migrations are safe to re-run from the last
// recorded version, so callers may surface a retry.
type StructuralError struct {
	Version int
	Err     error
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("migration to version %d failed: %v", e.Version, e.Err)
}

func (e *StructuralError) Unwrap() error { return e.Err }

// IntegrityError rejects a write that would break a cascade, ordering, or
// uniqueness invariant. The write is never partially applied.
type IntegrityError struct {
	Op  string
	Err error
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s: integrity violation: %v", e.Op, e.Err)
}

func (e *IntegrityError) Unwrap() error { return e.Err }
