package domain

import (
	"fmt"
	"strings"
)

// NotFoundError reports referenced entities that do not exist. IDs
// carries every missing id, not just the first hit.
type NotFoundError struct {
	Entity string
	IDs    []string
}

func (e *NotFoundError) Error() string {
	if len(e.IDs) == 0 {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s not found: [%s]", e.Entity, strings.Join(e.IDs, ", "))
}

// ExhaustedError reports a line item asking for more units than the
// inventory holds.
type ExhaustedError struct {
	ResourceID string
	Name       string
	Available  int64
	Requested  int64
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("resource %q is exhausted: available %d, requested %d",
		e.Name, e.Available, e.Requested)
}

// PersistenceError wraps a store write that failed after all invariants
// passed. State may be partially applied at this point; the cause is
// preserved for logging.
type PersistenceError struct {
	Group     string // "customer", "resources" or "bill"
	Transient bool   // lost optimistic race or other retryable condition
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("can't update %s state: %v", e.Group, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// OperationError is the outer envelope every orchestrator failure is
// wrapped in. The message fits callers; the cause is for logs.
type OperationError struct {
	Op  string // "purchase" or "refund"
	Err error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s can't be processed due an error: %q", e.Op, e.Err.Error())
}

func (e *OperationError) Unwrap() error { return e.Err }
