package models

import (
	"errors"
	"fmt"
)

// Domain-specific errors for the board workflow engine
var (
	// ErrForbidden indicates the acting role may not drop into the target column
	ErrForbidden = errors.New("move forbidden for role")

	// ErrUnresolvedColumn indicates a proposal's pointers match no configured column
	ErrUnresolvedColumn = errors.New("proposal does not resolve to any column")

	// ErrGeometryFailure indicates the scroll-aware collision test could not run
	ErrGeometryFailure = errors.New("collision geometry unavailable")

	// ErrColumnNotFound indicates a column id is not part of the board
	ErrColumnNotFound = errors.New("column not found")

	// ErrBoardNotFound indicates no board exists for the requested id
	ErrBoardNotFound = errors.New("board not found")

	// ErrProposalNotFound indicates no proposal exists for the requested id
	ErrProposalNotFound = errors.New("proposal not found")

	// ErrAlreadyInColumn indicates a move targets the proposal's current column
	ErrAlreadyInColumn = errors.New("proposal is already in that column")

	// ErrVersionConflict indicates the proposal was written after the snapshot
	// a guarded patch was built from
	ErrVersionConflict = errors.New("proposal changed since it was read")
)

// PersistenceError wraps a storage failure on a write path. These are
// recoverable: the caller may retry, and in-memory state must not be advanced.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Recoverable reports that the failed write can be retried
func (e *PersistenceError) Recoverable() bool {
	return true
}

// IsRecoverable reports whether err is a persistence failure the caller may retry
func IsRecoverable(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe) && pe.Recoverable()
}
