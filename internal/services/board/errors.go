package board

import "errors"

// Board-related errors
var (
	// Validation errors
	ErrInvalidBoardID    = errors.New("invalid board ID")
	ErrEmptyOrganization = errors.New("board organization cannot be empty")
	ErrEmptyBoardType    = errors.New("board type cannot be empty")
	ErrNilBoard          = errors.New("board cannot be nil")

	// ErrInvalidBoard wraps a configuration that failed static checks
	ErrInvalidBoard = errors.New("board configuration is invalid")

	// ErrLockedColumn rejects imports that remove or reshape a locked column
	ErrLockedColumn = errors.New("locked column cannot be removed or changed")
)
