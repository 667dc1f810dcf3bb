package proposal

import "errors"

// Proposal-related errors
var (
	// Validation errors
	ErrInvalidProposalID     = errors.New("invalid proposal ID")
	ErrInvalidBoardID        = errors.New("invalid board ID")
	ErrEmptyName             = errors.New("proposal name cannot be empty")
	ErrNameTooLong           = errors.New("proposal name cannot exceed 255 characters")
	ErrNegativeContractValue = errors.New("contract value cannot be negative")
	ErrEmptyActor            = errors.New("checklist actor cannot be empty")

	// Checklist errors
	ErrItemNotFound  = errors.New("checklist item not found")
	ErrSystemManaged = errors.New("system checks are computed and cannot be set by hand")
)
