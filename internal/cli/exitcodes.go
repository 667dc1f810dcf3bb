package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/thenoetrevino/propboard/internal/boarddef"
	"github.com/thenoetrevino/propboard/internal/jump"
	"github.com/thenoetrevino/propboard/internal/models"
	"github.com/thenoetrevino/propboard/internal/services/board"
	"github.com/thenoetrevino/propboard/internal/services/proposal"
)

// Exit codes for CLI commands.
// These codes follow Unix conventions and provide consistent error reporting
// across all CLI commands.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitGeneral indicates a general error occurred.
	// Use for: unexpected failures that don't fit the categories below.
	ExitGeneral = 1

	// ExitUsage indicates incorrect command usage.
	// Use for: Missing required flags or arguments, malformed flag values.
	ExitUsage = 2

	// ExitNotFound indicates a requested resource was not found.
	// Use for: Board, proposal, column or checklist item ids that don't exist.
	ExitNotFound = 3

	// ExitValidation indicates a validation error.
	// Use for: Invalid board definitions, empty names, negative values,
	// edits to system-managed checklist items, proposals whose pointers
	// resolve to no column.
	ExitValidation = 5

	// ExitForbidden indicates the acting role may not perform the move.
	ExitForbidden = 6

	// ExitTempFail indicates a storage failure the user may retry (EX_TEMPFAIL).
	ExitTempFail = 75
)

// ExitError carries the process exit code for a failed command
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// UsageError marks bad flags or arguments
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string {
	return e.Msg
}

// Usagef builds a UsageError
func Usagef(format string, args ...any) error {
	return &UsageError{Msg: fmt.Sprintf(format, args...)}
}

var notFoundErrs = []error{
	models.ErrProposalNotFound,
	models.ErrBoardNotFound,
	models.ErrColumnNotFound,
	proposal.ErrItemNotFound,
}

var validationErrs = []error{
	boarddef.ErrInvalidDefinition,
	board.ErrInvalidBoard,
	board.ErrInvalidBoardID,
	board.ErrEmptyOrganization,
	board.ErrEmptyBoardType,
	board.ErrNilBoard,
	proposal.ErrInvalidProposalID,
	proposal.ErrInvalidBoardID,
	proposal.ErrEmptyName,
	proposal.ErrNameTooLong,
	proposal.ErrNegativeContractValue,
	proposal.ErrEmptyActor,
	proposal.ErrSystemManaged,
	models.ErrAlreadyInColumn,
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Classify maps an error to its exit code and machine-readable code
func Classify(err error) (int, string) {
	var (
		exitErr  *ExitError
		usageErr *UsageError
	)
	switch {
	case err == nil:
		return ExitSuccess, ""
	case errors.As(err, &exitErr):
		_, code := Classify(exitErr.Err)
		return exitErr.Code, code
	case errors.As(err, &usageErr):
		return ExitUsage, "USAGE_ERROR"
	case errors.Is(err, models.ErrForbidden), errors.Is(err, jump.ErrUnreachable):
		return ExitForbidden, "FORBIDDEN"
	case errors.Is(err, board.ErrLockedColumn):
		return ExitForbidden, "LOCKED_COLUMN"
	case isAny(err, notFoundErrs), errors.Is(err, fs.ErrNotExist):
		return ExitNotFound, "NOT_FOUND"
	case errors.Is(err, models.ErrUnresolvedColumn):
		return ExitValidation, "UNRESOLVED_COLUMN"
	case isAny(err, validationErrs):
		return ExitValidation, "VALIDATION_ERROR"
	case models.IsRecoverable(err):
		return ExitTempFail, "STORAGE_ERROR"
	}
	return ExitGeneral, "ERROR"
}

// ExitCode returns the process exit code for err
func ExitCode(err error) int {
	code, _ := Classify(err)
	return code
}

// suggestion offers a next step for common failures
func suggestion(err error) string {
	switch {
	case errors.Is(err, models.ErrForbidden), errors.Is(err, jump.ErrUnreachable):
		return "Check the column's allowed roles with 'propboard board show' or pass a different --role"
	case errors.Is(err, models.ErrBoardNotFound):
		return "Use 'propboard board list' to see imported boards"
	case errors.Is(err, models.ErrProposalNotFound):
		return "Use 'propboard proposal list --board=<id>' to see proposals"
	case errors.Is(err, models.ErrUnresolvedColumn):
		return "Move the proposal to a column with 'propboard proposal move'"
	case errors.Is(err, boarddef.ErrInvalidDefinition):
		return "Run 'propboard board validate <file>' for the full list of problems"
	case models.IsRecoverable(err):
		return "The database was busy; retry the command"
	}
	return ""
}
