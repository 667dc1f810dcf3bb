package workflow

import (
	"fmt"

	"github.com/thenoetrevino/propboard/internal/models"
	"github.com/thenoetrevino/propboard/internal/types"
)

// Severity grades a board configuration issue
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is a problem found while checking a board configuration
type Issue struct {
	Severity Severity       `json:"severity"`
	ColumnID types.ColumnID `json:"column_id,omitempty"`
	Message  string         `json:"message"`
}

func (i Issue) String() string {
	if i.ColumnID == "" {
		return fmt.Sprintf("%s: %s", i.Severity, i.Message)
	}
	return fmt.Sprintf("%s: column %s: %s", i.Severity, i.ColumnID, i.Message)
}

// HasErrors reports whether any issue is an error
func HasErrors(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidateBoard checks that every proposal state maps to at most one column.
// Duplicate ids and duplicate phase/status mappings are errors because the
// second column could never be resolved. Custom stage ids equal to another
// column's phase or status mapping are warnings: a proposal carrying stale
// pointers can then match both.
func ValidateBoard(board *models.BoardConfig) []Issue {
	var issues []Issue
	if board == nil {
		return []Issue{{Severity: SeverityError, Message: "board is nil"}}
	}
	if len(board.Columns) == 0 {
		issues = append(issues, Issue{Severity: SeverityError, Message: "board has no columns"})
	}

	ids := make(map[types.ColumnID]bool)
	phases := make(map[string]types.ColumnID)
	statuses := make(map[string]types.ColumnID)

	for i, col := range board.Columns {
		if col == nil {
			issues = append(issues, Issue{Severity: SeverityError, Message: fmt.Sprintf("column %d is empty", i)})
			continue
		}
		if col.ID == "" {
			issues = append(issues, Issue{Severity: SeverityError, Message: fmt.Sprintf("column %d has no id", i)})
			continue
		}
		if ids[col.ID] {
			issues = append(issues, Issue{Severity: SeverityError, ColumnID: col.ID, Message: "duplicate column id"})
		}
		ids[col.ID] = true

		switch col.Type {
		case models.ColumnTypeLockedPhase:
			if col.PhaseMapping == "" {
				issues = append(issues, Issue{Severity: SeverityError, ColumnID: col.ID, Message: "locked_phase column needs phase_mapping"})
			} else if other, dup := phases[col.PhaseMapping]; dup {
				issues = append(issues, Issue{Severity: SeverityError, ColumnID: col.ID,
					Message: fmt.Sprintf("phase %q already mapped by column %s", col.PhaseMapping, other)})
			} else {
				phases[col.PhaseMapping] = col.ID
			}
		case models.ColumnTypeDefaultStatus:
			if col.DefaultStatusMapping == "" {
				issues = append(issues, Issue{Severity: SeverityError, ColumnID: col.ID, Message: "default_status column needs default_status_mapping"})
			} else if other, dup := statuses[col.DefaultStatusMapping]; dup {
				issues = append(issues, Issue{Severity: SeverityError, ColumnID: col.ID,
					Message: fmt.Sprintf("status %q already mapped by column %s", col.DefaultStatusMapping, other)})
			} else {
				statuses[col.DefaultStatusMapping] = col.ID
			}
		case models.ColumnTypeCustomStage:
			// addressed by its own id
		default:
			issues = append(issues, Issue{Severity: SeverityError, ColumnID: col.ID, Message: fmt.Sprintf("unknown column type %q", col.Type)})
		}

		issues = append(issues, validateChecklist(col)...)
	}

	for _, col := range board.Columns {
		if col == nil || col.Type != models.ColumnTypeCustomStage {
			continue
		}
		if other, ok := phases[string(col.ID)]; ok {
			issues = append(issues, Issue{Severity: SeverityWarning, ColumnID: col.ID,
				Message: fmt.Sprintf("stage id equals phase mapping of column %s", other)})
		}
		if other, ok := statuses[string(col.ID)]; ok {
			issues = append(issues, Issue{Severity: SeverityWarning, ColumnID: col.ID,
				Message: fmt.Sprintf("stage id equals status mapping of column %s", other)})
		}
	}

	return issues
}

func validateChecklist(col *models.Column) []Issue {
	var issues []Issue
	seen := make(map[types.ItemID]bool)
	for _, item := range col.ChecklistItems {
		if item.ID == "" {
			issues = append(issues, Issue{Severity: SeverityError, ColumnID: col.ID, Message: "checklist item has no id"})
			continue
		}
		if seen[item.ID] {
			issues = append(issues, Issue{Severity: SeverityError, ColumnID: col.ID,
				Message: fmt.Sprintf("duplicate checklist item %s", item.ID)})
		}
		seen[item.ID] = true
		if !item.Type.Valid() {
			issues = append(issues, Issue{Severity: SeverityError, ColumnID: col.ID,
				Message: fmt.Sprintf("checklist item %s has unknown type %q", item.ID, item.Type)})
		}
		if item.Expression != "" && item.Type != models.ItemTypeSystemCheck {
			issues = append(issues, Issue{Severity: SeverityWarning, ColumnID: col.ID,
				Message: fmt.Sprintf("checklist item %s has an expression but is not a system_check", item.ID)})
		}
	}
	return issues
}
