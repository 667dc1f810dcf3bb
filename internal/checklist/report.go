package checklist

import (
	"github.com/thenoetrevino/propboard/internal/models"
)

// ItemReport is the stored and computed state of one checklist item
type ItemReport struct {
	Item   models.ChecklistItem  `json:"item"`
	Stored models.ChecklistEntry `json:"stored"`
	// Computed is set for system checks only
	Computed *bool `json:"computed,omitempty"`
}

// InSync reports whether the stored flag already matches the computed one.
// Manual and approval items are always in sync.
func (r ItemReport) InSync() bool {
	return r.Computed == nil || *r.Computed == r.Stored.Completed
}

// Report describes the active column's checklist without changing anything
type Report struct {
	Column         *models.Column `json:"column"`
	Items          []ItemReport   `json:"items"`
	ActionRequired bool           `json:"action_required"`
}

// Report evaluates every item of the active column. The error wraps
// models.ErrUnresolvedColumn when the proposal sits in no column.
func (r *Reconciler) Report(board *models.BoardConfig, p *models.Proposal) (*Report, error) {
	col, err := r.engine.FindActiveColumn(board, p)
	if err != nil {
		return nil, err
	}
	rep := &Report{Column: col}
	for _, item := range col.ChecklistItems {
		stored, _ := p.CurrentStageChecklistStatus.Entry(col.ID, item.ID)
		ir := ItemReport{Item: item, Stored: stored}
		if item.Type == models.ItemTypeSystemCheck {
			ok := r.validator.Check(item, p)
			ir.Computed = &ok
		}
		rep.Items = append(rep.Items, ir)
	}
	rep.ActionRequired, _ = pendingRequired(col, p.CurrentStageChecklistStatus[col.ID])
	return rep, nil
}
