package checklist

import (
	"fmt"
	"strings"
	"time"

	"github.com/thenoetrevino/propboard/internal/models"
	"github.com/thenoetrevino/propboard/internal/types"
	"github.com/thenoetrevino/propboard/internal/workflow"
)

// Result is the outcome of a reconcile pass
type Result struct {
	// Column is the active column the checklist was evaluated against
	Column *models.Column
	// Patch is nil when nothing needs to be written
	Patch *models.ProposalPatch
	// Changed lists the system check items whose stored state was updated
	Changed []types.ItemID
}

// NoOp reports whether the caller must skip the write
func (r *Result) NoOp() bool {
	return r == nil || r.Patch == nil
}

// Reconciler computes derived checklist state for a proposal's active column
type Reconciler struct {
	engine    *workflow.Engine
	validator *Validator
}

// NewReconciler creates a Reconciler. Nil arguments fall back to a default
// engine and a built-in-only validator.
func NewReconciler(engine *workflow.Engine, validator *Validator) *Reconciler {
	if engine == nil {
		engine = workflow.NewEngine()
	}
	if validator == nil {
		validator = NewValidator()
	}
	return &Reconciler{engine: engine, validator: validator}
}

// Reconcile compares computed system checks with the stored checklist of the
// active column. It returns a patch only when something differs, so running it
// again on the patched proposal yields a no-op. Entries of every other column
// are carried into the patch untouched.
//
// When the proposal resolves to no column the result is a no-op and the error
// wraps models.ErrUnresolvedColumn.
func (r *Reconciler) Reconcile(board *models.BoardConfig, p *models.Proposal, now time.Time) (*Result, error) {
	col, err := r.engine.FindActiveColumn(board, p)
	if err != nil {
		return &Result{}, err
	}
	result := &Result{Column: col}

	stored := p.CurrentStageChecklistStatus
	updated := make(models.ColumnChecklist, len(stored[col.ID]))
	for itemID, entry := range stored[col.ID] {
		updated[itemID] = entry
	}

	for _, item := range col.SystemChecks() {
		should := r.validator.Check(item, p)
		entry, exists := stored.Entry(col.ID, item.ID)
		if exists && entry.Completed == should {
			continue
		}
		if should {
			by := models.SystemActor
			at := now
			updated[item.ID] = models.ChecklistEntry{Completed: true, CompletedBy: &by, CompletedDate: &at}
		} else {
			updated[item.ID] = models.ChecklistEntry{}
		}
		result.Changed = append(result.Changed, item.ID)
	}

	required, pending := pendingRequired(col, updated)
	description := actionDescription(col, pending)
	actionDrift := p.ActionRequired != required || !sameDescription(p.ActionRequiredDescription, description)

	if len(result.Changed) == 0 && !actionDrift {
		return result, nil
	}

	patch := &models.ProposalPatch{ActionRequired: &required, ActionRequiredDescription: description}
	if len(result.Changed) > 0 {
		status := stored.Clone()
		status[col.ID] = updated
		patch.ChecklistStatus = status
	}
	result.Patch = patch
	return result, nil
}

// pendingRequired reports whether any required item of the column is not
// completed, and lists those items in configured order.
func pendingRequired(col *models.Column, entries models.ColumnChecklist) (bool, []models.ChecklistItem) {
	var pending []models.ChecklistItem
	for _, item := range col.ChecklistItems {
		if item.Required && !entries[item.ID].Completed {
			pending = append(pending, item)
		}
	}
	return len(pending) > 0, pending
}

func actionDescription(col *models.Column, pending []models.ChecklistItem) *string {
	if len(pending) == 0 {
		return nil
	}
	labels := make([]string, len(pending))
	for i, item := range pending {
		labels[i] = item.DisplayName()
	}
	desc := fmt.Sprintf("Complete required items in %q: %s", col.DisplayName(), strings.Join(labels, ", "))
	return &desc
}

func sameDescription(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
