package checklist

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thenoetrevino/propboard/internal/models"
	"github.com/thenoetrevino/propboard/internal/types"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

var testNow = time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)

func qualificationBoard() *models.BoardConfig {
	return &models.BoardConfig{
		ID: "board-1",
		Columns: []*models.Column{
			{ID: "intake", Label: "Intake", Type: models.ColumnTypeDefaultStatus, DefaultStatusMapping: "new"},
			{
				ID: "qualify", Label: "Qualification", Type: models.ColumnTypeLockedPhase, PhaseMapping: "qualification",
				ChecklistItems: []models.ChecklistItem{
					{ID: "contract_value", Label: "Contract value", Type: models.ItemTypeSystemCheck, Required: true},
					{ID: "due_date", Label: "Due date", Type: models.ItemTypeSystemCheck, Required: true},
					{ID: "bid_decision", Label: "Bid decision", Type: models.ItemTypeApproval},
				},
			},
		},
	}
}

func floatPtr(v float64) *float64 { return &v }

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

// ============================================================================
// RECONCILE
// ============================================================================

func TestReconcile_MaterializesMissingEntries(t *testing.T) {
	r := NewReconciler(nil, nil)
	p := &models.Proposal{ID: "p1", CurrentPhase: "qualification", ContractValue: floatPtr(0)}

	result, err := r.Reconcile(qualificationBoard(), p, testNow)
	require.NoError(t, err)
	require.False(t, result.NoOp())

	patch := result.Patch
	require.NotNil(t, patch.ChecklistStatus)
	qualify := patch.ChecklistStatus["qualify"]
	assert.Equal(t, models.ChecklistEntry{}, qualify["contract_value"])
	assert.Equal(t, models.ChecklistEntry{}, qualify["due_date"])
	_, approvalTouched := qualify["bid_decision"]
	assert.False(t, approvalTouched, "approval items are not system checks")

	require.NotNil(t, patch.ActionRequired)
	assert.True(t, *patch.ActionRequired)
	require.NotNil(t, patch.ActionRequiredDescription)
	assert.Contains(t, *patch.ActionRequiredDescription, "Qualification")
	assert.Contains(t, *patch.ActionRequiredDescription, "Contract value")
}

func TestReconcile_Idempotent(t *testing.T) {
	r := NewReconciler(nil, nil)
	board := qualificationBoard()
	p := &models.Proposal{ID: "p1", CurrentPhase: "qualification", ContractValue: floatPtr(0)}

	first, err := r.Reconcile(board, p, testNow)
	require.NoError(t, err)
	patched := p.Apply(first.Patch)

	second, err := r.Reconcile(board, patched, testNow.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, second.NoOp())
	assert.Empty(t, second.Changed)
}

func TestReconcile_CompletesWhenDataArrives(t *testing.T) {
	r := NewReconciler(nil, nil)
	board := qualificationBoard()
	p := &models.Proposal{ID: "p1", CurrentPhase: "qualification", ContractValue: floatPtr(0)}

	first, err := r.Reconcile(board, p, testNow)
	require.NoError(t, err)
	p = p.Apply(first.Patch)
	p.ContractValue = floatPtr(50000)

	result, err := r.Reconcile(board, p, testNow)
	require.NoError(t, err)
	require.False(t, result.NoOp())
	assert.Equal(t, []types.ItemID{"contract_value"}, result.Changed)

	entry := result.Patch.ChecklistStatus["qualify"]["contract_value"]
	assert.True(t, entry.Completed)
	require.NotNil(t, entry.CompletedBy)
	assert.Equal(t, models.SystemActor, *entry.CompletedBy)
	require.NotNil(t, entry.CompletedDate)
	assert.Equal(t, testNow, *entry.CompletedDate)

	assert.False(t, result.Patch.ChecklistStatus["qualify"]["due_date"].Completed)
	assert.True(t, *result.Patch.ActionRequired, "due date is still required")
}

func TestReconcile_ClearsActionRequiredWhenSatisfied(t *testing.T) {
	r := NewReconciler(nil, nil)
	due := testNow.Add(30 * 24 * time.Hour)
	p := &models.Proposal{
		ID: "p1", CurrentPhase: "qualification",
		ContractValue: floatPtr(10), DueDate: &due,
	}

	result, err := r.Reconcile(qualificationBoard(), p, testNow)
	require.NoError(t, err)
	require.False(t, result.NoOp())
	assert.False(t, *result.Patch.ActionRequired)
	assert.Nil(t, result.Patch.ActionRequiredDescription)
}

func TestReconcile_RevokesStaleCompletion(t *testing.T) {
	r := NewReconciler(nil, nil)
	by := models.SystemActor
	at := testNow.Add(-time.Hour)
	p := &models.Proposal{
		ID: "p1", CurrentPhase: "qualification",
		CurrentStageChecklistStatus: models.ChecklistStatus{
			"qualify": {
				"contract_value": {Completed: true, CompletedBy: &by, CompletedDate: &at},
				"due_date":       {},
			},
		},
	}

	result, err := r.Reconcile(qualificationBoard(), p, testNow)
	require.NoError(t, err)
	assert.Equal(t, []types.ItemID{"contract_value"}, result.Changed)
	assert.Equal(t, models.ChecklistEntry{}, result.Patch.ChecklistStatus["qualify"]["contract_value"])
}

func TestReconcile_PreservesOtherColumns(t *testing.T) {
	r := NewReconciler(nil, nil)
	by := "alice"
	at := testNow.Add(-48 * time.Hour)
	p := &models.Proposal{
		ID: "p1", CurrentPhase: "qualification", ContractValue: floatPtr(5),
		CurrentStageChecklistStatus: models.ChecklistStatus{
			"intake":  {"kickoff": {Completed: true, CompletedBy: &by, CompletedDate: &at}},
			"retired": {"old_item": {}},
		},
	}
	before := mustJSON(t, map[string]any{
		"intake":  p.CurrentStageChecklistStatus["intake"],
		"retired": p.CurrentStageChecklistStatus["retired"],
	})

	result, err := r.Reconcile(qualificationBoard(), p, testNow)
	require.NoError(t, err)
	require.False(t, result.NoOp())

	after := mustJSON(t, map[string]any{
		"intake":  result.Patch.ChecklistStatus["intake"],
		"retired": result.Patch.ChecklistStatus["retired"],
	})
	assert.Equal(t, before, after)
}

func TestReconcile_ManualEntriesInActiveColumnUntouched(t *testing.T) {
	r := NewReconciler(nil, nil)
	by := "bob"
	p := &models.Proposal{
		ID: "p1", CurrentPhase: "qualification",
		CurrentStageChecklistStatus: models.ChecklistStatus{
			"qualify": {"bid_decision": {Completed: true, CompletedBy: &by}},
		},
	}

	result, err := r.Reconcile(qualificationBoard(), p, testNow)
	require.NoError(t, err)
	entry := result.Patch.ChecklistStatus["qualify"]["bid_decision"]
	assert.True(t, entry.Completed)
	assert.Equal(t, "bob", *entry.CompletedBy)
}

func TestReconcile_UnresolvedColumnIsNoOp(t *testing.T) {
	r := NewReconciler(nil, nil)
	p := &models.Proposal{ID: "p1", Status: "archived"}

	result, err := r.Reconcile(qualificationBoard(), p, testNow)
	assert.True(t, errors.Is(err, models.ErrUnresolvedColumn))
	assert.True(t, result.NoOp())
}

func TestReconcile_ColumnWithoutChecklist(t *testing.T) {
	r := NewReconciler(nil, nil)
	p := &models.Proposal{ID: "p1", Status: "new"}

	result, err := r.Reconcile(qualificationBoard(), p, testNow)
	require.NoError(t, err)
	assert.True(t, result.NoOp())
	assert.Equal(t, types.ColumnID("intake"), result.Column.ID)
}
