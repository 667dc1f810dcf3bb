package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecklistStatus_CloneIsDeep(t *testing.T) {
	by := SystemActor
	status := ChecklistStatus{
		"qualify": {"due_date": {Completed: true, CompletedBy: &by}},
	}

	clone := status.Clone()
	clone["qualify"]["due_date"] = ChecklistEntry{}
	clone["other"] = ColumnChecklist{}

	assert.True(t, status.Completed("qualify", "due_date"))
	_, leaked := status["other"]
	assert.False(t, leaked)
}

func TestChecklistStatus_CloneNil(t *testing.T) {
	var status ChecklistStatus
	clone := status.Clone()
	require.NotNil(t, clone)
	assert.Empty(t, clone)
}

func TestChecklistEntry_JSONShape(t *testing.T) {
	by := SystemActor
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	data, err := json.Marshal(ColumnChecklist{"contract_value": {Completed: true, CompletedBy: &by, CompletedDate: &at}})
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"contract_value":{"completed":true,"completed_by":"system","completed_date":"2026-03-01T12:00:00Z"}}`,
		string(data))

	data, err = json.Marshal(ChecklistEntry{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"completed":false,"completed_by":null,"completed_date":null}`, string(data))
}

func TestProposal_ApplyPatchSemantics(t *testing.T) {
	value := 1000.0
	due := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	p := &Proposal{ID: "p1", Name: "Old", ContractValue: &value, DueDate: &due, Status: "new"}

	name := "New"
	out := p.Apply(&ProposalPatch{
		Name:          &name,
		ContractValue: NullableClear[float64](),
	})

	assert.Equal(t, "New", out.Name)
	assert.Nil(t, out.ContractValue)
	require.NotNil(t, out.DueDate, "unset nullable leaves the field alone")
	assert.Equal(t, "Old", p.Name, "Apply must not mutate the receiver")
	require.NotNil(t, p.ContractValue)
}

func TestProposal_ApplyActionRequiredClearsDescription(t *testing.T) {
	desc := "do things"
	p := &Proposal{ID: "p1", ActionRequired: true, ActionRequiredDescription: &desc}

	off := false
	out := p.Apply(&ProposalPatch{ActionRequired: &off})
	assert.False(t, out.ActionRequired)
	assert.Nil(t, out.ActionRequiredDescription)
}

func TestProposalPatch_IsEmpty(t *testing.T) {
	var nilPatch *ProposalPatch
	assert.True(t, nilPatch.IsEmpty())
	assert.True(t, (&ProposalPatch{}).IsEmpty())

	status := "new"
	assert.False(t, (&ProposalPatch{Status: &status}).IsEmpty())
	assert.True(t, (&ProposalPatch{Status: &status}).TouchesPointers())
	assert.False(t, (&ProposalPatch{DueDate: NullableClear[time.Time]()}).IsEmpty())
}

func TestPersistenceError(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := fmt.Errorf("move proposal: %w", &PersistenceError{Op: "update proposal", Err: cause})

	assert.True(t, IsRecoverable(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "persist update proposal")
	assert.False(t, IsRecoverable(ErrForbidden))
}

func TestBoardConfig_ColumnLookup(t *testing.T) {
	board := &BoardConfig{Columns: []*Column{{ID: "a"}, nil, {ID: "b"}}}

	assert.Equal(t, 2, board.ColumnIndex("b"))
	assert.Equal(t, -1, board.ColumnIndex("c"))
	assert.Nil(t, board.ColumnByID("c"))
	assert.NotNil(t, board.ColumnByID("a"))

	var nilBoard *BoardConfig
	assert.Nil(t, nilBoard.ColumnByID("a"))
}

func TestColumn_SystemChecks(t *testing.T) {
	col := &Column{ID: "c", ChecklistItems: []ChecklistItem{
		{ID: "due_date", Type: ItemTypeSystemCheck},
		{ID: "kickoff", Type: ItemTypeManual},
		{ID: "agency", Type: ItemTypeSystemCheck},
	}}

	checks := col.SystemChecks()
	require.Len(t, checks, 2)
	assert.Equal(t, "due_date", string(checks[0].ID))
	assert.Equal(t, "agency", string(checks[1].ID))
	assert.Equal(t, "c", col.DisplayName())
}
