package models

import "time"

// Nullable carries an optional value that may be explicitly cleared.
// Set=false leaves the stored field untouched; Set=true with a nil Value clears it.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// NullableOf returns a Nullable that sets the field to v
func NullableOf[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: &v}
}

// NullableClear returns a Nullable that clears the field
func NullableClear[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

// ProposalPatch is a partial update to a proposal. Nil/unset fields are left as
// stored. ChecklistStatus, when present, replaces the whole map, so callers must
// carry every column's entries forward and set ExpectedVersion to the version
// they read. When ActionRequired is present the description is written
// alongside it (nil stores NULL).
type ProposalPatch struct {
	// ExpectedVersion, when non-zero, makes the write apply only if the stored
	// version still matches
	ExpectedVersion int64

	Name               *string
	SolicitationNumber *string
	Agency             *string
	ContractValue      Nullable[float64]
	DueDate            Nullable[time.Time]

	CurrentPhase          *string
	CustomWorkflowStageID *string
	Status                *string

	ChecklistStatus           ChecklistStatus
	ActionRequired            *bool
	ActionRequiredDescription *string
}

// IsEmpty reports whether the patch would change nothing
func (p *ProposalPatch) IsEmpty() bool {
	if p == nil {
		return true
	}
	return p.Name == nil &&
		p.SolicitationNumber == nil &&
		p.Agency == nil &&
		!p.ContractValue.Set &&
		!p.DueDate.Set &&
		p.CurrentPhase == nil &&
		p.CustomWorkflowStageID == nil &&
		p.Status == nil &&
		p.ChecklistStatus == nil &&
		p.ActionRequired == nil
}

// TouchesPointers reports whether the patch moves the proposal between columns
func (p *ProposalPatch) TouchesPointers() bool {
	return p != nil && (p.CurrentPhase != nil || p.CustomWorkflowStageID != nil || p.Status != nil)
}
