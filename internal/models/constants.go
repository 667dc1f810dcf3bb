package models

// ============================================================================
// COLUMN TYPE CONSTANTS
// ============================================================================

// ColumnType determines which proposal field identifies column membership
type ColumnType string

const (
	// ColumnTypeLockedPhase columns match on Proposal.CurrentPhase
	ColumnTypeLockedPhase ColumnType = "locked_phase"
	// ColumnTypeCustomStage columns match on Proposal.CustomWorkflowStageID
	ColumnTypeCustomStage ColumnType = "custom_stage"
	// ColumnTypeDefaultStatus columns match on Proposal.Status
	ColumnTypeDefaultStatus ColumnType = "default_status"
)

// Valid reports whether t is one of the known column types
func (t ColumnType) Valid() bool {
	switch t {
	case ColumnTypeLockedPhase, ColumnTypeCustomStage, ColumnTypeDefaultStatus:
		return true
	}
	return false
}

// ============================================================================
// CHECKLIST ITEM TYPE CONSTANTS
// ============================================================================

// ItemType classifies who is responsible for completing a checklist item
type ItemType string

const (
	// ItemTypeSystemCheck items are computed from proposal data by the reconciler
	ItemTypeSystemCheck ItemType = "system_check"
	// ItemTypeManual items are ticked by a user
	ItemTypeManual ItemType = "manual"
	// ItemTypeApproval items are signed off by an approver
	ItemTypeApproval ItemType = "approval"
)

// Valid reports whether t is one of the known item types
func (t ItemType) Valid() bool {
	switch t {
	case ItemTypeSystemCheck, ItemTypeManual, ItemTypeApproval:
		return true
	}
	return false
}

// ============================================================================
// SYSTEM CHECK IDS
// ============================================================================

// Built-in system check item ids understood by the checklist validator
const (
	CheckContractValue      = "contract_value"
	CheckDueDate            = "due_date"
	CheckNameSolicitation   = "name_solicitation"
	CheckAgency             = "agency"
	CheckSolicitationNumber = "solicitation_number"
)

// SystemActor is recorded as CompletedBy for items completed by the reconciler
const SystemActor = "system"
