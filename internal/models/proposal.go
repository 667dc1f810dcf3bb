package models

import (
	"time"

	"github.com/thenoetrevino/propboard/internal/types"
)

// Proposal is a record tracked on a board. Exactly one of the three pointer
// fields (CurrentPhase, CustomWorkflowStageID, Status) is expected to address
// a column, but stale values in the other two are tolerated.
type Proposal struct {
	ID                 types.ProposalID `json:"id"`
	BoardID            types.BoardID    `json:"board_id"`
	OrganizationID     string           `json:"organization_id,omitempty"`
	Name               string           `json:"name"`
	SolicitationNumber string           `json:"solicitation_number"`
	Agency             string           `json:"agency"`
	ContractValue      *float64         `json:"contract_value"`
	DueDate            *time.Time       `json:"due_date"`

	// Column pointers
	CurrentPhase          string `json:"current_phase"`
	CustomWorkflowStageID string `json:"custom_workflow_stage_id"`
	Status                string `json:"status"`

	CurrentStageChecklistStatus ChecklistStatus `json:"current_stage_checklist_status"`
	ActionRequired              bool            `json:"action_required"`
	ActionRequiredDescription   *string         `json:"action_required_description"`

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy of the proposal
func (p *Proposal) Clone() *Proposal {
	if p == nil {
		return nil
	}
	out := *p
	if p.ContractValue != nil {
		v := *p.ContractValue
		out.ContractValue = &v
	}
	if p.DueDate != nil {
		d := *p.DueDate
		out.DueDate = &d
	}
	if p.ActionRequiredDescription != nil {
		d := *p.ActionRequiredDescription
		out.ActionRequiredDescription = &d
	}
	out.CurrentStageChecklistStatus = p.CurrentStageChecklistStatus.Clone()
	return &out
}

// Apply returns a copy of the proposal with the patch applied in memory.
// Stores use the same semantics when persisting a patch.
func (p *Proposal) Apply(patch *ProposalPatch) *Proposal {
	out := p.Clone()
	if patch == nil {
		return out
	}
	if patch.Name != nil {
		out.Name = *patch.Name
	}
	if patch.SolicitationNumber != nil {
		out.SolicitationNumber = *patch.SolicitationNumber
	}
	if patch.Agency != nil {
		out.Agency = *patch.Agency
	}
	if patch.ContractValue.Set {
		out.ContractValue = patch.ContractValue.Value
	}
	if patch.DueDate.Set {
		out.DueDate = patch.DueDate.Value
	}
	if patch.CurrentPhase != nil {
		out.CurrentPhase = *patch.CurrentPhase
	}
	if patch.CustomWorkflowStageID != nil {
		out.CustomWorkflowStageID = *patch.CustomWorkflowStageID
	}
	if patch.Status != nil {
		out.Status = *patch.Status
	}
	if patch.ChecklistStatus != nil {
		out.CurrentStageChecklistStatus = patch.ChecklistStatus.Clone()
	}
	if patch.ActionRequired != nil {
		out.ActionRequired = *patch.ActionRequired
		out.ActionRequiredDescription = patch.ActionRequiredDescription
	}
	return out
}

// GetID returns the proposal id for quiet CLI output
func (p *Proposal) GetID() string {
	return string(p.ID)
}
