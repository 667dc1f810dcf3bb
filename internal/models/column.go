package models

import (
	"slices"

	"github.com/thenoetrevino/propboard/internal/types"
)

// Column is a single stage of a board. Type decides which proposal field
// addresses it: PhaseMapping for locked phases, the column ID itself for custom
// stages and DefaultStatusMapping for default statuses.
type Column struct {
	ID                   types.ColumnID  `json:"id" yaml:"id"`
	Label                string          `json:"label" yaml:"label"`
	Type                 ColumnType      `json:"type" yaml:"type"`
	PhaseMapping         string          `json:"phase_mapping,omitempty" yaml:"phase_mapping,omitempty"`
	DefaultStatusMapping string          `json:"default_status_mapping,omitempty" yaml:"default_status_mapping,omitempty"`
	ChecklistItems       []ChecklistItem `json:"checklist_items,omitempty" yaml:"checklist_items,omitempty"`
	CanDragToHereRoles   []types.Role    `json:"can_drag_to_here_roles,omitempty" yaml:"can_drag_to_here_roles,omitempty"`
	IsLocked             bool            `json:"is_locked,omitempty" yaml:"is_locked,omitempty"`
}

// AllowsRole reports whether the role appears in CanDragToHereRoles.
// It does not treat an empty list as unrestricted; that rule lives in the engine.
func (c *Column) AllowsRole(role types.Role) bool {
	return slices.Contains(c.CanDragToHereRoles, role)
}

// SystemChecks returns the system_check items of the column in configured order
func (c *Column) SystemChecks() []ChecklistItem {
	var items []ChecklistItem
	for _, item := range c.ChecklistItems {
		if item.Type == ItemTypeSystemCheck {
			items = append(items, item)
		}
	}
	return items
}

// DisplayName returns the label, falling back to the id
func (c *Column) DisplayName() string {
	if c.Label != "" {
		return c.Label
	}
	return string(c.ID)
}
