package models

import (
	"maps"
	"time"

	"github.com/thenoetrevino/propboard/internal/types"
)

// ChecklistItem is a single entry on a column's checklist
type ChecklistItem struct {
	ID       types.ItemID `json:"id" yaml:"id"`
	Label    string       `json:"label" yaml:"label"`
	Type     ItemType     `json:"type" yaml:"type"`
	Required bool         `json:"required,omitempty" yaml:"required,omitempty"`
	// Expression is an optional CEL predicate for system checks not built in
	Expression string `json:"expression,omitempty" yaml:"expression,omitempty"`
}

// DisplayName returns the label, falling back to the id
func (i ChecklistItem) DisplayName() string {
	if i.Label != "" {
		return i.Label
	}
	return string(i.ID)
}

// ChecklistEntry is the persisted completion state of one checklist item
type ChecklistEntry struct {
	Completed     bool       `json:"completed"`
	CompletedBy   *string    `json:"completed_by"`
	CompletedDate *time.Time `json:"completed_date"`
}

// ColumnChecklist maps item id to entry for a single column
type ColumnChecklist map[types.ItemID]ChecklistEntry

// ChecklistStatus maps column id to that column's checklist entries.
// Entries of columns other than the active one are never pruned.
type ChecklistStatus map[types.ColumnID]ColumnChecklist

// Clone returns a deep copy. A nil status clones to an empty, non-nil map.
func (s ChecklistStatus) Clone() ChecklistStatus {
	out := make(ChecklistStatus, len(s))
	for colID, items := range s {
		out[colID] = maps.Clone(items)
	}
	return out
}

// Entry returns the stored entry for a column/item pair and whether it exists
func (s ChecklistStatus) Entry(colID types.ColumnID, itemID types.ItemID) (ChecklistEntry, bool) {
	items, ok := s[colID]
	if !ok {
		return ChecklistEntry{}, false
	}
	entry, ok := items[itemID]
	return entry, ok
}

// Completed reports whether the item is stored as completed
func (s ChecklistStatus) Completed(colID types.ColumnID, itemID types.ItemID) bool {
	entry, _ := s.Entry(colID, itemID)
	return entry.Completed
}
