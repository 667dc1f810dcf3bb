package models

import (
	"time"

	"github.com/thenoetrevino/propboard/internal/types"
)

// BoardConfig is the configured Kanban view for one organization and board type.
// Column order is meaningful: it is the left-to-right position on screen and the
// order in which columns are tried when resolving a proposal's active column.
type BoardConfig struct {
	ID             types.BoardID  `json:"id" yaml:"id,omitempty"`
	OrganizationID string         `json:"organization_id" yaml:"organization_id"`
	BoardType      string         `json:"board_type" yaml:"board_type"`
	Name           string         `json:"name" yaml:"name"`
	Columns        []*Column      `json:"columns" yaml:"columns"`
	SwimlaneConfig map[string]any `json:"swimlane_config,omitempty" yaml:"swimlane_config,omitempty"`
	ViewSettings   map[string]any `json:"view_settings,omitempty" yaml:"view_settings,omitempty"`
	Version        int64          `json:"version" yaml:"-"`
	UpdatedAt      time.Time      `json:"updated_at" yaml:"-"`
}

// ColumnByID returns the column with the given id, or nil
func (b *BoardConfig) ColumnByID(id types.ColumnID) *Column {
	if b == nil {
		return nil
	}
	for _, col := range b.Columns {
		if col != nil && col.ID == id {
			return col
		}
	}
	return nil
}

// ColumnIndex returns the position of the column with the given id, or -1
func (b *BoardConfig) ColumnIndex(id types.ColumnID) int {
	if b == nil {
		return -1
	}
	for i, col := range b.Columns {
		if col != nil && col.ID == id {
			return i
		}
	}
	return -1
}

// GetID returns the board id for quiet CLI output
func (b *BoardConfig) GetID() string {
	return string(b.ID)
}
