package state

import (
	"github.com/thenoetrevino/propboard/internal/collision"
	"github.com/thenoetrevino/propboard/internal/types"
)

// DragState is what the board draws while a card is being dragged. The
// gesture itself lives in gesture.Controller; this only mirrors the last
// frame for rendering.
type DragState struct {
	Active  bool
	Pointer collision.Point
	// Hover is the column the card would land in
	Hover types.ColumnID
	// Allowed is false when the role may not drop into Hover
	Allowed  bool
	Strategy collision.Strategy
}

// Begin marks the start of a drag at the pointer
func (d *DragState) Begin(p collision.Point) {
	*d = DragState{Active: true, Pointer: p, Strategy: collision.StrategyNone}
}

// Track records one resolved frame
func (d *DragState) Track(p collision.Point, hover types.ColumnID, allowed bool, strategy collision.Strategy) {
	d.Pointer = p
	d.Hover = hover
	d.Allowed = allowed
	d.Strategy = strategy
}

// Reset clears the drag
func (d *DragState) Reset() {
	*d = DragState{}
}
