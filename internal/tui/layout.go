package tui

import (
	"errors"

	"github.com/thenoetrevino/propboard/internal/collision"
	"github.com/thenoetrevino/propboard/internal/tui/state"
)

var errNotLaidOut = errors.New("board has not been laid out yet")

// boardScroll exposes the horizontal viewport to the collision resolver
type boardScroll struct {
	ui *state.UIState
}

var _ collision.ScrollContainer = boardScroll{}

func (b boardScroll) ScrollLeft() (float64, error) {
	return float64(b.ui.ScrollLeftCells()), nil
}

func (b boardScroll) ViewportRect() (collision.Rect, error) {
	if b.ui.Width() == 0 {
		return collision.Rect{}, errNotLaidOut
	}
	return collision.Rect{
		Left:   state.BoardLeft,
		Top:    state.BoardTop,
		Width:  float64(b.ui.ViewportSize()*state.ColumnStride - state.ColumnGap),
		Height: float64(b.ui.ContentHeight()),
	}, nil
}

// columnRect is the column's box in screen cells. Columns outside the
// viewport get the position they would have if the screen extended that far.
// Edges are inclusive, so the last cell is Left+Width.
func (m Model) columnRect(index int) collision.Rect {
	slot := index - m.uiState.ViewportOffset()
	return collision.Rect{
		Left:   float64(state.BoardLeft + slot*state.ColumnStride),
		Top:    state.BoardTop,
		Width:  state.ColumnWidth - 1,
		Height: float64(m.uiState.ContentHeight() - 1),
	}
}

// droppables lists every column as a drop target, on screen or not
func (m Model) droppables() []collision.Droppable {
	cols := m.appState.Columns()
	out := make([]collision.Droppable, 0, len(cols))
	for i, col := range cols {
		out = append(out, collision.Droppable{
			ID:         col.ID,
			Index:      i,
			Rect:       m.columnRect(i),
			OffsetLeft: float64(i * state.ColumnStride),
			Visible:    m.uiState.ColumnVisible(i),
		})
	}
	return out
}

// dragInput builds one collision frame with the dragged card centered on the
// pointer
func (m Model) dragInput(x, y int) collision.Input {
	const cardWidth, cardHeight = state.ColumnWidth - 4, state.CardHeight
	return collision.Input{
		Pointer: collision.Point{X: float64(x), Y: float64(y)},
		Active: collision.Rect{
			Left:   float64(x) - cardWidth/2,
			Top:    float64(y) - cardHeight/2,
			Width:  cardWidth,
			Height: cardHeight,
		},
		Targets:   m.droppables(),
		Container: boardScroll{ui: m.uiState},
	}
}

// cardAt maps a screen cell to a card. ok is false over gaps, headers and
// empty space.
func (m Model) cardAt(x, y int) (columnIdx, cardIdx int, ok bool) {
	rel := x - state.BoardLeft
	if rel < 0 || rel%state.ColumnStride >= state.ColumnWidth {
		return 0, 0, false
	}
	columnIdx = m.uiState.ViewportOffset() + rel/state.ColumnStride
	if !m.uiState.ColumnVisible(columnIdx) {
		return 0, 0, false
	}
	col := m.appState.Column(columnIdx)
	if col == nil {
		return 0, 0, false
	}

	row := y - state.BoardTop - state.ColumnHeaderLines
	if row < 0 || row/state.CardHeight >= m.uiState.VisibleCards() {
		return 0, 0, false
	}
	cardIdx = m.uiState.CardScrollOffset(col.ID) + row/state.CardHeight
	if cardIdx >= len(m.appState.Cards(col.ID)) {
		return 0, 0, false
	}
	return columnIdx, cardIdx, true
}
