package tui

import (
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/thenoetrevino/propboard/internal/collision"
	"github.com/thenoetrevino/propboard/internal/tui/state"
	"github.com/thenoetrevino/propboard/internal/workflow"
)

// handleMouseDown selects the card under the pointer and starts dragging it
func (m Model) handleMouseDown(mouse tea.Mouse) (tea.Model, tea.Cmd) {
	if mouse.Button != tea.MouseLeft || m.uiState.Mode() != state.NormalMode || m.gesture.Dragging() {
		return m, nil
	}
	colIdx, cardIdx, ok := m.cardAt(mouse.X, mouse.Y)
	if !ok {
		return m, nil
	}
	m.uiState.SetSelectedColumn(colIdx)
	m.uiState.SetSelectedCard(cardIdx)
	m.clampCard()

	p := m.appState.Card(colIdx, cardIdx)
	col := m.appState.Column(colIdx)
	if err := m.gesture.Start(p.ID, col.ID); err != nil {
		m.logger.Warn("drag start failed", "proposal_id", p.ID, "error", err)
		return m, nil
	}
	m.drag.Begin(collision.Point{X: float64(mouse.X), Y: float64(mouse.Y)})
	return m, nil
}

// handleMouseMotion resolves the column under the dragged card
func (m Model) handleMouseMotion(mouse tea.Mouse) (tea.Model, tea.Cmd) {
	if !m.gesture.Dragging() {
		return m, nil
	}
	m.trackDrag(mouse.X, mouse.Y)
	return m, nil
}

// trackDrag runs one collision frame and scrolls a hidden target into view
func (m *Model) trackDrag(x, y int) {
	res, err := m.gesture.Update(m.dragInput(x, y))
	if err != nil {
		return
	}
	pointer := collision.Point{X: float64(x), Y: float64(y)}

	target, ok := res.Target()
	if !ok {
		m.drag.Track(pointer, "", false, res.Strategy)
		return
	}
	idx := m.appState.ColumnIndex(target)
	allowed := target != m.gesture.Origin() && workflow.CanMove(m.appState.Column(idx), m.opts.Role)
	m.drag.Track(pointer, target, allowed, res.Strategy)

	if idx >= 0 && !m.uiState.ColumnVisible(idx) {
		offset, size := m.uiState.ViewportOffset(), m.uiState.ViewportSize()
		if idx < offset {
			m.uiState.SetViewportOffset(idx)
		} else {
			m.uiState.SetViewportOffset(idx - size + 1)
		}
		m.uiState.ClampViewport(len(m.appState.Columns()))
	}
}

// handleMouseUp drops the card on the last resolved column
func (m Model) handleMouseUp(mouse tea.Mouse) (tea.Model, tea.Cmd) {
	if !m.gesture.Dragging() {
		return m, nil
	}
	p := m.proposalByID(m.gesture.ProposalID())
	m.drag.Reset()

	out, err := m.gesture.End()
	switch {
	case err != nil:
		m.moveFailed(p, out.Target, err)
	case out.Dropped:
		m.afterMove(p, out.Target)
	}
	return m, nil
}

// handleDragKey handles keys while a card is held
func (m Model) handleDragKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Jump):
		id, err := m.gesture.OpenJump()
		m.drag.Reset()
		if err != nil {
			return m, nil
		}
		m.openJump(m.proposalByID(id))

	case key.Matches(msg, m.keys.Cancel):
		m.gesture.Cancel()
		m.drag.Reset()

	case key.Matches(msg, m.keys.Quit):
		m.gesture.Cancel()
		return m, tea.Quit
	}
	return m, nil
}

// handleWheel scrolls the viewport sideways
func (m Model) handleWheel(mouse tea.Mouse) (tea.Model, tea.Cmd) {
	cols := len(m.appState.Columns())
	var scrolled bool
	switch mouse.Button {
	case tea.MouseWheelLeft:
		scrolled = m.uiState.ScrollViewportLeft()
	case tea.MouseWheelRight:
		scrolled = m.uiState.ScrollViewportRight(cols)
	default:
		return m, nil
	}
	if !scrolled {
		return m, nil
	}
	if m.gesture.Dragging() {
		m.trackDrag(int(m.drag.Pointer.X), int(m.drag.Pointer.Y))
	} else {
		m.keepSelectionInViewport()
	}
	return m, nil
}
