package tui

import (
	"errors"
	"fmt"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/thenoetrevino/propboard/internal/jump"
	"github.com/thenoetrevino/propboard/internal/models"
	"github.com/thenoetrevino/propboard/internal/tui/state"
)

// handleKey dispatches keyboard input based on the current mode
func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.uiState.Mode() {
	case state.JumpMode:
		return m.handleJumpKey(msg)
	case state.ChecklistMode:
		return m.handleChecklistKey(msg)
	case state.HelpMode:
		m.uiState.SetMode(state.NormalMode)
		return m, nil
	}

	if m.gesture.Dragging() {
		return m.handleDragKey(msg)
	}
	return m.handleNormalKey(msg)
}

// handleNormalKey handles keys on the board
func (m Model) handleNormalKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	cols := len(m.appState.Columns())

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.uiState.SetMode(state.HelpMode)

	case key.Matches(msg, m.keys.Cancel):
		m.notificationState.Clear()

	case key.Matches(msg, m.keys.PrevColumn):
		if m.uiState.SelectedColumn() > 0 {
			m.uiState.SetSelectedColumn(m.uiState.SelectedColumn() - 1)
			m.uiState.EnsureSelectionVisible()
			m.clampCard()
		}

	case key.Matches(msg, m.keys.NextColumn):
		if m.uiState.SelectedColumn() < cols-1 {
			m.uiState.SetSelectedColumn(m.uiState.SelectedColumn() + 1)
			m.uiState.EnsureSelectionVisible()
			m.clampCard()
		}

	case key.Matches(msg, m.keys.PrevCard):
		if m.uiState.SelectedCard() > 0 {
			m.uiState.SetSelectedCard(m.uiState.SelectedCard() - 1)
			m.clampCard()
		}

	case key.Matches(msg, m.keys.NextCard):
		if col := m.currentColumn(); col != nil && m.uiState.SelectedCard() < len(m.appState.Cards(col.ID))-1 {
			m.uiState.SetSelectedCard(m.uiState.SelectedCard() + 1)
			m.clampCard()
		}

	case key.Matches(msg, m.keys.ScrollLeft):
		if m.uiState.ScrollViewportLeft() {
			m.keepSelectionInViewport()
		}

	case key.Matches(msg, m.keys.ScrollRight):
		if m.uiState.ScrollViewportRight(cols) {
			m.keepSelectionInViewport()
		}

	case key.Matches(msg, m.keys.MoveLeft):
		m.moveAdjacent(-1)

	case key.Matches(msg, m.keys.MoveRight):
		m.moveAdjacent(1)

	case key.Matches(msg, m.keys.Jump):
		if p := m.currentCard(); p != nil {
			m.openJump(p)
		}

	case key.Matches(msg, m.keys.Checklist):
		if p := m.currentCard(); p != nil {
			m.openChecklist(p)
		}

	case key.Matches(msg, m.keys.Reconcile):
		if p := m.currentCard(); p != nil {
			m.reconcileCard(p)
		}

	case key.Matches(msg, m.keys.Refresh):
		selected := m.currentCard()
		if err := m.reload(); err != nil {
			m.notificationState.Add(state.LevelError, "Reload failed: "+err.Error())
			break
		}
		if selected != nil {
			m.selectProposal(selected.ID)
		}
		m.notificationState.Add(state.LevelInfo, "Board refreshed")
	}

	return m, nil
}

// keepSelectionInViewport pulls the selected column back on screen after the
// viewport was scrolled past it
func (m *Model) keepSelectionInViewport() {
	offset, size := m.uiState.ViewportOffset(), m.uiState.ViewportSize()
	switch sel := m.uiState.SelectedColumn(); {
	case sel < offset:
		m.uiState.SetSelectedColumn(offset)
	case sel >= offset+size:
		m.uiState.SetSelectedColumn(offset + size - 1)
	default:
		return
	}
	m.clampCard()
}

// moveAdjacent moves the selected card one column left or right
func (m *Model) moveAdjacent(delta int) {
	p := m.currentCard()
	if p == nil {
		return
	}
	target := m.appState.Column(m.uiState.SelectedColumn() + delta)
	if target == nil {
		return
	}
	m.moveTo(p, target.ID)
}

// openJump shows the column list for a proposal
func (m *Model) openJump(p *models.Proposal) {
	m.selector = jump.NewSelector(m.app.Engine, m.appState.Board(), p, m.opts.Role, m.app.ProposalService)
	m.uiState.SetMode(state.JumpMode)
}

// openChecklist shows the active column's checklist for a proposal
func (m *Model) openChecklist(p *models.Proposal) {
	rep, err := m.app.ProposalService.ChecklistReport(m.ctx, p.ID)
	if err != nil {
		if errors.Is(err, models.ErrUnresolvedColumn) {
			m.notificationState.Add(state.LevelWarning, fmt.Sprintf("'%s' is in no column, so it has no checklist", p.Name))
			return
		}
		m.notificationState.Add(state.LevelError, "Checklist failed: "+err.Error())
		return
	}
	m.checklist = &checklistPanel{proposal: p, report: rep}
	m.uiState.SetMode(state.ChecklistMode)
}

// reconcileCard recomputes the selected proposal's system checks
func (m *Model) reconcileCard(p *models.Proposal) {
	res, err := m.app.ProposalService.Reconcile(m.ctx, p.ID)
	switch {
	case errors.Is(err, models.ErrUnresolvedColumn):
		m.notificationState.Add(state.LevelWarning, fmt.Sprintf("'%s' is in no column, nothing to reconcile", p.Name))
		return
	case err != nil:
		m.logger.Error("reconcile failed", "proposal_id", p.ID, "error", err)
		m.notificationState.Add(state.LevelError, "Reconcile failed: "+err.Error())
		return
	case !res.Written:
		m.notificationState.Add(state.LevelInfo, fmt.Sprintf("'%s' is up to date", p.Name))
		return
	}
	m.reloadOrNotify()
	m.selectProposal(p.ID)
	m.notificationState.Add(state.LevelInfo,
		fmt.Sprintf("Reconciled '%s': %d item(s) updated", p.Name, len(res.Changed)))
}
