package tui

import (
	"fmt"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/thenoetrevino/propboard/internal/models"
	"github.com/thenoetrevino/propboard/internal/services/proposal"
	"github.com/thenoetrevino/propboard/internal/tui/state"
	"github.com/thenoetrevino/propboard/internal/types"
)

// handleJumpKey drives the jump selector
func (m Model) handleJumpKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	sel := m.selector
	if sel == nil {
		m.uiState.SetMode(state.NormalMode)
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.Jump):
		m.closeJump()

	case key.Matches(msg, m.keys.PrevCard):
		sel.Prev()

	case key.Matches(msg, m.keys.NextCard):
		sel.Next()

	case key.Matches(msg, m.keys.Confirm):
		opt, ok := sel.Highlighted()
		if !ok {
			m.closeJump()
			break
		}
		_, err := sel.Select(m.ctx)
		m.finishJump(opt.Column.ID, err)

	default:
		// 1-9 pick a column directly
		s := msg.String()
		if len(s) != 1 || s[0] < '1' || s[0] > '9' {
			break
		}
		n := int(s[0] - '1')
		opts := sel.Options()
		if n >= len(opts) {
			break
		}
		target := opts[n].Column.ID
		_, err := sel.SelectColumn(m.ctx, target)
		m.finishJump(target, err)
	}
	return m, nil
}

func (m *Model) closeJump() {
	m.selector = nil
	m.uiState.SetMode(state.NormalMode)
}

// finishJump closes the selector and reports the move the same way a drop does
func (m *Model) finishJump(target types.ColumnID, err error) {
	p := m.proposalByID(m.selector.ProposalID())
	m.closeJump()
	if err != nil {
		m.moveFailed(p, target, err)
		return
	}
	m.afterMove(p, target)
}

// handleChecklistKey drives the checklist panel
func (m Model) handleChecklistKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	panel := m.checklist
	if panel == nil {
		m.uiState.SetMode(state.NormalMode)
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.Checklist):
		m.closeChecklist()

	case key.Matches(msg, m.keys.PrevCard):
		if panel.cursor > 0 {
			panel.cursor--
		}

	case key.Matches(msg, m.keys.NextCard):
		if panel.cursor < len(panel.report.Items)-1 {
			panel.cursor++
		}

	case key.Matches(msg, m.keys.Toggle), key.Matches(msg, m.keys.Confirm):
		m.toggleChecklistItem(panel)
	}
	return m, nil
}

func (m *Model) closeChecklist() {
	m.checklist = nil
	m.uiState.SetMode(state.NormalMode)
}

// toggleChecklistItem flips a manual or approval item. System checks are
// owned by the reconciler.
func (m *Model) toggleChecklistItem(panel *checklistPanel) {
	if panel.cursor >= len(panel.report.Items) {
		return
	}
	ir := panel.report.Items[panel.cursor]
	if ir.Item.Type == models.ItemTypeSystemCheck {
		m.notificationState.Add(state.LevelWarning,
			fmt.Sprintf("'%s' is a system check; press %s on the board to recompute it",
				ir.Item.DisplayName(), m.keys.Reconcile.Help().Key))
		return
	}

	_, err := m.app.ProposalService.SetChecklistItem(m.ctx, proposal.SetChecklistItemRequest{
		ProposalID: panel.proposal.ID,
		ColumnID:   panel.report.Column.ID,
		ItemID:     ir.Item.ID,
		Completed:  !ir.Stored.Completed,
		Actor:      m.opts.Actor,
	})
	if err != nil {
		m.logger.Error("checklist update failed",
			"proposal_id", panel.proposal.ID,
			"item_id", ir.Item.ID,
			"error", err)
		m.notificationState.Add(state.LevelError, "Checklist update failed: "+err.Error())
		return
	}

	m.reloadOrNotify()
	m.selectProposal(panel.proposal.ID)

	rep, err := m.app.ProposalService.ChecklistReport(m.ctx, panel.proposal.ID)
	if err != nil {
		// the proposal left the column the panel was showing
		m.closeChecklist()
		return
	}
	panel.report = rep
	panel.cursor = min(panel.cursor, max(len(rep.Items)-1, 0))
}
