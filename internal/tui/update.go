package tui

import (
	tea "charm.land/bubbletea/v2"

	"github.com/thenoetrevino/propboard/internal/events"
	"github.com/thenoetrevino/propboard/internal/models"
	"github.com/thenoetrevino/propboard/internal/tui/state"
	"github.com/thenoetrevino/propboard/internal/types"
)

// refreshMsg carries a change event for the board
type refreshMsg struct {
	event events.Event
}

// eventsClosedMsg is sent when the event transport goes away
type eventsClosedMsg struct{}

// Update is the main update dispatcher that handles all messages and updates the model.
// This implements the "Update" part of the Model-View-Update pattern.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Check if context is cancelled (graceful shutdown)
	select {
	case <-m.ctx.Done():
		return m, tea.Quit
	default:
	}

	m.notificationState.Expire()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.uiState.SetSize(msg.Width, msg.Height)
		m.notificationState.SetWindowSize(msg.Width, msg.Height)
		m.uiState.ClampViewport(len(m.appState.Columns()))
		m.clampCard()
		return m, nil

	case refreshMsg:
		m.logger.Debug("board change received",
			"type", msg.event.Type,
			"proposal_id", msg.event.ProposalID,
			"sequence_id", msg.event.SequenceID)
		selected := m.currentCard()
		m.reloadOrNotify()
		if selected != nil {
			m.selectProposal(selected.ID)
		}
		// Continue listening for more events
		return m, m.listenForEvents()

	case eventsClosedMsg:
		m.events = nil
		m.live = false
		m.notificationState.Add(state.LevelWarning, "Live updates stopped; press r to refresh")
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case tea.MouseClickMsg:
		return m.handleMouseDown(msg.Mouse())

	case tea.MouseMotionMsg:
		return m.handleMouseMotion(msg.Mouse())

	case tea.MouseReleaseMsg:
		return m.handleMouseUp(msg.Mouse())

	case tea.MouseWheelMsg:
		return m.handleWheel(msg.Mouse())
	}

	return m, nil
}

// listenForEvents waits for the next change event from the transport
func (m Model) listenForEvents() tea.Cmd {
	ch := m.events
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return eventsClosedMsg{}
		}
		return refreshMsg{event: e}
	}
}

// proposalByID finds a proposal among the loaded cards, falling back to a
// stub carrying only the id
func (m Model) proposalByID(id types.ProposalID) *models.Proposal {
	if colIdx, cardIdx, ok := m.appState.Find(id); ok {
		return m.appState.Card(colIdx, cardIdx)
	}
	for _, p := range m.appState.Unresolved() {
		if p.ID == id {
			return p
		}
	}
	return &models.Proposal{ID: id, Name: string(id)}
}
