package tui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/thenoetrevino/propboard/internal/tui/components"
	"github.com/thenoetrevino/propboard/internal/tui/state"
)

// View is the main view dispatcher that renders the current state of the application.
// This implements the "View" part of the Model-View-Update pattern.
func (m Model) View() tea.View {
	var view tea.View
	view.AltScreen = true
	view.MouseMode = tea.MouseModeCellMotion

	// Wait for terminal size to be initialized
	if m.uiState.Width() == 0 {
		view.Content = "Loading..."
		return view
	}

	layers := []*lipgloss.Layer{lipgloss.NewLayer(m.viewBoard())}

	if ghost := m.dragGhostLayer(); ghost != nil {
		layers = append(layers, ghost)
	}

	var popup string
	switch m.uiState.Mode() {
	case state.JumpMode:
		if m.selector != nil {
			p := m.proposalByID(m.selector.ProposalID())
			popup = components.RenderJumpSelector(p.Name, m.selector.Options(), m.selector.Cursor())
		}
	case state.ChecklistMode:
		if m.checklist != nil {
			popup = components.RenderChecklist(m.checklist.proposal, m.checklist.report, m.checklist.cursor)
		}
	case state.HelpMode:
		popup = components.PopupStyle.Render(
			components.TitleStyle.Render("Keys") + "\n\n" + m.help.FullHelpView(m.keys.FullHelp()))
	}
	if popup != "" {
		layers = append(layers, m.centered(popup))
	}

	layers = append(layers, m.notificationState.GetLayers(components.RenderNotification)...)

	view.Content = lipgloss.NewCanvas(layers...).Render()
	return view
}

// viewBoard renders the header, the visible columns and the status bar
//
//	{Board} · {n} proposals
//
//	◀ {Column} {Column} {Column} ▶
//
//	{status bar}
func (m Model) viewBoard() string {
	width := m.uiState.Width()
	board := m.appState.Board()

	name := ""
	total := len(m.appState.Unresolved())
	for _, col := range m.appState.Columns() {
		total += len(m.appState.Cards(col.ID))
	}
	if board != nil {
		name = board.Name
	}
	header := components.TitleStyle.Render(name) +
		components.SubtleStyle.Render(fmt.Sprintf(" · %d proposals", total))
	if m.drag.Active {
		header += "  " + m.dragHint()
	}
	header = lipgloss.NewStyle().MaxWidth(width).Render(header)

	status := components.RenderStatusBar(components.StatusBarProps{
		Width:      width,
		Board:      string(m.opts.BoardID),
		Role:       string(m.opts.Role),
		Live:       m.live,
		Unresolved: len(m.appState.Unresolved()),
		Help:       m.help.ShortHelpView(m.keys.ShortHelp()),
	})

	return lipgloss.JoinVertical(lipgloss.Left, header, "", m.viewColumns(), "", status)
}

// viewColumns renders the columns inside the viewport with a scroll arrow on
// each side
func (m Model) viewColumns() string {
	cols := m.appState.Columns()
	height := m.uiState.ContentHeight()
	if len(cols) == 0 {
		return lipgloss.NewStyle().Height(height).Render(
			components.SubtleStyle.Render("  This board has no columns"))
	}

	offset, size := m.uiState.ViewportOffset(), m.uiState.ViewportSize()
	left, right := components.ScrollIndicators(offset, size, len(cols))
	arrow := lipgloss.NewStyle().Height(height).AlignVertical(lipgloss.Center)

	parts := []string{arrow.Render(left), " "}
	end := min(offset+size, len(cols))
	for i := offset; i < end; i++ {
		col := cols[i]
		selected := i == m.uiState.SelectedColumn()
		props := components.ColumnProps{
			Column:       col,
			Cards:        m.appState.Cards(col.ID),
			SelectedCard: -1,
			Selected:     selected,
			Height:       height,
			ScrollOffset: m.uiState.CardScrollOffset(col.ID),
			VisibleCards: m.uiState.VisibleCards(),
		}
		if selected {
			props.SelectedCard = m.uiState.SelectedCard()
		}
		if m.drag.Active {
			props.Dragged = m.gesture.ProposalID()
			if col.ID == m.drag.Hover && col.ID != m.gesture.Origin() {
				props.Hover = components.HoverForbidden
				if m.drag.Allowed {
					props.Hover = components.HoverAllowed
				}
			}
		}
		if i > offset {
			parts = append(parts, strings.Repeat(" ", state.ColumnGap))
		}
		parts = append(parts, components.RenderColumn(props))
	}
	parts = append(parts, " ", arrow.Render(right))
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// dragHint names the column the held card would land in
func (m Model) dragHint() string {
	if m.drag.Hover == "" || m.drag.Hover == m.gesture.Origin() {
		return components.SubtleStyle.Render("drop on a column · esc cancel")
	}
	col := m.appState.Column(m.appState.ColumnIndex(m.drag.Hover))
	if col == nil {
		return ""
	}
	if !m.drag.Allowed {
		return components.ActionStyle.Render("✕ " + col.DisplayName() + " not allowed for " + string(m.opts.Role))
	}
	return components.CursorStyle.Render("→ " + col.DisplayName())
}

// dragGhostLayer draws the held card under the pointer
func (m Model) dragGhostLayer() *lipgloss.Layer {
	if !m.drag.Active || m.drag.Hover == "" {
		return nil
	}
	p := m.proposalByID(m.gesture.ProposalID())
	card := components.RenderCard(p, true, false)
	x := max(int(m.drag.Pointer.X)-lipgloss.Width(card)/2, 0)
	y := max(int(m.drag.Pointer.Y)-lipgloss.Height(card)/2, 0)
	return lipgloss.NewLayer(card).X(x).Y(y)
}

// centered places a popup in the middle of the screen
func (m Model) centered(popup string) *lipgloss.Layer {
	x := max((m.uiState.Width()-lipgloss.Width(popup))/2, 0)
	y := max((m.uiState.Height()-lipgloss.Height(popup))/2, 0)
	return lipgloss.NewLayer(popup).X(x).Y(y)
}
