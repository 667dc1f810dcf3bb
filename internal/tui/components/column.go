package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/thenoetrevino/propboard/internal/models"
	"github.com/thenoetrevino/propboard/internal/tui/state"
	"github.com/thenoetrevino/propboard/internal/tui/theme"
	"github.com/thenoetrevino/propboard/internal/types"
)

// Hover is how a column reacts to a card dragged over it
type Hover int

const (
	HoverNone Hover = iota
	HoverAllowed
	HoverForbidden
)

// ColumnProps is everything RenderColumn draws
type ColumnProps struct {
	Column       *models.Column
	Cards        []*models.Proposal
	// SelectedCard is the selected card index, -1 when the column is not selected
	SelectedCard int
	Selected     bool
	Hover        Hover
	// Dragged is the card being dragged, drawn dimmed
	Dragged      types.ProposalID
	Height       int
	ScrollOffset int
	VisibleCards int
}

// RenderColumn renders a column with its title and the visible cards
//
// Layout:
//
//	{Label} ({count}) 🔒
//	▲ more above
//	{Card 1}
//	{Card 2}
//	...
//	▼ more below
func RenderColumn(props ColumnProps) string {
	col := props.Column
	header := fmt.Sprintf("%s (%d)", col.DisplayName(), len(props.Cards))
	if col.IsLocked {
		header += " 🔒"
	}
	lines := []string{TitleStyle.Render(Truncate(header, state.ColumnWidth-4))}

	if len(props.Cards) == 0 {
		lines = append(lines, "", SubtleStyle.Italic(true).Render("No proposals"))
	} else {
		offset := min(props.ScrollOffset, len(props.Cards)-1)
		end := min(offset+props.VisibleCards, len(props.Cards))

		if offset > 0 {
			lines = append(lines, IndicatorStyle.Render("▲ more above"))
		} else {
			lines = append(lines, "")
		}
		for i := offset; i < end; i++ {
			p := props.Cards[i]
			selected := props.Selected && i == props.SelectedCard
			lines = append(lines, RenderCard(p, selected, p.ID == props.Dragged))
		}
		if end < len(props.Cards) {
			used := lipgloss.Height(strings.Join(lines, "\n"))
			// push the indicator to the last content row
			if pad := props.Height - 3 - used; pad > 0 {
				lines = append(lines, strings.Repeat("\n", pad-1))
			}
			lines = append(lines, IndicatorStyle.Render("▼ more below"))
		}
	}

	style := ColumnStyle
	switch {
	case props.Hover == HoverAllowed:
		style = style.BorderForeground(lipgloss.Color(theme.DropAllowed))
	case props.Hover == HoverForbidden:
		style = style.BorderForeground(lipgloss.Color(theme.DropForbidden))
	case props.Selected:
		style = style.BorderForeground(lipgloss.Color(theme.SelectedBorder))
	}
	if props.Height > 0 {
		// Height sets the content area; the border takes the other two rows
		style = style.Height(props.Height - 2)
	}
	return style.Render(strings.Join(lines, "\n"))
}

// ScrollIndicators returns the arrows drawn beside the board when columns are
// hidden on either side
func ScrollIndicators(offset, size, total int) (left, right string) {
	left, right = " ", " "
	if offset > 0 {
		left = IndicatorStyle.UnsetWidth().Render("◀")
	}
	if offset+size < total {
		right = IndicatorStyle.UnsetWidth().Render("▶")
	}
	return left, right
}
