package components

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/dustin/go-humanize"

	"github.com/thenoetrevino/propboard/internal/models"
	"github.com/thenoetrevino/propboard/internal/tui/theme"
)

// RenderCard renders a proposal as a fixed-size card
//
//	┌────────────────────────┐
//	│ {Name}               ! │
//	│ $250,000 · Jan 15 2030 │
//	└────────────────────────┘
//
// A dragged card is drawn dimmed in its origin column.
func RenderCard(p *models.Proposal, selected, dragged bool) string {
	name := Truncate(p.Name, cardContentWidth-2)
	if p.ActionRequired {
		pad := max(cardContentWidth-lipgloss.Width(name)-1, 1)
		name = name + strings.Repeat(" ", pad) + ActionStyle.Render("!")
	}

	details := SubtleStyle.Render(Truncate(CardDetails(p), cardContentWidth))

	style := CardStyle
	switch {
	case dragged:
		style = style.BorderForeground(lipgloss.Color(theme.Subtle)).Faint(true)
	case selected:
		style = style.BorderForeground(lipgloss.Color(theme.SelectedBorder))
	}
	return style.Render(name + "\n" + details)
}

// CardDetails is the second card line: contract value and due date
func CardDetails(p *models.Proposal) string {
	value := "no value"
	if p.ContractValue != nil {
		value = FormatValue(*p.ContractValue)
	}
	due := "no due date"
	if p.DueDate != nil {
		due = p.DueDate.Format("Jan 2 2006")
	}
	return value + " · " + due
}

// FormatValue renders a contract value in whole dollars
func FormatValue(v float64) string {
	return "$" + humanize.Comma(int64(v))
}

// Truncate shortens s to width cells, ending with an ellipsis when cut
func Truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
