// Package components renders the pieces of the board: columns, cards, the
// jump selector, the checklist panel and notifications.
// Call InitStyles() before use to initialize all style variables.
package components

import (
	"charm.land/lipgloss/v2"

	"github.com/thenoetrevino/propboard/internal/config/colors"
	"github.com/thenoetrevino/propboard/internal/tui/state"
	"github.com/thenoetrevino/propboard/internal/tui/theme"
)

// cardContentWidth is the text width inside a card
const cardContentWidth = state.ColumnWidth - 6

// These are cached to avoid recomputing on every redraw.
var (
	// ColumnStyle defines the appearance of board columns
	ColumnStyle lipgloss.Style

	// CardStyle defines the appearance of proposal cards
	CardStyle lipgloss.Style

	// TitleStyle defines column titles and the board header
	TitleStyle lipgloss.Style

	// SubtleStyle is dim secondary text
	SubtleStyle lipgloss.Style

	// ActionStyle marks cards that need action
	ActionStyle lipgloss.Style

	// IndicatorStyle defines the appearance of scroll indicators
	IndicatorStyle lipgloss.Style

	// PopupStyle frames the jump selector, checklist and help overlays
	PopupStyle lipgloss.Style

	// CursorStyle highlights the selected row of a popup
	CursorStyle lipgloss.Style
)

func init() {
	InitStyles(*colors.Default())
}

// InitStyles initializes all styles with the given color scheme
func InitStyles(scheme colors.ColorScheme) {
	theme.Init(scheme)

	ColumnStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.ColumnBorder)).
		PaddingLeft(1).
		PaddingRight(1).
		Width(state.ColumnWidth - 2)

	CardStyle = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(theme.CardBorder)).
		Width(cardContentWidth)

	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(theme.Title))

	SubtleStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(theme.Subtle))

	ActionStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(theme.ActionRequired)).
		Bold(true)

	IndicatorStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(theme.Subtle)).
		Width(state.ColumnWidth - 4).
		Align(lipgloss.Center)

	PopupStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.Accent)).
		Padding(1, 2)

	CursorStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(theme.Accent)).
		Bold(true)
}
