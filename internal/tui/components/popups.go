package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/thenoetrevino/propboard/internal/checklist"
	"github.com/thenoetrevino/propboard/internal/jump"
	"github.com/thenoetrevino/propboard/internal/models"
	"github.com/thenoetrevino/propboard/internal/tui/state"
	"github.com/thenoetrevino/propboard/internal/tui/theme"
)

// RenderJumpSelector lists every column for the proposal being moved. The
// current column is marked and columns the role cannot reach are dimmed.
func RenderJumpSelector(name string, opts []jump.Option, cursor int) string {
	lines := []string{TitleStyle.Render("Move '" + Truncate(name, 40) + "' to"), ""}
	for i, opt := range opts {
		label := fmt.Sprintf("%d. %s", i+1, opt.Column.DisplayName())
		switch {
		case opt.Current:
			label += " (current)"
		case !opt.Reachable:
			label += " (not allowed)"
		}

		prefix := "  "
		style := lipgloss.NewStyle()
		if !opt.Reachable || opt.Current {
			style = SubtleStyle
		}
		if i == cursor {
			prefix = CursorStyle.Render("> ")
			if opt.Reachable && !opt.Current {
				style = CursorStyle
			}
		}
		lines = append(lines, prefix+style.Render(label))
	}
	lines = append(lines, "", SubtleStyle.Render("enter move · 1-9 pick · esc cancel"))
	return PopupStyle.Render(strings.Join(lines, "\n"))
}

// RenderChecklist shows the active column's checklist for one proposal.
// System checks that differ from their computed value are flagged.
func RenderChecklist(p *models.Proposal, rep *checklist.Report, cursor int) string {
	title := fmt.Sprintf("%s · %s", Truncate(p.Name, 32), rep.Column.DisplayName())
	lines := []string{TitleStyle.Render(title), ""}

	if len(rep.Items) == 0 {
		lines = append(lines, SubtleStyle.Italic(true).Render("No checklist items"))
	}
	for i, ir := range rep.Items {
		box := "[ ]"
		if ir.Stored.Completed {
			box = "[x]"
		}
		line := box + " " + ir.Item.DisplayName()
		var tags []string
		if ir.Item.Type != models.ItemTypeManual {
			tags = append(tags, string(ir.Item.Type))
		}
		if ir.Item.Required {
			tags = append(tags, "required")
		}
		if len(tags) > 0 {
			line += SubtleStyle.Render(" (" + strings.Join(tags, ", ") + ")")
		}
		if ir.Stored.Completed && ir.Stored.CompletedBy != nil {
			line += SubtleStyle.Render(" by " + *ir.Stored.CompletedBy)
		}
		if !ir.InSync() {
			line += " " + ActionStyle.Render("out of sync")
		}

		prefix := "  "
		if i == cursor {
			prefix = CursorStyle.Render("> ")
		}
		lines = append(lines, prefix+line)
	}

	if p.ActionRequiredDescription != nil {
		lines = append(lines, "", ActionStyle.Render("! "+*p.ActionRequiredDescription))
	}
	lines = append(lines, "", SubtleStyle.Render("space toggle · esc close"))
	return PopupStyle.Width(64).Render(strings.Join(lines, "\n"))
}

// RenderNotification draws one notification banner
func RenderNotification(n state.Notification) string {
	icon, fg, bg := "•", theme.InfoFg, theme.InfoBg
	switch n.Level {
	case state.LevelWarning:
		icon, fg, bg = "⚠", theme.WarningFg, theme.WarningBg
	case state.LevelError:
		icon, fg, bg = "✕", theme.ErrorFg, theme.ErrorBg
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(bg)).
		Foreground(lipgloss.Color(fg)).
		Padding(0, 1).
		MaxWidth(60).
		Render(icon + " " + n.Message)
}

// StatusBarProps is what the bottom line shows
type StatusBarProps struct {
	Width int
	Board string
	Role  string
	// Live is false when no event transport is connected
	Live       bool
	Unresolved int
	Help       string
}

// RenderStatusBar renders the board name, role and connection on the left
// and the short key help on the right
func RenderStatusBar(props StatusBarProps) string {
	live := "offline"
	if props.Live {
		live = "live"
	}
	left := fmt.Sprintf("%s · role %s · %s", props.Board, props.Role, live)
	if props.Unresolved > 0 {
		left += " · " + ActionStyle.Render(fmt.Sprintf("%d unresolved", props.Unresolved))
	}
	left = SubtleStyle.Render(left)

	gap := max(props.Width-lipgloss.Width(left)-lipgloss.Width(props.Help), 1)
	return left + strings.Repeat(" ", gap) + props.Help
}
