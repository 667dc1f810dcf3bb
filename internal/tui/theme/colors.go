// Package theme holds the board colors resolved from the user's scheme
package theme

import "github.com/thenoetrevino/propboard/internal/config/colors"

// Colors holds the current theme colors, initialized by Init
var (
	Accent         string
	ColumnBorder   string
	CardBorder     string
	SelectedBorder string
	DropAllowed    string
	DropForbidden  string
	ActionRequired string
	Title          string
	Subtle         string
	Normal         string
	InfoFg         string
	InfoBg         string
	WarningFg      string
	WarningBg      string
	ErrorFg        string
	ErrorBg        string
)

func init() {
	Init(*colors.Default())
}

// Init initializes the theme colors from the given color scheme
func Init(c colors.ColorScheme) {
	c.ApplyDefaults()
	Accent = c.Accent
	ColumnBorder = c.ColumnBorder
	CardBorder = c.CardBorder
	SelectedBorder = c.SelectedBorder
	DropAllowed = c.DropAllowed
	DropForbidden = c.DropForbidden
	ActionRequired = c.ActionRequired
	Title = c.Title
	Subtle = c.Subtle
	Normal = c.Normal
	InfoFg = c.InfoFg
	InfoBg = c.InfoBg
	WarningFg = c.WarningFg
	WarningBg = c.WarningBg
	ErrorFg = c.ErrorFg
	ErrorBg = c.ErrorBg
}
