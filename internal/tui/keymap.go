package tui

import (
	"charm.land/bubbles/v2/key"

	"github.com/thenoetrevino/propboard/internal/config"
)

// keyMap is the board's bindings built from the user's key mappings
type keyMap struct {
	PrevColumn  key.Binding
	NextColumn  key.Binding
	PrevCard    key.Binding
	NextCard    key.Binding
	ScrollLeft  key.Binding
	ScrollRight key.Binding
	MoveLeft    key.Binding
	MoveRight   key.Binding
	Jump        key.Binding
	Confirm     key.Binding
	Cancel      key.Binding
	Checklist   key.Binding
	Toggle      key.Binding
	Reconcile   key.Binding
	Refresh     key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func newKeyMap(km config.KeyMappings) keyMap {
	return keyMap{
		PrevColumn:  key.NewBinding(key.WithKeys(km.PrevColumn, "left"), key.WithHelp(km.PrevColumn, "prev column")),
		NextColumn:  key.NewBinding(key.WithKeys(km.NextColumn, "right"), key.WithHelp(km.NextColumn, "next column")),
		PrevCard:    key.NewBinding(key.WithKeys(km.PrevCard, "up"), key.WithHelp(km.PrevCard, "prev card")),
		NextCard:    key.NewBinding(key.WithKeys(km.NextCard, "down"), key.WithHelp(km.NextCard, "next card")),
		ScrollLeft:  key.NewBinding(key.WithKeys(km.ScrollViewportLeft), key.WithHelp(km.ScrollViewportLeft, "scroll left")),
		ScrollRight: key.NewBinding(key.WithKeys(km.ScrollViewportRight), key.WithHelp(km.ScrollViewportRight, "scroll right")),
		MoveLeft:    key.NewBinding(key.WithKeys(km.MoveCardLeft), key.WithHelp(km.MoveCardLeft, "move card left")),
		MoveRight:   key.NewBinding(key.WithKeys(km.MoveCardRight), key.WithHelp(km.MoveCardRight, "move card right")),
		Jump:        key.NewBinding(key.WithKeys(km.JumpToColumn), key.WithHelp(km.JumpToColumn, "jump to column")),
		Confirm:     key.NewBinding(key.WithKeys(km.Confirm), key.WithHelp(km.Confirm, "confirm")),
		Cancel:      key.NewBinding(key.WithKeys(km.Cancel), key.WithHelp(km.Cancel, "cancel")),
		Checklist:   key.NewBinding(key.WithKeys(km.ToggleChecklist), key.WithHelp(km.ToggleChecklist, "checklist")),
		Toggle:      key.NewBinding(key.WithKeys("space", " ", "x"), key.WithHelp("space", "toggle item")),
		Reconcile:   key.NewBinding(key.WithKeys(km.Reconcile), key.WithHelp(km.Reconcile, "reconcile card")),
		Refresh:     key.NewBinding(key.WithKeys(km.Refresh), key.WithHelp(km.Refresh, "refresh")),
		Help:        key.NewBinding(key.WithKeys(km.ShowHelp), key.WithHelp(km.ShowHelp, "help")),
		Quit:        key.NewBinding(key.WithKeys(km.Quit, "ctrl+c"), key.WithHelp(km.Quit, "quit")),
	}
}

// ShortHelp is shown in the status bar
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Jump, k.Checklist, k.Help, k.Quit}
}

// FullHelp is shown in the help overlay
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PrevColumn, k.NextColumn, k.PrevCard, k.NextCard, k.ScrollLeft, k.ScrollRight},
		{k.MoveLeft, k.MoveRight, k.Jump, k.Confirm, k.Cancel},
		{k.Checklist, k.Toggle, k.Reconcile, k.Refresh, k.Help, k.Quit},
	}
}
