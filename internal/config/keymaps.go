package config

// KeyMappings defines all configurable key bindings of the board UI
type KeyMappings struct {
	// Navigation
	PrevColumn          string `yaml:"prev_column"`
	NextColumn          string `yaml:"next_column"`
	PrevCard            string `yaml:"prev_card"`
	NextCard            string `yaml:"next_card"`
	ScrollViewportLeft  string `yaml:"scroll_viewport_left"`
	ScrollViewportRight string `yaml:"scroll_viewport_right"`

	// Moving proposals
	MoveCardLeft  string `yaml:"move_card_left"`
	MoveCardRight string `yaml:"move_card_right"`
	JumpToColumn  string `yaml:"jump_to_column"` // Also opens the selector mid-drag
	Confirm       string `yaml:"confirm"`
	Cancel        string `yaml:"cancel"`

	// Proposals
	ToggleChecklist string `yaml:"toggle_checklist"`
	Reconcile       string `yaml:"reconcile"`
	Refresh         string `yaml:"refresh"`

	// Other
	ShowHelp string `yaml:"show_help"`
	Quit     string `yaml:"quit"`
}

// DefaultKeyMappings returns the default key mappings
func DefaultKeyMappings() KeyMappings {
	return KeyMappings{
		PrevColumn:          "h",
		NextColumn:          "l",
		PrevCard:            "k",
		NextCard:            "j",
		ScrollViewportLeft:  "[",
		ScrollViewportRight: "]",

		MoveCardLeft:  "H",
		MoveCardRight: "L",
		JumpToColumn:  "g",
		Confirm:       "enter",
		Cancel:        "esc",

		ToggleChecklist: "c",
		Reconcile:       "R",
		Refresh:         "r",

		ShowHelp: "?",
		Quit:     "q",
	}
}

func (k *KeyMappings) bindings() []*string {
	return []*string{
		&k.PrevColumn, &k.NextColumn, &k.PrevCard, &k.NextCard,
		&k.ScrollViewportLeft, &k.ScrollViewportRight,
		&k.MoveCardLeft, &k.MoveCardRight, &k.JumpToColumn, &k.Confirm, &k.Cancel,
		&k.ToggleChecklist, &k.Reconcile, &k.Refresh,
		&k.ShowHelp, &k.Quit,
	}
}

// applyDefaults fills in missing key mappings with defaults
func (k *KeyMappings) applyDefaults() {
	defaults := DefaultKeyMappings()
	dst, src := k.bindings(), defaults.bindings()
	for i := range dst {
		if *dst[i] == "" {
			*dst[i] = *src[i]
		}
	}
}
