package colors

// ColorScheme defines all configurable color values of the board UI
type ColorScheme struct {
	// Preset name (e.g., "default", "monochrome")
	Preset string `yaml:"preset"`

	// Primary accent color (selection, titles)
	Accent string `yaml:"accent"`

	// Board elements
	ColumnBorder   string `yaml:"column_border"`
	CardBorder     string `yaml:"card_border"`
	SelectedBorder string `yaml:"selected_border"`
	DropAllowed    string `yaml:"drop_allowed"`   // Column highlight under a legal drag
	DropForbidden  string `yaml:"drop_forbidden"` // Column highlight under a forbidden drag
	ActionRequired string `yaml:"action_required"`

	// Text colors
	Title  string `yaml:"title"`
	Subtle string `yaml:"subtle"`
	Normal string `yaml:"normal"`

	// Notification colors (foreground/background pairs)
	InfoFg    string `yaml:"info_fg"`
	InfoBg    string `yaml:"info_bg"`
	WarningFg string `yaml:"warning_fg"`
	WarningBg string `yaml:"warning_bg"`
	ErrorFg   string `yaml:"error_fg"`
	ErrorBg   string `yaml:"error_bg"`
}

// fields lists every color slot in a fixed order
func (c *ColorScheme) fields() []*string {
	return []*string{
		&c.Accent,
		&c.ColumnBorder, &c.CardBorder, &c.SelectedBorder,
		&c.DropAllowed, &c.DropForbidden, &c.ActionRequired,
		&c.Title, &c.Subtle, &c.Normal,
		&c.InfoFg, &c.InfoBg, &c.WarningFg, &c.WarningBg, &c.ErrorFg, &c.ErrorBg,
	}
}

// GetPreset returns a preset color scheme by name
func GetPreset(name string) *ColorScheme {
	switch name {
	case "monochrome":
		return Monochrome()
	default:
		return Default()
	}
}

// ApplyDefaults fills in missing color values from the named preset
func (c *ColorScheme) ApplyDefaults() {
	preset := GetPreset(c.Preset)
	if c.Preset == "" {
		c.Preset = preset.Preset
	}
	dst, src := c.fields(), preset.fields()
	for i := range dst {
		if *dst[i] == "" {
			*dst[i] = *src[i]
		}
	}
}

// MergeFrom copies every non-empty value of other over c
func (c *ColorScheme) MergeFrom(other ColorScheme) {
	if other.Preset != "" {
		c.Preset = other.Preset
	}
	dst, src := c.fields(), other.fields()
	for i := range dst {
		if *src[i] != "" {
			*dst[i] = *src[i]
		}
	}
}
