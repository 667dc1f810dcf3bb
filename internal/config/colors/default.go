package colors

// Default returns the default color scheme (purple theme)
func Default() *ColorScheme {
	return &ColorScheme{
		Preset: "default",

		Accent: "#874BFD",

		ColumnBorder:   "#5F87D7",
		CardBorder:     "#585858",
		SelectedBorder: "#D75FD7",
		DropAllowed:    "#5FD75F",
		DropForbidden:  "#FF5F5F",
		ActionRequired: "#FFD700",

		Title:  "#D75FD7",
		Subtle: "#585858",
		Normal: "#D0D0D0",

		InfoFg:    "#00AFFF",
		InfoBg:    "#00005F",
		WarningFg: "#FFD700",
		WarningBg: "#875F00",
		ErrorFg:   "#FF0000",
		ErrorBg:   "#5F0000",
	}
}
