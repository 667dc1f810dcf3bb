package state

import "github.com/thenoetrevino/propboard/internal/types"

// Mode represents the current interaction mode of the board.
// Each mode determines which keys are active and what overlay is displayed.
type Mode int

const (
	NormalMode    Mode = iota // Default navigation mode
	JumpMode                  // Column jump selector is open
	ChecklistMode             // Checklist of the selected card is open
	HelpMode                  // Displaying help screen
)

// Board layout, in terminal cells. Every column is drawn at a fixed width so
// its position can be computed from its index and the viewport offset.
const (
	ColumnWidth  = 30 // border + padding + content
	ColumnGap    = 1
	ColumnStride = ColumnWidth + ColumnGap

	// BoardLeft leaves room for the left scroll indicator
	BoardLeft = 2
	// BoardTop is the first row of the columns, below the header line
	BoardTop = 2
	// FooterHeight is the gap line plus the status bar
	FooterHeight = 2

	// ColumnHeaderLines is the border, title and scroll indicator above the first card
	ColumnHeaderLines = 3
	// CardHeight is the bordered card: top border, name, details, bottom border
	CardHeight = 4
)

// UIState manages the user interface state.
// This includes navigation (column/card selection), viewport scrolling,
// terminal dimensions, and the current interaction mode.
type UIState struct {
	selectedColumn int
	selectedCard   int

	width  int
	height int

	mode Mode

	// viewportOffset is the index of the leftmost visible column
	viewportOffset int
	// viewportSize is the number of columns that fit on the screen
	viewportSize int

	// cardScrollOffsets is the index of the first visible card per column
	cardScrollOffsets map[types.ColumnID]int
}

// NewUIState creates a new UIState with default values.
func NewUIState() *UIState {
	return &UIState{
		mode:              NormalMode,
		viewportSize:      1, // recalculated when width is set
		cardScrollOffsets: make(map[types.ColumnID]int),
	}
}

func (s *UIState) SelectedColumn() int         { return s.selectedColumn }
func (s *UIState) SetSelectedColumn(index int) { s.selectedColumn = max(0, index) }
func (s *UIState) SelectedCard() int           { return s.selectedCard }
func (s *UIState) SetSelectedCard(index int)   { s.selectedCard = max(0, index) }
func (s *UIState) Width() int                  { return s.width }
func (s *UIState) Height() int                 { return s.height }
func (s *UIState) Mode() Mode                  { return s.mode }
func (s *UIState) SetMode(mode Mode)           { s.mode = mode }
func (s *UIState) ViewportOffset() int         { return s.viewportOffset }
func (s *UIState) ViewportSize() int           { return s.viewportSize }

// SetSize updates the terminal dimensions and recalculates the viewport size.
func (s *UIState) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.calculateViewportSize()
}

// SetViewportOffset updates the viewport offset.
func (s *UIState) SetViewportOffset(offset int) {
	s.viewportOffset = max(0, offset)
}

// ContentHeight returns the height of a column box, ensuring room for at
// least one card.
func (s *UIState) ContentHeight() int {
	return max(s.height-BoardTop-FooterHeight, ColumnHeaderLines+CardHeight+1)
}

// VisibleCards is how many cards fit in one column
func (s *UIState) VisibleCards() int {
	// header lines plus bottom indicator and bottom border
	return max((s.ContentHeight()-ColumnHeaderLines-2)/CardHeight, 1)
}

// calculateViewportSize calculates how many columns fit in the terminal width,
// reserving a scroll indicator on both sides. At least one column is visible.
func (s *UIState) calculateViewportSize() {
	if s.width == 0 {
		s.viewportSize = 1
		return
	}
	available := s.width - 2*BoardLeft
	s.viewportSize = max(1, (available+ColumnGap)/ColumnStride)
}

// ClampViewport keeps the viewport inside the board after a resize or reload.
func (s *UIState) ClampViewport(columnsLen int) {
	if s.viewportOffset+s.viewportSize > columnsLen {
		s.viewportOffset = max(0, columnsLen-s.viewportSize)
	}
	if s.selectedColumn >= columnsLen {
		s.selectedColumn = max(0, columnsLen-1)
	}
}

// ScrollViewportLeft scrolls the viewport one column to the left.
// Returns true if scrolling occurred.
func (s *UIState) ScrollViewportLeft() bool {
	if s.viewportOffset > 0 {
		s.viewportOffset--
		return true
	}
	return false
}

// ScrollViewportRight scrolls the viewport one column to the right.
// Returns true if scrolling occurred.
func (s *UIState) ScrollViewportRight(columnsLen int) bool {
	if s.viewportOffset+s.viewportSize < columnsLen {
		s.viewportOffset++
		return true
	}
	return false
}

// EnsureSelectionVisible adjusts the viewport so the selected column is on screen.
func (s *UIState) EnsureSelectionVisible() {
	if s.selectedColumn < s.viewportOffset {
		s.viewportOffset = s.selectedColumn
	}
	if s.selectedColumn >= s.viewportOffset+s.viewportSize {
		s.viewportOffset = s.selectedColumn - s.viewportSize + 1
	}
}

// ColumnVisible reports whether the column at index is inside the viewport
func (s *UIState) ColumnVisible(index int) bool {
	return index >= s.viewportOffset && index < s.viewportOffset+s.viewportSize
}

// ScrollLeftCells is the horizontal scroll position in cells
func (s *UIState) ScrollLeftCells() int {
	return s.viewportOffset * ColumnStride
}

// CardScrollOffset returns the index of the first visible card of a column.
func (s *UIState) CardScrollOffset(columnID types.ColumnID) int {
	return s.cardScrollOffsets[columnID]
}

// EnsureCardVisible adjusts the column's scroll offset so the card is visible.
func (s *UIState) EnsureCardVisible(columnID types.ColumnID, cardIdx int) {
	visible := s.VisibleCards()
	offset := s.cardScrollOffsets[columnID]
	if cardIdx < offset {
		offset = cardIdx
	}
	if cardIdx >= offset+visible {
		offset = cardIdx - visible + 1
	}
	s.cardScrollOffsets[columnID] = max(0, offset)
}

// ResetSelection clears selection and scrolling
func (s *UIState) ResetSelection() {
	s.selectedColumn = 0
	s.selectedCard = 0
	s.viewportOffset = 0
	s.cardScrollOffsets = make(map[types.ColumnID]int)
}
