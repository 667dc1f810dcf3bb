package state

import (
	"github.com/thenoetrevino/propboard/internal/models"
	"github.com/thenoetrevino/propboard/internal/services/proposal"
	"github.com/thenoetrevino/propboard/internal/types"
)

// AppState holds the board being displayed and its proposals grouped by the
// column each one currently resolves to.
type AppState struct {
	board      *models.BoardConfig
	cards      map[types.ColumnID][]*models.Proposal
	unresolved []*models.Proposal
}

// NewAppState creates an empty AppState.
func NewAppState() *AppState {
	return &AppState{cards: make(map[types.ColumnID][]*models.Proposal)}
}

// Load replaces the board and its cards
func (s *AppState) Load(bp *proposal.BoardProposals) {
	if bp == nil {
		return
	}
	s.board = bp.Board
	s.cards = bp.ByColumn
	if s.cards == nil {
		s.cards = make(map[types.ColumnID][]*models.Proposal)
	}
	s.unresolved = bp.Unresolved
}

// Board returns the loaded board, nil before the first load
func (s *AppState) Board() *models.BoardConfig {
	return s.board
}

// Columns returns the board's columns in configured order
func (s *AppState) Columns() []*models.Column {
	if s.board == nil {
		return nil
	}
	return s.board.Columns
}

// Column returns the column at index, or nil
func (s *AppState) Column(index int) *models.Column {
	cols := s.Columns()
	if index < 0 || index >= len(cols) {
		return nil
	}
	return cols[index]
}

// ColumnIndex returns the position of a column, or -1
func (s *AppState) ColumnIndex(id types.ColumnID) int {
	for i, col := range s.Columns() {
		if col.ID == id {
			return i
		}
	}
	return -1
}

// Cards returns the proposals shown in a column
func (s *AppState) Cards(columnID types.ColumnID) []*models.Proposal {
	return s.cards[columnID]
}

// Card returns the proposal at a position, or nil
func (s *AppState) Card(columnIdx, cardIdx int) *models.Proposal {
	col := s.Column(columnIdx)
	if col == nil {
		return nil
	}
	cards := s.cards[col.ID]
	if cardIdx < 0 || cardIdx >= len(cards) {
		return nil
	}
	return cards[cardIdx]
}

// Find locates a proposal on the board. ok is false when it is not shown in
// any column.
func (s *AppState) Find(id types.ProposalID) (columnIdx, cardIdx int, ok bool) {
	for i, col := range s.Columns() {
		for j, p := range s.cards[col.ID] {
			if p.ID == id {
				return i, j, true
			}
		}
	}
	return -1, -1, false
}

// Unresolved returns proposals whose stage pointers match no column
func (s *AppState) Unresolved() []*models.Proposal {
	return s.unresolved
}
