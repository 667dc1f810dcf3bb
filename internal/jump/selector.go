// Package jump is the keyboard alternative to dragging: it lists every column
// of the board and commits a selection through the same move path as a drop.
package jump

import (
	"context"
	"errors"
	"fmt"

	"github.com/thenoetrevino/propboard/internal/models"
	"github.com/thenoetrevino/propboard/internal/types"
	"github.com/thenoetrevino/propboard/internal/workflow"
)

// ErrUnreachable is returned when the selected column forbids the role
var ErrUnreachable = errors.New("column is not reachable for this role")

// Mover persists a move. proposal.Service satisfies it.
type Mover interface {
	MoveToColumn(ctx context.Context, proposalID types.ProposalID, columnID types.ColumnID, role types.Role) (*models.Proposal, error)
}

// Option is one row of the selector
type Option struct {
	Column    *models.Column
	Reachable bool
	Current   bool
}

// Options lists every column in board order. Current is false everywhere when
// the proposal resolves to no column.
func Options(engine *workflow.Engine, board *models.BoardConfig, p *models.Proposal, role types.Role) []Option {
	if board == nil {
		return nil
	}
	current, _ := engine.FindActiveColumn(board, p)
	opts := make([]Option, 0, len(board.Columns))
	for _, col := range board.Columns {
		if col == nil {
			continue
		}
		opts = append(opts, Option{
			Column:    col,
			Reachable: workflow.CanMove(col, role),
			Current:   current != nil && current.ID == col.ID,
		})
	}
	return opts
}

// Selector is an open jump menu for one proposal
type Selector struct {
	proposalID types.ProposalID
	role       types.Role
	mover      Mover
	options    []Option
	cursor     int
}

// NewSelector opens a selector with the cursor on the current column
func NewSelector(engine *workflow.Engine, board *models.BoardConfig, p *models.Proposal, role types.Role, mover Mover) *Selector {
	s := &Selector{
		proposalID: p.ID,
		role:       role,
		mover:      mover,
		options:    Options(engine, board, p, role),
	}
	for i, opt := range s.options {
		if opt.Current {
			s.cursor = i
			break
		}
	}
	return s
}

// Options returns the rows in board order
func (s *Selector) Options() []Option {
	return s.options
}

// Cursor returns the highlighted row index
func (s *Selector) Cursor() int {
	return s.cursor
}

// ProposalID returns the proposal being moved
func (s *Selector) ProposalID() types.ProposalID {
	return s.proposalID
}

// Next moves the cursor down, wrapping around
func (s *Selector) Next() {
	if len(s.options) == 0 {
		return
	}
	s.cursor = (s.cursor + 1) % len(s.options)
}

// Prev moves the cursor up, wrapping around
func (s *Selector) Prev() {
	if len(s.options) == 0 {
		return
	}
	s.cursor = (s.cursor - 1 + len(s.options)) % len(s.options)
}

// Highlighted returns the row under the cursor
func (s *Selector) Highlighted() (Option, bool) {
	if s.cursor < 0 || s.cursor >= len(s.options) {
		return Option{}, false
	}
	return s.options[s.cursor], true
}

// Select commits the highlighted column. Unreachable and current columns are
// rejected before anything is written.
func (s *Selector) Select(ctx context.Context) (*models.Proposal, error) {
	opt, ok := s.Highlighted()
	if !ok {
		return nil, models.ErrColumnNotFound
	}
	return s.commit(ctx, opt)
}

// SelectColumn commits a column by id, as the OnSelectColumn callback
func (s *Selector) SelectColumn(ctx context.Context, id types.ColumnID) (*models.Proposal, error) {
	for i, opt := range s.options {
		if opt.Column.ID == id {
			s.cursor = i
			return s.commit(ctx, opt)
		}
	}
	return nil, fmt.Errorf("%w: %s", models.ErrColumnNotFound, id)
}

func (s *Selector) commit(ctx context.Context, opt Option) (*models.Proposal, error) {
	if opt.Current {
		return nil, models.ErrAlreadyInColumn
	}
	if !opt.Reachable {
		return nil, fmt.Errorf("%w: %s", ErrUnreachable, opt.Column.ID)
	}
	return s.mover.MoveToColumn(ctx, s.proposalID, opt.Column.ID, s.role)
}
