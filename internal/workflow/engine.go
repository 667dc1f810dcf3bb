// Package workflow resolves which board column a proposal belongs to and
// decides whether a role may move a proposal into a column.
package workflow

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/thenoetrevino/propboard/internal/models"
	"github.com/thenoetrevino/propboard/internal/types"
)

// MatchPolicy decides which column wins when a proposal's pointers satisfy
// more than one column predicate at once.
type MatchPolicy int

const (
	// MatchColumnOrder picks the first matching column in configured order
	MatchColumnOrder MatchPolicy = iota
	// MatchTypePrecedence prefers custom_stage, then locked_phase, then
	// default_status; column order breaks ties within a type
	MatchTypePrecedence
)

// ParseMatchPolicy maps a config value to a MatchPolicy
func ParseMatchPolicy(s string) (MatchPolicy, error) {
	switch s {
	case "", "column_order":
		return MatchColumnOrder, nil
	case "type_precedence":
		return MatchTypePrecedence, nil
	}
	return MatchColumnOrder, fmt.Errorf("unknown match policy %q", s)
}

func (p MatchPolicy) String() string {
	if p == MatchTypePrecedence {
		return "type_precedence"
	}
	return "column_order"
}

// typeRank orders column types under MatchTypePrecedence (lower wins)
var typeRank = map[models.ColumnType]int{
	models.ColumnTypeCustomStage:   0,
	models.ColumnTypeLockedPhase:   1,
	models.ColumnTypeDefaultStatus: 2,
}

// Resolution is the outcome of matching a proposal against a board
type Resolution struct {
	// Column is the active column, nil when nothing matched
	Column *models.Column
	// Matches lists every matching column in configured order
	Matches []*models.Column
}

// Ambiguous reports whether more than one column matched
func (r Resolution) Ambiguous() bool {
	return len(r.Matches) > 1
}

// Engine is the stage transition engine. The zero value uses MatchColumnOrder
// and the default logger.
type Engine struct {
	policy MatchPolicy
	logger *slog.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithMatchPolicy sets the precedence used for ambiguous matches
func WithMatchPolicy(p MatchPolicy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithLogger sets the engine logger
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// NewEngine creates an engine
func NewEngine(opts ...Option) *Engine {
	e := &Engine{policy: MatchColumnOrder}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Policy returns the configured match policy
func (e *Engine) Policy() MatchPolicy {
	if e == nil {
		return MatchColumnOrder
	}
	return e.policy
}

func (e *Engine) log() *slog.Logger {
	if e == nil || e.logger == nil {
		return slog.Default()
	}
	return e.logger
}

// Matches reports whether a column's addressing predicate is satisfied by the
// proposal. Empty pointer values never match.
func Matches(col *models.Column, p *models.Proposal) bool {
	if col == nil || p == nil {
		return false
	}
	switch col.Type {
	case models.ColumnTypeLockedPhase:
		return p.CurrentPhase != "" && col.PhaseMapping == p.CurrentPhase
	case models.ColumnTypeCustomStage:
		return p.CustomWorkflowStageID != "" && string(col.ID) == p.CustomWorkflowStageID
	case models.ColumnTypeDefaultStatus:
		return p.Status != "" && col.DefaultStatusMapping == p.Status
	}
	return false
}

// Resolve matches the proposal against every column and picks the active one
// under the engine's policy. It depends only on the column list and the three
// pointer fields.
func (e *Engine) Resolve(board *models.BoardConfig, p *models.Proposal) Resolution {
	var res Resolution
	if board == nil || p == nil {
		return res
	}
	for _, col := range board.Columns {
		if Matches(col, p) {
			res.Matches = append(res.Matches, col)
		}
	}
	if len(res.Matches) == 0 {
		return res
	}

	res.Column = res.Matches[0]
	if e.Policy() == MatchTypePrecedence {
		// SortStableFunc keeps configured order within a type
		ranked := slices.Clone(res.Matches)
		slices.SortStableFunc(ranked, func(a, b *models.Column) int {
			return typeRank[a.Type] - typeRank[b.Type]
		})
		res.Column = ranked[0]
	}
	return res
}

// FindActiveColumn returns the single column the proposal currently resolves
// to. It returns models.ErrUnresolvedColumn when no column matches; callers
// must surface that instead of defaulting to a column.
func (e *Engine) FindActiveColumn(board *models.BoardConfig, p *models.Proposal) (*models.Column, error) {
	res := e.Resolve(board, p)
	if res.Column == nil {
		if p == nil {
			return nil, models.ErrUnresolvedColumn
		}
		return nil, fmt.Errorf("%w: proposal %s (phase=%q stage=%q status=%q)",
			models.ErrUnresolvedColumn, p.ID, p.CurrentPhase, p.CustomWorkflowStageID, p.Status)
	}
	if res.Ambiguous() {
		ids := make([]types.ColumnID, len(res.Matches))
		for i, col := range res.Matches {
			ids[i] = col.ID
		}
		e.log().Warn("proposal matches multiple columns",
			"proposal_id", p.ID,
			"board_id", board.ID,
			"matches", ids,
			"chosen", res.Column.ID,
			"policy", e.Policy().String())
	}
	return res.Column, nil
}

// CanMove reports whether role may drop a proposal into column. An empty role
// list means unrestricted. IsLocked only protects the column definition from
// edits and does not affect drag legality.
func CanMove(col *models.Column, role types.Role) bool {
	if col == nil {
		return false
	}
	if len(col.CanDragToHereRoles) == 0 {
		return true
	}
	return col.AllowsRole(role)
}

// MovePatch returns the partial update that places a proposal in target.
// Exactly one pointer field is written; the other two are left as stored.
func MovePatch(target *models.Column) *models.ProposalPatch {
	patch := &models.ProposalPatch{}
	switch target.Type {
	case models.ColumnTypeLockedPhase:
		v := target.PhaseMapping
		patch.CurrentPhase = &v
	case models.ColumnTypeCustomStage:
		v := string(target.ID)
		patch.CustomWorkflowStageID = &v
	case models.ColumnTypeDefaultStatus:
		v := target.DefaultStatusMapping
		patch.Status = &v
	}
	return patch
}

// ApplyMove checks legality and returns a copy of the proposal placed in
// target, together with the patch that persists the move. It is the single
// legality and mutation path for drag-and-drop and the jump selector.
func ApplyMove(p *models.Proposal, target *models.Column, role types.Role) (*models.Proposal, *models.ProposalPatch, error) {
	if p == nil {
		return nil, nil, models.ErrProposalNotFound
	}
	if target == nil {
		return nil, nil, models.ErrColumnNotFound
	}
	if !CanMove(target, role) {
		return nil, nil, fmt.Errorf("%w: role %q cannot move into column %s", models.ErrForbidden, role, target.ID)
	}
	if !target.Type.Valid() {
		return nil, nil, fmt.Errorf("column %s has unknown type %q", target.ID, target.Type)
	}
	patch := MovePatch(target)
	return p.Apply(patch), patch, nil
}
