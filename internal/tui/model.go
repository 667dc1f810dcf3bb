// Package tui is the interactive board: proposals as cards in fixed-width
// columns, moved by mouse drag, by keyboard, or through the jump selector.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"charm.land/bubbles/v2/help"
	tea "charm.land/bubbletea/v2"

	"github.com/thenoetrevino/propboard/internal/app"
	"github.com/thenoetrevino/propboard/internal/checklist"
	"github.com/thenoetrevino/propboard/internal/collision"
	"github.com/thenoetrevino/propboard/internal/config"
	"github.com/thenoetrevino/propboard/internal/events"
	"github.com/thenoetrevino/propboard/internal/gesture"
	"github.com/thenoetrevino/propboard/internal/jump"
	"github.com/thenoetrevino/propboard/internal/models"
	"github.com/thenoetrevino/propboard/internal/tui/components"
	"github.com/thenoetrevino/propboard/internal/tui/state"
	"github.com/thenoetrevino/propboard/internal/types"
)

// Options selects the board and who is acting on it
type Options struct {
	BoardID types.BoardID
	Role    types.Role
	// Actor is recorded on checklist items ticked from the board
	Actor string
}

// checklistPanel is the open checklist of one proposal
type checklistPanel struct {
	proposal *models.Proposal
	report   *checklist.Report
	cursor   int
}

// Model represents the application state for the TUI
type Model struct {
	ctx    context.Context
	app    *app.App
	cfg    *config.Config
	logger *slog.Logger
	opts   Options

	keys keyMap
	help help.Model

	appState          *state.AppState
	uiState           *state.UIState
	notificationState *state.NotificationState
	drag              *state.DragState

	gesture   *gesture.Controller
	selector  *jump.Selector
	checklist *checklistPanel

	// events is nil when no transport is connected
	events <-chan events.Event
	live   bool
}

// InitialModel loads the board and subscribes to change events when a
// transport is available
func InitialModel(ctx context.Context, a *app.App, cfg *config.Config, opts Options) (Model, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if opts.Role == "" {
		opts.Role = cfg.Workflow.Role
	}
	components.InitStyles(cfg.ColorScheme)

	m := Model{
		ctx:               ctx,
		app:               a,
		cfg:               cfg,
		logger:            a.Logger(),
		opts:              opts,
		keys:              newKeyMap(cfg.KeyMappings),
		help:              help.New(),
		appState:          state.NewAppState(),
		uiState:           state.NewUIState(),
		notificationState: state.NewNotificationState(),
		drag:              &state.DragState{},
	}
	m.gesture = gesture.NewController(collision.NewResolver(m.logger), m.drop, m.logger)

	if err := m.reload(); err != nil {
		return Model{}, err
	}

	if bus := a.Events(); bus != nil {
		if err := bus.Subscribe(opts.BoardID); err != nil {
			m.logger.Warn("event subscription failed, board will not live update", "error", err)
		} else if ch, err := bus.Listen(ctx); err != nil {
			m.logger.Warn("event listener failed, board will not live update", "error", err)
		} else {
			m.events = ch
			m.live = true
		}
	}
	return m, nil
}

// Init starts listening for change events
func (m Model) Init() tea.Cmd {
	return m.listenForEvents()
}

// reload replaces the board and its cards with what the store holds now
func (m *Model) reload() error {
	bp, err := m.app.ProposalService.GetProposalsByBoard(m.ctx, m.opts.BoardID)
	if err != nil {
		return fmt.Errorf("failed to load board %s: %w", m.opts.BoardID, err)
	}
	m.appState.Load(bp)
	m.uiState.ClampViewport(len(m.appState.Columns()))
	m.clampCard()
	return nil
}

// reloadOrNotify reloads and turns a failure into an error notification
func (m *Model) reloadOrNotify() {
	if err := m.reload(); err != nil {
		m.logger.Error("board reload failed", "board_id", m.opts.BoardID, "error", err)
		m.notificationState.Add(state.LevelError, "Reload failed: "+err.Error())
	}
}

// currentColumn returns the selected column, nil when the board has none
func (m Model) currentColumn() *models.Column {
	return m.appState.Column(m.uiState.SelectedColumn())
}

// currentCard returns the selected proposal, nil when the column is empty
func (m Model) currentCard() *models.Proposal {
	return m.appState.Card(m.uiState.SelectedColumn(), m.uiState.SelectedCard())
}

// clampCard keeps the card selection inside the selected column
func (m *Model) clampCard() {
	col := m.currentColumn()
	if col == nil {
		m.uiState.SetSelectedCard(0)
		return
	}
	n := len(m.appState.Cards(col.ID))
	if m.uiState.SelectedCard() >= n {
		m.uiState.SetSelectedCard(n - 1)
	}
	m.uiState.EnsureCardVisible(col.ID, m.uiState.SelectedCard())
}

// selectProposal moves the selection onto a proposal if it is on the board
func (m *Model) selectProposal(id types.ProposalID) {
	colIdx, cardIdx, ok := m.appState.Find(id)
	if !ok {
		return
	}
	m.uiState.SetSelectedColumn(colIdx)
	m.uiState.SetSelectedCard(cardIdx)
	m.uiState.EnsureSelectionVisible()
	if col := m.currentColumn(); col != nil {
		m.uiState.EnsureCardVisible(col.ID, cardIdx)
	}
}

// drop is the gesture controller's commit callback
func (m Model) drop(id types.ProposalID, target types.ColumnID) error {
	_, err := m.app.ProposalService.MoveToColumn(m.ctx, id, target, m.opts.Role)
	return err
}

// afterMove reloads the board, follows the moved card, and tells the user
// when it did not land in the column it was sent to
func (m *Model) afterMove(p *models.Proposal, target types.ColumnID) {
	m.reloadOrNotify()
	m.selectProposal(p.ID)

	targetCol := m.appState.Column(m.appState.ColumnIndex(target))
	colIdx, _, ok := m.appState.Find(p.ID)
	switch {
	case !ok:
		m.notificationState.Add(state.LevelWarning,
			fmt.Sprintf("'%s' moved but now resolves to no column", p.Name))
	case targetCol != nil && colIdx != m.appState.ColumnIndex(target):
		shown := m.appState.Column(colIdx)
		m.notificationState.Add(state.LevelWarning,
			fmt.Sprintf("'%s' moved to %s but is still shown in %s", p.Name, targetCol.DisplayName(), shown.DisplayName()))
	case targetCol != nil:
		m.notificationState.Add(state.LevelInfo,
			fmt.Sprintf("Moved '%s' to %s", p.Name, targetCol.DisplayName()))
	}
}

// moveFailed reports a rejected move. Nothing was written, so the card is
// still where the store says it is.
func (m *Model) moveFailed(p *models.Proposal, target types.ColumnID, err error) {
	name := string(target)
	if col := m.appState.Column(m.appState.ColumnIndex(target)); col != nil {
		name = col.DisplayName()
	}
	switch {
	case errors.Is(err, models.ErrForbidden), errors.Is(err, jump.ErrUnreachable):
		m.notificationState.Add(state.LevelWarning,
			fmt.Sprintf("Role %s cannot move proposals into %s", m.opts.Role, name))
	case errors.Is(err, models.ErrAlreadyInColumn):
		m.notificationState.Add(state.LevelInfo, fmt.Sprintf("'%s' is already in %s", p.Name, name))
	default:
		m.logger.Error("move failed", "proposal_id", p.ID, "target", target, "error", err)
		m.notificationState.Add(state.LevelError, "Move failed: "+err.Error())
	}
	m.reloadOrNotify()
}

// moveTo moves a proposal through the same path a drop uses
func (m *Model) moveTo(p *models.Proposal, target types.ColumnID) {
	if err := m.drop(p.ID, target); err != nil {
		m.moveFailed(p, target, err)
		return
	}
	m.afterMove(p, target)
}
