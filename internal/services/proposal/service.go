package proposal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/thenoetrevino/propboard/internal/checklist"
	"github.com/thenoetrevino/propboard/internal/database"
	"github.com/thenoetrevino/propboard/internal/events"
	"github.com/thenoetrevino/propboard/internal/jump"
	"github.com/thenoetrevino/propboard/internal/models"
	"github.com/thenoetrevino/propboard/internal/types"
	"github.com/thenoetrevino/propboard/internal/workflow"
)

const maxNameLength = 255

// Guarded checklist writes are rebuilt from a fresh read this many times
const (
	conflictRetries = 3
	conflictBackoff = 10 * time.Millisecond
)

// Service defines all proposal-related business operations
type Service interface {
	// Read operations
	GetProposal(ctx context.Context, id types.ProposalID) (*models.Proposal, error)
	GetProposalsByBoard(ctx context.Context, boardID types.BoardID) (*BoardProposals, error)
	JumpOptions(ctx context.Context, id types.ProposalID, role types.Role) ([]jump.Option, error)
	ChecklistReport(ctx context.Context, id types.ProposalID) (*checklist.Report, error)

	// Write operations
	CreateProposal(ctx context.Context, req CreateProposalRequest) (*models.Proposal, error)
	UpdateProposal(ctx context.Context, req UpdateProposalRequest) (*models.Proposal, error)
	DeleteProposal(ctx context.Context, id types.ProposalID) error

	// Movement and checklist
	MoveToColumn(ctx context.Context, id types.ProposalID, columnID types.ColumnID, role types.Role) (*models.Proposal, error)
	SetChecklistItem(ctx context.Context, req SetChecklistItemRequest) (*models.Proposal, error)
	Reconcile(ctx context.Context, id types.ProposalID) (*ReconcileResult, error)
}

var _ jump.Mover = Service(nil)

// CreateProposalRequest encapsulates all data needed to create a proposal
type CreateProposalRequest struct {
	BoardID            types.BoardID
	Name               string
	SolicitationNumber string
	Agency             string
	ContractValue      *float64
	DueDate            *time.Time
	// ColumnID places the proposal; empty means the board's first column
	ColumnID types.ColumnID
	Role     types.Role
}

// UpdateProposalRequest changes the data fields used by system checks.
// Nil pointers and unset Nullables are left as stored.
type UpdateProposalRequest struct {
	ProposalID         types.ProposalID
	Name               *string
	SolicitationNumber *string
	Agency             *string
	ContractValue      models.Nullable[float64]
	DueDate            models.Nullable[time.Time]
}

// SetChecklistItemRequest ticks or clears a manual or approval item
type SetChecklistItemRequest struct {
	ProposalID types.ProposalID
	// ColumnID defaults to the active column
	ColumnID  types.ColumnID
	ItemID    types.ItemID
	Completed bool
	Actor     string
}

// ReconcileResult reports one reconcile pass
type ReconcileResult struct {
	// Proposal is the latest stored state
	Proposal *models.Proposal
	Column   *models.Column
	Changed  []types.ItemID
	// Written is false when nothing differed
	Written bool
}

// BoardProposals groups a board's proposals by active column
type BoardProposals struct {
	Board      *models.BoardConfig
	ByColumn   map[types.ColumnID][]*models.Proposal
	Unresolved []*models.Proposal
}

// service implements Service interface
type service struct {
	repo          database.DataStore
	eventClient   events.EventPublisher
	engine        *workflow.Engine
	checker       *checklist.Reconciler
	clock         func() time.Time
	logger        *slog.Logger
	autoReconcile bool
}

// Option configures the service
type Option func(*service)

// WithEngine sets the transition engine (and its match policy)
func WithEngine(e *workflow.Engine) Option {
	return func(s *service) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithChecker sets the checklist reconciler
func WithChecker(c *checklist.Reconciler) Option {
	return func(s *service) {
		if c != nil {
			s.checker = c
		}
	}
}

// WithClock overrides time.Now for completion dates
func WithClock(clock func() time.Time) Option {
	return func(s *service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger sets the service logger
func WithLogger(l *slog.Logger) Option {
	return func(s *service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithAutoReconcile controls whether writes are followed by a reconcile pass.
// When off, reconciliation is left to the event-driven reconciler.
func WithAutoReconcile(on bool) Option {
	return func(s *service) {
		s.autoReconcile = on
	}
}

// NewService creates a new proposal service
func NewService(repo database.DataStore, eventClient events.EventPublisher, opts ...Option) Service {
	s := &service{
		repo:          repo,
		eventClient:   eventClient,
		clock:         time.Now,
		logger:        slog.Default(),
		autoReconcile: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = workflow.NewEngine(workflow.WithLogger(s.logger))
	}
	if s.checker == nil {
		s.checker = checklist.NewReconciler(s.engine, nil)
	}
	return s
}

// ============================================================================
// READS
// ============================================================================

// GetProposal retrieves a proposal by id
func (s *service) GetProposal(ctx context.Context, id types.ProposalID) (*models.Proposal, error) {
	if strings.TrimSpace(string(id)) == "" {
		return nil, ErrInvalidProposalID
	}
	return s.repo.GetProposal(ctx, id)
}

// GetProposalsByBoard resolves every proposal of the board to its column.
// Proposals whose pointers match nothing are returned separately.
func (s *service) GetProposalsByBoard(ctx context.Context, boardID types.BoardID) (*BoardProposals, error) {
	if strings.TrimSpace(string(boardID)) == "" {
		return nil, ErrInvalidBoardID
	}
	board, err := s.repo.GetBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	proposals, err := s.repo.ListProposalsByBoard(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to list proposals: %w", err)
	}

	out := &BoardProposals{
		Board:    board,
		ByColumn: make(map[types.ColumnID][]*models.Proposal, len(board.Columns)),
	}
	for _, p := range proposals {
		col, err := s.engine.FindActiveColumn(board, p)
		if err != nil {
			out.Unresolved = append(out.Unresolved, p)
			continue
		}
		out.ByColumn[col.ID] = append(out.ByColumn[col.ID], p)
	}
	return out, nil
}

// JumpOptions lists every column with reachability for the role
func (s *service) JumpOptions(ctx context.Context, id types.ProposalID, role types.Role) ([]jump.Option, error) {
	p, board, err := s.snapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	return jump.Options(s.engine, board, p, role), nil
}

// ChecklistReport compares stored and computed checklist state without writing
func (s *service) ChecklistReport(ctx context.Context, id types.ProposalID) (*checklist.Report, error) {
	p, board, err := s.snapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.checker.Report(board, p)
}

// snapshot reads the latest proposal and its board from the store
func (s *service) snapshot(ctx context.Context, id types.ProposalID) (*models.Proposal, *models.BoardConfig, error) {
	p, err := s.GetProposal(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	board, err := s.repo.GetBoard(ctx, p.BoardID)
	if err != nil {
		return nil, nil, err
	}
	return p, board, nil
}

// ============================================================================
// WRITES
// ============================================================================

// CreateProposal stores a new proposal placed in the requested column
func (s *service) CreateProposal(ctx context.Context, req CreateProposalRequest) (*models.Proposal, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	board, err := s.repo.GetBoard(ctx, req.BoardID)
	if err != nil {
		return nil, err
	}

	p := &models.Proposal{
		BoardID:            board.ID,
		OrganizationID:     board.OrganizationID,
		Name:               strings.TrimSpace(req.Name),
		SolicitationNumber: strings.TrimSpace(req.SolicitationNumber),
		Agency:             strings.TrimSpace(req.Agency),
		ContractValue:      req.ContractValue,
		DueDate:            req.DueDate,
	}

	if req.ColumnID != "" {
		target := board.ColumnByID(req.ColumnID)
		if target == nil {
			return nil, fmt.Errorf("%w: %s", models.ErrColumnNotFound, req.ColumnID)
		}
		if p, _, err = workflow.ApplyMove(p, target, req.Role); err != nil {
			return nil, err
		}
	} else if len(board.Columns) > 0 {
		p = p.Apply(workflow.MovePatch(board.Columns[0]))
	}

	created, err := s.repo.CreateProposal(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to create proposal: %w", err)
	}
	s.publishProposalEvent(created)

	return s.afterWrite(ctx, created), nil
}

// UpdateProposal writes the requested data fields as a partial patch
func (s *service) UpdateProposal(ctx context.Context, req UpdateProposalRequest) (*models.Proposal, error) {
	if strings.TrimSpace(string(req.ProposalID)) == "" {
		return nil, ErrInvalidProposalID
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := validateName(name); err != nil {
			return nil, err
		}
		req.Name = &name
	}
	if req.ContractValue.Set && req.ContractValue.Value != nil && *req.ContractValue.Value < 0 {
		return nil, ErrNegativeContractValue
	}

	patch := &models.ProposalPatch{
		Name:               req.Name,
		SolicitationNumber: req.SolicitationNumber,
		Agency:             req.Agency,
		ContractValue:      req.ContractValue,
		DueDate:            req.DueDate,
	}
	updated, err := s.repo.UpdateProposal(ctx, req.ProposalID, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update proposal: %w", err)
	}
	if !patch.IsEmpty() {
		s.publishProposalEvent(updated)
	}
	return s.afterWrite(ctx, updated), nil
}

// DeleteProposal removes a proposal
func (s *service) DeleteProposal(ctx context.Context, id types.ProposalID) error {
	p, err := s.GetProposal(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteProposal(ctx, id); err != nil {
		return fmt.Errorf("failed to delete proposal: %w", err)
	}
	s.publishProposalEvent(p)
	return nil
}

// MoveToColumn is the one write path for drag-and-drop and the jump
// selector. Legality comes from workflow.ApplyMove; only the resulting
// pointer patch is persisted, and the returned proposal is what the store
// holds afterwards.
func (s *service) MoveToColumn(ctx context.Context, id types.ProposalID, columnID types.ColumnID, role types.Role) (*models.Proposal, error) {
	p, board, err := s.snapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	target := board.ColumnByID(columnID)
	if target == nil {
		return nil, fmt.Errorf("%w: %s", models.ErrColumnNotFound, columnID)
	}
	if current, err := s.engine.FindActiveColumn(board, p); err == nil && current.ID == target.ID {
		return nil, models.ErrAlreadyInColumn
	}

	_, patch, err := workflow.ApplyMove(p, target, role)
	if err != nil {
		s.logger.Info("move rejected",
			"proposal_id", id,
			"column_id", columnID,
			"role", role,
			"error", err)
		return nil, err
	}

	updated, err := s.repo.UpdateProposal(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to move proposal: %w", err)
	}
	s.logger.Debug("proposal moved",
		"proposal_id", id,
		"column_id", columnID,
		"version", updated.Version)
	s.publishProposalEvent(updated)

	return s.afterWrite(ctx, updated), nil
}

// SetChecklistItem records a user action on a manual or approval item. The
// whole status map is written with every other entry carried forward, guarded
// by the version it was read at.
func (s *service) SetChecklistItem(ctx context.Context, req SetChecklistItemRequest) (*models.Proposal, error) {
	if strings.TrimSpace(req.Actor) == "" && req.Completed {
		return nil, ErrEmptyActor
	}
	var updated *models.Proposal
	err := retryOnConflict(ctx, func() error {
		var err error
		updated, err = s.setChecklistItem(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publishProposalEvent(updated)

	return s.afterWrite(ctx, updated), nil
}

func (s *service) setChecklistItem(ctx context.Context, req SetChecklistItemRequest) (*models.Proposal, error) {
	p, board, err := s.snapshot(ctx, req.ProposalID)
	if err != nil {
		return nil, err
	}

	col, err := s.checklistColumn(board, p, req.ColumnID)
	if err != nil {
		return nil, err
	}

	var item *models.ChecklistItem
	for i := range col.ChecklistItems {
		if col.ChecklistItems[i].ID == req.ItemID {
			item = &col.ChecklistItems[i]
			break
		}
	}
	if item == nil {
		return nil, fmt.Errorf("%w: %s in column %s", ErrItemNotFound, req.ItemID, col.ID)
	}
	if item.Type == models.ItemTypeSystemCheck {
		return nil, fmt.Errorf("%w: %s", ErrSystemManaged, item.ID)
	}

	entry := models.ChecklistEntry{}
	if req.Completed {
		by := strings.TrimSpace(req.Actor)
		at := s.clock()
		entry = models.ChecklistEntry{Completed: true, CompletedBy: &by, CompletedDate: &at}
	}

	status := p.CurrentStageChecklistStatus.Clone()
	if status[col.ID] == nil {
		status[col.ID] = models.ColumnChecklist{}
	}
	status[col.ID][item.ID] = entry

	updated, err := s.repo.UpdateProposal(ctx, p.ID, &models.ProposalPatch{
		ChecklistStatus: status,
		ExpectedVersion: p.Version,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update checklist: %w", err)
	}
	return updated, nil
}

func (s *service) checklistColumn(board *models.BoardConfig, p *models.Proposal, id types.ColumnID) (*models.Column, error) {
	if id == "" {
		return s.engine.FindActiveColumn(board, p)
	}
	col := board.ColumnByID(id)
	if col == nil {
		return nil, fmt.Errorf("%w: %s", models.ErrColumnNotFound, id)
	}
	return col, nil
}

// Reconcile brings the active column's system checks and action flag up to
// date from the latest stored snapshot. Only a differing result is written,
// and only if nothing else was written since the snapshot; otherwise the pass
// starts over from a fresh read. On a failed write the returned proposal is
// the pre-write snapshot.
func (s *service) Reconcile(ctx context.Context, id types.ProposalID) (*ReconcileResult, error) {
	var out *ReconcileResult
	err := retryOnConflict(ctx, func() error {
		var err error
		out, err = s.reconcile(ctx, id)
		return err
	})
	return out, err
}

func (s *service) reconcile(ctx context.Context, id types.ProposalID) (*ReconcileResult, error) {
	p, board, err := s.snapshot(ctx, id)
	if err != nil {
		return nil, err
	}

	res, err := s.checker.Reconcile(board, p, s.clock())
	out := &ReconcileResult{Proposal: p}
	if err != nil {
		return out, err
	}
	out.Column = res.Column
	out.Changed = res.Changed
	if res.NoOp() {
		return out, nil
	}

	res.Patch.ExpectedVersion = p.Version
	updated, err := s.repo.UpdateProposal(ctx, id, res.Patch)
	if err != nil {
		return out, fmt.Errorf("failed to write checklist: %w", err)
	}
	out.Proposal = updated
	out.Written = true

	s.logger.Debug("checklist reconciled",
		"proposal_id", id,
		"column_id", res.Column.ID,
		"changed", len(res.Changed),
		"action_required", updated.ActionRequired)
	s.publishProposalEvent(updated)
	return out, nil
}

// afterWrite runs a reconcile pass and returns the freshest stored state.
// Failures are logged; the event-driven reconciler will catch up.
func (s *service) afterWrite(ctx context.Context, p *models.Proposal) *models.Proposal {
	if !s.autoReconcile {
		return p
	}
	res, err := s.Reconcile(ctx, p.ID)
	switch {
	case errors.Is(err, models.ErrUnresolvedColumn):
		s.logger.Debug("skipping reconcile", "proposal_id", p.ID, "error", err)
		return p
	case err != nil:
		s.logger.Warn("reconcile after write failed", "proposal_id", p.ID, "error", err)
		return p
	}
	return res.Proposal
}

// retryOnConflict reruns op while its guarded write loses to another write.
// Any other error stops it.
func retryOnConflict(ctx context.Context, op func() error) error {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(conflictBackoff), conflictRetries), ctx)
	return backoff.Retry(func() error {
		err := op()
		if err != nil && !errors.Is(err, models.ErrVersionConflict) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
}

func (s *service) publishProposalEvent(p *models.Proposal) {
	if s.eventClient == nil {
		return
	}
	// best effort; the write already committed
	_ = events.PublishWithRetry(s.eventClient, events.ProposalChanged(p.BoardID, p.ID, p.Version), 3)
}

// ============================================================================
// VALIDATION
// ============================================================================

func validateName(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if len(name) > maxNameLength {
		return ErrNameTooLong
	}
	return nil
}

func validateCreate(req CreateProposalRequest) error {
	if strings.TrimSpace(string(req.BoardID)) == "" {
		return ErrInvalidBoardID
	}
	if err := validateName(strings.TrimSpace(req.Name)); err != nil {
		return err
	}
	if req.ContractValue != nil && *req.ContractValue < 0 {
		return ErrNegativeContractValue
	}
	return nil
}
