package board

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/thenoetrevino/propboard/internal/checklist"
	"github.com/thenoetrevino/propboard/internal/database"
	"github.com/thenoetrevino/propboard/internal/events"
	"github.com/thenoetrevino/propboard/internal/models"
	"github.com/thenoetrevino/propboard/internal/types"
	"github.com/thenoetrevino/propboard/internal/workflow"
)

// Service defines all board configuration operations
type Service interface {
	// Read operations
	GetBoard(ctx context.Context, id types.BoardID) (*models.BoardConfig, error)
	GetBoardByType(ctx context.Context, organizationID, boardType string) (*models.BoardConfig, error)
	ListBoards(ctx context.Context) ([]*models.BoardConfig, error)

	// Write operations
	ImportBoard(ctx context.Context, board *models.BoardConfig) (*ImportResult, error)
	DeleteBoard(ctx context.Context, id types.BoardID) error

	// Validate runs the static checks without writing
	Validate(board *models.BoardConfig) []workflow.Issue
}

// ImportResult reports what an import stored
type ImportResult struct {
	Board *models.BoardConfig
	// Issues holds warnings; imports with errors are rejected
	Issues []workflow.Issue
	// Changed is false when the stored definition was already identical
	Changed bool
}

// service implements Service interface
type service struct {
	repo        database.BoardRepository
	eventClient events.EventPublisher
	cel         *checklist.CELEvaluator
	logger      *slog.Logger
}

// NewService creates a new board service. cel may be nil, in which case item
// expressions are not compiled at import time.
func NewService(repo database.BoardRepository, eventClient events.EventPublisher, cel *checklist.CELEvaluator) Service {
	return &service{
		repo:        repo,
		eventClient: eventClient,
		cel:         cel,
		logger:      slog.Default(),
	}
}

// GetBoard retrieves a board by id
func (s *service) GetBoard(ctx context.Context, id types.BoardID) (*models.BoardConfig, error) {
	if strings.TrimSpace(string(id)) == "" {
		return nil, ErrInvalidBoardID
	}
	return s.repo.GetBoard(ctx, id)
}

// GetBoardByType retrieves the board for an organization and board type
func (s *service) GetBoardByType(ctx context.Context, organizationID, boardType string) (*models.BoardConfig, error) {
	if strings.TrimSpace(organizationID) == "" {
		return nil, ErrEmptyOrganization
	}
	if strings.TrimSpace(boardType) == "" {
		return nil, ErrEmptyBoardType
	}
	return s.repo.GetBoardByType(ctx, organizationID, boardType)
}

// ListBoards returns every stored board
func (s *service) ListBoards(ctx context.Context) ([]*models.BoardConfig, error) {
	return s.repo.ListBoards(ctx)
}

// Validate runs the partition checks and, when a CEL evaluator is configured,
// compiles every checklist expression.
func (s *service) Validate(board *models.BoardConfig) []workflow.Issue {
	issues := workflow.ValidateBoard(board)
	if board == nil || s.cel == nil {
		return issues
	}
	for _, col := range board.Columns {
		if col == nil {
			continue
		}
		for _, item := range col.ChecklistItems {
			if item.Expression == "" {
				continue
			}
			if err := s.cel.Compile(item.Expression); err != nil {
				issues = append(issues, workflow.Issue{
					Severity: workflow.SeverityError,
					ColumnID: col.ID,
					Message:  fmt.Sprintf("item %s: %v", item.ID, err),
				})
			}
		}
	}
	return issues
}

// ImportBoard validates and stores a board definition. Boards are matched by
// id, or by organization and board type when the id is empty. A board-changed
// event is published when the stored version moves.
func (s *service) ImportBoard(ctx context.Context, board *models.BoardConfig) (*ImportResult, error) {
	if board == nil {
		return nil, ErrNilBoard
	}
	if strings.TrimSpace(board.OrganizationID) == "" {
		return nil, ErrEmptyOrganization
	}
	if strings.TrimSpace(board.BoardType) == "" {
		return nil, ErrEmptyBoardType
	}

	var previous int64
	if existing, err := s.existing(ctx, board); err == nil {
		if err := checkLockedColumns(existing, board); err != nil {
			s.logger.Warn("board import rejected", "board_id", existing.ID, "error", err)
			return nil, err
		}
		previous = existing.Version
	}

	issues := s.Validate(board)
	if workflow.HasErrors(issues) {
		return &ImportResult{Issues: issues}, fmt.Errorf("%w: %s", ErrInvalidBoard, firstError(issues))
	}

	stored, err := s.repo.SaveBoard(ctx, board)
	if err != nil {
		return nil, fmt.Errorf("failed to save board: %w", err)
	}

	changed := stored.Version != previous
	if changed {
		s.publishBoardEvent(stored)
	}
	s.logger.Info("board imported",
		"board_id", stored.ID,
		"version", stored.Version,
		"changed", changed)

	return &ImportResult{Board: stored, Issues: issues, Changed: changed}, nil
}

func (s *service) existing(ctx context.Context, board *models.BoardConfig) (*models.BoardConfig, error) {
	if board.ID != "" {
		return s.repo.GetBoard(ctx, board.ID)
	}
	return s.repo.GetBoardByType(ctx, board.OrganizationID, board.BoardType)
}

// checkLockedColumns rejects a definition that drops a column locked in the
// stored board, or changes its label, type, mapping or lock.
func checkLockedColumns(existing, next *models.BoardConfig) error {
	for _, locked := range existing.Columns {
		if locked == nil || !locked.IsLocked {
			continue
		}
		col := next.ColumnByID(locked.ID)
		switch {
		case col == nil:
			return fmt.Errorf("%w: %s was removed", ErrLockedColumn, locked.ID)
		case !col.IsLocked:
			return fmt.Errorf("%w: %s was unlocked", ErrLockedColumn, locked.ID)
		case col.Label != locked.Label:
			return fmt.Errorf("%w: %s was renamed from %q to %q", ErrLockedColumn, locked.ID, locked.Label, col.Label)
		case col.Type != locked.Type,
			col.PhaseMapping != locked.PhaseMapping,
			col.DefaultStatusMapping != locked.DefaultStatusMapping:
			return fmt.Errorf("%w: %s changed its type or mapping", ErrLockedColumn, locked.ID)
		}
	}
	return nil
}

// DeleteBoard removes a board and, through the foreign key, its proposals
func (s *service) DeleteBoard(ctx context.Context, id types.BoardID) error {
	if strings.TrimSpace(string(id)) == "" {
		return ErrInvalidBoardID
	}
	if err := s.repo.DeleteBoard(ctx, id); err != nil {
		return fmt.Errorf("failed to delete board: %w", err)
	}
	s.publishBoardEvent(&models.BoardConfig{ID: id})
	return nil
}

func (s *service) publishBoardEvent(board *models.BoardConfig) {
	if s.eventClient == nil {
		return
	}
	// best effort; the write already committed
	_ = events.PublishWithRetry(s.eventClient, events.BoardChanged(board.ID, board.Version), 3)
}

func firstError(issues []workflow.Issue) string {
	for _, issue := range issues {
		if issue.Severity == workflow.SeverityError {
			return issue.String()
		}
	}
	return ""
}
