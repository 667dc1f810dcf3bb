package database

import (
	"context"

	"github.com/thenoetrevino/propboard/internal/models"
	"github.com/thenoetrevino/propboard/internal/types"
)

// BoardReader defines read operations for board configurations.
type BoardReader interface {
	GetBoard(ctx context.Context, id types.BoardID) (*models.BoardConfig, error)
	GetBoardByType(ctx context.Context, organizationID, boardType string) (*models.BoardConfig, error)
	ListBoards(ctx context.Context) ([]*models.BoardConfig, error)
}

// BoardWriter defines write operations for board configurations.
type BoardWriter interface {
	SaveBoard(ctx context.Context, board *models.BoardConfig) (*models.BoardConfig, error)
	DeleteBoard(ctx context.Context, id types.BoardID) error
}

// BoardRepository combines all board-related operations.
type BoardRepository interface {
	BoardReader
	BoardWriter
}
