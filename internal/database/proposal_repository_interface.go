package database

import (
	"context"

	"github.com/thenoetrevino/propboard/internal/models"
	"github.com/thenoetrevino/propboard/internal/types"
)

// ProposalReader defines read operations for proposals.
type ProposalReader interface {
	GetProposal(ctx context.Context, id types.ProposalID) (*models.Proposal, error)
	ListProposalsByBoard(ctx context.Context, boardID types.BoardID) ([]*models.Proposal, error)
}

// ProposalWriter defines write operations for proposals. Updates always take
// a partial patch; there is no full-record overwrite.
type ProposalWriter interface {
	CreateProposal(ctx context.Context, p *models.Proposal) (*models.Proposal, error)
	UpdateProposal(ctx context.Context, id types.ProposalID, patch *models.ProposalPatch) (*models.Proposal, error)
	DeleteProposal(ctx context.Context, id types.ProposalID) error
}

// ProposalRepository combines all proposal-related operations.
type ProposalRepository interface {
	ProposalReader
	ProposalWriter
}
