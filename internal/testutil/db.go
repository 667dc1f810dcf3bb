package testutil

import (
	"context"
	"testing"

	"github.com/thenoetrevino/propboard/internal/database"
	"github.com/thenoetrevino/propboard/internal/models"
	"github.com/thenoetrevino/propboard/internal/types"
)

// SetupTestDB creates an in-memory database with the full schema and
// returns a repository over it. The database is closed on cleanup.
func SetupTestDB(t *testing.T) *database.Repository {
	t.Helper()
	db, err := database.InitDB(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return database.NewRepository(db)
}

// PipelineBoard returns a four column board exercising every column type:
//
//	intake     default_status "new", manual "kickoff"
//	qualify    locked_phase "qualification", system checks contract_value and
//	           due_date plus approval "bid_decision", all required
//	red-team   custom_stage, capture_manager and admin only
//	submitted  default_status "submitted", admin only
func PipelineBoard() *models.BoardConfig {
	return &models.BoardConfig{
		ID:             "board-1",
		OrganizationID: "org-1",
		BoardType:      "capture",
		Name:           "Capture pipeline",
		Columns: []*models.Column{
			{
				ID: "intake", Label: "Intake", Type: models.ColumnTypeDefaultStatus, DefaultStatusMapping: "new",
				ChecklistItems: []models.ChecklistItem{
					{ID: "kickoff", Label: "Kickoff call", Type: models.ItemTypeManual},
				},
			},
			{
				ID: "qualify", Label: "Qualification", Type: models.ColumnTypeLockedPhase, PhaseMapping: "qualification",
				IsLocked: true,
				ChecklistItems: []models.ChecklistItem{
					{ID: models.CheckContractValue, Label: "Contract value", Type: models.ItemTypeSystemCheck, Required: true},
					{ID: models.CheckDueDate, Label: "Due date", Type: models.ItemTypeSystemCheck, Required: true},
					{ID: "bid_decision", Label: "Bid decision", Type: models.ItemTypeApproval, Required: true},
				},
			},
			{
				ID: "red-team", Label: "Red team", Type: models.ColumnTypeCustomStage,
				CanDragToHereRoles: []types.Role{"capture_manager", "admin"},
			},
			{
				ID: "submitted", Label: "Submitted", Type: models.ColumnTypeDefaultStatus, DefaultStatusMapping: "submitted",
				CanDragToHereRoles: []types.Role{"admin"},
			},
		},
	}
}

// SeedBoard stores a board and returns it as stored
func SeedBoard(t *testing.T, repo database.BoardWriter, board *models.BoardConfig) *models.BoardConfig {
	t.Helper()
	stored, err := repo.SaveBoard(context.Background(), board)
	if err != nil {
		t.Fatalf("Failed to seed board: %v", err)
	}
	return stored
}

// CreateTestProposal stores a proposal on the board. mutate, when given, can
// set pointers and data fields before insert.
func CreateTestProposal(t *testing.T, repo database.ProposalWriter, boardID types.BoardID, name string, mutate func(*models.Proposal)) *models.Proposal {
	t.Helper()
	p := &models.Proposal{
		BoardID:            boardID,
		OrganizationID:     "org-1",
		Name:               name,
		SolicitationNumber: "SOL-" + name,
		Agency:             "GSA",
		Status:             "new",
	}
	if mutate != nil {
		mutate(p)
	}
	created, err := repo.CreateProposal(context.Background(), p)
	if err != nil {
		t.Fatalf("Failed to create test proposal: %v", err)
	}
	return created
}

// FloatPtr returns a pointer to v
func FloatPtr(v float64) *float64 {
	return &v
}
