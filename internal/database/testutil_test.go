package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/thenoetrevino/propboard/internal/models"
	"github.com/thenoetrevino/propboard/internal/types"
	_ "modernc.org/sqlite"
)

// ============================================================================
// DATABASE SETUP HELPERS
// ============================================================================

// setupTestDB creates an in-memory database and runs migrations
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", dsn(":memory:"))
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	if err := runMigrations(context.Background(), db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// setupTestDBFile creates a file-based database for testing persistence across restarts
func setupTestDBFile(t *testing.T) (*sql.DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "propboard-test.db")

	db, err := InitDB(context.Background(), path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	return db, path
}

// closeAndReopenDB simulates app restart by closing and reopening the database
func closeAndReopenDB(t *testing.T, db *sql.DB, path string) *sql.DB {
	t.Helper()
	if err := db.Close(); err != nil {
		t.Fatalf("Failed to close database: %v", err)
	}

	newDB, err := InitDB(context.Background(), path)
	if err != nil {
		t.Fatalf("Failed to reopen database: %v", err)
	}
	t.Cleanup(func() { newDB.Close() })
	return newDB
}

// ============================================================================
// FIXTURES
// ============================================================================

func testBoard() *models.BoardConfig {
	return &models.BoardConfig{
		ID:             "board-1",
		OrganizationID: "org-1",
		BoardType:      "capture",
		Name:           "Capture pipeline",
		Columns: []*models.Column{
			{ID: "intake", Label: "Intake", Type: models.ColumnTypeDefaultStatus, DefaultStatusMapping: "new"},
			{
				ID: "qualify", Label: "Qualification", Type: models.ColumnTypeLockedPhase, PhaseMapping: "qualification",
				IsLocked: true,
				ChecklistItems: []models.ChecklistItem{
					{ID: "contract_value", Label: "Contract value", Type: models.ItemTypeSystemCheck, Required: true},
				},
			},
			{ID: "red-team", Label: "Red Team", Type: models.ColumnTypeCustomStage, CanDragToHereRoles: []types.Role{"admin"}},
		},
		ViewSettings: map[string]any{"card_density": "compact"},
	}
}

func createTestBoard(t *testing.T, repo *Repository) *models.BoardConfig {
	t.Helper()
	board, err := repo.SaveBoard(context.Background(), testBoard())
	if err != nil {
		t.Fatalf("Failed to save board: %v", err)
	}
	return board
}

func createTestProposal(t *testing.T, repo *Repository, boardID types.BoardID, name string) *models.Proposal {
	t.Helper()
	p, err := repo.CreateProposal(context.Background(), &models.Proposal{
		BoardID:            boardID,
		Name:               name,
		SolicitationNumber: "SOL-" + name,
		Status:             "new",
	})
	if err != nil {
		t.Fatalf("Failed to create proposal: %v", err)
	}
	return p
}
