package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/thenoetrevino/propboard/internal/models"
)

func TestProposalSurvivesRestart(t *testing.T) {
	db, path := setupTestDBFile(t)
	repo := NewRepository(db)
	ctx := context.Background()

	board := createTestBoard(t, repo)
	p := createTestProposal(t, repo, board.ID, "Radar")

	phase := "qualification"
	if _, err := repo.UpdateProposal(ctx, p.ID, nil); err != nil {
		t.Fatalf("nil patch should read: %v", err)
	}
	if _, err := repo.UpdateProposal(ctx, p.ID, patchPhase(phase)); err != nil {
		t.Fatalf("Failed to update proposal: %v", err)
	}

	db = closeAndReopenDB(t, db, path)
	repo = NewRepository(db)

	reloaded, err := repo.GetProposal(ctx, p.ID)
	if err != nil {
		t.Fatalf("Failed to reload proposal: %v", err)
	}
	if reloaded.CurrentPhase != phase {
		t.Errorf("Expected phase %q after restart, got %q", phase, reloaded.CurrentPhase)
	}
	if reloaded.Version != 2 {
		t.Errorf("Expected version 2 after restart, got %d", reloaded.Version)
	}

	reloadedBoard, err := repo.GetBoard(ctx, board.ID)
	if err != nil {
		t.Fatalf("Failed to reload board: %v", err)
	}
	if len(reloadedBoard.Columns) != len(board.Columns) {
		t.Errorf("Expected %d columns, got %d", len(board.Columns), len(reloadedBoard.Columns))
	}
}

func TestMigrationIdempotency(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := runMigrations(ctx, db); err != nil {
			t.Fatalf("Migration run %d failed: %v", i, err)
		}
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('boards', 'proposals')").Scan(&count); err != nil {
		t.Fatalf("Failed to count tables: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 tables, got %d", count)
	}
}

func TestWithTx_Rollback(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	expectedErr := errors.New("intentional error")
	err := withTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO boards (id, organization_id, board_type, updated_at) VALUES ('b', 'o', 't', 'now')`); err != nil {
			return err
		}
		return expectedErr
	})
	if !errors.Is(err, expectedErr) {
		t.Fatalf("Expected error %v, got %v", expectedErr, err)
	}

	var count int
	db.QueryRow("SELECT COUNT(*) FROM boards").Scan(&count)
	if count != 0 {
		t.Errorf("Expected 0 boards (rollback), got %d", count)
	}
}

func TestWithTx_BeginFails(t *testing.T) {
	db := setupTestDB(t)
	db.Close()

	if err := withTx(context.Background(), db, func(tx *sql.Tx) error { return nil }); err == nil {
		t.Fatal("Expected error when beginning transaction on closed DB, got nil")
	}
}

func patchPhase(phase string) *models.ProposalPatch {
	return &models.ProposalPatch{CurrentPhase: &phase}
}
