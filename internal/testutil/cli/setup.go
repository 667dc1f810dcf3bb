package cli

import (
	"testing"

	"github.com/thenoetrevino/propboard/internal/app"
	"github.com/thenoetrevino/propboard/internal/database"
	"github.com/thenoetrevino/propboard/internal/testutil"
)

// SetupCLITest creates an in-memory DB and returns both the repository and
// an App over it. This function is only for CLI tests and is isolated in a
// separate package to avoid import cycles when service tests import testutil.
func SetupCLITest(t *testing.T) (*database.Repository, *app.App) {
	t.Helper()
	repo := testutil.SetupTestDB(t)

	// EventPublisher is nil - event publishing is tested elsewhere
	appInstance, err := app.New(repo)
	if err != nil {
		t.Fatalf("Failed to create app: %v", err)
	}
	return repo, appInstance
}

// SeedPipeline stores the shared four column board and returns its id
func SeedPipeline(t *testing.T, repo *database.Repository) string {
	t.Helper()
	return string(testutil.SeedBoard(t, repo, testutil.PipelineBoard()).ID)
}
