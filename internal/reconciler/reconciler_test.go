package reconciler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thenoetrevino/propboard/internal/database"
	"github.com/thenoetrevino/propboard/internal/events"
	"github.com/thenoetrevino/propboard/internal/models"
	"github.com/thenoetrevino/propboard/internal/services/proposal"
	"github.com/thenoetrevino/propboard/internal/testutil"
	"github.com/thenoetrevino/propboard/internal/types"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

// flakyWriter fails the first failures calls with err before delegating
type flakyWriter struct {
	next     Writer
	err      error
	failures int

	mu    sync.Mutex
	calls int
}

func (w *flakyWriter) Reconcile(ctx context.Context, id types.ProposalID) (*proposal.ReconcileResult, error) {
	w.mu.Lock()
	w.calls++
	fail := w.calls <= w.failures
	w.mu.Unlock()
	if fail {
		return nil, w.err
	}
	return w.next.Reconcile(ctx, id)
}

func (w *flakyWriter) Calls() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.calls
}

type fixture struct {
	repo  *database.Repository
	svc   proposal.Service
	board *models.BoardConfig
}

func setup(t *testing.T) *fixture {
	t.Helper()
	repo := testutil.SetupTestDB(t)
	return &fixture{
		repo:  repo,
		svc:   proposal.NewService(repo, nil, proposal.WithAutoReconcile(false)),
		board: testutil.SeedBoard(t, repo, testutil.PipelineBoard()),
	}
}

func (f *fixture) qualifying(t *testing.T, name string) *models.Proposal {
	t.Helper()
	return testutil.CreateTestProposal(t, f.repo, f.board.ID, name, func(p *models.Proposal) {
		p.CurrentPhase = "qualification"
		p.Status = ""
	})
}

func fastRetry() Option {
	return WithRetry(3, time.Millisecond)
}

// ============================================================================
// OBSERVE
// ============================================================================

func TestObserve_SkipsSeenSnapshots(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	r := New(f.repo, f.svc, fastRetry())
	p := f.qualifying(t, "alpha")

	outcome, err := r.Observe(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeWritten, outcome)

	// the write's own change event
	outcome, err = r.Observe(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)

	// new data arrives
	_, err = f.repo.UpdateProposal(ctx, p.ID, &models.ProposalPatch{ContractValue: models.NullableOf(50000.0)})
	require.NoError(t, err)
	outcome, err = r.Observe(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeWritten, outcome)

	stored, err := f.repo.GetProposal(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, stored.CurrentStageChecklistStatus.Completed("qualify", models.CheckContractValue))
}

func TestObserve_BoardVersionChangeReevaluates(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	r := New(f.repo, f.svc, fastRetry())
	p := f.qualifying(t, "alpha")

	_, err := r.Observe(ctx, p.ID)
	require.NoError(t, err)

	b := testutil.PipelineBoard()
	b.Columns[1].ChecklistItems = append(b.Columns[1].ChecklistItems, models.ChecklistItem{
		ID: models.CheckAgency, Label: "Agency", Type: models.ItemTypeSystemCheck,
	})
	testutil.SeedBoard(t, f.repo, b)

	outcome, err := r.Observe(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeWritten, outcome)

	stored, err := f.repo.GetProposal(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, stored.CurrentStageChecklistStatus.Completed("qualify", models.CheckAgency))
}

func TestObserve_RetriesRecoverableFailures(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	w := &flakyWriter{
		next:     f.svc,
		err:      &models.PersistenceError{Op: "update proposal", Err: errors.New("database is locked")},
		failures: 2,
	}
	r := New(f.repo, w, fastRetry())
	p := f.qualifying(t, "retry")

	outcome, err := r.Observe(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeWritten, outcome)
	assert.Equal(t, 3, w.Calls())
}

func TestObserve_GivesUp(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	p := f.qualifying(t, "stuck")

	t.Run("recoverable until retries run out", func(t *testing.T) {
		w := &flakyWriter{next: f.svc, err: &models.PersistenceError{Op: "x", Err: errors.New("disk full")}, failures: 100}
		r := New(f.repo, w, fastRetry())

		_, err := r.Observe(ctx, p.ID)
		assert.True(t, models.IsRecoverable(err))
		assert.Equal(t, 4, w.Calls())
	})

	t.Run("permanent error is not retried", func(t *testing.T) {
		w := &flakyWriter{next: f.svc, err: errors.New("boom"), failures: 100}
		r := New(f.repo, w, fastRetry())

		_, err := r.Observe(ctx, p.ID)
		assert.EqualError(t, err, "boom")
		assert.Equal(t, 1, w.Calls())
	})

	t.Run("failure is retried on the next observation", func(t *testing.T) {
		w := &flakyWriter{next: f.svc, err: errors.New("boom"), failures: 1}
		r := New(f.repo, w, fastRetry())

		_, err := r.Observe(ctx, p.ID)
		require.Error(t, err)
		outcome, err := r.Observe(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, OutcomeWritten, outcome)
	})
}

func TestObserve_UnresolvedAndGone(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	r := New(f.repo, f.svc, fastRetry())

	lost := testutil.CreateTestProposal(t, f.repo, f.board.ID, "lost", func(p *models.Proposal) {
		p.Status = "archived"
	})
	outcome, err := r.Observe(ctx, lost.ID)
	assert.ErrorIs(t, err, models.ErrUnresolvedColumn)
	assert.Equal(t, OutcomeUnresolved, outcome)

	outcome, err = r.Observe(ctx, lost.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)

	outcome, err = r.Observe(ctx, "does-not-exist")
	require.NoError(t, err)
	assert.Equal(t, OutcomeGone, outcome)
}

// ============================================================================
// SWEEPS AND EVENTS
// ============================================================================

func TestReconcileBoard(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	r := New(f.repo, f.svc, fastRetry(), WithConcurrency(2))

	for _, name := range []string{"a", "b", "c"} {
		f.qualifying(t, name)
	}
	testutil.CreateTestProposal(t, f.repo, f.board.ID, "intake", nil)
	testutil.CreateTestProposal(t, f.repo, f.board.ID, "lost", func(p *models.Proposal) { p.Status = "gone" })

	summary, err := r.ReconcileBoard(ctx, f.board.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), summary.Written)
	// intake has only a manual, non-required item
	assert.Equal(t, int64(1), summary.Unchanged)
	assert.Equal(t, int64(1), summary.Unresolved)
	assert.Zero(t, summary.Failed)

	again, err := r.ReconcileAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, again.Written)
	assert.Equal(t, int64(5), again.Skipped)
}

func TestRun_ConsumesEvents(t *testing.T) {
	f := setup(t)
	r := New(f.repo, f.svc, fastRetry())
	p := f.qualifying(t, "evented")

	ch := make(chan events.Event, 4)
	ch <- events.ProposalChanged(f.board.ID, p.ID, p.Version)
	ch <- events.BoardChanged(f.board.ID, f.board.Version)
	ch <- events.Event{Type: events.EventPing}
	close(ch)

	require.NoError(t, r.Run(context.Background(), ch))

	stored, err := f.repo.GetProposal(context.Background(), p.ID)
	require.NoError(t, err)
	_, ok := stored.CurrentStageChecklistStatus.Entry("qualify", models.CheckDueDate)
	assert.True(t, ok)
	assert.True(t, stored.ActionRequired)
}

func TestRun_StopsOnCancel(t *testing.T) {
	f := setup(t)
	r := New(f.repo, f.svc)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx, make(chan events.Event)) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "written", OutcomeWritten.String())
	assert.Equal(t, "unchanged", OutcomeUnchanged.String())
	assert.Equal(t, "gone", OutcomeGone.String())
}
