// Package reconciler keeps stored checklist state in step with proposal and
// board changes. It observes change events and re-evaluates a proposal only
// when its (proposal version, board version) pair has not been seen before.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"github.com/thenoetrevino/propboard/internal/database"
	"github.com/thenoetrevino/propboard/internal/events"
	"github.com/thenoetrevino/propboard/internal/models"
	"github.com/thenoetrevino/propboard/internal/services/proposal"
	"github.com/thenoetrevino/propboard/internal/types"
)

// Store is the read side the reconciler needs for snapshots and sweeps
type Store interface {
	database.BoardReader
	database.ProposalReader
}

// Writer performs one reconcile pass against the latest stored state.
// proposal.Service satisfies it.
type Writer interface {
	Reconcile(ctx context.Context, id types.ProposalID) (*proposal.ReconcileResult, error)
}

// Outcome describes what Observe did
type Outcome int

const (
	OutcomeUnchanged Outcome = iota
	OutcomeWritten
	OutcomeSkipped
	OutcomeUnresolved
	OutcomeGone
)

func (o Outcome) String() string {
	switch o {
	case OutcomeWritten:
		return "written"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeUnresolved:
		return "unresolved"
	case OutcomeGone:
		return "gone"
	default:
		return "unchanged"
	}
}

type snapshotKey struct {
	proposal int64
	board    int64
}

// Reconciler is the reactive side effect that follows every change
type Reconciler struct {
	store  Store
	writer Writer
	logger *slog.Logger

	maxRetries  uint64
	initialWait time.Duration
	concurrency int

	mu   sync.Mutex
	seen map[types.ProposalID]snapshotKey
}

// Option configures a Reconciler
type Option func(*Reconciler)

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(r *Reconciler) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRetry sets how often a failed write is retried and the first delay
func WithRetry(maxRetries uint64, initial time.Duration) Option {
	return func(r *Reconciler) {
		r.maxRetries = maxRetries
		if initial > 0 {
			r.initialWait = initial
		}
	}
}

// WithConcurrency bounds parallel reconciles during a board sweep
func WithConcurrency(n int) Option {
	return func(r *Reconciler) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// New creates a Reconciler
func New(store Store, writer Writer, opts ...Option) *Reconciler {
	r := &Reconciler{
		store:       store,
		writer:      writer,
		logger:      slog.Default(),
		maxRetries:  4,
		initialWait: 100 * time.Millisecond,
		concurrency: 4,
		seen:        make(map[types.ProposalID]snapshotKey),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Reconciler) alreadySeen(id types.ProposalID, k snapshotKey) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, ok := r.seen[id]
	return ok && prev == k
}

func (r *Reconciler) remember(id types.ProposalID, k snapshotKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen[id] = k
}

func (r *Reconciler) forget(id types.ProposalID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.seen, id)
}

// Observe reconciles one proposal if its snapshot changed since the last
// pass. Recoverable persistence failures are retried with exponential
// backoff; everything else is permanent. An unresolved proposal returns an
// error wrapping models.ErrUnresolvedColumn and is not retried until its
// snapshot changes.
func (r *Reconciler) Observe(ctx context.Context, id types.ProposalID) (Outcome, error) {
	p, err := r.store.GetProposal(ctx, id)
	if errors.Is(err, models.ErrProposalNotFound) {
		r.forget(id)
		return OutcomeGone, nil
	}
	if err != nil {
		return OutcomeUnchanged, fmt.Errorf("load proposal: %w", err)
	}
	board, err := r.store.GetBoard(ctx, p.BoardID)
	if err != nil {
		return OutcomeUnchanged, fmt.Errorf("load board: %w", err)
	}

	key := snapshotKey{proposal: p.Version, board: board.Version}
	if r.alreadySeen(id, key) {
		r.logger.Debug("skipping reconcile, snapshot unchanged",
			"proposal_id", id,
			"version", p.Version,
			"board_version", board.Version)
		return OutcomeSkipped, nil
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = r.initialWait
	exp.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, r.maxRetries), ctx)

	var res *proposal.ReconcileResult
	attempt := 0
	err = backoff.RetryNotify(func() error {
		attempt++
		out, err := r.writer.Reconcile(ctx, id)
		res = out
		if err != nil && !models.IsRecoverable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy, func(err error, wait time.Duration) {
		r.logger.Warn("reconcile write failed, retrying",
			"proposal_id", id,
			"attempt", attempt,
			"retry_in", wait,
			"error", err)
	})

	switch {
	case errors.Is(err, models.ErrUnresolvedColumn):
		r.remember(id, key)
		r.logger.Debug("reconcile skipped, proposal resolves to no column", "proposal_id", id)
		return OutcomeUnresolved, err
	case errors.Is(err, models.ErrProposalNotFound):
		r.forget(id)
		return OutcomeGone, nil
	case err != nil:
		return OutcomeUnchanged, err
	}

	// the post-write version, so the event our own write causes is skipped
	r.remember(id, snapshotKey{proposal: res.Proposal.Version, board: board.Version})
	if res.Written {
		r.logger.Info("checklist reconciled",
			"proposal_id", id,
			"changed", len(res.Changed),
			"version", res.Proposal.Version)
		return OutcomeWritten, nil
	}
	return OutcomeUnchanged, nil
}

// Summary counts the outcomes of a sweep
type Summary struct {
	Written    int64 `json:"written"`
	Unchanged  int64 `json:"unchanged"`
	Skipped    int64 `json:"skipped"`
	Unresolved int64 `json:"unresolved"`
	Failed     int64 `json:"failed"`
}

func (s *Summary) add(o Outcome) {
	switch o {
	case OutcomeWritten:
		atomic.AddInt64(&s.Written, 1)
	case OutcomeSkipped:
		atomic.AddInt64(&s.Skipped, 1)
	case OutcomeUnresolved:
		atomic.AddInt64(&s.Unresolved, 1)
	case OutcomeUnchanged:
		atomic.AddInt64(&s.Unchanged, 1)
	}
}

// ReconcileBoard observes every proposal on a board. Individual failures do
// not stop the sweep; they are joined into the returned error.
func (r *Reconciler) ReconcileBoard(ctx context.Context, boardID types.BoardID) (*Summary, error) {
	proposals, err := r.store.ListProposalsByBoard(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}

	summary := &Summary{}
	var (
		mu       sync.Mutex
		failures []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _, p := range proposals {
		id := p.ID
		g.Go(func() error {
			outcome, err := r.Observe(gctx, id)
			if err != nil && outcome != OutcomeUnresolved {
				atomic.AddInt64(&summary.Failed, 1)
				mu.Lock()
				failures = append(failures, fmt.Errorf("proposal %s: %w", id, err))
				mu.Unlock()
				return nil
			}
			summary.add(outcome)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return summary, err
	}
	return summary, errors.Join(failures...)
}

// ReconcileAll sweeps every board
func (r *Reconciler) ReconcileAll(ctx context.Context) (*Summary, error) {
	boards, err := r.store.ListBoards(ctx)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	total := &Summary{}
	var errs []error
	for _, b := range boards {
		s, err := r.ReconcileBoard(ctx, b.ID)
		if s != nil {
			total.Written += s.Written
			total.Unchanged += s.Unchanged
			total.Skipped += s.Skipped
			total.Unresolved += s.Unresolved
			total.Failed += s.Failed
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return total, errors.Join(errs...)
}

// Run consumes change events until ctx is done or the channel closes.
// Proposal events reconcile one proposal; board events sweep the board, or
// every board when the event names none.
func (r *Reconciler) Run(ctx context.Context, in <-chan events.Event) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-in:
			if !ok {
				return nil
			}
			r.handle(ctx, e)
		}
	}
}

func (r *Reconciler) handle(ctx context.Context, e events.Event) {
	switch e.Type {
	case events.EventProposalChanged:
		if e.ProposalID == "" {
			return
		}
		if _, err := r.Observe(ctx, e.ProposalID); err != nil && !errors.Is(err, models.ErrUnresolvedColumn) {
			r.logger.Warn("reconcile failed", "proposal_id", e.ProposalID, "error", err)
		}

	case events.EventBoardChanged:
		var (
			s   *Summary
			err error
		)
		if e.BoardID == "" {
			s, err = r.ReconcileAll(ctx)
		} else {
			s, err = r.ReconcileBoard(ctx, e.BoardID)
		}
		if err != nil {
			r.logger.Warn("board sweep finished with errors", "board_id", e.BoardID, "error", err)
		}
		if s != nil {
			r.logger.Info("board swept",
				"board_id", e.BoardID,
				"written", s.Written,
				"unresolved", s.Unresolved,
				"failed", s.Failed)
		}
	}
}
