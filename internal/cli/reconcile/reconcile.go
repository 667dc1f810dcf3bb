// Package reconcile holds the batch reconciliation subcommands
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/thenoetrevino/propboard/internal/cli"
	"github.com/thenoetrevino/propboard/internal/cli/handler"
	"github.com/thenoetrevino/propboard/internal/reconciler"
	"github.com/thenoetrevino/propboard/internal/types"
)

// ErrNoTransport is returned by --follow when no event transport is reachable
var ErrNoTransport = errors.New("no event transport: start the daemon or configure redis")

// ReconcileCmd returns the reconcile parent command
func ReconcileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Recompute checklists in bulk",
	}
	cmd.AddCommand(RunCmd())
	return cmd
}

// RunCmd returns the reconcile run subcommand
func RunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Reconcile every proposal of one or all boards",
		Long: `Sweep proposals and write the system checks and action flags that differ
from what their data implies. With --follow, keep running after the sweep and
reconcile whatever the daemon or redis reports as changed.

Examples:
  propboard reconcile run
  propboard reconcile run --board=capture --json
  propboard reconcile run --follow
`,
		Args: cobra.NoArgs,
		RunE: handler.Command(handler.HandlerFunc(runReconcile)),
	}

	cmd.Flags().String("board", "", "Only this board")
	cmd.Flags().Bool("follow", false, "Keep reconciling on change events")
	cmd.Flags().Duration("resync", 0, "With --follow, also sweep again at this interval (0 disables)")
	handler.AddOutputFlags(cmd)

	return cmd
}

type summaryView struct {
	BoardID types.BoardID `json:"board_id,omitempty"`
	*reconciler.Summary
}

func (v *summaryView) PrintHuman(w io.Writer) error {
	scope := "all boards"
	if v.BoardID != "" {
		scope = "board " + string(v.BoardID)
	}
	_, err := fmt.Fprintf(w, "✓ Reconciled %s: %d written, %d unchanged, %d skipped, %d unresolved, %d failed\n",
		scope, v.Written, v.Unchanged, v.Skipped, v.Unresolved, v.Failed)
	return err
}

func sweep(ctx context.Context, r *reconciler.Reconciler, boardID types.BoardID) (*reconciler.Summary, error) {
	if boardID != "" {
		return r.ReconcileBoard(ctx, boardID)
	}
	return r.ReconcileAll(ctx)
}

func runReconcile(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	boardID := types.BoardID(args.Flags.StringOptional("board"))
	if boardID != "" {
		if _, err := c.App.BoardService.GetBoard(ctx, boardID); err != nil {
			return nil, err
		}
	}

	summary, err := sweep(ctx, c.App.Reconciler, boardID)
	view := &summaryView{BoardID: boardID, Summary: summary}
	if summary == nil {
		view.Summary = &reconciler.Summary{}
	}
	if err != nil {
		return view, err
	}
	if !args.Flags.Bool("follow") {
		return view, nil
	}

	if err := args.Formatter().Success(view); err != nil {
		return nil, err
	}
	resync, _ := args.GetCmd().Flags().GetDuration("resync")
	return nil, follow(ctx, c, boardID, resync)
}

// follow feeds change events into the reconciler until interrupted. A
// positive resync interval adds periodic sweeps for events the transport
// may have dropped.
func follow(ctx context.Context, c *cli.CLI, boardID types.BoardID, resync time.Duration) error {
	bus := c.App.Events()
	if bus == nil {
		return ErrNoTransport
	}
	if err := bus.Subscribe(boardID); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ch, err := bus.Listen(ctx)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.App.Reconciler.Run(gctx, ch)
	})
	if resync > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(resync)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					if s, err := sweep(gctx, c.App.Reconciler, boardID); err != nil {
						c.App.Logger().Warn("periodic reconcile failed", "board_id", boardID, "error", err)
					} else if s.Written > 0 {
						c.App.Logger().Info("periodic reconcile", "board_id", boardID, "written", s.Written)
					}
				}
			}
		})
	}
	return g.Wait()
}
