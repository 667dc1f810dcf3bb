package board

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/thenoetrevino/propboard/internal/boarddef"
	"github.com/thenoetrevino/propboard/internal/cli"
	"github.com/thenoetrevino/propboard/internal/cli/handler"
	"github.com/thenoetrevino/propboard/internal/reconciler"
	"github.com/thenoetrevino/propboard/internal/types"
)

// WatchCmd returns the board watch subcommand
func WatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-import board definitions when their files change",
		Long: `Import every definition in the boards directory, then keep watching it.
Edited files are re-imported after a short debounce and the proposals of a
changed board are reconciled. Removing a file keeps the stored board.

The directory comes from --dir, boards.dir in the config file or
PROPBOARD_BOARDS_DIR. Stop with Ctrl-C.

Examples:
  propboard board watch --dir=./boards

  # One sync pass, then exit
  propboard board watch --dir=./boards --once
`,
		Args: cobra.NoArgs,
		RunE: handler.Command(handler.HandlerFunc(runWatch)),
	}

	cmd.Flags().String("dir", "", "Directory of board definitions")
	cmd.Flags().Bool("once", false, "Sync the directory once and exit")
	handler.AddOutputFlags(cmd)

	return cmd
}

// watchLine is one reported change
type watchLine struct {
	Path      string              `json:"path"`
	BoardID   types.BoardID       `json:"board_id,omitempty"`
	Version   int64               `json:"version,omitempty"`
	Changed   bool                `json:"changed"`
	Removed   bool                `json:"removed,omitempty"`
	Error     string              `json:"error,omitempty"`
	Reconcile *reconciler.Summary `json:"reconcile,omitempty"`
}

type watchReporter struct {
	out    io.Writer
	format *cli.OutputFormatter
}

func (r *watchReporter) report(line watchLine) {
	switch {
	case r.format.Quiet:
		if line.Changed {
			fmt.Fprintln(r.out, line.BoardID)
		}
	case r.format.JSON:
		_ = json.NewEncoder(r.out).Encode(line)
	case line.Error != "":
		fmt.Fprintf(r.out, "✗ %s: %s\n", line.Path, line.Error)
	case line.Removed:
		fmt.Fprintf(r.out, "- %s removed, stored board kept\n", line.Path)
	case line.Changed:
		fmt.Fprintf(r.out, "✓ %s imported (ID: %s, version %d)\n", line.Path, line.BoardID, line.Version)
		if s := line.Reconcile; s != nil {
			fmt.Fprintf(r.out, "  reconciled: %d written, %d unchanged, %d unresolved\n", s.Written, s.Unchanged, s.Unresolved)
		}
	default:
		fmt.Fprintf(r.out, "= %s unchanged\n", line.Path)
	}
}

// handleResult turns a watcher result into a report line, reconciling the
// board first when its definition changed
func handleResult(ctx context.Context, c *cli.CLI, res boarddef.Result) watchLine {
	line := watchLine{Path: res.Path, Removed: res.Removed}
	if res.Err != nil {
		line.Error = res.Err.Error()
		return line
	}
	if res.Import == nil || res.Import.Board == nil {
		return line
	}
	line.BoardID = res.Import.Board.ID
	line.Version = res.Import.Board.Version
	line.Changed = res.Import.Changed
	if line.Changed {
		summary, err := c.App.Reconciler.ReconcileBoard(ctx, line.BoardID)
		if err != nil {
			slog.Warn("reconcile after import failed", "board_id", line.BoardID, "error", err)
		}
		line.Reconcile = summary
	}
	return line
}

func runWatch(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	dir := args.Flags.StringOptional("dir")
	if dir == "" && c.Config != nil {
		dir = c.Config.Boards.Dir
	}
	if dir == "" {
		return nil, cli.Usagef("boards directory is required (--dir, boards.dir or PROPBOARD_BOARDS_DIR)")
	}

	debounce := c.Config.WatchDebounce()
	w, err := boarddef.NewWatcher(dir, c.App.BoardService,
		boarddef.WithDebounce(debounce),
		boarddef.WithWatchLogger(c.App.Logger()),
	)
	if err != nil {
		return nil, err
	}

	reporter := &watchReporter{out: args.GetCmd().OutOrStdout(), format: args.Formatter()}
	failed := 0
	for _, res := range w.SyncAll(ctx) {
		line := handleResult(ctx, c, res)
		if line.Error != "" {
			failed++
		}
		reporter.report(line)
	}
	if args.Flags.Bool("once") {
		if err := w.Close(); err != nil {
			return nil, err
		}
		if failed > 0 {
			return nil, fmt.Errorf("%w: %d failed to import", boarddef.ErrInvalidDefinition, failed)
		}
		return nil, nil
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := w.Start(ctx); err != nil {
		_ = w.Close()
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// closed by the watcher once gctx is done
		for res := range w.Results() {
			reporter.report(handleResult(gctx, c, res))
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return w.Close()
	})
	return nil, g.Wait()
}
