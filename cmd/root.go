package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/propboard/internal/cli"
	"github.com/thenoetrevino/propboard/internal/cli/board"
	"github.com/thenoetrevino/propboard/internal/cli/proposal"
	"github.com/thenoetrevino/propboard/internal/cli/reconcile"
	"github.com/thenoetrevino/propboard/internal/launcher"
	"github.com/thenoetrevino/propboard/internal/logging"
	"github.com/thenoetrevino/propboard/internal/tui"
	"github.com/thenoetrevino/propboard/internal/types"
	"github.com/thenoetrevino/propboard/internal/user"
)

var rootCmd = &cobra.Command{
	Use:   "propboard",
	Short: "propboard - a proposal pipeline kanban board",
	Long: `propboard tracks government contract proposals through a configurable
pipeline. Columns are defined per board; a proposal's column follows from its
status and phase, and each column carries a checklist that is kept in sync
with the proposal's data.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := logging.Init(); err != nil {
			slog.Warn("failed to initialize logging", "error", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(board.BoardCmd())
	rootCmd.AddCommand(proposal.ProposalCmd())
	rootCmd.AddCommand(reconcile.ReconcileCmd())
	rootCmd.AddCommand(TUICmd())
}

// TUICmd returns the interactive board command
func TUICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open a board in the terminal",
		Long: `Open a board as columns of cards. Drag a card with the mouse to move it,
or select it and press the jump key to pick a column from a list.

Examples:
  propboard tui --board=pipeline
  propboard tui --board=pipeline --role=capture_manager
`,
		Args: cobra.NoArgs,
		RunE: runTUI,
	}

	cmd.Flags().String("board", "", "Board id (required)")
	cmd.Flags().String("role", "", "Role to act as (defaults to workflow.role from config)")
	cmd.Flags().String("actor", "", "Name recorded on ticked checklist items (defaults to the current user)")
	if err := cmd.MarkFlagRequired("board"); err != nil {
		slog.Error("failed to mark flag required", "flag", "board", "error", err)
	}

	return cmd
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	boardID, _ := cmd.Flags().GetString("board")
	role, _ := cmd.Flags().GetString("role")
	actor, _ := cmd.Flags().GetString("actor")
	if actor == "" {
		actor = user.CurrentActor()
	}

	c, err := cli.GetCLIFromContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer func() {
		if err := c.Close(); err != nil {
			slog.Error("failed to close", "error", err)
		}
	}()

	return launcher.Launch(ctx, c.App, c.Config, tui.Options{
		BoardID: types.BoardID(boardID),
		Role:    types.Role(role),
		Actor:   actor,
	})
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
