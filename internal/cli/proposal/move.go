package proposal

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/propboard/internal/cli"
	"github.com/thenoetrevino/propboard/internal/cli/handler"
	"github.com/thenoetrevino/propboard/internal/types"
)

// MoveCmd returns the proposal move subcommand
func MoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move <proposal-id>",
		Short: "Move a proposal to another column",
		Long: `Move a proposal into a column, exactly as dropping its card there would.
Columns that restrict drag roles reject other roles with exit code 6 and
nothing is written.

Examples:
  propboard proposal move 3f2a... --to=qualify
  propboard proposal move 3f2a... --to=submitted --role=admin
`,
		Args: cobra.MaximumNArgs(1),
		RunE: handler.Command(handler.HandlerFunc(runMove)),
	}

	cmd.Flags().String("id", "", "Proposal id")
	cmd.Flags().String("to", "", "Target column id (required)")
	cmd.Flags().String("role", "", "Acting role (defaults to workflow.role)")
	handler.AddOutputFlags(cmd)

	return cmd
}

func runMove(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	id, err := args.Flags.ProposalID(args.Args)
	if err != nil {
		return nil, err
	}
	to, err := args.Flags.String("to")
	if err != nil {
		return nil, err
	}

	p, err := c.App.ProposalService.MoveToColumn(ctx, id, types.ColumnID(to), args.Flags.Role())
	if err != nil {
		return nil, err
	}
	view, err := describe(ctx, c, p, fmt.Sprintf("Proposal '%s' moved", p.Name))
	if err != nil {
		return nil, err
	}
	view.checkLanded(types.ColumnID(to))
	return view, nil
}
