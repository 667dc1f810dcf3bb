package proposal

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/propboard/internal/cli"
	"github.com/thenoetrevino/propboard/internal/cli/handler"
	"github.com/thenoetrevino/propboard/internal/types"
)

// DeleteCmd returns the proposal delete subcommand
func DeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <proposal-id>",
		Short: "Delete a proposal",
		Long: `Delete a proposal. Requires --force.

Examples:
  propboard proposal delete 3f2a... --force
`,
		Args: cobra.MaximumNArgs(1),
		RunE: handler.Command(handler.HandlerFunc(runDelete)),
	}

	cmd.Flags().String("id", "", "Proposal id")
	cmd.Flags().Bool("force", false, "Skip the safety check")
	handler.AddOutputFlags(cmd)

	return cmd
}

type deleted struct {
	ID      types.ProposalID `json:"id"`
	Deleted bool             `json:"deleted"`
}

func (d deleted) GetID() string {
	return string(d.ID)
}

func (d deleted) PrintHuman(w io.Writer) error {
	_, err := fmt.Fprintf(w, "✓ Proposal %s deleted\n", d.ID)
	return err
}

func runDelete(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	id, err := args.Flags.ProposalID(args.Args)
	if err != nil {
		return nil, err
	}
	if !args.Flags.Bool("force") {
		return nil, cli.Usagef("refusing to delete %s without --force", id)
	}
	if err := c.App.ProposalService.DeleteProposal(ctx, id); err != nil {
		return nil, err
	}
	return deleted{ID: id, Deleted: true}, nil
}
