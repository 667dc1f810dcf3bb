package proposal

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/propboard/internal/cli"
	"github.com/thenoetrevino/propboard/internal/cli/handler"
	proposalservice "github.com/thenoetrevino/propboard/internal/services/proposal"
	"github.com/thenoetrevino/propboard/internal/types"
)

// CheckCmd returns the proposal check subcommand
func CheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <proposal-id>",
		Short: "Tick or clear a manual or approval checklist item",
		Long: `Mark a manual or approval item of the active column done, or clear it with
--undo. System checks are computed from proposal data and cannot be set.

Examples:
  propboard proposal check 3f2a... --item=bid_decision
  propboard proposal check 3f2a... --item=kickoff --column=intake --undo
`,
		Args: cobra.MaximumNArgs(1),
		RunE: handler.Command(handler.HandlerFunc(runCheck)),
	}

	cmd.Flags().String("id", "", "Proposal id")
	cmd.Flags().String("item", "", "Checklist item id (required)")
	cmd.Flags().String("column", "", "Column id (defaults to the active column)")
	cmd.Flags().Bool("undo", false, "Clear the item instead")
	cmd.Flags().String("actor", "", "Who completed the item (defaults to the current user)")
	handler.AddOutputFlags(cmd)

	return cmd
}

func runCheck(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	id, err := args.Flags.ProposalID(args.Args)
	if err != nil {
		return nil, err
	}
	item, err := args.Flags.String("item")
	if err != nil {
		return nil, err
	}
	undo := args.Flags.Bool("undo")

	p, err := c.App.ProposalService.SetChecklistItem(ctx, proposalservice.SetChecklistItemRequest{
		ProposalID: id,
		ColumnID:   types.ColumnID(args.Flags.StringOptional("column")),
		ItemID:     types.ItemID(item),
		Completed:  !undo,
		Actor:      args.Flags.Actor(),
	})
	if err != nil {
		return nil, err
	}

	verb := "checked"
	if undo {
		verb = "cleared"
	}
	return describe(ctx, c, p, fmt.Sprintf("Item %s %s", item, verb))
}
