package proposal

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/propboard/internal/cli"
	"github.com/thenoetrevino/propboard/internal/cli/handler"
	proposalservice "github.com/thenoetrevino/propboard/internal/services/proposal"
	"github.com/thenoetrevino/propboard/internal/types"
)

// CreateCmd returns the proposal create subcommand
func CreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new proposal",
		Long: `Create a proposal on a board. It is placed in the board's first column
unless --column names another one the role may drag into.

Examples:
  # Simple proposal (human-readable output)
  propboard proposal create --board=capture --name="Cloud migration"

  # Quiet mode for bash capture
  ID=$(propboard proposal create --board=capture --name="Cloud migration" --quiet)

  # Full example
  propboard proposal create \
    --board=capture \
    --name="Cloud migration" \
    --solicitation=SOL-2031 \
    --agency=GSA \
    --value='$2.5M' \
    --due=2026-12-01 \
    --column=qualify
`,
		Args: cobra.NoArgs,
		RunE: handler.Command(handler.HandlerFunc(runCreate)),
	}

	// Required flags
	cmd.Flags().String("name", "", "Proposal name (required)")
	if err := cmd.MarkFlagRequired("name"); err != nil {
		log.Printf("Error marking flag as required: %v", err)
	}
	cmd.Flags().String("board", "", "Board id (defaults to PROPBOARD_BOARD)")

	// Optional flags
	cmd.Flags().String("solicitation", "", "Solicitation number")
	cmd.Flags().String("agency", "", "Issuing agency")
	cmd.Flags().String("value", "", "Contract value, e.g. 250000, 1,200,000 or $2.5M")
	cmd.Flags().String("due", "", "Due date (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().String("column", "", "Column id (defaults to the first column)")
	cmd.Flags().String("role", "", "Acting role (defaults to workflow.role)")

	handler.AddOutputFlags(cmd)

	return cmd
}

func runCreate(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	boardID, err := args.Flags.BoardID()
	if err != nil {
		return nil, err
	}
	name, err := args.Flags.String("name")
	if err != nil {
		return nil, err
	}
	value, err := cli.ParseContractValue(args.Flags.StringOptional("value"))
	if err != nil {
		return nil, err
	}
	due, err := cli.ParseDueDate(args.Flags.StringOptional("due"))
	if err != nil {
		return nil, err
	}

	p, err := c.App.ProposalService.CreateProposal(ctx, proposalservice.CreateProposalRequest{
		BoardID:            boardID,
		Name:               name,
		SolicitationNumber: args.Flags.StringOptional("solicitation"),
		Agency:             args.Flags.StringOptional("agency"),
		ContractValue:      value,
		DueDate:            due,
		ColumnID:           types.ColumnID(args.Flags.StringOptional("column")),
		Role:               args.Flags.Role(),
	})
	if err != nil {
		return nil, err
	}
	return describe(ctx, c, p, fmt.Sprintf("Proposal '%s' created", p.Name))
}
