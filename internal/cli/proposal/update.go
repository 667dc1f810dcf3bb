package proposal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/propboard/internal/cli"
	"github.com/thenoetrevino/propboard/internal/cli/handler"
	"github.com/thenoetrevino/propboard/internal/models"
	proposalservice "github.com/thenoetrevino/propboard/internal/services/proposal"
)

// clearValue is accepted by --value and --due to unset the field
const clearValue = "none"

// UpdateCmd returns the proposal update subcommand
func UpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <proposal-id>",
		Short: "Update a proposal's data fields",
		Long: `Update the data fields that system checks read. Only the flags given are
written; pass "none" to --value or --due to clear them. The checklist of the
active column is reconciled afterwards.

Examples:
  propboard proposal update 3f2a... --value=50000 --due=2026-12-01
  propboard proposal update 3f2a... --due=none
`,
		Args: cobra.MaximumNArgs(1),
		RunE: handler.Command(handler.HandlerFunc(runUpdate)),
	}

	cmd.Flags().String("id", "", "Proposal id")
	cmd.Flags().String("name", "", "New name")
	cmd.Flags().String("solicitation", "", "New solicitation number")
	cmd.Flags().String("agency", "", "New agency")
	cmd.Flags().String("value", "", `Contract value, or "none" to clear`)
	cmd.Flags().String("due", "", `Due date, or "none" to clear`)
	handler.AddOutputFlags(cmd)

	return cmd
}

func optionalString(args *handler.Arguments, flag string) *string {
	if !args.Flags.Changed(flag) {
		return nil
	}
	v := args.Flags.StringOptional(flag)
	return &v
}

func runUpdate(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	id, err := args.Flags.ProposalID(args.Args)
	if err != nil {
		return nil, err
	}

	req := proposalservice.UpdateProposalRequest{
		ProposalID:         id,
		Name:               optionalString(args, "name"),
		SolicitationNumber: optionalString(args, "solicitation"),
		Agency:             optionalString(args, "agency"),
	}

	if args.Flags.Changed("value") {
		raw := args.Flags.StringOptional("value")
		if strings.EqualFold(raw, clearValue) {
			req.ContractValue = models.NullableClear[float64]()
		} else {
			v, err := cli.ParseContractValue(raw)
			if err != nil {
				return nil, err
			}
			if v == nil {
				return nil, cli.Usagef(`--value is empty; use "none" to clear it`)
			}
			req.ContractValue = models.NullableOf(*v)
		}
	}
	if args.Flags.Changed("due") {
		raw := args.Flags.StringOptional("due")
		if strings.EqualFold(raw, clearValue) {
			req.DueDate = models.NullableClear[time.Time]()
		} else {
			d, err := cli.ParseDueDate(raw)
			if err != nil {
				return nil, err
			}
			if d == nil {
				return nil, cli.Usagef(`--due is empty; use "none" to clear it`)
			}
			req.DueDate = models.NullableOf(*d)
		}
	}

	if req.Name == nil && req.SolicitationNumber == nil && req.Agency == nil &&
		!req.ContractValue.Set && !req.DueDate.Set {
		return nil, cli.Usagef("nothing to update (set at least one of --name, --solicitation, --agency, --value, --due)")
	}

	p, err := c.App.ProposalService.UpdateProposal(ctx, req)
	if err != nil {
		return nil, err
	}
	return describe(ctx, c, p, fmt.Sprintf("Proposal '%s' updated", p.Name))
}
