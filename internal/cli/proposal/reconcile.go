package proposal

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/propboard/internal/cli"
	"github.com/thenoetrevino/propboard/internal/cli/handler"
	"github.com/thenoetrevino/propboard/internal/types"
)

// ReconcileCmd returns the proposal reconcile subcommand
func ReconcileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile <proposal-id>",
		Short: "Recompute a proposal's system checks",
		Long: `Evaluate the system checks of the proposal's active column and write the
flags that differ. Running it twice in a row writes nothing the second time.

Examples:
  propboard proposal reconcile 3f2a...
  propboard proposal reconcile 3f2a... --json
`,
		Args: cobra.MaximumNArgs(1),
		RunE: handler.Command(handler.HandlerFunc(runReconcile)),
	}

	cmd.Flags().String("id", "", "Proposal id")
	handler.AddOutputFlags(cmd)

	return cmd
}

type reconcileView struct {
	*proposalView
	Changed []types.ItemID `json:"changed"`
	Written bool           `json:"written"`
}

func (v *reconcileView) PrintHuman(w io.Writer) error {
	if !v.Written {
		fmt.Fprintf(w, "= %s already up to date\n", v.Name)
		return nil
	}
	ids := make([]string, len(v.Changed))
	for i, id := range v.Changed {
		ids[i] = string(id)
	}
	fmt.Fprintf(w, "✓ %s reconciled: %s\n", v.Name, strings.Join(ids, ", "))
	if v.ActionRequired {
		fmt.Fprintln(w, "  ! action required")
	}
	return nil
}

func runReconcile(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	id, err := args.Flags.ProposalID(args.Args)
	if err != nil {
		return nil, err
	}
	res, err := c.App.ProposalService.Reconcile(ctx, id)
	if err != nil {
		return nil, err
	}
	view, err := describe(ctx, c, res.Proposal, "")
	if err != nil {
		return nil, err
	}
	changed := res.Changed
	if changed == nil {
		changed = []types.ItemID{}
	}
	return &reconcileView{proposalView: view, Changed: changed, Written: res.Written}, nil
}
