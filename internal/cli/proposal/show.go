package proposal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/propboard/internal/checklist"
	"github.com/thenoetrevino/propboard/internal/cli"
	"github.com/thenoetrevino/propboard/internal/cli/handler"
	"github.com/thenoetrevino/propboard/internal/models"
)

// ShowCmd returns the proposal show subcommand
func ShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <proposal-id>",
		Short: "Show a proposal and its checklist",
		Long: `Show a proposal's data, the column it resolves to and the checklist of
that column. System checks whose stored flag differs from the computed one
are marked; 'propboard proposal reconcile' brings them in line.

Examples:
  propboard proposal show 3f2a...
  propboard proposal show --id=3f2a... --raw | less
`,
		Args: cobra.MaximumNArgs(1),
		RunE: handler.Command(handler.HandlerFunc(runShow)),
	}

	cmd.Flags().String("id", "", "Proposal id")
	cmd.Flags().Int("width", 80, "Wrap width for rendered output")
	cmd.Flags().Bool("raw", false, "Print markdown without terminal styling")
	handler.AddOutputFlags(cmd)

	return cmd
}

type proposalDetail struct {
	*proposalView
	Checklist *checklist.Report `json:"checklist,omitempty"`
	width     int
	raw       bool
}

func (d *proposalDetail) PrintHuman(w io.Writer) error {
	md := d.markdown()
	if !d.raw {
		md = cli.RenderMarkdown(md, d.width)
	}
	_, err := io.WriteString(w, md)
	return err
}

func (d *proposalDetail) markdown() string {
	p := d.Proposal
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", p.Name)
	fmt.Fprintf(&b, "- **ID:** %s\n", p.ID)
	if d.Column != nil {
		fmt.Fprintf(&b, "- **Column:** %s\n", d.Column.DisplayName())
	} else {
		b.WriteString("- **Column:** unresolved\n")
	}
	fmt.Fprintf(&b, "- **Solicitation:** %s\n", orDash(p.SolicitationNumber))
	fmt.Fprintf(&b, "- **Agency:** %s\n", orDash(p.Agency))
	fmt.Fprintf(&b, "- **Contract value:** %s\n", cli.FormatContractValue(p.ContractValue))
	fmt.Fprintf(&b, "- **Due:** %s\n", cli.FormatDue(p.DueDate, d.now))
	fmt.Fprintf(&b, "- **Version:** %d\n", p.Version)

	if p.ActionRequired {
		desc := "action required"
		if p.ActionRequiredDescription != nil {
			desc = *p.ActionRequiredDescription
		}
		fmt.Fprintf(&b, "\n> **Action required:** %s\n", desc)
	}

	if rep := d.Checklist; rep != nil && len(rep.Items) > 0 {
		fmt.Fprintf(&b, "\n## Checklist: %s\n\n", rep.Column.DisplayName())
		for _, item := range rep.Items {
			b.WriteString(checklistLine(item))
		}
	}
	return b.String()
}

func checklistLine(item checklist.ItemReport) string {
	box := " "
	if item.Stored.Completed {
		box = "x"
	}
	kind := strings.TrimSuffix(string(item.Item.Type), "_check")
	if item.Item.Required {
		kind += ", required"
	}
	line := fmt.Sprintf("- [%s] %s *(%s)*", box, item.Item.DisplayName(), kind)
	if item.Stored.Completed && item.Stored.CompletedBy != nil {
		line += " by " + *item.Stored.CompletedBy
	}
	if !item.InSync() {
		line += " **out of sync**"
	}
	return line + "\n"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func runShow(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	id, err := args.Flags.ProposalID(args.Args)
	if err != nil {
		return nil, err
	}
	p, err := c.App.ProposalService.GetProposal(ctx, id)
	if err != nil {
		return nil, err
	}
	view, err := describe(ctx, c, p, "")
	if err != nil {
		return nil, err
	}

	report, err := c.App.ProposalService.ChecklistReport(ctx, id)
	if err != nil && !errors.Is(err, models.ErrUnresolvedColumn) {
		return nil, err
	}

	width, _ := args.GetCmd().Flags().GetInt("width")
	return &proposalDetail{
		proposalView: view,
		Checklist:    report,
		width:        width,
		raw:          args.Flags.Bool("raw"),
	}, nil
}
