// Package proposal holds the proposal subcommands
package proposal

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/propboard/internal/cli"
	"github.com/thenoetrevino/propboard/internal/models"
	"github.com/thenoetrevino/propboard/internal/types"
)

// ProposalCmd returns the proposal parent command
func ProposalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proposal",
		Short: "Manage proposals on a board",
	}

	cmd.AddCommand(CreateCmd())
	cmd.AddCommand(ListCmd())
	cmd.AddCommand(ShowCmd())
	cmd.AddCommand(UpdateCmd())
	cmd.AddCommand(DeleteCmd())
	cmd.AddCommand(MoveCmd())
	cmd.AddCommand(JumpCmd())
	cmd.AddCommand(ReconcileCmd())
	cmd.AddCommand(CheckCmd())

	return cmd
}

// proposalView is a proposal together with the column it resolves to
type proposalView struct {
	*models.Proposal
	Column   *models.Column `json:"column"`
	headline string
	note     string
	now      time.Time
}

func (v *proposalView) PrintHuman(w io.Writer) error {
	p := v.Proposal
	if v.headline != "" {
		fmt.Fprintf(w, "✓ %s\n", v.headline)
	}
	fmt.Fprintf(w, "%s (ID: %s)\n", p.Name, p.ID)
	if v.Column != nil {
		fmt.Fprintf(w, "  Column: %s\n", v.Column.DisplayName())
	} else {
		fmt.Fprintln(w, "  Column: unresolved")
	}
	if p.SolicitationNumber != "" {
		fmt.Fprintf(w, "  Solicitation: %s\n", p.SolicitationNumber)
	}
	if p.Agency != "" {
		fmt.Fprintf(w, "  Agency: %s\n", p.Agency)
	}
	fmt.Fprintf(w, "  Value: %s\n", cli.FormatContractValue(p.ContractValue))
	fmt.Fprintf(w, "  Due: %s\n", cli.FormatDue(p.DueDate, v.now))
	if p.ActionRequired {
		desc := "action required"
		if p.ActionRequiredDescription != nil {
			desc = *p.ActionRequiredDescription
		}
		fmt.Fprintf(w, "  ! %s\n", desc)
	}
	if v.note != "" {
		fmt.Fprintf(w, "  note: %s\n", v.note)
	}
	return nil
}

// describe resolves p's column for display. An unresolved proposal is still
// shown; its column is left empty.
func describe(ctx context.Context, c *cli.CLI, p *models.Proposal, headline string) (*proposalView, error) {
	board, err := c.App.BoardService.GetBoard(ctx, p.BoardID)
	if err != nil {
		return nil, err
	}
	col, _ := c.App.Engine.FindActiveColumn(board, p)
	return &proposalView{Proposal: p, Column: col, headline: headline, now: time.Now()}, nil
}

// checkLanded notes when a move was stored but another pointer still wins
// the column match, so the card shows elsewhere
func (v *proposalView) checkLanded(target types.ColumnID) {
	switch {
	case v.Column == nil:
		v.note = fmt.Sprintf("moved to %s but the proposal now resolves to no column", target)
	case v.Column.ID != target:
		v.note = fmt.Sprintf("moved to %s but still shown in %s (another stage pointer matches first)", target, v.Column.DisplayName())
	}
}
