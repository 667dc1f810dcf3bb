package proposal

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/propboard/internal/cli"
	"github.com/thenoetrevino/propboard/internal/cli/handler"
	"github.com/thenoetrevino/propboard/internal/jump"
	"github.com/thenoetrevino/propboard/internal/types"
)

// JumpCmd returns the proposal jump subcommand
func JumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jump <proposal-id>",
		Short: "List jump targets or jump to one",
		Long: `Without --to, list every column of the proposal's board with whether the
role may move there. With --to, commit the move to that column, given by id or
by its number in the list.

Examples:
  propboard proposal jump 3f2a...
  propboard proposal jump 3f2a... --to=3
  propboard proposal jump 3f2a... --to=red-team --role=capture_manager
`,
		Args: cobra.MaximumNArgs(1),
		RunE: handler.Command(handler.HandlerFunc(runJump)),
	}

	cmd.Flags().String("id", "", "Proposal id")
	cmd.Flags().String("to", "", "Column id or list number to jump to")
	cmd.Flags().String("role", "", "Acting role (defaults to workflow.role)")
	handler.AddOutputFlags(cmd)

	return cmd
}

type jumpRow struct {
	Number    int            `json:"number"`
	ColumnID  types.ColumnID `json:"column_id"`
	Label     string         `json:"label"`
	Reachable bool           `json:"reachable"`
	Current   bool           `json:"current"`
}

type jumpList struct {
	ProposalID types.ProposalID `json:"proposal_id"`
	Role       types.Role       `json:"role"`
	Options    []jumpRow        `json:"options"`
}

func (l *jumpList) GetID() string {
	return string(l.ProposalID)
}

func (l *jumpList) PrintHuman(w io.Writer) error {
	fmt.Fprintf(w, "Jump targets for %s as %s:\n", l.ProposalID, l.Role)
	for _, row := range l.Options {
		marker := " "
		switch {
		case row.Current:
			marker = "*"
		case !row.Reachable:
			marker = "x"
		}
		fmt.Fprintf(w, " %s %d. %s [%s]\n", marker, row.Number, row.Label, row.ColumnID)
	}
	return nil
}

// target resolves --to against the options: a column id wins over a number
func target(opts []jump.Option, to string) types.ColumnID {
	for _, opt := range opts {
		if string(opt.Column.ID) == to {
			return opt.Column.ID
		}
	}
	if n, err := strconv.Atoi(to); err == nil && n >= 1 && n <= len(opts) {
		return opts[n-1].Column.ID
	}
	return types.ColumnID(to)
}

func runJump(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	id, err := args.Flags.ProposalID(args.Args)
	if err != nil {
		return nil, err
	}
	role := args.Flags.Role()

	p, err := c.App.ProposalService.GetProposal(ctx, id)
	if err != nil {
		return nil, err
	}
	board, err := c.App.BoardService.GetBoard(ctx, p.BoardID)
	if err != nil {
		return nil, err
	}
	selector := jump.NewSelector(c.App.Engine, board, p, role, c.App.ProposalService)

	to := args.Flags.StringOptional("to")
	if to == "" {
		list := &jumpList{ProposalID: id, Role: role}
		for i, opt := range selector.Options() {
			list.Options = append(list.Options, jumpRow{
				Number:    i + 1,
				ColumnID:  opt.Column.ID,
				Label:     opt.Column.DisplayName(),
				Reachable: opt.Reachable,
				Current:   opt.Current,
			})
		}
		return list, nil
	}

	columnID := target(selector.Options(), to)
	moved, err := selector.SelectColumn(ctx, columnID)
	if err != nil {
		return nil, err
	}
	view, err := describe(ctx, c, moved, fmt.Sprintf("Proposal '%s' jumped", moved.Name))
	if err != nil {
		return nil, err
	}
	view.checkLanded(columnID)
	return view, nil
}
