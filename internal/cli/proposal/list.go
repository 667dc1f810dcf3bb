package proposal

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/propboard/internal/cli"
	"github.com/thenoetrevino/propboard/internal/cli/handler"
	"github.com/thenoetrevino/propboard/internal/models"
	"github.com/thenoetrevino/propboard/internal/types"
)

// ListCmd returns the proposal list subcommand
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a board's proposals by column",
		Long: `List every proposal of a board grouped by the column it resolves to.
Proposals whose stage pointers match no column are listed last.

Examples:
  propboard proposal list --board=capture
  propboard proposal list --board=capture --column=qualify --quiet
`,
		Args: cobra.NoArgs,
		RunE: handler.Command(handler.HandlerFunc(runList)),
	}

	cmd.Flags().String("board", "", "Board id (defaults to PROPBOARD_BOARD)")
	cmd.Flags().String("column", "", "Only list this column")
	handler.AddOutputFlags(cmd)

	return cmd
}

type columnGroup struct {
	Column    *models.Column     `json:"column"`
	Proposals []*models.Proposal `json:"proposals"`
}

type proposalList struct {
	BoardID    string             `json:"board_id"`
	Columns    []columnGroup      `json:"columns"`
	Unresolved []*models.Proposal `json:"unresolved,omitempty"`
}

func (l *proposalList) all() []*models.Proposal {
	var out []*models.Proposal
	for _, g := range l.Columns {
		out = append(out, g.Proposals...)
	}
	return append(out, l.Unresolved...)
}

func (l *proposalList) GetID() string {
	proposals := l.all()
	ids := make([]string, len(proposals))
	for i, p := range proposals {
		ids[i] = p.GetID()
	}
	return strings.Join(ids, "\n")
}

func (l *proposalList) PrintHuman(w io.Writer) error {
	total := len(l.all())
	if total == 0 {
		_, err := fmt.Fprintln(w, "No proposals found")
		return err
	}
	fmt.Fprintf(w, "Found %d proposals:\n", total)
	for _, g := range l.Columns {
		fmt.Fprintf(w, "\n%s (%d)\n", g.Column.DisplayName(), len(g.Proposals))
		for _, p := range g.Proposals {
			printRow(w, p)
		}
	}
	if len(l.Unresolved) > 0 {
		fmt.Fprintf(w, "\nUnresolved (%d)\n", len(l.Unresolved))
		for _, p := range l.Unresolved {
			printRow(w, p)
		}
	}
	return nil
}

func printRow(w io.Writer, p *models.Proposal) {
	flag := ""
	if p.ActionRequired {
		flag = " !"
	}
	fmt.Fprintf(w, "  [%s] %s  %s%s\n", p.ID, p.Name, cli.FormatContractValue(p.ContractValue), flag)
}

func runList(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	boardID, err := args.Flags.BoardID()
	if err != nil {
		return nil, err
	}
	grouped, err := c.App.ProposalService.GetProposalsByBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}

	only := args.Flags.StringOptional("column")
	if only != "" && grouped.Board.ColumnByID(types.ColumnID(only)) == nil {
		return nil, fmt.Errorf("%w: %s", models.ErrColumnNotFound, only)
	}

	list := &proposalList{BoardID: string(grouped.Board.ID)}
	for _, col := range grouped.Board.Columns {
		if only != "" && string(col.ID) != only {
			continue
		}
		proposals := grouped.ByColumn[col.ID]
		if proposals == nil {
			proposals = []*models.Proposal{}
		}
		list.Columns = append(list.Columns, columnGroup{Column: col, Proposals: proposals})
	}
	if only == "" {
		list.Unresolved = grouped.Unresolved
	}
	return list, nil
}
