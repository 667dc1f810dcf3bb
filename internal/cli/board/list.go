package board

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/thenoetrevino/propboard/internal/cli"
	"github.com/thenoetrevino/propboard/internal/cli/handler"
	"github.com/thenoetrevino/propboard/internal/models"
)

// ListCmd returns the board list subcommand
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List imported boards",
		Long: `List every imported board.

Examples:
  propboard board list
  propboard board list --json
`,
		Args: cobra.NoArgs,
		RunE: handler.Command(handler.HandlerFunc(runList)),
	}
	handler.AddOutputFlags(cmd)
	return cmd
}

type boardList struct {
	Boards []*models.BoardConfig `json:"boards"`
}

func (l *boardList) GetID() string {
	ids := make([]string, len(l.Boards))
	for i, b := range l.Boards {
		ids[i] = b.GetID()
	}
	return strings.Join(ids, "\n")
}

func (l *boardList) PrintHuman(w io.Writer) error {
	if len(l.Boards) == 0 {
		_, err := fmt.Fprintln(w, "No boards found")
		return err
	}
	fmt.Fprintf(w, "Found %d boards:\n\n", len(l.Boards))
	for _, b := range l.Boards {
		fmt.Fprintf(w, "  [%s] %s (%s/%s) %d columns, v%d, updated %s\n",
			b.ID, b.Name, b.OrganizationID, b.BoardType,
			len(b.Columns), b.Version, humanize.RelTime(b.UpdatedAt, time.Now(), "ago", "from now"))
	}
	return nil
}

func runList(ctx context.Context, c *cli.CLI, _ *handler.Arguments) (any, error) {
	boards, err := c.App.BoardService.ListBoards(ctx)
	if err != nil {
		return nil, err
	}
	return &boardList{Boards: boards}, nil
}
