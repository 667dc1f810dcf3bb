package board

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/propboard/internal/boarddef"
	"github.com/thenoetrevino/propboard/internal/cli"
	"github.com/thenoetrevino/propboard/internal/cli/handler"
	"github.com/thenoetrevino/propboard/internal/models"
	"github.com/thenoetrevino/propboard/internal/types"
)

// ShowCmd returns the board show subcommand
func ShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [board-id]",
		Short: "Show a board's columns and checklists",
		Long: `Show one board by id, or by organization and board type.

Examples:
  propboard board show board-1
  propboard board show --org=acme --type=capture

  # Export the stored definition
  propboard board show board-1 --yaml > capture.yaml
`,
		Args: cobra.MaximumNArgs(1),
		RunE: handler.Command(handler.HandlerFunc(runShow)),
	}

	cmd.Flags().String("org", "", "Organization id (with --type)")
	cmd.Flags().String("type", "", "Board type (with --org)")
	cmd.Flags().Bool("yaml", false, "Print the board as a definition document")
	handler.AddOutputFlags(cmd)

	return cmd
}

type boardDetail struct {
	*models.BoardConfig
}

func (d boardDetail) PrintHuman(w io.Writer) error {
	b := d.BoardConfig
	fmt.Fprintf(w, "%s (ID: %s)\n", b.Name, b.ID)
	fmt.Fprintf(w, "  Organization: %s\n", b.OrganizationID)
	fmt.Fprintf(w, "  Type: %s\n", b.BoardType)
	fmt.Fprintf(w, "  Version: %d\n\n", b.Version)

	for i, col := range b.Columns {
		lock := ""
		if col.IsLocked {
			lock = " locked"
		}
		fmt.Fprintf(w, "%d. %s [%s] %s, roles: %s%s\n", i+1, col.DisplayName(), col.ID, mapping(col), roleList(col), lock)
		for _, item := range col.ChecklistItems {
			req := ""
			if item.Required {
				req = " (required)"
			}
			fmt.Fprintf(w, "     - %s [%s, %s]%s\n", item.DisplayName(), item.ID, item.Type, req)
		}
	}
	return nil
}

func findBoard(ctx context.Context, c *cli.CLI, args *handler.Arguments) (*models.BoardConfig, error) {
	if len(args.Args) > 0 {
		return c.App.BoardService.GetBoard(ctx, types.BoardID(args.Args[0]))
	}
	org := args.Flags.StringOptional("org")
	boardType := args.Flags.StringOptional("type")
	if org != "" || boardType != "" {
		if org == "" || boardType == "" {
			return nil, cli.Usagef("--org and --type must be given together")
		}
		return c.App.BoardService.GetBoardByType(ctx, org, boardType)
	}
	id, err := args.Flags.BoardID()
	if err != nil {
		return nil, err
	}
	return c.App.BoardService.GetBoard(ctx, id)
}

func runShow(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	b, err := findBoard(ctx, c, args)
	if err != nil {
		return nil, err
	}
	if args.Flags.Bool("yaml") {
		if err := boarddef.Encode(args.GetCmd().OutOrStdout(), b); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return boardDetail{b}, nil
}
