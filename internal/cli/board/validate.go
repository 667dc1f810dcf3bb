package board

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/propboard/internal/boarddef"
	"github.com/thenoetrevino/propboard/internal/cli"
	"github.com/thenoetrevino/propboard/internal/cli/handler"
	boardservice "github.com/thenoetrevino/propboard/internal/services/board"
)

// ValidateCmd returns the board validate subcommand
func ValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [file-or-dir]...",
		Short: "Check board definitions without importing them",
		Long: `Check definitions against the board schema, the column partition rules
and the checklist expressions. With no arguments every stored board is
checked instead.

Exits with code 5 when any definition has errors. Warnings do not fail.

Examples:
  propboard board validate boards/
  propboard board validate boards/capture.yaml --json
`,
		RunE: handler.Command(handler.HandlerFunc(runValidate)),
	}
	handler.AddOutputFlags(cmd)
	return cmd
}

func runValidate(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	var defs []*boarddef.Definition
	if len(args.Args) == 0 {
		boards, err := c.App.BoardService.ListBoards(ctx)
		if err != nil {
			return nil, err
		}
		for _, b := range boards {
			defs = append(defs, &boarddef.Definition{Path: "stored:" + string(b.ID), Board: b})
		}
	} else {
		var err error
		defs, err = loadPaths(args.Args)
		if err != nil {
			return nil, err
		}
	}

	report, invalid := checkDefinitions(c.App.BoardService, defs)
	if invalid > 0 {
		return report, fmt.Errorf("%w: %d of %d definitions invalid", boardservice.ErrInvalidBoard, invalid, len(defs))
	}
	return report, nil
}
