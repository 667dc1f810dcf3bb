package board

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/propboard/internal/boarddef"
	"github.com/thenoetrevino/propboard/internal/cli"
	"github.com/thenoetrevino/propboard/internal/cli/handler"
	"github.com/thenoetrevino/propboard/internal/reconciler"
	boardservice "github.com/thenoetrevino/propboard/internal/services/board"
	"github.com/thenoetrevino/propboard/internal/types"
	"github.com/thenoetrevino/propboard/internal/workflow"
)

// ImportCmd returns the board import subcommand
func ImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file-or-dir>...",
		Short: "Import board definitions",
		Long: `Import one or more board definition files. Directories import every
.yaml/.yml file directly inside them.

Nothing is stored unless every definition is valid. Re-importing an unchanged
definition is a no-op; a changed one bumps the board version and, unless
--reconcile=false, re-evaluates the checklists of the board's proposals.

Examples:
  # Import a single board
  propboard board import boards/capture.yaml

  # Import a directory, IDs only
  propboard board import boards/ --quiet
`,
		Args: cobra.MinimumNArgs(1),
		RunE: handler.Command(handler.HandlerFunc(runImport)),
	}

	cmd.Flags().Bool("reconcile", true, "Reconcile proposals of boards whose definition changed")
	handler.AddOutputFlags(cmd)

	return cmd
}

type importRow struct {
	Path      string              `json:"path"`
	BoardID   types.BoardID       `json:"board_id"`
	Name      string              `json:"name"`
	Version   int64               `json:"version"`
	Changed   bool                `json:"changed"`
	Warnings  []string            `json:"warnings,omitempty"`
	Reconcile *reconciler.Summary `json:"reconcile,omitempty"`
}

type importView struct {
	Boards []importRow `json:"boards"`
}

func (v *importView) GetID() string {
	ids := make([]string, len(v.Boards))
	for i, row := range v.Boards {
		ids[i] = string(row.BoardID)
	}
	return strings.Join(ids, "\n")
}

func (v *importView) PrintHuman(w io.Writer) error {
	for _, row := range v.Boards {
		if row.Changed {
			fmt.Fprintf(w, "✓ Imported '%s' (ID: %s, version %d) from %s\n", row.Name, row.BoardID, row.Version, row.Path)
		} else {
			fmt.Fprintf(w, "= '%s' unchanged (ID: %s, version %d)\n", row.Name, row.BoardID, row.Version)
		}
		for _, warning := range row.Warnings {
			fmt.Fprintf(w, "  %s\n", warning)
		}
		if s := row.Reconcile; s != nil {
			fmt.Fprintf(w, "  reconciled: %d written, %d unchanged, %d unresolved\n", s.Written, s.Unchanged, s.Unresolved)
		}
	}
	return nil
}

// invalidView lists the definitions that blocked an import or failed validation
type invalidView struct {
	Definitions []definitionRow `json:"definitions"`
}

type definitionRow struct {
	Path   string   `json:"path"`
	Board  string   `json:"board,omitempty"`
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues,omitempty"`
}

func (v *invalidView) PrintHuman(w io.Writer) error {
	for _, def := range v.Definitions {
		mark := "✓"
		if !def.Valid {
			mark = "✗"
		}
		fmt.Fprintf(w, "%s %s", mark, def.Path)
		if def.Board != "" {
			fmt.Fprintf(w, " (%s)", def.Board)
		}
		fmt.Fprintln(w)
		for _, issue := range def.Issues {
			fmt.Fprintf(w, "  %s\n", issue)
		}
	}
	return nil
}

// checkDefinitions runs the full board validation, CEL expressions
// included, over every definition
func checkDefinitions(svc boardservice.Service, defs []*boarddef.Definition) (*invalidView, int) {
	view := &invalidView{}
	invalid := 0
	for _, def := range defs {
		def.Issues = svc.Validate(def.Board)
		row := definitionRow{
			Path:   def.Path,
			Board:  def.Board.Name,
			Valid:  def.Valid(),
			Issues: issueLines(def.Issues),
		}
		if !row.Valid {
			invalid++
		}
		view.Definitions = append(view.Definitions, row)
	}
	return view, invalid
}

func runImport(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	defs, err := loadPaths(args.Args)
	if err != nil {
		return nil, err
	}
	if len(defs) == 0 {
		return nil, cli.Usagef("no board definitions found in %s", strings.Join(args.Args, ", "))
	}

	report, invalid := checkDefinitions(c.App.BoardService, defs)
	if invalid > 0 {
		return report, fmt.Errorf("%w: %d of %d definitions invalid, nothing imported",
			boardservice.ErrInvalidBoard, invalid, len(defs))
	}

	reconcile := args.Flags.Bool("reconcile")
	view := &importView{}
	var errs []error
	for _, def := range defs {
		res, err := c.App.BoardService.ImportBoard(ctx, def.Board)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", def.Path, err)
		}
		row := importRow{
			Path:    def.Path,
			BoardID: res.Board.ID,
			Name:    res.Board.Name,
			Version: res.Board.Version,
			Changed: res.Changed,
		}
		for _, issue := range res.Issues {
			if issue.Severity == workflow.SeverityWarning {
				row.Warnings = append(row.Warnings, issue.String())
			}
		}
		if reconcile && res.Changed {
			summary, err := c.App.Reconciler.ReconcileBoard(ctx, res.Board.ID)
			row.Reconcile = summary
			if err != nil {
				errs = append(errs, err)
			}
		}
		view.Boards = append(view.Boards, row)
	}
	if err := errors.Join(errs...); err != nil {
		return view, fmt.Errorf("boards imported but reconcile failed: %w", err)
	}
	return view, nil
}
