// Package board holds the board definition subcommands
package board

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/propboard/internal/boarddef"
	"github.com/thenoetrevino/propboard/internal/models"
	"github.com/thenoetrevino/propboard/internal/workflow"
)

// BoardCmd returns the board parent command
func BoardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Manage board definitions",
	}

	cmd.AddCommand(ImportCmd())
	cmd.AddCommand(ListCmd())
	cmd.AddCommand(ShowCmd())
	cmd.AddCommand(ValidateCmd())
	cmd.AddCommand(WatchCmd())

	return cmd
}

// loadPaths loads every definition named by paths. Directories contribute
// each definition file directly inside them.
func loadPaths(paths []string) ([]*boarddef.Definition, error) {
	var (
		defs []*boarddef.Definition
		errs []error
	)
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if info.IsDir() {
			loaded, err := boarddef.LoadDir(path)
			defs = append(defs, loaded...)
			if err != nil {
				errs = append(errs, err)
			}
			continue
		}
		def, err := boarddef.LoadFile(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		defs = append(defs, def)
	}
	return defs, errors.Join(errs...)
}

// issueLines renders issues as "severity column: message"
func issueLines(issues []workflow.Issue) []string {
	lines := make([]string, 0, len(issues))
	for _, issue := range issues {
		lines = append(lines, issue.String())
	}
	return lines
}

func roleList(col *models.Column) string {
	if len(col.CanDragToHereRoles) == 0 {
		return "any"
	}
	roles := make([]string, len(col.CanDragToHereRoles))
	for i, r := range col.CanDragToHereRoles {
		roles[i] = string(r)
	}
	return strings.Join(roles, ",")
}

func mapping(col *models.Column) string {
	switch col.Type {
	case models.ColumnTypeLockedPhase:
		return "phase=" + col.PhaseMapping
	case models.ColumnTypeDefaultStatus:
		return "status=" + col.DefaultStatusMapping
	case models.ColumnTypeCustomStage:
		return "stage=" + string(col.ID)
	}
	return fmt.Sprintf("unknown type %q", col.Type)
}
