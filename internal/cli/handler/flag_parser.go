package handler

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/propboard/internal/cli"
	"github.com/thenoetrevino/propboard/internal/types"
	"github.com/thenoetrevino/propboard/internal/user"
)

// FlagParser provides common flag extraction patterns
type FlagParser struct {
	cmd *cobra.Command
	cli *cli.CLI
}

// NewFlagParser creates a new flag parser. c may be nil, in which case
// configuration fallbacks are skipped.
func NewFlagParser(cmd *cobra.Command, c *cli.CLI) *FlagParser {
	return &FlagParser{cmd: cmd, cli: c}
}

// ProposalID reads the proposal id from the first positional argument or --id
func (p *FlagParser) ProposalID(args []string) (types.ProposalID, error) {
	id := ""
	if len(args) > 0 {
		id = args[0]
	} else if p.cmd.Flags().Lookup("id") != nil {
		id, _ = p.cmd.Flags().GetString("id")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return "", cli.Usagef("proposal id is required (positional or --id)")
	}
	return types.ProposalID(id), nil
}

// BoardID reads --board, falling back to PROPBOARD_BOARD
func (p *FlagParser) BoardID() (types.BoardID, error) {
	id, _ := p.cmd.Flags().GetString("board")
	if id = strings.TrimSpace(id); id == "" {
		id = strings.TrimSpace(os.Getenv("PROPBOARD_BOARD"))
	}
	if id == "" {
		return "", cli.Usagef("board is required (--board or PROPBOARD_BOARD)")
	}
	return types.BoardID(id), nil
}

// Role reads --role, falling back to the configured role
func (p *FlagParser) Role() types.Role {
	role, _ := p.cmd.Flags().GetString("role")
	if role = strings.TrimSpace(role); role != "" {
		return types.Role(role)
	}
	if p.cli != nil && p.cli.Config != nil {
		return p.cli.Config.Workflow.Role
	}
	return ""
}

// Actor reads --actor, falling back to the current user
func (p *FlagParser) Actor() string {
	actor, _ := p.cmd.Flags().GetString("actor")
	if actor = strings.TrimSpace(actor); actor != "" {
		return actor
	}
	return user.CurrentActor()
}

// String extracts a required string flag
func (p *FlagParser) String(flagName string) (string, error) {
	value, err := p.cmd.Flags().GetString(flagName)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s flag: %w", flagName, err)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", cli.Usagef("--%s is required", flagName)
	}
	return value, nil
}

// StringOptional extracts an optional string flag
func (p *FlagParser) StringOptional(flagName string) string {
	value, _ := p.cmd.Flags().GetString(flagName)
	return strings.TrimSpace(value)
}

// Bool extracts a boolean flag
func (p *FlagParser) Bool(flagName string) bool {
	value, _ := p.cmd.Flags().GetBool(flagName)
	return value
}

// Changed reports whether the user set the flag
func (p *FlagParser) Changed(flagName string) bool {
	return p.cmd.Flags().Changed(flagName)
}
