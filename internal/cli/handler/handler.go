// Package handler provides command execution abstraction to reduce boilerplate
package handler

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/propboard/internal/cli"
)

// Handler defines the interface for command execution
type Handler interface {
	// Execute runs the command and returns the value to print
	Execute(ctx context.Context, c *cli.CLI, args *Arguments) (any, error)
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(ctx context.Context, c *cli.CLI, args *Arguments) (any, error)

// Execute calls f
func (f HandlerFunc) Execute(ctx context.Context, c *cli.CLI, args *Arguments) (any, error) {
	return f(ctx, c, args)
}

// Arguments captures positional arguments and flag access for a handler
type Arguments struct {
	Args   []string
	Flags  *FlagParser
	cmd    *cobra.Command
	format *cli.OutputFormatter
}

// GetCmd returns the cobra command for access to flag parsing utilities
func (a *Arguments) GetCmd() *cobra.Command {
	return a.cmd
}

// Formatter returns the formatter the result will be printed with
func (a *Arguments) Formatter() *cli.OutputFormatter {
	return a.format
}

// AddOutputFlags registers the agent-friendly flags every command carries
func AddOutputFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("json", false, "Output in JSON format")
	cmd.Flags().Bool("quiet", false, "Minimal output (ID only)")
}

// Command wraps common command execution logic: it resolves the CLI
// context, runs the handler and prints the result or the classified error.
// A handler may return both a result and an error; the result is then
// printed as the detail of the failure.
// Returns a cobra RunE compatible function.
func Command(h Handler) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		jsonOutput, _ := cmd.Flags().GetBool("json")
		quietMode, _ := cmd.Flags().GetBool("quiet")
		formatter := &cli.OutputFormatter{
			JSON:   jsonOutput,
			Quiet:  quietMode,
			Out:    cmd.OutOrStdout(),
			ErrOut: cmd.ErrOrStderr(),
		}

		cliInstance, err := cli.GetCLIFromContext(ctx)
		if err != nil {
			return formatter.Fail(err)
		}
		defer func() {
			if err := cliInstance.Close(); err != nil {
				slog.Warn("error closing CLI", "error", err)
			}
		}()

		arguments := &Arguments{
			Args:   args,
			Flags:  NewFlagParser(cmd, cliInstance),
			cmd:    cmd,
			format: formatter,
		}

		result, err := h.Execute(ctx, cliInstance, arguments)
		if err != nil {
			if result != nil {
				return formatter.FailWithData(result, err)
			}
			return formatter.Fail(err)
		}
		if result == nil {
			return nil
		}
		return formatter.Success(result)
	}
}
