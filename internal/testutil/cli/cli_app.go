package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/propboard/internal/app"
	propcli "github.com/thenoetrevino/propboard/internal/cli"
)

// Result is the captured output of one command run
type Result struct {
	Stdout string
	Stderr string
	Err    error
}

// ExitCode is the process exit code the run would produce
func (r Result) ExitCode() int {
	return propcli.ExitCode(r.Err)
}

// ExecuteCLICommand executes a CLI command with a test app instance and
// returns stdout. The app is injected through the context so commands use
// the test database instead of opening the configured one.
func ExecuteCLICommand(t *testing.T, testApp *app.App, cmd *cobra.Command, args []string) (string, error) {
	t.Helper()
	res := Run(t, context.Background(), testApp, cmd, args)
	return res.Stdout, res.Err
}

// Run executes cmd under ctx and captures both streams
func Run(t *testing.T, ctx context.Context, testApp *app.App, cmd *cobra.Command, args []string) Result {
	t.Helper()

	if testApp == nil {
		t.Fatal("testApp cannot be nil - SetupCLITest must be called first")
	}

	// nil would make cobra fall back to the test binary's os.Args
	if args == nil {
		args = []string{}
	}

	var stdout, stderr bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	// Disable usage output on error for cleaner test output
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.ExecuteContext(propcli.WithApp(ctx, testApp))
	return Result{Stdout: stdout.String(), Stderr: stderr.String(), Err: err}
}

// ParseJSON parses JSON output from CLI commands
func ParseJSON(t *testing.T, output string) map[string]any {
	t.Helper()

	var result map[string]any
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("Failed to parse JSON output: %v\nOutput: %s", err, output)
	}
	return result
}
