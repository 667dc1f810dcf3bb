// Package cli holds what every propboard subcommand shares: the application
// context, output formatting and exit codes.
package cli

import (
	"context"
	"fmt"

	"github.com/thenoetrevino/propboard/internal/app"
	"github.com/thenoetrevino/propboard/internal/config"
)

type contextKey string

const appKey contextKey = "app"

// CLI represents the CLI application context
type CLI struct {
	App    *app.App
	Config *config.Config
	owned  bool
}

// WithApp returns a context carrying an already built App. Commands run
// under it use that App instead of opening the database themselves.
func WithApp(ctx context.Context, a *app.App) context.Context {
	return context.WithValue(ctx, appKey, a)
}

// NewCLI loads configuration, opens the database and connects the event
// transport when one is reachable
func NewCLI(ctx context.Context) (*CLI, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	a, err := app.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &CLI{App: a, Config: cfg, owned: true}, nil
}

// GetCLIFromContext returns a CLI over the App in ctx, or opens a new one
func GetCLIFromContext(ctx context.Context) (*CLI, error) {
	if a, ok := ctx.Value(appKey).(*app.App); ok && a != nil {
		return &CLI{App: a, Config: config.Default()}, nil
	}
	return NewCLI(ctx)
}

// Close cleans up CLI resources it opened
func (c *CLI) Close() error {
	if !c.owned {
		return nil
	}
	return c.App.Close()
}
