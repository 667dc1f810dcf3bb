// Package launcher runs the interactive board until the user quits or the
// process is signalled.
package launcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/thenoetrevino/propboard/internal/app"
	"github.com/thenoetrevino/propboard/internal/config"
	"github.com/thenoetrevino/propboard/internal/tui"
)

// drainPeriod bounds how long a signalled shutdown waits for the program
const drainPeriod = 2 * time.Second

// Launch starts the board TUI
func Launch(ctx context.Context, a *app.App, cfg *config.Config, opts tui.Options) error {
	// Create root context with signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if a.Events() == nil {
		slog.Info("no event transport, continuing without live updates")
	}

	model, err := tui.InitialModel(ctx, a, cfg, opts)
	if err != nil {
		return err
	}
	p := tea.NewProgram(model, tea.WithContext(ctx))

	// goroutine to monitor cancellation
	errChan := make(chan error, 1)
	go func() {
		_, err := p.Run()
		errChan <- err
	}()

	// Wait for program completion or cancellation
	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("error running program: %w", err)
		}
	case <-ctx.Done():
		slog.Info("shutdown signal received, cleaning up")
		select {
		case <-errChan:
		case <-time.After(drainPeriod):
			slog.Warn("board did not exit within drain period")
		}
	}

	return nil
}
