package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/thenoetrevino/propboard/internal/config"
	"github.com/thenoetrevino/propboard/internal/daemon"
	"github.com/thenoetrevino/propboard/internal/logging"
)

func main() {
	cmd := &cobra.Command{
		Use:          "propboard-daemon",
		Short:        "Fan out board change events to connected propboard clients",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         run,
	}
	cmd.Flags().String("metrics-addr", "", "Serve prometheus metrics on this address (e.g. :9464)")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	// Set up signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer cancel()

	if err := logging.Init(); err != nil {
		slog.Warn("file logging disabled", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return err
	}
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
	if metricsAddr == "" {
		metricsAddr = cfg.Daemon.MetricsAddr
	}

	// NewServer creates the socket directory with 0700
	server, err := daemon.NewServer(cfg.Daemon.Socket)
	if err != nil {
		slog.Error("failed to create daemon", "error", err)
		return err
	}

	slog.Info("propboard daemon starting", "socket_path", cfg.Daemon.Socket, "pid", os.Getpid())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start(gctx)
	})
	if metricsAddr != "" {
		g.Go(func() error {
			return server.ServeMetrics(gctx, metricsAddr)
		})
	}

	if err := g.Wait(); err != nil {
		slog.Error("daemon error", "error", err)
		return err
	}

	slog.Info("propboard daemon shutting down gracefully")
	return nil
}
