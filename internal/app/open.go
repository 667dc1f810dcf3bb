package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/thenoetrevino/propboard/internal/config"
	"github.com/thenoetrevino/propboard/internal/database"
	"github.com/thenoetrevino/propboard/internal/events"
)

// Open builds the App from user configuration: it opens the database and
// connects the configured event transport. A transport that cannot be
// reached is logged and skipped; writes never depend on it.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}

	db, err := database.InitDB(ctx, cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	base := []Option{WithMatchPolicy(policy)}
	if publisher := ConnectEvents(ctx, cfg); publisher != nil {
		base = append(base, WithEventPublisher(publisher))
	}

	a, err := New(database.NewRepository(db), append(base, opts...)...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	a.db = db
	return a, nil
}

// ConnectEvents returns the redis bus when an address is configured, else the
// daemon client when its socket exists. It returns nil when neither is
// reachable.
func ConnectEvents(ctx context.Context, cfg *config.Config) events.EventPublisher {
	logger := slog.Default()

	if cfg.Redis.Addr != "" {
		bus, err := events.NewRedisBus(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Redis.Prefix)
		if err != nil {
			logger.Warn("redis event bus disabled", "error", err)
			return nil
		}
		if err := bus.Connect(ctx); err != nil {
			logger.Warn("redis event bus unreachable", "addr", cfg.Redis.Addr, "error", err)
			_ = bus.Close()
			return nil
		}
		return bus
	}

	if cfg.Daemon.Socket == "" {
		return nil
	}
	if _, err := os.Stat(cfg.Daemon.Socket); err != nil {
		logger.Debug("daemon socket not found, live updates disabled", "socket", cfg.Daemon.Socket)
		return nil
	}
	client, err := events.NewClient(cfg.Daemon.Socket)
	if err != nil {
		logger.Warn("event client disabled", "error", err)
		return nil
	}
	if err := client.Connect(ctx); err != nil {
		daemonErr := events.ClassifyDaemonError(err)
		logger.Warn("daemon unreachable, live updates disabled",
			"socket", cfg.Daemon.Socket,
			"message", daemonErr.Message,
			"hint", daemonErr.Hint)
		_ = client.Close()
		return nil
	}
	return client
}
