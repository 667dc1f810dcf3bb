package app

import (
	"log/slog"
	"time"

	"github.com/thenoetrevino/propboard/internal/events"
	"github.com/thenoetrevino/propboard/internal/workflow"
)

// Option is a functional option for configuring App initialization
type Option func(*appConfig)

// appConfig holds the configuration for App initialization
type appConfig struct {
	eventClient events.EventPublisher
	logger      *slog.Logger
	policy      workflow.MatchPolicy
	clock       func() time.Time
}

// WithEventPublisher sets the event publisher for the application
func WithEventPublisher(ec events.EventPublisher) Option {
	return func(cfg *appConfig) {
		cfg.eventClient = ec
	}
}

// WithLogger sets the logger for the application
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *appConfig) {
		cfg.logger = logger
	}
}

// WithMatchPolicy sets how ambiguous column matches are resolved
func WithMatchPolicy(p workflow.MatchPolicy) Option {
	return func(cfg *appConfig) {
		cfg.policy = p
	}
}

// WithClock overrides the time source used for checklist timestamps
func WithClock(clock func() time.Time) Option {
	return func(cfg *appConfig) {
		cfg.clock = clock
	}
}
