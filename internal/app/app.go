package app

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/thenoetrevino/propboard/internal/checklist"
	"github.com/thenoetrevino/propboard/internal/database"
	"github.com/thenoetrevino/propboard/internal/events"
	"github.com/thenoetrevino/propboard/internal/reconciler"
	boardservice "github.com/thenoetrevino/propboard/internal/services/board"
	proposalservice "github.com/thenoetrevino/propboard/internal/services/proposal"
	"github.com/thenoetrevino/propboard/internal/workflow"
)

// App holds all application services and provides dependency injection.
// This is the main application container that manages service lifecycles.
type App struct {
	// Repository layer (direct database access)
	repo database.DataStore
	db   *sql.DB

	// Event system for live updates, nil when no transport is configured
	eventClient events.EventPublisher

	logger *slog.Logger

	// Workflow core
	Engine  *workflow.Engine
	CEL     *checklist.CELEvaluator
	Checker *checklist.Reconciler

	// Service layer (business logic)
	BoardService    boardservice.Service
	ProposalService proposalservice.Service
	Reconciler      *reconciler.Reconciler
}

// New creates a new App with all services initialized.
// This is the single entry point for creating the application container.
func New(repo database.DataStore, opts ...Option) (*App, error) {
	cfg := &appConfig{logger: slog.Default(), clock: time.Now}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	evaluator, err := checklist.NewCELEvaluator()
	if err != nil {
		return nil, fmt.Errorf("failed to create expression evaluator: %w", err)
	}

	engine := workflow.NewEngine(
		workflow.WithMatchPolicy(cfg.policy),
		workflow.WithLogger(cfg.logger),
	)
	validator := checklist.NewValidator(
		checklist.WithCEL(evaluator),
		checklist.WithClock(cfg.clock),
		checklist.WithValidatorLogger(cfg.logger),
	)
	checker := checklist.NewReconciler(engine, validator)

	proposals := proposalservice.NewService(repo, cfg.eventClient,
		proposalservice.WithEngine(engine),
		proposalservice.WithChecker(checker),
		proposalservice.WithClock(cfg.clock),
		proposalservice.WithLogger(cfg.logger),
	)

	return &App{
		repo:            repo,
		eventClient:     cfg.eventClient,
		logger:          cfg.logger,
		Engine:          engine,
		CEL:             evaluator,
		Checker:         checker,
		BoardService:    boardservice.NewService(repo, cfg.eventClient, evaluator),
		ProposalService: proposals,
		Reconciler:      reconciler.New(repo, proposals, reconciler.WithLogger(cfg.logger)),
	}, nil
}

// Repo returns the underlying repository for direct database access
func (a *App) Repo() database.DataStore {
	return a.repo
}

// Events returns the event transport, or nil when none is configured
func (a *App) Events() events.EventPublisher {
	return a.eventClient
}

// Logger returns the application logger
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Close releases the event transport and, when the App opened it, the database
func (a *App) Close() error {
	var errs []error
	if a.eventClient != nil {
		errs = append(errs, a.eventClient.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}
