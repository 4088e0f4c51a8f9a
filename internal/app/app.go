package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"DraftReviewer/internal/config"
	"DraftReviewer/internal/infrastructure/mediawiki"
	"DraftReviewer/internal/infrastructure/parser"
	"DraftReviewer/internal/infrastructure/scheduler"
	"DraftReviewer/internal/infrastructure/storage"
	"DraftReviewer/internal/infrastructure/telegram"
	"DraftReviewer/internal/logging"
	"DraftReviewer/internal/ports"
	"DraftReviewer/internal/source"
	"DraftReviewer/internal/status"
	"DraftReviewer/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	db        *sql.DB
	status    *status.Log
	reviewer  *usecase.Reviewer
	sweeper   *usecase.Sweeper
	scheduler *usecase.Scheduler
}

// New builds the application. A configured database is opened and its schema
// applied; without one the ledger is disabled.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	wiki := mediawiki.NewClient(cfg.Wiki.APIURL, cfg.Wiki.AccessToken, cfg.Wiki.UserAgent, cfg.Wiki.Timeout)

	registry := source.NewRegistry()
	registry.Register(source.Static{})
	registry.Register(source.NewCategory(wiki))
	registry.Register(parser.NewListingScanner(&http.Client{Timeout: cfg.Wiki.Timeout}, cfg.Wiki.UserAgent))
	titles := source.NewStrategySource(registry, cfg.Sources, baseLogger.With("component", "source"))

	application := &Application{
		cfg:    cfg,
		logger: baseLogger,
		status: status.NewLog(cfg.Wiki.ArticlePath, baseLogger.With("component", "status")),
	}

	var ledger ports.ReviewLedger
	if cfg.Database.DSN != "" {
		db, err := storage.Open(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open ledger: %w", err)
		}
		if err := storage.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("prepare ledger: %w", err)
		}
		application.db = db
		ledger = storage.NewPostgresRepository(db)
	}

	var notifier ports.Notifier
	if tg := cfg.Notifications.Telegram; tg.BotToken != "" && tg.ChatID != "" {
		notifier = telegram.NewNotifier(tg.BotToken, tg.ChatID)
	}

	application.reviewer = usecase.NewReviewer(usecase.ReviewerDeps{
		Repository:   wiki,
		Ledger:       ledger,
		Status:       application.status,
		TemplateName: cfg.Submission.TemplateName,
		Logger:       baseLogger.With("component", "reviewer"),
	})
	application.sweeper = usecase.NewSweeper(usecase.SweeperDeps{
		Source:       titles,
		Repository:   wiki,
		Ledger:       ledger,
		Notifier:     notifier,
		TemplateName: cfg.Submission.TemplateName,
		StaleMonths:  cfg.Submission.StaleMonths,
		Logger:       baseLogger.With("component", "sweeper"),
	})
	application.scheduler = usecase.NewScheduler(
		scheduler.NewIntervalScheduler(cfg.Scheduler.Interval),
		application.sweeper,
		baseLogger.With("component", "scheduler"),
	)

	return application, nil
}

// Reviewer exposes the interactive review workflow.
func (a *Application) Reviewer() *usecase.Reviewer {
	return a.reviewer
}

// Status returns the session's status log.
func (a *Application) Status() *status.Log {
	return a.status
}

// Sweep performs a single stale-draft sweep.
func (a *Application) Sweep(ctx context.Context) (usecase.SweepReport, error) {
	now := time.Now().In(a.cfg.Scheduler.Location())
	return a.sweeper.Run(ctx, now)
}

// Watch runs sweeps on the configured interval until ctx is cancelled.
func (a *Application) Watch(ctx context.Context) error {
	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return a.scheduler.Stop(stopCtx)
}

// Close releases the ledger connection, if any.
func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
