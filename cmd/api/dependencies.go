package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Shihan7021/fintrack1/internal/domain/commit"
	"github.com/Shihan7021/fintrack1/internal/domain/ingest"
	"github.com/Shihan7021/fintrack1/internal/domain/ingest/categorizer"
	importhandler "github.com/Shihan7021/fintrack1/internal/domain/ingest/handler"
	"github.com/Shihan7021/fintrack1/internal/domain/ingest/normalizer"
	"github.com/Shihan7021/fintrack1/internal/domain/ingest/resolver"
	importservice "github.com/Shihan7021/fintrack1/internal/domain/ingest/service"
	"github.com/Shihan7021/fintrack1/internal/domain/rules"
	firestorestore "github.com/Shihan7021/fintrack1/internal/storage/firestore"
	"github.com/Shihan7021/fintrack1/pkg/config"
	"github.com/Shihan7021/fintrack1/pkg/cron"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Store  *firestorestore.Store
	Logger *slog.Logger

	// Services
	Pipeline  *importservice.Pipeline
	Registry  *importservice.Registry
	Committer *commit.Committer
	RuleSvc   *rules.Service
	Scheduler *cron.Scheduler

	// Handlers
	ImportHandler *importhandler.ImportHandler
}

// InitDependencies initializes all application dependencies
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initStore(ctx); err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	if err := deps.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	if err := deps.initHandlers(); err != nil {
		return nil, fmt.Errorf("failed to init handlers: %w", err)
	}

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

func (d *Dependencies) initStore(ctx context.Context) error {
	store, err := firestorestore.New(ctx, d.Config.Firestore.ProjectID, d.Config.Firestore.CredentialsFile, d.Logger)
	if err != nil {
		return err
	}
	d.Store = store

	d.Logger.Info("document store connected",
		slog.String("project", d.Config.Firestore.ProjectID),
	)
	return nil
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices() error {
	engine := categorizer.NewEngine(categorizer.DefaultRules(), "Others")

	d.RuleSvc = rules.NewService(d.Store, d.Logger)

	d.Pipeline = importservice.NewPipeline(
		resolver.New(resolver.DefaultAliases()),
		normalizer.New(),
		engine,
		ingest.DefaultCategorySet(),
		d.Logger,
	).
		WithMerchantMatcher(d.RuleSvc).
		WithWorkers(d.Config.Import.ParseWorkers)

	d.Registry = importservice.NewRegistry(d.Config.Import.PreviewTTL)

	d.Committer = commit.NewCommitter(d.Store, d.Config.Import.CommitWorkers, d.Logger).
		WithRateLimit(float64(d.Config.Import.CommitRatePerSecond))

	d.Scheduler = cron.NewScheduler(d.Registry, d.Logger)

	d.Logger.Info("services initialized")
	return nil
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() error {
	d.ImportHandler = importhandler.NewImportHandler(
		d.Pipeline,
		d.Registry,
		d.Committer,
		d.RuleSvc,
		d.Config.Import.CurrencyCode,
		d.Config.Import.MaxUploadBytes,
		d.Logger,
	)

	d.Logger.Info("handlers initialized")
	return nil
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.Scheduler != nil {
		<-d.Scheduler.Stop().Done()
	}
	if d.Store != nil {
		_ = d.Store.Close()
	}
	d.Logger.Info("cleanup completed")
}
