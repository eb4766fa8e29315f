package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/finance_assistant/internal/adapters/ratesource"
	portsrepo "github.com/SscSPs/finance_assistant/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finance_assistant/internal/core/ports/services"
	"github.com/SscSPs/finance_assistant/internal/core/services"
	"github.com/SscSPs/finance_assistant/internal/repositories/database/memory"
	"github.com/SscSPs/finance_assistant/internal/repositories/database/pgsql"
	"github.com/SscSPs/finance_assistant/pkg/config"
	"github.com/SscSPs/finance_assistant/pkg/database"
)

// app bundles the wired services with the resources they hold open.
type app struct {
	services *portssvc.ServiceContainer
	close    func()
}

// newApp wires storage, rate sources and services from cfg. When migrate is
// set and the storage is PostgreSQL, pending migrations run first.
func newApp(ctx context.Context, cfg *config.Config, migrate bool) (*app, error) {
	repos, closeRepos, err := newRepositories(ctx, cfg, migrate)
	if err != nil {
		return nil, err
	}
	live, err := newLiveSource(cfg)
	if err != nil {
		closeRepos()
		return nil, err
	}
	return &app{
		services: services.NewServiceContainer(repos, live, nil),
		close:    closeRepos,
	}, nil
}

func newRepositories(ctx context.Context, cfg *config.Config, migrate bool) (portsrepo.RepositoryProvider, func(), error) {
	logger := slog.Default()
	if cfg.StorageDriver == config.StorageMemory {
		logger.Warn("Using in-memory storage; data is lost on exit")
		return memory.NewRepositoryProvider(), func() {}, nil
	}

	if migrate {
		if err := runMigrations(cfg); err != nil {
			return portsrepo.RepositoryProvider{}, nil, err
		}
	}
	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, database.PoolOptions{Ping: cfg.EnableDBCheck, Logger: logger})
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, fmt.Errorf("failed to initialize database pool: %w", err)
	}
	return pgsql.NewRepositoryProvider(pool), func() { database.ClosePgxPool(pool) }, nil
}

// newLiveSource chains the HTTP source with the fixed table when one is configured.
func newLiveSource(cfg *config.Config) (portssvc.LiveRateSource, error) {
	sources := []portssvc.LiveRateSource{}
	if cfg.RateAPIURL != "" {
		sources = append(sources, ratesource.NewHTTPSource(cfg.RateAPIURL, cfg.RateAPITimeout))
	}
	units, err := ratesource.ParseFixedRates(cfg.FixedRates)
	if err != nil {
		return nil, fmt.Errorf("invalid FIXED_RATES: %w", err)
	}
	if len(units) > 0 {
		sources = append(sources, ratesource.NewFixedSource(cfg.ReferenceCurrency, units))
	}
	if len(sources) == 0 {
		slog.Warn("No live rate source configured; only cached rates will be used")
		return nil, nil
	}
	return ratesource.NewChainSource(sources...), nil
}

func runMigrations(cfg *config.Config) error {
	slog.Info("Running database migrations...")
	changed, err := pgsql.RunMigrations(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if changed {
		slog.Info("Database migrations applied successfully.")
	} else {
		slog.Info("No new migrations to apply.")
	}
	return nil
}
