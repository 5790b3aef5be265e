package main

import (
	"context"
	"fmt"
	"os"

	"loipen-tracker/internal/api"
	"loipen-tracker/internal/cli"
	"loipen-tracker/internal/config"
	"loipen-tracker/internal/logging"
	"loipen-tracker/internal/services"
	"loipen-tracker/internal/timer"
)

// bootstrap opens the store and wires the services for the configured
// environment. Logs go to stderr so exports can be piped from stdout.
func bootstrap(ctx context.Context, cfg *config.Config) (*cli.Backend, error) {
	log := logging.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	loc, err := cfg.GetLocation()
	if err != nil {
		return nil, fmt.Errorf("failed to load time zone: %w", err)
	}

	store, err := config.CreateRepository(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	clock := timer.SystemClock{Location: loc}
	opts := services.Options{
		Clock:           clock,
		Location:        loc,
		PersistPauses:   cfg.Timer.PersistPauses,
		FirstSeasonYear: cfg.Timer.FirstSeasonYear,
		Logger:          log,
	}

	presigner, err := config.CreatePresigner(cfg)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to configure receipts: %w", err)
	}
	if presigner != nil {
		opts.Receipts = presigner
	}

	container := services.NewServiceContainer(store, opts)
	log.Debug(ctx, "backend ready", "driver", cfg.Database.Driver, "receipts", cfg.ReceiptsEnabled())

	return &cli.Backend{
		API:    api.NewBusinessAPI(container, clock),
		Logger: log,
		Close:  store.Close,
	}, nil
}
