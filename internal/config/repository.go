package config

import (
	"context"
	"fmt"
	"os"

	"loipen-tracker/internal/logging"
	"loipen-tracker/internal/receipts"
	"loipen-tracker/internal/repository/sqlstore"
)

// CreateRepository opens the configured store and applies pending migrations
func CreateRepository(ctx context.Context, config *Config, log logging.Logger) (*sqlstore.Store, error) {
	loc, err := config.GetLocation()
	if err != nil {
		return nil, fmt.Errorf("failed to load time zone: %w", err)
	}

	if config.IsSQLite() && config.Database.DSN == "" {
		if err := os.MkdirAll(config.Database.Dir, os.FileMode(config.Database.DirPermissions)); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	repo, err := sqlstore.Open(ctx, sqlstore.Options{
		Driver:   config.Database.Driver,
		DSN:      config.GetDSN(),
		Location: loc,
		Logger:   log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return repo, nil
}

// CreateTestRepository creates an in-memory repository for testing
func CreateTestRepository(ctx context.Context) (*sqlstore.Store, error) {
	cfg := NewConfig()
	cfg.Database.DSN = ":memory:"

	repo, err := CreateRepository(ctx, cfg, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize test database: %w", err)
	}

	return repo, nil
}

// CreatePresigner builds the receipt presigner, or returns nil when no bucket is configured
func CreatePresigner(config *Config) (*receipts.Presigner, error) {
	if !config.ReceiptsEnabled() {
		return nil, nil
	}
	return receipts.NewPresigner(receipts.Config{
		Region:       config.Storage.Region,
		Endpoint:     config.Storage.Endpoint,
		Bucket:       config.Storage.Bucket,
		AccessKey:    config.Storage.AccessKey,
		SecretKey:    config.Storage.SecretKey,
		UsePathStyle: config.Storage.UsePathStyle,
		Expiry:       config.Storage.PresignExpiry,
	})
}
