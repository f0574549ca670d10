// Package app assembles storage backends shared by the server and the CLI.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/fixtures"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/storage"
)

const redisKeyPrefix = "helpdesk:"

// Backend is the opened storage for the configured STORAGE_BACKEND.
type Backend struct {
	Name     string
	Tickets  repository.TicketRepository
	Settings repository.SettingsRepository
	Pinger   storage.Pinger
	Seed     fixtures.Seed

	closers []func()
}

// Close releases connections in reverse order of opening.
func (b *Backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// OpenBackend connects the configured backend and seeds an empty store.
// Slot backends keep settings next to the tickets; SQL backends keep them
// in a file slot under STORAGE_FILE_PATH.
func OpenBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger, now func() time.Time) (*Backend, error) {
	seed, err := loadSeed(cfg.Storage.SeedFile)
	if err != nil {
		return nil, err
	}
	opts := []repository.Option{repository.WithLogger(logger)}
	if now != nil {
		opts = append(opts, repository.WithClock(now))
	}

	b := &Backend{Name: cfg.Storage.Backend, Seed: seed}
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		mem := storage.NewMemory()
		b.useSlots(mem, mem, seed.Tickets, logger, opts)
	case config.BackendFile:
		file, err := storage.NewFile(cfg.Storage.FilePath)
		if err != nil {
			return nil, fmt.Errorf("open file storage: %w", err)
		}
		b.useSlots(file, file, seed.Tickets, logger, opts)
	case config.BackendRedis:
		rdb := persistence.NewRedis(ctx, cfg.Redis, logger)
		b.closers = append(b.closers, rdb.Close)
		b.useSlots(storage.NewRedis(rdb.Client, redisKeyPrefix), rdb, seed.Tickets, logger, opts)
	case config.BackendSQLite:
		lite, err := persistence.NewSQLite(ctx, cfg.Storage.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, lite.Close)
		if err := persistence.RunSQLiteMigrations(ctx, lite.DB, logger); err != nil {
			b.Close()
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		b.Tickets = repository.NewSQLiteTicketRepository(lite.DB, opts...)
		b.Pinger = lite
		if err := b.useFileSettings(cfg.Storage.FilePath, logger); err != nil {
			b.Close()
			return nil, err
		}
	case config.BackendPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		b.closers = append(b.closers, pg.Close)
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.Pool, logger); err != nil {
				b.Close()
				return nil, fmt.Errorf("migrate postgres: %w", err)
			}
		}
		b.Tickets = repository.NewPostgresTicketRepository(pg.Pool, opts...)
		b.Pinger = pg
		if err := b.useFileSettings(cfg.Storage.FilePath, logger); err != nil {
			b.Close()
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}

	if err := b.Tickets.Initialize(ctx, seed.Tickets); err != nil {
		b.Close()
		return nil, fmt.Errorf("initialize tickets: %w", err)
	}
	logger.Info("storage ready", zap.String("backend", b.Name), zap.Int("seed_tickets", len(seed.Tickets)))
	return b, nil
}

func (b *Backend) useSlots(kv storage.KeyValue, pinger storage.Pinger, seed []domain.Ticket, logger *zap.Logger, opts []repository.Option) {
	b.Tickets = repository.NewCollectionTicketRepository(kv, seed, opts...)
	b.Settings = repository.NewSettingsRepository(kv, logger)
	b.Pinger = pinger
}

func (b *Backend) useFileSettings(dir string, logger *zap.Logger) error {
	file, err := storage.NewFile(dir)
	if err != nil {
		return fmt.Errorf("open settings storage: %w", err)
	}
	b.Settings = repository.NewSettingsRepository(file, logger)
	return nil
}

func loadSeed(path string) (fixtures.Seed, error) {
	if path == "" {
		return fixtures.Default(), nil
	}
	seed, err := fixtures.LoadSeedFile(path)
	if err != nil {
		return fixtures.Seed{}, fmt.Errorf("load seed %s: %w", path, err)
	}
	return seed, nil
}
