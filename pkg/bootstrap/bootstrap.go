package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/denoland-id/denoid/pkg/config"
	"github.com/denoland-id/denoid/pkg/provider"
	"github.com/denoland-id/denoid/pkg/provider/airtable"
	"github.com/denoland-id/denoid/pkg/provider/sqlsource"
	"github.com/denoland-id/denoid/pkg/snapshot"
)

// Components are the configured module source and snapshot store
type Components struct {
	Provider provider.Provider
	Store    snapshot.Store

	// DB is set for the sql provider, Redis for the redis store. Both feed
	// readiness checks.
	DB    *sql.DB
	Redis *redis.Client

	closers []func() error
}

// Build creates the provider and store selected by cfg. On error anything
// already opened is closed.
func Build(ctx context.Context, cfg *config.Config) (*Components, error) {
	c := &Components{}

	p, err := c.newProvider(cfg.Provider)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Provider = p

	store, err := c.newStore(ctx, cfg.Store)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Store = store

	return c, nil
}

func (c *Components) newProvider(cfg config.ProviderConfig) (provider.Provider, error) {
	switch cfg.Type {
	case config.ProviderAirtable:
		client, err := airtable.NewClient(cfg.Airtable)
		if err != nil {
			return nil, fmt.Errorf("failed to create airtable client: %w", err)
		}
		return client, nil
	case config.ProviderSQL:
		source, err := sqlsource.Open(cfg.SQL.Driver, cfg.SQL.DSN, cfg.SQL.Table)
		if err != nil {
			return nil, fmt.Errorf("failed to open sql provider: %w", err)
		}
		c.DB = source.DB()
		c.closers = append(c.closers, source.Close)
		return source, nil
	case config.ProviderFile:
		return provider.NewFileProvider(cfg.FilePath), nil
	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}
}

func (c *Components) newStore(ctx context.Context, cfg config.StoreConfig) (snapshot.Store, error) {
	switch cfg.Type {
	case config.StoreNone, "":
		return snapshot.NopStore{}, nil
	case config.StoreFile:
		store, err := snapshot.NewFileStore(cfg.FilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to create file store: %w", err)
		}
		return store, nil
	case config.StoreRedis:
		store, err := snapshot.DialRedisStore(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		c.Redis = store.Client()
		c.closers = append(c.closers, store.Close)
		return store, nil
	case config.StoreS3:
		store, err := snapshot.DialS3Store(ctx, cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("failed to create s3 store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Type)
	}
}

// Close releases database and Redis connections
func (c *Components) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
