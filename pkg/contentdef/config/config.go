// Package config builds a wired contentdef.Service from configuration,
// selecting the definition store backend and optional decorations.
package config

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contentforge/contentdef/pkg/contentdef"
	"github.com/contentforge/contentdef/pkg/contentdef/repo/cached"
	"github.com/contentforge/contentdef/pkg/contentdef/repo/memory"
	repopg "github.com/contentforge/contentdef/pkg/contentdef/repo/postgres"
	reposqlite "github.com/contentforge/contentdef/pkg/contentdef/repo/sqlite"
)

// Option applies configuration to a ServiceConfig instance.
type Option func(*ServiceConfig) error

// Load constructs a ServiceConfig by applying the supplied options on top of
// library defaults.
func Load(opts ...Option) (*ServiceConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServiceConfig {
	return ServiceConfig{
		DatabaseType:       "memory",
		SQLitePath:         "contentdef.db",
		CacheTTLSeconds:    0,
		EnableEventLogging: true,
	}
}

// ServiceConfig represents configuration for the content definition service
type ServiceConfig struct {
	// Database configuration
	DatabaseType string `env:"CONTENTDEF_DATABASE_TYPE" env-default:"memory"` // "memory", "postgres", "sqlite"
	DatabaseURL  string `env:"CONTENTDEF_DATABASE_URL" env-default:""`
	SQLitePath   string `env:"CONTENTDEF_SQLITE_PATH" env-default:"contentdef.db"`

	// Definition cache; 0 disables the caching decorator
	CacheTTLSeconds int `env:"CONTENTDEF_CACHE_TTL_SECONDS" env-default:"0"`

	// Service options
	EnableEventLogging bool `env:"CONTENTDEF_ENABLE_EVENT_LOGGING" env-default:"true"`
}

// Validate checks the configuration for consistency.
func (c *ServiceConfig) Validate() error {
	switch c.DatabaseType {
	case "memory":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("database type postgres requires a database URL")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("database type sqlite requires a database path")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
	if c.CacheTTLSeconds < 0 {
		return fmt.Errorf("cache TTL must not be negative")
	}
	return nil
}

// BuildStore constructs the configured definition store, wrapped in the
// caching decorator when a cache TTL is set.
func (c *ServiceConfig) BuildStore(ctx context.Context) (contentdef.DefinitionStore, error) {
	var store contentdef.DefinitionStore

	switch c.DatabaseType {
	case "memory":
		store = memory.New()
	case "postgres":
		pool, err := pgxpool.New(ctx, c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("create connection pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			return nil, fmt.Errorf("ping database: %w", err)
		}
		pg := repopg.NewWithPool(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		store = pg
	case "sqlite":
		sq, err := reposqlite.Open(c.SQLitePath)
		if err != nil {
			return nil, err
		}
		store = sq
	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}

	if c.CacheTTLSeconds > 0 {
		ttl := time.Duration(c.CacheTTLSeconds) * time.Second
		store = cached.NewWithTTL(store, ttl, 2*ttl)
	}
	return store, nil
}

// BuildService constructs a wired Service from the configuration. Additional
// service options (provider registry, item store, custom notifier) are applied
// after the configured defaults, so callers can override them.
func (c *ServiceConfig) BuildService(ctx context.Context, opts ...contentdef.Option) (contentdef.Service, error) {
	store, err := c.BuildStore(ctx)
	if err != nil {
		return nil, err
	}

	options := []contentdef.Option{contentdef.WithDefinitionStore(store)}
	if c.EnableEventLogging {
		options = append(options, contentdef.WithNotifier(contentdef.NewLoggingNotifier(slog.Default())))
	}
	options = append(options, opts...)

	return contentdef.New(options...)
}
