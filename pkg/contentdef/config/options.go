package config

import (
	"fmt"
)

// WithDatabase configures the definition store backend
func WithDatabase(dbType, url string) Option {
	return func(c *ServiceConfig) error {
		switch dbType {
		case "memory", "sqlite":
		case "postgres":
			if url == "" {
				return fmt.Errorf("database URL is required for postgres")
			}
		default:
			return fmt.Errorf("database type must be 'memory', 'postgres' or 'sqlite', got: %s", dbType)
		}
		c.DatabaseType = dbType
		c.DatabaseURL = url
		return nil
	}
}

// WithSQLitePath sets the SQLite database file path
func WithSQLitePath(path string) Option {
	return func(c *ServiceConfig) error {
		if path == "" {
			return fmt.Errorf("sqlite path cannot be empty")
		}
		c.DatabaseType = "sqlite"
		c.SQLitePath = path
		return nil
	}
}

// WithCacheTTL enables the in-memory definition cache with the given TTL in
// seconds; 0 disables caching
func WithCacheTTL(seconds int) Option {
	return func(c *ServiceConfig) error {
		if seconds < 0 {
			return fmt.Errorf("cache TTL must not be negative, got: %d", seconds)
		}
		c.CacheTTLSeconds = seconds
		return nil
	}
}

// WithEventLogging enables or disables logging of definition change events
func WithEventLogging(enabled bool) Option {
	return func(c *ServiceConfig) error {
		c.EnableEventLogging = enabled
		return nil
	}
}
