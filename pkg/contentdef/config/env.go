package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// WithEnv applies environment variable overrides.
//
// Environment variable mapping:
//
//	CONTENTDEF_DATABASE_TYPE - Definition store backend: "memory", "postgres",
//	                           or "sqlite" (default: "memory")
//	CONTENTDEF_DATABASE_URL  - Postgres connection string, required when the
//	                           database type is "postgres"
//	CONTENTDEF_SQLITE_PATH   - SQLite database file (default: "contentdef.db")
//	CONTENTDEF_CACHE_TTL_SECONDS   - Definition cache TTL; 0 disables caching
//	CONTENTDEF_ENABLE_EVENT_LOGGING - Log definition change events (default: true)
//
// Use programmatic options for anything beyond these.
func WithEnv() Option {
	return func(c *ServiceConfig) error {
		if err := cleanenv.ReadEnv(c); err != nil {
			return fmt.Errorf("read environment: %w", err)
		}
		return nil
	}
}
