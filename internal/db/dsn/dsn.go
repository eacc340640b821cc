// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"fmt"

	"github.com/cineverse-captions/cineverse/internal/config"
)

// Create builds the Data Source Name for the configured engine.
// A complete URL in cfg.DB.URL is returned verbatim.
func Create(cfg *config.Config) string {
	if cfg.DB.URL != "" {
		return cfg.DB.URL
	}

	switch cfg.DB.GormEngine {
	case config.EnginePostgres:
		out := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s",
			cfg.DB.Host,
			cfg.DB.Port,
			cfg.DB.User,
			cfg.DB.Password,
			cfg.DB.Name,
		)

		if cfg.DB.Extras != "" {
			out += " " + cfg.DB.Extras
		}

		return out
	case config.EngineSQLite:
		if cfg.DB.Extras != "" {
			return fmt.Sprintf("%s?%s", cfg.DB.Name, cfg.DB.Extras)
		}

		return cfg.DB.Name
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
			cfg.DB.User,
			cfg.DB.Password,
			cfg.DB.Host,
			cfg.DB.Port,
			cfg.DB.Name,
			cfg.DB.Extras,
		)
	}
}
