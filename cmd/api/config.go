package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/fastprodman/campushub/internal/config"
)

type apiConfig struct {
	Port            uint16        `env:"APP_PORT" default:"8080"`
	LogLevel        slog.Level    `env:"APP_LOG_LEVEL" default:"INFO"`
	ShutdownTimeout time.Duration `env:"APP_SHUTDOWN_TIMEOUT" default:"10s"`

	// StoreDriver is "memory" (seeded fixtures) or "postgres".
	StoreDriver string `env:"STORE_DRIVER" default:"memory"`

	Postgres   config.PostgresConfig
	Ordering   config.OrderingConfig
	StudyGuide config.StudyGuideConfig
}

func (c apiConfig) Validate() error {
	switch c.StoreDriver {
	case config.StoreMemory:
		return nil
	case config.StorePostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("PG_DSN is required for store driver %q", c.StoreDriver)
		}

		return nil
	default:
		return fmt.Errorf("%w: %q", errUnknownStore, c.StoreDriver)
	}
}
