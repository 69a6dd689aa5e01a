package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

type PostgresConfig struct {
	DSN             string        `env:"PG_DSN" default:""`
	MaxOpenConns    int           `env:"PG_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `env:"PG_MAX_IDLE_CONNS" default:"5"`
	ConnMaxIdleTime time.Duration `env:"PG_CONN_MAX_IDLE_TIME" default:"5m"`
	ConnMaxLifetime time.Duration `env:"PG_CONN_MAX_LIFETIME" default:"30m"`
}

// OrderingConfig controls the simulated kitchen. An order becomes Preparing
// PrepareDelay after placement and Ready a further ReadyDelay after that.
type OrderingConfig struct {
	PrepareDelay time.Duration `env:"ORDER_PREPARE_DELAY" default:"2s"`
	ReadyDelay   time.Duration `env:"ORDER_READY_DELAY" default:"3s"`
}

// StudyGuideConfig configures the Gemini client. An empty APIKey selects the
// offline placeholder generator.
type StudyGuideConfig struct {
	APIKey     string        `env:"GEMINI_API_KEY" default:""`
	Model      string        `env:"GEMINI_MODEL" default:"gemini-2.5-flash"`
	BaseURL    string        `env:"GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com"`
	Timeout    time.Duration `env:"GEMINI_TIMEOUT" default:"30s"`
	MaxRetries int           `env:"GEMINI_MAX_RETRIES" default:"3"`
}

func (c PostgresConfig) Validate() error {
	if c.MaxOpenConns < 1 {
		return fmt.Errorf("PG_MAX_OPEN_CONNS must be positive, got %d", c.MaxOpenConns)
	}

	if c.MaxIdleConns < 0 || c.MaxIdleConns > c.MaxOpenConns {
		return fmt.Errorf("PG_MAX_IDLE_CONNS must be between 0 and %d, got %d", c.MaxOpenConns, c.MaxIdleConns)
	}

	return nil
}

func (c OrderingConfig) Validate() error {
	if c.PrepareDelay < 0 || c.ReadyDelay < 0 {
		return errors.New("order delays must not be negative")
	}

	return nil
}

func (c StudyGuideConfig) Validate() error {
	if c.APIKey == "" {
		return nil
	}

	if c.Model == "" {
		return errors.New("GEMINI_MODEL is required when GEMINI_API_KEY is set")
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("GEMINI_TIMEOUT must be positive, got %s", c.Timeout)
	}

	if c.MaxRetries < 1 {
		return fmt.Errorf("GEMINI_MAX_RETRIES must be at least 1, got %d", c.MaxRetries)
	}

	return nil
}
