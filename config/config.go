// Package config reads the server configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/coachfolio/portfolio"
)

// Session backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

type Config struct {
	Addr         string        `env:"COACH_ADDR" envDefault:":8080"`
	CORSOrigin   string        `env:"COACH_CORS_ORIGIN" envDefault:"*"`
	StartingCash string        `env:"COACH_STARTING_CASH" envDefault:"100000"`
	Currency     string        `env:"COACH_CURRENCY" envDefault:"USD"`
	Backend      string        `env:"COACH_SESSION_BACKEND" envDefault:"memory"`
	SessionTTL   time.Duration `env:"COACH_SESSION_TTL" envDefault:"24h"`
	CatalogDir   string        `env:"COACH_CATALOG_DIR"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	FinnhubAPIKey string        `env:"FINNHUB_API_KEY"`
	FinnhubURL    string        `env:"FINNHUB_URL" envDefault:"https://finnhub.io/api/v1"`
	QuoteTTL      time.Duration `env:"QUOTE_TTL" envDefault:"60s"`

	LogDev bool `env:"LOG_DEV" envDefault:"false"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.Backend != BackendMemory && c.Backend != BackendRedis {
		return fmt.Errorf("COACH_SESSION_BACKEND must be %q or %q, got %q", BackendMemory, BackendRedis, c.Backend)
	}
	cash, err := c.Cash()
	if err != nil {
		return err
	}
	if cash.IsNegative() {
		return fmt.Errorf("COACH_STARTING_CASH cannot be negative: %s", c.StartingCash)
	}
	return nil
}

// Cash returns the starting cash of new sessions.
func (c Config) Cash() (portfolio.Money, error) {
	m, err := portfolio.ParseMoney(c.StartingCash, c.Currency)
	if err != nil {
		return m, fmt.Errorf("COACH_STARTING_CASH: %w", err)
	}
	return m, nil
}
