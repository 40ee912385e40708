package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	LogLevel  slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFormat string     `env:"LOG_FORMAT" envDefault:"text" validate:"omitempty,oneof=text json"`
	LogFile   string     `env:"LOG_FILE"`
	Port      string     `env:"PORT" envDefault:"8080" validate:"required,numeric"`

	CacheProvider         string        `env:"CACHE_PROVIDER" envDefault:"memory" validate:"omitempty,oneof=memory redis none"`
	RedisConnectionString string        `env:"REDIS_CONNECTION_STRING" envDefault:"redis://localhost:6379/0" validate:"required_if=CacheProvider redis"`
	CacheTTL              time.Duration `env:"CACHE_TTL" envDefault:"24h"`
	CacheSize             int           `env:"CACHE_SIZE" envDefault:"10000" validate:"min=1"`

	BatchWorkers int `env:"BATCH_WORKERS" envDefault:"8" validate:"min=1,max=256"`
	MaxBatchSize int `env:"MAX_BATCH_SIZE" envDefault:"1000" validate:"min=1"`

	ProviderRulesFile string `env:"PROVIDER_RULES_FILE"`
}

var configValidator = validator.New()

func Load() (*Config, error) {
	var cfg Config

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// CacheEnabled reports whether normalization results are cached.
func (c *Config) CacheEnabled() bool {
	return strings.TrimSpace(c.CacheProvider) != "none"
}

func (c *Config) validate() error {
	if err := configValidator.Struct(c); err != nil {
		return err
	}

	if c.CacheEnabled() && c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive when caching is enabled")
	}

	if strings.TrimSpace(c.ProviderRulesFile) != c.ProviderRulesFile {
		return fmt.Errorf("PROVIDER_RULES_FILE must not have surrounding whitespace")
	}

	return nil
}
