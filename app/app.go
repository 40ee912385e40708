package app

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/gitshopapp/emailnorm/internal/cache"
	"github.com/gitshopapp/emailnorm/internal/config"
	"github.com/gitshopapp/emailnorm/internal/handlers"
	"github.com/gitshopapp/emailnorm/internal/logging"
	"github.com/gitshopapp/emailnorm/internal/providers"
	"github.com/gitshopapp/emailnorm/internal/services"
)

type App struct {
	Config           *config.Config
	Logger           *slog.Logger
	Rules            *providers.Table
	CacheProvider    cache.Provider
	NormalizeService *services.NormalizeService

	closeLog func() error
}

// New loads configuration from the environment and wires the normalization
// service. Logs are written to logOutput.
func New(logOutput io.Writer) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, closeLog, err := logging.New(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
		Output: logOutput,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	rules, err := providers.WithOverrides(cfg.ProviderRulesFile)
	if err != nil {
		closeLogger(logger, closeLog)
		return nil, fmt.Errorf("failed to load provider rules: %w", err)
	}
	if cfg.ProviderRulesFile != "" {
		logger.Info("loaded provider rule overrides", "path", cfg.ProviderRulesFile, "providers", rules.Len())
	}

	cacheProvider, err := cache.NewProvider(cache.Config{
		Provider:              cfg.CacheProvider,
		RedisConnectionString: cfg.RedisConnectionString,
		Size:                  cfg.CacheSize,
	})
	if err != nil {
		closeLogger(logger, closeLog)
		return nil, fmt.Errorf("failed to initialize cache provider: %w", err)
	}

	normalizeService := services.NewNormalizeService(services.NormalizeServiceConfig{
		Rules:   rules,
		Cache:   cacheProvider,
		TTL:     cfg.CacheTTL,
		Workers: cfg.BatchWorkers,
		Logger:  logger.With("component", "normalize_service"),
	})

	return &App{
		Config:           cfg,
		Logger:           logger,
		Rules:            rules,
		CacheProvider:    cacheProvider,
		NormalizeService: normalizeService,
		closeLog:         closeLog,
	}, nil
}

// Handlers builds the HTTP handlers for the serve command.
func (a *App) Handlers() (*handlers.Handlers, error) {
	h, err := handlers.New(handlers.Dependencies{
		Config:           a.Config,
		NormalizeService: a.NormalizeService,
		Logger:           a.Logger.With("component", "http"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}
	return h, nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.CacheProvider != nil {
		closeCacheProvider(a.Logger, a.CacheProvider)
	}
	closeLogger(a.Logger, a.closeLog)
}

func closeCacheProvider(logger *slog.Logger, provider cache.Provider) {
	if provider == nil {
		return
	}
	if err := provider.Close(); err != nil && logger != nil {
		logger.Warn("failed to close cache provider", "error", err)
	}
}

func closeLogger(logger *slog.Logger, closeLog func() error) {
	if closeLog == nil {
		return
	}
	if err := closeLog(); err != nil && logger != nil {
		logger.Warn("failed to close log file", "error", err)
	}
}
