package cache

// Package cache stores normalization results keyed by input and options.

import (
	"context"
	"fmt"
	"time"
)

// Provider is a string key/value store with per-entry expiry.
type Provider interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

type Config struct {
	Provider              string
	RedisConnectionString string
	Size                  int
}

func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "memory", "":
		return NewMemoryProvider(cfg.Size)
	case "redis":
		return NewRedisProvider(cfg.RedisConnectionString)
	case "none":
		return NoopProvider{}, nil
	default:
		return nil, fmt.Errorf("unsupported cache provider: %s", cfg.Provider)
	}
}

// ResultKey is the cache key for email normalized under the options
// identified by fingerprint.
func ResultKey(fingerprint, email string) string {
	return fmt.Sprintf("normalize:%s:%s", fingerprint, email)
}

// NoopProvider stores nothing.
type NoopProvider struct{}

func (NoopProvider) Get(context.Context, string) (string, error) { return "", ErrNotFound }

func (NoopProvider) Set(context.Context, string, string, time.Duration) error { return nil }

func (NoopProvider) Delete(context.Context, string) error { return nil }

func (NoopProvider) Close() error { return nil }
