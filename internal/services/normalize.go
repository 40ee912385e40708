package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/gitshopapp/emailnorm/internal/cache"
	"github.com/gitshopapp/emailnorm/internal/logging"
	"github.com/gitshopapp/emailnorm/internal/normalize"
	"github.com/gitshopapp/emailnorm/internal/observability"
	"github.com/gitshopapp/emailnorm/internal/providers"
)

const defaultBatchWorkers = 8

type NormalizeService struct {
	rules   *providers.Table
	cache   cache.Provider
	ttl     time.Duration
	workers int
	logger  *slog.Logger
	group   singleflight.Group
}

type NormalizeServiceConfig struct {
	Rules   *providers.Table
	Cache   cache.Provider
	TTL     time.Duration
	Workers int
	Logger  *slog.Logger
}

// BatchResult is the outcome for one input of a batch. Exactly one of
// Normalized and Error is set.
type BatchResult struct {
	Input      string `json:"input"`
	Normalized string `json:"normalized,omitempty"`
	Error      string `json:"error,omitempty"`
	Kind       string `json:"kind,omitempty"`
}

// Failed reports whether the item could not be normalized.
func (r BatchResult) Failed() bool {
	return r.Error != ""
}

func NewNormalizeService(cfg NormalizeServiceConfig) *NormalizeService {
	rules := cfg.Rules
	if rules == nil {
		rules = providers.Default()
	}
	provider := cfg.Cache
	if provider == nil {
		provider = cache.NoopProvider{}
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultBatchWorkers
	}
	return &NormalizeService{
		rules:   rules,
		cache:   provider,
		ttl:     cfg.TTL,
		workers: workers,
		logger:  logging.OrDiscard(cfg.Logger),
	}
}

func (s *NormalizeService) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}

// Rules returns the provider table the service normalizes with.
func (s *NormalizeService) Rules() *providers.Table {
	return s.rules
}

// Normalize normalizes a single address, consulting the result cache first.
func (s *NormalizeService) Normalize(ctx context.Context, email string, opts normalize.Options) (string, error) {
	n, err := normalize.New(opts, s.rules)
	if err != nil {
		observability.CountNormalization(ctx, normalize.Kind(err), false)
		return "", err
	}
	return s.normalizeWith(ctx, n, email)
}

// NormalizeBatch normalizes emails concurrently. Results are in input order.
// Per-address failures are reported in the matching BatchResult; the
// returned error is set only for conflicting options or cancellation.
func (s *NormalizeService) NormalizeBatch(ctx context.Context, emails []string, opts normalize.Options) ([]BatchResult, error) {
	n, err := normalize.New(opts, s.rules)
	if err != nil {
		return nil, err
	}

	results := make([]BatchResult, len(emails))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, email := range emails {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.batchItem(gctx, n, email)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	failed := 0
	for _, result := range results {
		if result.Failed() {
			failed++
		}
	}
	s.loggerFromContext(ctx).Info("batch normalized", "total", len(results), "failed", failed)

	return results, nil
}

func (s *NormalizeService) batchItem(ctx context.Context, n *normalize.Normalizer, email string) BatchResult {
	normalized, err := s.normalizeWith(ctx, n, email)
	if err != nil {
		s.loggerFromContext(ctx).Warn("skipping address", "error", err, "kind", normalize.Kind(err))
		return BatchResult{Input: email, Error: err.Error(), Kind: normalize.Kind(err)}
	}
	return BatchResult{Input: email, Normalized: normalized}
}

func (s *NormalizeService) normalizeWith(ctx context.Context, n *normalize.Normalizer, email string) (string, error) {
	key := cache.ResultKey(n.Options().Fingerprint(), email)

	cached, err := s.cache.Get(ctx, key)
	switch {
	case err == nil && validCachedResult(cached):
		observability.CountCacheLookup(ctx, true)
		observability.CountNormalization(ctx, "ok", true)
		return cached, nil
	case err == nil:
		s.loggerFromContext(ctx).Warn("dropping malformed cache entry", "key", key)
		if err := s.cache.Delete(ctx, key); err != nil {
			s.loggerFromContext(ctx).Warn("cache delete failed", "error", err)
		}
	case !errors.Is(err, cache.ErrNotFound):
		s.loggerFromContext(ctx).Warn("cache lookup failed", "error", err)
	}
	observability.CountCacheLookup(ctx, false)

	value, err, _ := s.group.Do(key, func() (any, error) {
		normalized, err := n.Normalize(email)
		if err != nil {
			return "", err
		}
		if err := s.cache.Set(ctx, key, normalized, s.ttl); err != nil {
			s.loggerFromContext(ctx).Warn("cache store failed", "error", err)
		}
		return normalized, nil
	})
	if err != nil {
		observability.CountNormalization(ctx, normalize.Kind(err), false)
		return "", err
	}

	observability.CountNormalization(ctx, "ok", false)
	return value.(string), nil
}

// validCachedResult reports whether a cached value can be a normalized
// address. Every result has a non-empty local part and domain.
func validCachedResult(value string) bool {
	local, domain, ok := strings.Cut(value, "@")
	return ok && local != "" && domain != ""
}
