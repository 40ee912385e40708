package observability

import (
	"context"
	"strconv"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"
)

type meterContextKey struct{}

// WithMeter returns a context carrying the provided meter.
func WithMeter(ctx context.Context, meter sentry.Meter) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if meter == nil {
		meter = sentry.NewMeter(ctx)
	}
	return context.WithValue(ctx, meterContextKey{}, meter.WithCtx(ctx))
}

// MeterFromContext returns the request-scoped meter from context or a new one.
func MeterFromContext(ctx context.Context) sentry.Meter {
	if ctx == nil {
		ctx = context.Background()
	}
	if meter, ok := ctx.Value(meterContextKey{}).(sentry.Meter); ok && meter != nil {
		return meter.WithCtx(ctx)
	}
	return sentry.NewMeter(ctx).WithCtx(ctx)
}

// CountNormalization records one normalization attempt. outcome is "ok" or an
// error kind.
func CountNormalization(ctx context.Context, outcome string, cached bool) {
	meter := MeterFromContext(ctx)
	meter.Count("normalize.requests", 1, sentry.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.String("cached", strconv.FormatBool(cached)),
	))
}

// CountCacheLookup records a result cache hit or miss.
func CountCacheLookup(ctx context.Context, hit bool) {
	meter := MeterFromContext(ctx)
	if hit {
		meter.Count("normalize.cache.hits", 1)
		return
	}
	meter.Count("normalize.cache.misses", 1)
}
