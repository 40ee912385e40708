package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewProvider(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		provider string
		wantErr  bool
	}{
		{name: "default provider", provider: "", wantErr: false},
		{name: "memory provider", provider: "memory", wantErr: false},
		{name: "disabled", provider: "none", wantErr: false},
		{name: "unsupported provider", provider: "memcached", wantErr: true},
		{name: "redis with bad url", provider: "redis", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			provider, err := NewProvider(Config{Provider: tt.provider, RedisConnectionString: "not a url", Size: 10})
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if err := provider.Close(); err != nil {
				t.Fatalf("expected close without error, got %v", err)
			}
		})
	}
}

func TestMemoryProvider_SetGetDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	provider, err := NewMemoryProvider(10)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	key := ResultKey("c1a0i0v1", "John@Example.com")
	if _, err := provider.Get(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := provider.Set(ctx, key, "john@example.com", time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	got, err := provider.Get(ctx, key)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != "john@example.com" {
		t.Fatalf("unexpected value: %q", got)
	}

	if err := provider.Delete(ctx, key); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := provider.Get(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemoryProvider_Expiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	provider, err := NewMemoryProvider(10)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	provider.now = func() time.Time { return now }

	if err := provider.Set(ctx, "expiring", "v", time.Second); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := provider.Set(ctx, "forever", "v", 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	now = now.Add(2 * time.Second)

	if _, err := provider.Get(ctx, "expiring"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expired entry, got %v", err)
	}
	if _, err := provider.Get(ctx, "forever"); err != nil {
		t.Fatalf("expected entry without ttl to survive, got %v", err)
	}
	if provider.Len() != 1 {
		t.Fatalf("expected expired entry to be removed, len=%d", provider.Len())
	}
}

func TestMemoryProvider_EvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	provider, err := NewMemoryProvider(2)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	_ = provider.Set(ctx, "a", "1", time.Minute)
	_ = provider.Set(ctx, "b", "2", time.Minute)
	_, _ = provider.Get(ctx, "a")
	_ = provider.Set(ctx, "c", "3", time.Minute)

	if _, err := provider.Get(ctx, "b"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected b to be evicted, got %v", err)
	}
	if _, err := provider.Get(ctx, "a"); err != nil {
		t.Fatalf("expected a to survive, got %v", err)
	}
}

func TestNoopProvider(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	var provider Provider = NoopProvider{}
	if err := provider.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if _, err := provider.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
