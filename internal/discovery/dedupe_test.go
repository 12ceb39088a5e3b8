package discovery

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestMemoryCacheSeenMarkExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	cache := NewMemoryCache(24 * time.Hour).WithClock(func() time.Time { return now })

	if cache.Seen(ctx, "github", "42") {
		t.Fatal("expected unseen before any mark")
	}

	cache.Mark(ctx, "github", "42")
	if !cache.Seen(ctx, "github", "42") {
		t.Fatal("expected seen immediately after mark")
	}

	// Other keys and other sources are unaffected.
	if cache.Seen(ctx, "github", "43") || cache.Seen(ctx, "reddit", "42") {
		t.Fatal("unrelated keys should be unseen")
	}

	// Just inside the TTL window.
	now = now.Add(23 * time.Hour)
	if !cache.Seen(ctx, "github", "42") {
		t.Fatal("expected seen within TTL")
	}

	// Past the TTL window the mark stops gating.
	now = now.Add(2 * time.Hour)
	if cache.Seen(ctx, "github", "42") {
		t.Fatal("expected unseen after TTL elapsed")
	}

	// A mark after expiry resets the window.
	cache.Mark(ctx, "github", "42")
	now = now.Add(12 * time.Hour)
	if !cache.Seen(ctx, "github", "42") {
		t.Fatal("expected seen within the refreshed TTL window")
	}
}

func TestMemoryCacheEviction(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	cache := NewMemoryCache(time.Hour).WithClock(func() time.Time { return now })
	cache.maxEntries = 10

	// Fill with entries that will be expired by the time the cap is hit.
	for i := 0; i < 10; i++ {
		cache.Mark(ctx, "old", fmt.Sprintf("%d", i))
	}
	now = now.Add(2 * time.Hour)

	// One more mark overflows the cap and sweeps the expired entries.
	cache.Mark(ctx, "new", "0")
	if got := cache.Len(); got != 1 {
		t.Fatalf("expected sweep to leave 1 entry, got %d", got)
	}
	if !cache.Seen(ctx, "new", "0") {
		t.Fatal("fresh entry should survive the sweep")
	}

	// With nothing expired the oldest marks are evicted first.
	for i := 0; i < 10; i++ {
		now = now.Add(time.Minute)
		cache.Mark(ctx, "live", fmt.Sprintf("%d", i))
	}
	if cache.Len() > 10 {
		t.Fatalf("cache exceeded cap: %d entries", cache.Len())
	}
	if !cache.Seen(ctx, "live", "9") {
		t.Fatal("newest entry should never be evicted")
	}
}
