package cache

import (
	"context"
	"testing"

	"cnpj-data-api/internal/metrics"
)

func TestNew_EmptyURLDisables(t *testing.T) {
	c := New("", 300)
	if c.Enabled() {
		t.Fatal("expected cache disabled without redis url")
	}
}

func TestNew_BadURLDisables(t *testing.T) {
	c := New("not-a-url", 300)
	if c.Enabled() {
		t.Fatal("expected cache disabled for malformed url")
	}
}

func TestDisabledCache_OperationsDegradeToMisses(t *testing.T) {
	c := New("", 300)
	ctx := context.Background()

	c.Set(ctx, "cnpj:12345678", "value")
	if _, ok := c.Get(ctx, "cnpj:12345678"); ok {
		t.Fatal("expected miss from disabled cache")
	}

	c.SetMany(ctx, map[string]string{"cnpj:1": "a", "cnpj:2": "b"})
	found := c.GetMany(ctx, []string{"cnpj:1", "cnpj:2"})
	if len(found) != 0 {
		t.Fatalf("expected no hits from disabled cache, got %v", found)
	}
}

func TestCache_RecordsMissesPerKey(t *testing.T) {
	c := New("", 300)
	c.Metrics = metrics.NewStore()
	ctx := context.Background()

	c.Get(ctx, "cnpj:12345678")
	c.GetMany(ctx, []string{"cnpj:1", "cnpj:2"})

	snap := c.Metrics.Snapshot()
	if got := snap[metrics.CacheMissesTotal]; got != int64(3) {
		t.Fatalf("expected 3 misses counted, got %v", got)
	}
	if got := snap[metrics.CacheHitsTotal]; got != int64(0) {
		t.Fatalf("expected no hits counted, got %v", got)
	}
}

func TestCache_NilMetricsIsSafe(t *testing.T) {
	c := New("", 300)
	if _, ok := c.Get(context.Background(), "cnpj:12345678"); ok {
		t.Fatal("expected miss")
	}
}

func TestKey(t *testing.T) {
	if got := Key("12345678"); got != "cnpj:12345678" {
		t.Fatalf("expected cnpj:12345678, got %s", got)
	}
}
