package pricing

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/shopcore/internal/money"
)

type countingSource struct {
	inner StaticSource
	calls int
}

func (s *countingSource) VariantPrice(ctx context.Context, variantID, currency string) (money.Price, error) {
	s.calls++
	return s.inner.VariantPrice(ctx, variantID, currency)
}

func (s *countingSource) ProductPriceRange(ctx context.Context, productID, currency string) (money.Range, error) {
	s.calls++
	return s.inner.ProductPriceRange(ctx, productID, currency)
}

func TestCachedSourceHitsUpstreamOnce(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	base, _ := money.Parse("5", "9.5", "PLN")
	upstream := &countingSource{inner: StaticSource{
		Prices: map[string]money.Price{"shirt-m": base},
		Ranges: map[string]money.Range{"shirt": money.NewRange(base, base)},
	}}
	cached := NewCachedSource(upstream, client, time.Minute)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		price, err := cached.VariantPrice(ctx, "shirt-m", "PLN")
		if err != nil {
			t.Fatalf("variant price: %v", err)
		}
		if !price.Equal(base) {
			t.Fatalf("round-tripped price differs: expected %s, got %s", base, price)
		}
	}
	if upstream.calls != 1 {
		t.Fatalf("expected one upstream lookup, got %d", upstream.calls)
	}

	r, err := cached.ProductPriceRange(ctx, "shirt", "PLN")
	if err != nil {
		t.Fatalf("price range: %v", err)
	}
	if !r.Min.Equal(base) || !r.Max.Equal(base) {
		t.Fatalf("unexpected range %s..%s", r.Min, r.Max)
	}
}

func TestCachedSourceInvalidate(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	base := money.FromInt(7, "EUR")
	upstream := &countingSource{inner: StaticSource{Prices: map[string]money.Price{"v1": base}}}
	cached := NewCachedSource(upstream, client, time.Minute)

	ctx := context.Background()
	if _, err := cached.VariantPrice(ctx, "v1", "EUR"); err != nil {
		t.Fatalf("prime cache: %v", err)
	}
	if err := cached.Invalidate(ctx, "v1", "EUR"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, err := cached.VariantPrice(ctx, "v1", "EUR"); err != nil {
		t.Fatalf("refetch: %v", err)
	}
	if upstream.calls != 2 {
		t.Fatalf("expected refetch after invalidation, got %d upstream calls", upstream.calls)
	}
}

func TestCachedSourceFallsThroughWithoutRedis(t *testing.T) {
	base := money.FromInt(3, "EUR")
	upstream := &countingSource{inner: StaticSource{Prices: map[string]money.Price{"v1": base}}}
	cached := NewCachedSource(upstream, nil, time.Minute)
	price, err := cached.VariantPrice(context.Background(), "v1", "EUR")
	if err != nil {
		t.Fatalf("variant price: %v", err)
	}
	if !price.Equal(base) {
		t.Fatalf("expected %s, got %s", base, price)
	}
}
