package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/shopcore/internal/money"
)

// CachedSource decorates a PriceSource with a Redis-backed JSON cache for
// base prices. Cache failures are treated as misses: the underlying source
// stays authoritative and lookups fall through.
type CachedSource struct {
	Source PriceSource
	Client *redis.Client
	TTL    time.Duration
}

// NewCachedSource wraps source with the given cache client and TTL.
func NewCachedSource(source PriceSource, client *redis.Client, ttl time.Duration) *CachedSource {
	return &CachedSource{Source: source, Client: client, TTL: ttl}
}

// VariantPrice returns the cached base price or resolves and caches it.
func (c *CachedSource) VariantPrice(ctx context.Context, variantID, currency string) (money.Price, error) {
	if c.Source == nil {
		return money.Price{}, errors.New("pricing: cached source has no upstream")
	}
	key := fmt.Sprintf("price:variant:%s:%s", variantID, currency)
	var cached money.Price
	if ok, _ := c.getJSON(ctx, key, &cached); ok {
		return cached, nil
	}
	price, err := c.Source.VariantPrice(ctx, variantID, currency)
	if err != nil {
		return money.Price{}, err
	}
	_ = c.setJSON(ctx, key, price)
	return price, nil
}

// ProductPriceRange returns the cached base range or resolves and caches it.
func (c *CachedSource) ProductPriceRange(ctx context.Context, productID, currency string) (money.Range, error) {
	if c.Source == nil {
		return money.Range{}, errors.New("pricing: cached source has no upstream")
	}
	key := fmt.Sprintf("price:range:%s:%s", productID, currency)
	var cached money.Range
	if ok, _ := c.getJSON(ctx, key, &cached); ok {
		return cached, nil
	}
	r, err := c.Source.ProductPriceRange(ctx, productID, currency)
	if err != nil {
		return money.Range{}, err
	}
	_ = c.setJSON(ctx, key, r)
	return r, nil
}

// Invalidate removes the cached entries for one variant or product.
func (c *CachedSource) Invalidate(ctx context.Context, id, currency string) error {
	if c == nil || c.Client == nil {
		return nil
	}
	return c.Client.Del(ctx,
		fmt.Sprintf("price:variant:%s:%s", id, currency),
		fmt.Sprintf("price:range:%s:%s", id, currency),
	).Err()
}

func (c *CachedSource) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	if c == nil || c.Client == nil || key == "" {
		return false, nil
	}
	data, err := c.Client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *CachedSource) setJSON(ctx context.Context, key string, v any) error {
	if c == nil || c.Client == nil || key == "" || c.TTL <= 0 {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, key, data, c.TTL).Err()
}
