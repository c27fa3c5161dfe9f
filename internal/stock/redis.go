package stock

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/shopcore/internal/obs"
	"github.com/noah-isme/shopcore/internal/quantity"
)

// Redis reads per-variant stock levels from Redis. Values are decimal
// strings maintained by the inventory pipeline. Transport failures surface
// as ErrAvailabilityUnknown — never silently treated as unbounded.
type Redis struct {
	Client *redis.Client
	// Prefix is prepended to variant identifiers, e.g. "stock:".
	Prefix string
	// MissingUnbounded treats an absent key as "no cap" instead of the
	// conservative default of zero stock.
	MissingUnbounded bool
}

// NewRedis constructs a provider over the given client.
func NewRedis(client *redis.Client, prefix string) *Redis {
	if strings.TrimSpace(prefix) == "" {
		prefix = "stock:"
	}
	return &Redis{Client: client, Prefix: prefix}
}

// MaxAllowed resolves the stock level for the variant.
func (r *Redis) MaxAllowed(ctx context.Context, variantID string) (quantity.Limit, error) {
	if r == nil || r.Client == nil {
		return quantity.Limit{}, fmt.Errorf("%w: no redis client configured", quantity.ErrAvailabilityUnknown)
	}
	raw, err := r.Client.Get(ctx, r.Prefix+variantID).Result()
	if err != nil {
		if err == redis.Nil {
			obs.ObserveStockLookup("miss")
			if r.MissingUnbounded {
				return quantity.Unlimited(), nil
			}
			return quantity.LimitOf(decimal.Zero), nil
		}
		obs.ObserveStockLookup("error")
		return quantity.Limit{}, fmt.Errorf("%w: %v", quantity.ErrAvailabilityUnknown, err)
	}
	max, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		obs.ObserveStockLookup("error")
		return quantity.Limit{}, fmt.Errorf("%w: malformed stock value %q", quantity.ErrAvailabilityUnknown, raw)
	}
	obs.ObserveStockLookup("hit")
	if max.IsNegative() {
		max = decimal.Zero
	}
	return quantity.LimitOf(max), nil
}

// SetLevel writes the stock level for one variant. Used by inventory sync
// jobs and tests.
func (r *Redis) SetLevel(ctx context.Context, variantID string, level decimal.Decimal) error {
	if r == nil || r.Client == nil {
		return fmt.Errorf("stock: no redis client configured")
	}
	return r.Client.Set(ctx, r.Prefix+variantID, level.String(), 0).Err()
}
