package stock

import (
	"context"
	"errors"
	"fmt"

	"github.com/noah-isme/shopcore/internal/quantity"
	"github.com/noah-isme/shopcore/internal/resilience"
)

// Guarded wraps a stock provider with a circuit breaker. When the breaker
// is open the lookup fails fast with ErrAvailabilityUnknown instead of
// hammering an unhealthy inventory service.
type Guarded struct {
	Provider quantity.StockProvider
	Breaker  *resilience.Breaker
}

// NewGuarded wraps provider with the given breaker.
func NewGuarded(provider quantity.StockProvider, breaker *resilience.Breaker) *Guarded {
	return &Guarded{Provider: provider, Breaker: breaker}
}

// MaxAllowed consults the wrapped provider when the breaker permits it.
func (g *Guarded) MaxAllowed(ctx context.Context, variantID string) (quantity.Limit, error) {
	if g == nil || g.Provider == nil {
		return quantity.Limit{}, fmt.Errorf("%w: no stock provider configured", quantity.ErrAvailabilityUnknown)
	}
	if g.Breaker != nil && !g.Breaker.Allow(ctx) {
		return quantity.Limit{}, fmt.Errorf("%w: %v", quantity.ErrAvailabilityUnknown, resilience.ErrOpenCircuit)
	}
	limit, err := g.Provider.MaxAllowed(ctx, variantID)
	if g.Breaker != nil {
		g.Breaker.Report(ctx, err == nil || errors.Is(err, context.Canceled))
	}
	if err != nil {
		return quantity.Limit{}, err
	}
	return limit, nil
}
