package pricing

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/noah-isme/shopcore/internal/money"
	"github.com/noah-isme/shopcore/internal/obs"
)

// ErrNoHandlers is returned when a fold is attempted on an empty chain. No
// default price is ever fabricated.
var ErrNoHandlers = errors.New("pricing: no handlers configured")

const tracerName = "shopcore/pricing"

// Chain is an ordered sequence of pricing handlers folded left to right.
// The order is fixed at construction (or Rebuild) and is significant:
// each stage's output becomes the next stage's carried-in price.
//
// The handler list is copy-on-write. Folds snapshot it once at fold start,
// so a concurrent Rebuild never mixes old and new handlers within one fold.
type Chain struct {
	handlers atomic.Pointer[[]Handler]

	// Logger receives per-fold debug records. The zero logger is silent.
	Logger zerolog.Logger
}

// NewChain constructs a chain over the given ordered handlers.
func NewChain(handlers ...Handler) *Chain {
	c := &Chain{}
	c.Rebuild(handlers)
	return c
}

// Rebuild atomically replaces the active handler list. Folds already in
// flight keep running against the snapshot they captured; new folds observe
// the new list. Rebuilding with the same handlers is a no-op in effect.
func (c *Chain) Rebuild(handlers []Handler) {
	snapshot := make([]Handler, len(handlers))
	copy(snapshot, handlers)
	c.handlers.Store(&snapshot)
}

// Len reports the number of configured handlers.
func (c *Chain) Len() int {
	return len(c.snapshot())
}

func (c *Chain) snapshot() []Handler {
	if p := c.handlers.Load(); p != nil {
		return *p
	}
	return nil
}

// VariantPrice folds the full handler sequence over the variant and returns
// the final price. The fold is strictly sequential: stage i+1 receives stage
// i's output as pctx.Price. Any handler error aborts the whole fold; no
// partial price is returned.
func (c *Chain) VariantPrice(ctx context.Context, variant Variant, pctx Context) (money.Price, error) {
	handlers := c.snapshot()
	if len(handlers) == 0 {
		return money.Price{}, ErrNoHandlers
	}
	ctx, span := otel.Tracer(tracerName).Start(ctx, "pricing.variant_price")
	defer span.End()
	span.SetAttributes(
		attribute.String("pricing.currency", pctx.Currency),
		attribute.Int("pricing.handlers", len(handlers)),
	)

	start := time.Now()
	pctx.PriceRange = nil
	for i, h := range handlers {
		price, err := h.VariantPrice(ctx, variant, pctx)
		if err != nil {
			obs.ObservePriceFold("variant", "error", time.Since(start))
			return money.Price{}, fmt.Errorf("pricing: handler %d: %w", i, err)
		}
		pctx = pctx.WithPrice(price)
	}
	obs.ObservePriceFold("variant", "ok", time.Since(start))
	c.Logger.Debug().
		Str("currency", pctx.Currency).
		Int("handlers", len(handlers)).
		Str("price", pctx.Price.String()).
		Msg("variant price computed")
	return *pctx.Price, nil
}

// ProductPriceRange folds the handler sequence over a (min, max) pair. Every
// handler transforms both bounds; the engine does not re-order them, so the
// final ordering is the handler authors' contract with callers.
func (c *Chain) ProductPriceRange(ctx context.Context, product Product, pctx Context) (money.Range, error) {
	handlers := c.snapshot()
	if len(handlers) == 0 {
		return money.Range{}, ErrNoHandlers
	}
	ctx, span := otel.Tracer(tracerName).Start(ctx, "pricing.product_price_range")
	defer span.End()
	span.SetAttributes(
		attribute.String("pricing.currency", pctx.Currency),
		attribute.Int("pricing.handlers", len(handlers)),
	)

	start := time.Now()
	pctx.Price = nil
	for i, h := range handlers {
		r, err := h.ProductPriceRange(ctx, product, pctx)
		if err != nil {
			obs.ObservePriceFold("range", "error", time.Since(start))
			return money.Range{}, fmt.Errorf("pricing: handler %d: %w", i, err)
		}
		pctx = pctx.WithRange(r)
	}
	obs.ObservePriceFold("range", "ok", time.Since(start))
	return *pctx.PriceRange, nil
}
