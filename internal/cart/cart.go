package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/shopcore/internal/quantity"
)

// ErrNotConfigured indicates the cart has no quantity core wired.
var ErrNotConfigured = errors.New("cart: quantity core not configured")

// Cart owns a set of line items keyed by variant and routes every quantity
// mutation through the quantity change core. Concurrent commits on the same
// cart are serialized; dry-runs share a read lock and are advisory only — a
// concurrent commit may invalidate a dry-run result before it is acted on.
type Cart struct {
	// ID identifies the cart towards storage and logging collaborators.
	ID string
	// Currency the cart is priced in.
	Currency string

	core *quantity.Core

	mu    sync.RWMutex
	items map[string]decimal.Decimal
}

// New mints a cart with a fresh identifier.
func New(core *quantity.Core, currency string) *Cart {
	return &Cart{
		ID:       uuid.NewString(),
		Currency: currency,
		core:     core,
		items:    make(map[string]decimal.Decimal),
	}
}

// storeView exposes the item map to the quantity core. The enclosing cart
// method holds the appropriate lock for the whole evaluate-then-write span.
type storeView struct {
	c *Cart
}

func (v storeView) Quantity(variantID string) decimal.Decimal {
	return v.c.items[variantID]
}

func (v storeView) SetQuantity(variantID string, qty decimal.Decimal) {
	v.c.items[variantID] = qty
}

// AddQuantity requests adding qty of the variant. The result carries the
// delta actually applied; with dryRun no state changes.
func (c *Cart) AddQuantity(ctx context.Context, variantID string, qty decimal.Decimal, dryRun bool) (quantity.Result, error) {
	return c.evaluate(ctx, variantID, qty, quantity.Add, dryRun)
}

// SetQuantity requests setting the variant's absolute quantity. The result
// carries the new effective quantity; with dryRun no state changes.
func (c *Cart) SetQuantity(ctx context.Context, variantID string, qty decimal.Decimal, dryRun bool) (quantity.Result, error) {
	return c.evaluate(ctx, variantID, qty, quantity.Set, dryRun)
}

func (c *Cart) evaluate(ctx context.Context, variantID string, qty decimal.Decimal, mode quantity.Mode, dryRun bool) (quantity.Result, error) {
	if c == nil || c.core == nil {
		return quantity.Result{}, ErrNotConfigured
	}
	if dryRun {
		c.mu.RLock()
		defer c.mu.RUnlock()
	} else {
		// Commits need the read-then-write span to be consistent.
		c.mu.Lock()
		defer c.mu.Unlock()
	}
	return c.core.Evaluate(ctx, storeView{c: c}, variantID, qty, mode, dryRun)
}

// Quantity returns the current quantity for the variant, zero when absent.
func (c *Cart) Quantity(variantID string) decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.items[variantID]
}

// Items returns a snapshot of the non-zero line items. Zero-quantity lines
// are kept internally until a storage collaborator prunes them; when that
// happens is storage policy, not cart policy.
func (c *Cart) Items() map[string]decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snapshot := make(map[string]decimal.Decimal, len(c.items))
	for id, qty := range c.items {
		if qty.IsZero() {
			continue
		}
		snapshot[id] = qty
	}
	return snapshot
}

// IsEmpty reports whether the cart has no non-zero line items.
func (c *Cart) IsEmpty() bool {
	return len(c.Items()) == 0
}
