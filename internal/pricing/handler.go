package pricing

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/shopcore/internal/money"
)

// Variant identifies a purchasable product variant. Callers supply their own
// concrete types; the engine only needs the identity.
type Variant interface {
	VariantID() string
}

// Product identifies a product whose variants span a price range.
type Product interface {
	ProductID() string
}

// Context carries the named parameters threaded through a price fold. Every
// stage receives the context with the previous stage's output in Price (or
// PriceRange); the first stage sees both nil and performs the authoritative
// base lookup.
type Context struct {
	// Currency the caller wants the final price denominated in.
	Currency string
	// Quantity being priced; zero means "unspecified".
	Quantity decimal.Decimal
	// Discount toggles promotional stages on or off.
	Discount bool
	// Price is the running value produced by the previous stage of a
	// variant fold. Stages after the first must transform it, never
	// ignore it.
	Price *money.Price
	// PriceRange is the running (min, max) pair of a product fold.
	PriceRange *money.Range
}

// WithPrice returns a copy of the context carrying the given running price.
func (c Context) WithPrice(p money.Price) Context {
	c.Price = &p
	c.PriceRange = nil
	return c
}

// WithRange returns a copy of the context carrying the given running range.
func (c Context) WithRange(r money.Range) Context {
	c.PriceRange = &r
	c.Price = nil
	return c
}

// Handler is a single stage of the price computation chain. Implementations
// are stateless or configured up front and must be safe for concurrent use.
type Handler interface {
	// VariantPrice returns the price for one variant. Stages after the
	// first derive their result from pctx.Price.
	VariantPrice(ctx context.Context, variant Variant, pctx Context) (money.Price, error)
	// ProductPriceRange returns the (min, max) price pair for a product,
	// transforming both bounds consistently.
	ProductPriceRange(ctx context.Context, product Product, pctx Context) (money.Range, error)
}

// PriceSource is the authoritative base-price lookup consumed by the first
// chain stage. Implementations may hit a database or a cache and may block;
// they must honour ctx cancellation.
type PriceSource interface {
	VariantPrice(ctx context.Context, variantID, currency string) (money.Price, error)
	ProductPriceRange(ctx context.Context, productID, currency string) (money.Range, error)
}
