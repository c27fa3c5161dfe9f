package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/shopcore/internal/money"
)

// ErrMissingBase is returned by transforming handlers placed first in the
// chain: they require a carried-in price produced by an earlier stage.
var ErrMissingBase = errors.New("pricing: no carried-in price for transforming handler")

var tenThousand = decimal.NewFromInt(10000)

func bpsFactor(bps int64) decimal.Decimal {
	return decimal.NewFromInt(bps).Div(tenThousand)
}

// BaseLookup is the authoritative first stage: it ignores any carried-in
// value and resolves the base price from the configured source.
type BaseLookup struct {
	Source PriceSource
}

// VariantPrice resolves the base price for the variant.
func (h BaseLookup) VariantPrice(ctx context.Context, variant Variant, pctx Context) (money.Price, error) {
	if h.Source == nil {
		return money.Price{}, errors.New("pricing: base lookup has no source")
	}
	if variant == nil {
		return money.Price{}, errors.New("pricing: variant is required")
	}
	return h.Source.VariantPrice(ctx, variant.VariantID(), pctx.Currency)
}

// ProductPriceRange resolves the base (min, max) pair for the product.
func (h BaseLookup) ProductPriceRange(ctx context.Context, product Product, pctx Context) (money.Range, error) {
	if h.Source == nil {
		return money.Range{}, errors.New("pricing: base lookup has no source")
	}
	if product == nil {
		return money.Range{}, errors.New("pricing: product is required")
	}
	return h.Source.ProductPriceRange(ctx, product.ProductID(), pctx.Currency)
}

// Tax applies a tax rate, in basis points, to the gross amount. Net is left
// untouched; a 9000 bps rate turns gross 5 into gross 9.5.
type Tax struct {
	RateBps int64
}

func (h Tax) apply(p money.Price) money.Price {
	factor := decimal.NewFromInt(1).Add(bpsFactor(h.RateBps))
	return money.New(p.Net, p.Gross.Mul(factor), p.Currency)
}

// VariantPrice taxes the carried-in price.
func (h Tax) VariantPrice(_ context.Context, _ Variant, pctx Context) (money.Price, error) {
	if pctx.Price == nil {
		return money.Price{}, ErrMissingBase
	}
	return h.apply(*pctx.Price), nil
}

// ProductPriceRange taxes both bounds of the carried-in range.
func (h Tax) ProductPriceRange(_ context.Context, _ Product, pctx Context) (money.Range, error) {
	if pctx.PriceRange == nil {
		return money.Range{}, ErrMissingBase
	}
	return money.NewRange(h.apply(pctx.PriceRange.Min), h.apply(pctx.PriceRange.Max)), nil
}

// Discount scales net and gross down by a percentage, in basis points, when
// the fold context has discounting enabled. With Discount=false the stage
// passes the carried-in value through unchanged.
type Discount struct {
	PercentBps int64
}

func (h Discount) factor() decimal.Decimal {
	return decimal.NewFromInt(1).Sub(bpsFactor(h.PercentBps))
}

// VariantPrice discounts the carried-in price when enabled.
func (h Discount) VariantPrice(_ context.Context, _ Variant, pctx Context) (money.Price, error) {
	if pctx.Price == nil {
		return money.Price{}, ErrMissingBase
	}
	if !pctx.Discount {
		return *pctx.Price, nil
	}
	return pctx.Price.Scale(h.factor()), nil
}

// ProductPriceRange discounts both bounds when enabled.
func (h Discount) ProductPriceRange(_ context.Context, _ Product, pctx Context) (money.Range, error) {
	if pctx.PriceRange == nil {
		return money.Range{}, ErrMissingBase
	}
	if !pctx.Discount {
		return *pctx.PriceRange, nil
	}
	f := h.factor()
	return money.NewRange(pctx.PriceRange.Min.Scale(f), pctx.PriceRange.Max.Scale(f)), nil
}

// CurrencyGuard fails the fold when the carried-in value is not denominated
// in the currency the caller asked for. Mixed-currency results must never
// leak out of a fold.
type CurrencyGuard struct{}

// VariantPrice verifies the carried-in price currency.
func (CurrencyGuard) VariantPrice(_ context.Context, _ Variant, pctx Context) (money.Price, error) {
	if pctx.Price == nil {
		return money.Price{}, ErrMissingBase
	}
	if pctx.Price.Currency != pctx.Currency {
		return money.Price{}, fmt.Errorf("%w: computed %q, requested %q",
			money.ErrCurrencyMismatch, pctx.Price.Currency, pctx.Currency)
	}
	return *pctx.Price, nil
}

// ProductPriceRange verifies both bounds.
func (CurrencyGuard) ProductPriceRange(_ context.Context, _ Product, pctx Context) (money.Range, error) {
	if pctx.PriceRange == nil {
		return money.Range{}, ErrMissingBase
	}
	for _, p := range []money.Price{pctx.PriceRange.Min, pctx.PriceRange.Max} {
		if p.Currency != pctx.Currency {
			return money.Range{}, fmt.Errorf("%w: computed %q, requested %q",
				money.ErrCurrencyMismatch, p.Currency, pctx.Currency)
		}
	}
	return *pctx.PriceRange, nil
}

// Rounder rounds both price components to the configured number of decimal
// places. Rounding is an ordinary chain stage so its position in the fold is
// a configuration decision, not engine behaviour.
type Rounder struct {
	Places int32
}

// VariantPrice rounds the carried-in price.
func (h Rounder) VariantPrice(_ context.Context, _ Variant, pctx Context) (money.Price, error) {
	if pctx.Price == nil {
		return money.Price{}, ErrMissingBase
	}
	return pctx.Price.Round(h.Places), nil
}

// ProductPriceRange rounds both bounds.
func (h Rounder) ProductPriceRange(_ context.Context, _ Product, pctx Context) (money.Range, error) {
	if pctx.PriceRange == nil {
		return money.Range{}, ErrMissingBase
	}
	return money.NewRange(pctx.PriceRange.Min.Round(h.Places), pctx.PriceRange.Max.Round(h.Places)), nil
}
