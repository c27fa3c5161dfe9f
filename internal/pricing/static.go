package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/noah-isme/shopcore/internal/money"
)

// ErrPriceNotFound indicates the source has no base price for the subject.
var ErrPriceNotFound = errors.New("pricing: base price not found")

// StaticSource is an in-memory PriceSource keyed by variant and product
// identifiers. It backs tests and fixed catalogs.
type StaticSource struct {
	Prices map[string]money.Price
	Ranges map[string]money.Range
}

// VariantPrice returns the configured base price for the variant.
func (s *StaticSource) VariantPrice(_ context.Context, variantID, currency string) (money.Price, error) {
	if s == nil {
		return money.Price{}, ErrPriceNotFound
	}
	p, ok := s.Prices[variantID]
	if !ok {
		return money.Price{}, fmt.Errorf("%w: variant %q", ErrPriceNotFound, variantID)
	}
	if currency != "" && p.Currency != currency {
		return money.Price{}, fmt.Errorf("%w: variant %q priced in %q, requested %q",
			money.ErrCurrencyMismatch, variantID, p.Currency, currency)
	}
	return p, nil
}

// ProductPriceRange returns the configured base range for the product.
func (s *StaticSource) ProductPriceRange(_ context.Context, productID, currency string) (money.Range, error) {
	if s == nil {
		return money.Range{}, ErrPriceNotFound
	}
	r, ok := s.Ranges[productID]
	if !ok {
		return money.Range{}, fmt.Errorf("%w: product %q", ErrPriceNotFound, productID)
	}
	if currency != "" && r.Min.Currency != currency {
		return money.Range{}, fmt.Errorf("%w: product %q priced in %q, requested %q",
			money.ErrCurrencyMismatch, productID, r.Min.Currency, currency)
	}
	return r, nil
}
