package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/shopcore/internal/money"
	"github.com/noah-isme/shopcore/internal/pricing"
	"github.com/noah-isme/shopcore/internal/quantity"
)

// Querier is the subset of pgxpool.Pool the store needs. It keeps the store
// testable with row stubs.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres resolves authoritative base prices and stock levels from the
// product_variants table. It serves as the production pricing.PriceSource
// and quantity.StockProvider.
type Postgres struct {
	DB Querier
}

// NewPostgres constructs a store over the given connection pool.
func NewPostgres(db Querier) *Postgres {
	return &Postgres{DB: db}
}

const (
	variantPriceSQL = `SELECT price_net::text, price_gross::text, currency
FROM product_variants WHERE id = $1`

	productRangeSQL = `SELECT min(price_net)::text, max(price_net)::text,
       min(price_gross)::text, max(price_gross)::text, min(currency)
FROM product_variants WHERE product_id = $1
HAVING count(*) > 0`

	variantStockSQL = `SELECT stock::text FROM product_variants WHERE id = $1`
)

// VariantPrice loads the base price for one variant.
func (s *Postgres) VariantPrice(ctx context.Context, variantID, currency string) (money.Price, error) {
	if s == nil || s.DB == nil {
		return money.Price{}, errors.New("store: no database configured")
	}
	var net, gross, cur string
	err := s.DB.QueryRow(ctx, variantPriceSQL, variantID).Scan(&net, &gross, &cur)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return money.Price{}, fmt.Errorf("%w: variant %q", pricing.ErrPriceNotFound, variantID)
		}
		return money.Price{}, fmt.Errorf("store: variant price %q: %w", variantID, err)
	}
	price, err := money.Parse(net, gross, cur)
	if err != nil {
		return money.Price{}, fmt.Errorf("store: variant price %q: %w", variantID, err)
	}
	if currency != "" && price.Currency != currency {
		return money.Price{}, fmt.Errorf("%w: variant %q priced in %q, requested %q",
			money.ErrCurrencyMismatch, variantID, price.Currency, currency)
	}
	return price, nil
}

// ProductPriceRange loads the (min, max) base price pair across the
// product's variants.
func (s *Postgres) ProductPriceRange(ctx context.Context, productID, currency string) (money.Range, error) {
	if s == nil || s.DB == nil {
		return money.Range{}, errors.New("store: no database configured")
	}
	var minNet, maxNet, minGross, maxGross, cur string
	err := s.DB.QueryRow(ctx, productRangeSQL, productID).Scan(&minNet, &maxNet, &minGross, &maxGross, &cur)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return money.Range{}, fmt.Errorf("%w: product %q", pricing.ErrPriceNotFound, productID)
		}
		return money.Range{}, fmt.Errorf("store: product range %q: %w", productID, err)
	}
	lo, err := money.Parse(minNet, minGross, cur)
	if err != nil {
		return money.Range{}, fmt.Errorf("store: product range %q: %w", productID, err)
	}
	hi, err := money.Parse(maxNet, maxGross, cur)
	if err != nil {
		return money.Range{}, fmt.Errorf("store: product range %q: %w", productID, err)
	}
	if currency != "" && lo.Currency != currency {
		return money.Range{}, fmt.Errorf("%w: product %q priced in %q, requested %q",
			money.ErrCurrencyMismatch, productID, lo.Currency, currency)
	}
	return money.NewRange(lo, hi), nil
}

// MaxAllowed loads the current stock level for the variant. An unknown
// variant sells nothing; a database failure is an unknown availability, not
// an unbounded one.
func (s *Postgres) MaxAllowed(ctx context.Context, variantID string) (quantity.Limit, error) {
	if s == nil || s.DB == nil {
		return quantity.Limit{}, fmt.Errorf("%w: no database configured", quantity.ErrAvailabilityUnknown)
	}
	var raw string
	err := s.DB.QueryRow(ctx, variantStockSQL, variantID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return quantity.LimitOf(decimal.Zero), nil
		}
		return quantity.Limit{}, fmt.Errorf("%w: %v", quantity.ErrAvailabilityUnknown, err)
	}
	level, err := decimal.NewFromString(raw)
	if err != nil {
		return quantity.Limit{}, fmt.Errorf("%w: malformed stock value %q", quantity.ErrAvailabilityUnknown, raw)
	}
	if level.IsNegative() {
		level = decimal.Zero
	}
	return quantity.LimitOf(level), nil
}
