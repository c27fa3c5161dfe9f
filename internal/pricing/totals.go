package pricing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/shopcore/internal/money"
)

// Line pairs a variant with the quantity being bought.
type Line struct {
	Variant  Variant
	Quantity decimal.Decimal
}

// Subtotal prices every line through the chain and sums the per-line totals.
// Each line is priced with its own quantity in the pricing context, so
// quantity-sensitive handlers see the real amount. Lines with a zero or
// negative quantity contribute nothing. An empty order sums to zero in the
// context currency.
func (c *Chain) Subtotal(ctx context.Context, lines []Line, pctx Context) (money.Price, error) {
	total := money.Price{Currency: pctx.Currency}
	for _, line := range lines {
		if !line.Quantity.IsPositive() {
			continue
		}
		linePctx := pctx
		linePctx.Quantity = line.Quantity
		unit, err := c.VariantPrice(ctx, line.Variant, linePctx)
		if err != nil {
			return money.Price{}, fmt.Errorf("pricing: subtotal line %q: %w", line.Variant.VariantID(), err)
		}
		total, err = total.Add(unit.Scale(line.Quantity))
		if err != nil {
			return money.Price{}, fmt.Errorf("pricing: subtotal line %q: %w", line.Variant.VariantID(), err)
		}
	}
	return total, nil
}
