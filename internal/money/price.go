package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrCurrencyMismatch is returned when two prices with different currencies
// are combined or compared arithmetically.
var ErrCurrencyMismatch = errors.New("money: currency mismatch")

// Price is an immutable net/gross amount pair bound to a currency. Amounts
// are exact decimals; no operation introduces floating-point rounding.
//
// Gross is usually net plus tax, but gross >= net is deliberately NOT
// enforced: tax and discount policies decide the relationship between the
// two components, the value type only carries them.
type Price struct {
	Net      decimal.Decimal
	Gross    decimal.Decimal
	Currency string
}

// New constructs a price from the provided components.
func New(net, gross decimal.Decimal, currency string) Price {
	return Price{Net: net, Gross: gross, Currency: strings.TrimSpace(currency)}
}

// FromInt builds a price whose net and gross both equal the given whole
// amount. Handy for base-price fixtures and minor-unit-free catalogs.
func FromInt(amount int64, currency string) Price {
	d := decimal.NewFromInt(amount)
	return New(d, d, currency)
}

// Parse builds a price from decimal strings. It fails if either amount is
// not a valid decimal.
func Parse(net, gross, currency string) (Price, error) {
	n, err := decimal.NewFromString(net)
	if err != nil {
		return Price{}, fmt.Errorf("money: parse net %q: %w", net, err)
	}
	g, err := decimal.NewFromString(gross)
	if err != nil {
		return Price{}, fmt.Errorf("money: parse gross %q: %w", gross, err)
	}
	return New(n, g, currency), nil
}

// SameCurrency reports ErrCurrencyMismatch when the two prices are not
// denominated in the same currency.
func (p Price) SameCurrency(other Price) error {
	if p.Currency != other.Currency {
		return fmt.Errorf("%w: %q vs %q", ErrCurrencyMismatch, p.Currency, other.Currency)
	}
	return nil
}

// Scale returns a new price with net and gross each multiplied by factor.
// The currency is unchanged.
func (p Price) Scale(factor decimal.Decimal) Price {
	return Price{
		Net:      p.Net.Mul(factor),
		Gross:    p.Gross.Mul(factor),
		Currency: p.Currency,
	}
}

// Add returns the component-wise sum of the two prices.
func (p Price) Add(other Price) (Price, error) {
	if err := p.SameCurrency(other); err != nil {
		return Price{}, err
	}
	return Price{
		Net:      p.Net.Add(other.Net),
		Gross:    p.Gross.Add(other.Gross),
		Currency: p.Currency,
	}, nil
}

// Sub returns the component-wise difference of the two prices.
func (p Price) Sub(other Price) (Price, error) {
	if err := p.SameCurrency(other); err != nil {
		return Price{}, err
	}
	return Price{
		Net:      p.Net.Sub(other.Net),
		Gross:    p.Gross.Sub(other.Gross),
		Currency: p.Currency,
	}, nil
}

// Round returns a new price with both components rounded half away from
// zero to the given number of decimal places.
func (p Price) Round(places int32) Price {
	return Price{
		Net:      p.Net.Round(places),
		Gross:    p.Gross.Round(places),
		Currency: p.Currency,
	}
}

// Equal reports structural equality: net, gross and currency must all match
// under exact decimal comparison.
func (p Price) Equal(other Price) bool {
	return p.Currency == other.Currency &&
		p.Net.Equal(other.Net) &&
		p.Gross.Equal(other.Gross)
}

// IsZero reports whether both amounts are zero.
func (p Price) IsZero() bool {
	return p.Net.IsZero() && p.Gross.IsZero()
}

// String renders the price for logs and error messages.
func (p Price) String() string {
	return fmt.Sprintf("%s/%s %s", p.Net.String(), p.Gross.String(), p.Currency)
}

// Range is a (min, max) pair of prices bounding a product's variants.
// The engine transforms both bounds through every pricing stage; keeping
// Min <= Max after each stage is the handler author's responsibility.
type Range struct {
	Min Price
	Max Price
}

// NewRange constructs a range from its bounds.
func NewRange(min, max Price) Range {
	return Range{Min: min, Max: max}
}

// Equal reports structural equality of both bounds.
func (r Range) Equal(other Range) bool {
	return r.Min.Equal(other.Min) && r.Max.Equal(other.Max)
}

// SameCurrency verifies both bounds share a single currency.
func (r Range) SameCurrency() error {
	return r.Min.SameCurrency(r.Max)
}
