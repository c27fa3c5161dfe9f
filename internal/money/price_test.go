package money

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestScaleKeepsCurrency(t *testing.T) {
	p := FromInt(5, "PLN")
	scaled := p.Scale(decimal.RequireFromString("0.9"))
	want, err := Parse("4.5", "4.5", "PLN")
	if err != nil {
		t.Fatalf("parse want: %v", err)
	}
	if !scaled.Equal(want) {
		t.Fatalf("expected %s, got %s", want, scaled)
	}
	if !p.Equal(FromInt(5, "PLN")) {
		t.Fatalf("scale mutated the receiver: %s", p)
	}
}

func TestAddCurrencyMismatch(t *testing.T) {
	pln := FromInt(5, "PLN")
	eur := FromInt(5, "EUR")
	if _, err := pln.Add(eur); !errors.Is(err, ErrCurrencyMismatch) {
		t.Fatalf("expected ErrCurrencyMismatch, got %v", err)
	}
	if _, err := pln.Sub(eur); !errors.Is(err, ErrCurrencyMismatch) {
		t.Fatalf("expected ErrCurrencyMismatch, got %v", err)
	}
}

func TestAddSameCurrency(t *testing.T) {
	a, _ := Parse("1.10", "1.30", "EUR")
	b, _ := Parse("2.20", "2.40", "EUR")
	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	want, _ := Parse("3.3", "3.7", "EUR")
	if !sum.Equal(want) {
		t.Fatalf("expected %s, got %s", want, sum)
	}
}

func TestEqualIsExact(t *testing.T) {
	a, _ := Parse("4.50", "8.55", "PLN")
	b, _ := Parse("4.5", "8.55", "PLN")
	if !a.Equal(b) {
		t.Fatalf("4.50 and 4.5 must compare equal as decimals")
	}
	c, _ := Parse("4.500000001", "8.55", "PLN")
	if a.Equal(c) {
		t.Fatalf("no tolerance allowed in equality")
	}
}

func TestGrossBelowNetIsAllowed(t *testing.T) {
	// The value type does not police the net/gross relationship.
	p, err := Parse("10", "8", "EUR")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.Gross.GreaterThanOrEqual(p.Net) {
		t.Fatalf("fixture should carry gross < net")
	}
}

func TestRound(t *testing.T) {
	p, _ := Parse("1.005", "2.675", "EUR")
	rounded := p.Round(2)
	want, _ := Parse("1.01", "2.68", "EUR")
	if !rounded.Equal(want) {
		t.Fatalf("expected %s, got %s", want, rounded)
	}
}

func TestRangeEqual(t *testing.T) {
	lo := FromInt(5, "PLN")
	hi := FromInt(9, "PLN")
	r := NewRange(lo, hi)
	if !r.Equal(NewRange(lo, hi)) {
		t.Fatalf("identical ranges must be equal")
	}
	if r.Equal(NewRange(lo, FromInt(10, "PLN"))) {
		t.Fatalf("ranges with different max must differ")
	}
	if err := r.SameCurrency(); err != nil {
		t.Fatalf("same-currency range: %v", err)
	}
	mixed := NewRange(lo, FromInt(9, "EUR"))
	if err := mixed.SameCurrency(); !errors.Is(err, ErrCurrencyMismatch) {
		t.Fatalf("expected ErrCurrencyMismatch, got %v", err)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse("abc", "1", "EUR"); err == nil {
		t.Fatalf("expected parse error for net")
	}
	if _, err := Parse("1", "x", "EUR"); err == nil {
		t.Fatalf("expected parse error for gross")
	}
}
