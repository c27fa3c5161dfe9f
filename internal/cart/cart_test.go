package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/shopcore/internal/quantity"
	"github.com/noah-isme/shopcore/internal/stock"
)

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func newTestCart(limits map[string]decimal.Decimal) *Cart {
	provider := stock.NewStatic(limits)
	return New(&quantity.Core{Stock: provider}, "PLN")
}

func TestAddThenSet(t *testing.T) {
	c := newTestCart(map[string]decimal.Decimal{"shirt-m": dec("10")})
	ctx := context.Background()

	res, err := c.AddQuantity(ctx, "shirt-m", dec("2"), false)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !res.Quantity.Equal(dec("2")) || res.Clamped() {
		t.Fatalf("unexpected add result %+v", res)
	}
	if !c.Quantity("shirt-m").Equal(dec("2")) {
		t.Fatalf("expected quantity 2, got %s", c.Quantity("shirt-m"))
	}

	res, err = c.SetQuantity(ctx, "shirt-m", dec("5"), false)
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if !res.Quantity.Equal(dec("5")) {
		t.Fatalf("unexpected set result %+v", res)
	}
	if !c.Quantity("shirt-m").Equal(dec("5")) {
		t.Fatalf("expected quantity 5, got %s", c.Quantity("shirt-m"))
	}
}

func TestDryRunLeavesCartUntouched(t *testing.T) {
	c := newTestCart(map[string]decimal.Decimal{"shirt-m": dec("3")})
	ctx := context.Background()

	probe, err := c.AddQuantity(ctx, "shirt-m", dec("5"), true)
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if !probe.Clamped() || !probe.Quantity.Equal(dec("3")) {
		t.Fatalf("expected clamp to 3, got %+v", probe)
	}
	if !c.Quantity("shirt-m").IsZero() {
		t.Fatalf("dry run mutated the cart: %s", c.Quantity("shirt-m"))
	}

	commit, err := c.AddQuantity(ctx, "shirt-m", dec("5"), false)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if !commit.Quantity.Equal(probe.Quantity) || commit.Reason != probe.Reason {
		t.Fatalf("commit %+v must match the preceding dry run %+v", commit, probe)
	}
	if !c.Quantity("shirt-m").Equal(dec("3")) {
		t.Fatalf("expected committed quantity 3, got %s", c.Quantity("shirt-m"))
	}
}

func TestNegativeQuantityNeverMutates(t *testing.T) {
	c := newTestCart(nil)
	ctx := context.Background()
	for _, dryRun := range []bool{true, false} {
		if _, err := c.SetQuantity(ctx, "shirt-m", dec("-1"), dryRun); !errors.Is(err, quantity.ErrInvalidQuantity) {
			t.Fatalf("dryRun=%v: expected ErrInvalidQuantity, got %v", dryRun, err)
		}
	}
	if !c.IsEmpty() {
		t.Fatalf("rejected requests must leave the cart empty")
	}
}

func TestItemsOmitsZeroLines(t *testing.T) {
	c := newTestCart(nil)
	ctx := context.Background()
	if _, err := c.SetQuantity(ctx, "a", dec("2"), false); err != nil {
		t.Fatalf("set a: %v", err)
	}
	if _, err := c.SetQuantity(ctx, "b", dec("1"), false); err != nil {
		t.Fatalf("set b: %v", err)
	}
	if _, err := c.SetQuantity(ctx, "b", decimal.Zero, false); err != nil {
		t.Fatalf("zero b: %v", err)
	}
	items := c.Items()
	if len(items) != 1 {
		t.Fatalf("expected one visible line, got %d", len(items))
	}
	if !items["a"].Equal(dec("2")) {
		t.Fatalf("expected line a=2, got %v", items)
	}
}

func TestConcurrentAddsSerialize(t *testing.T) {
	c := newTestCart(map[string]decimal.Decimal{"shirt-m": dec("50")})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.AddQuantity(ctx, "shirt-m", dec("1"), false); err != nil {
				t.Errorf("add: %v", err)
			}
		}()
	}
	wg.Wait()

	// 100 unit adds against a cap of 50: exactly the cap survives, the
	// rest clamp to zero headroom.
	if !c.Quantity("shirt-m").Equal(dec("50")) {
		t.Fatalf("expected quantity 50, got %s", c.Quantity("shirt-m"))
	}
}

func TestCartHasIdentity(t *testing.T) {
	a := newTestCart(nil)
	b := newTestCart(nil)
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("carts must carry distinct identifiers: %q vs %q", a.ID, b.ID)
	}
}
