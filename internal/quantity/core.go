package quantity

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/shopcore/internal/obs"
)

var (
	// ErrInvalidQuantity is returned for negative requested quantities.
	// Negatives are a hard error, never silently clamped to zero.
	ErrInvalidQuantity = errors.New("quantity: requested quantity cannot be negative")
	// ErrAvailabilityUnknown indicates the stock collaborator could not
	// answer. The core makes no optimistic assumption on its behalf.
	ErrAvailabilityUnknown = errors.New("quantity: stock availability unknown")
)

// Mode selects how the requested quantity is interpreted.
type Mode int

const (
	// Add treats the request as a delta on top of the current quantity.
	Add Mode = iota
	// Set treats the request as the new absolute quantity.
	Set
)

func (m Mode) String() string {
	switch m {
	case Add:
		return "add"
	case Set:
		return "set"
	default:
		return "unknown"
	}
}

// Limit is the maximum quantity currently permitted for a variant.
type Limit struct {
	Max       decimal.Decimal
	Unbounded bool
}

// Unlimited returns a limit that never clamps.
func Unlimited() Limit {
	return Limit{Unbounded: true}
}

// LimitOf returns a bounded limit.
func LimitOf(max decimal.Decimal) Limit {
	return Limit{Max: max}
}

// StockProvider is the external availability collaborator. Lookups may block
// on I/O; callers apply their own timeout through ctx.
type StockProvider interface {
	MaxAllowed(ctx context.Context, variantID string) (Limit, error)
}

// ItemStore is the durable write target for committed quantity changes,
// owned by the cart aggregate. Quantity returns zero for absent items;
// SetQuantity creates the item when needed.
type ItemStore interface {
	Quantity(variantID string) decimal.Decimal
	SetQuantity(variantID string, qty decimal.Decimal)
}

// Result reports the outcome of one quantity change evaluation. For Add
// requests Quantity is the delta actually applied; for Set requests it is
// the new absolute quantity. A non-empty Reason means the request was
// clamped — a normal outcome callers may surface to the user, not an error.
type Result struct {
	Quantity decimal.Decimal
	Reason   string
}

// Clamped reports whether the request was reduced to the permitted maximum.
func (r Result) Clamped() bool {
	return r.Reason != ""
}

// Core evaluates quantity change requests against business constraints.
// A dry-run performs the full evaluation and returns the exact result a
// commit with the same inputs would produce, without touching the store.
type Core struct {
	// Stock caps quantities per variant. Nil means no cap is configured
	// and every non-negative request is accepted as-is.
	Stock StockProvider

	// Logger receives per-evaluation debug records. The zero logger is
	// silent.
	Logger zerolog.Logger
}

// Evaluate computes the permitted outcome for the requested change and, when
// dryRun is false, durably writes the resulting quantity through the store.
// Rejections never mutate state regardless of dryRun.
func (c *Core) Evaluate(ctx context.Context, store ItemStore, variantID string, requested decimal.Decimal, mode Mode, dryRun bool) (Result, error) {
	if store == nil {
		return Result{}, errors.New("quantity: item store is required")
	}
	if requested.IsNegative() {
		obs.ObserveQuantityEval(mode.String(), "rejected")
		return Result{}, fmt.Errorf("%w: got %s", ErrInvalidQuantity, requested)
	}

	limit, err := c.maxAllowed(ctx, variantID)
	if err != nil {
		obs.ObserveQuantityEval(mode.String(), "unavailable")
		return Result{}, err
	}

	current := store.Quantity(variantID)
	var (
		result Result
		target decimal.Decimal
	)
	switch mode {
	case Add:
		applied := requested
		if !limit.Unbounded {
			headroom := limit.Max.Sub(current)
			if headroom.IsNegative() {
				headroom = decimal.Zero
			}
			if applied.GreaterThan(headroom) {
				applied = headroom
				result.Reason = fmt.Sprintf("insufficient stock: only %s more of %s can be added", headroom, variantID)
			}
		}
		result.Quantity = applied
		target = current.Add(applied)
	case Set:
		effective := requested
		if !limit.Unbounded && effective.GreaterThan(limit.Max) {
			effective = limit.Max
			result.Reason = fmt.Sprintf("insufficient stock: quantity limited to %s for %s", limit.Max, variantID)
		}
		result.Quantity = effective
		target = effective
	default:
		return Result{}, fmt.Errorf("quantity: unsupported mode %d", mode)
	}

	outcome := "accepted"
	if result.Clamped() {
		outcome = "clamped"
	}
	obs.ObserveQuantityEval(mode.String(), outcome)
	c.Logger.Debug().
		Str("variant", variantID).
		Str("mode", mode.String()).
		Str("requested", requested.String()).
		Str("result", result.Quantity.String()).
		Bool("dry_run", dryRun).
		Bool("clamped", result.Clamped()).
		Msg("quantity evaluated")

	if !dryRun {
		store.SetQuantity(variantID, target)
	}
	return result, nil
}

func (c *Core) maxAllowed(ctx context.Context, variantID string) (Limit, error) {
	if c == nil || c.Stock == nil {
		return Unlimited(), nil
	}
	limit, err := c.Stock.MaxAllowed(ctx, variantID)
	if err != nil {
		if errors.Is(err, ErrAvailabilityUnknown) {
			return Limit{}, fmt.Errorf("quantity: variant %q: %w", variantID, err)
		}
		return Limit{}, fmt.Errorf("quantity: variant %q: %w: %v", variantID, ErrAvailabilityUnknown, err)
	}
	return limit, nil
}
