package stock

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/shopcore/internal/quantity"
)

// Static is an in-memory stock provider keyed by variant. Variants without
// an entry are unbounded. It backs tests and fixed catalogs.
type Static struct {
	mu     sync.RWMutex
	limits map[string]decimal.Decimal
}

// NewStatic constructs a provider over the given limits; nil means every
// variant is unbounded.
func NewStatic(limits map[string]decimal.Decimal) *Static {
	copied := make(map[string]decimal.Decimal, len(limits))
	for id, max := range limits {
		copied[id] = max
	}
	return &Static{limits: copied}
}

// MaxAllowed returns the configured cap for the variant.
func (s *Static) MaxAllowed(_ context.Context, variantID string) (quantity.Limit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if max, ok := s.limits[variantID]; ok {
		return quantity.LimitOf(max), nil
	}
	return quantity.Unlimited(), nil
}

// SetLimit updates the cap for one variant, for tests simulating stock
// movements between evaluations.
func (s *Static) SetLimit(variantID string, max decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limits[variantID] = max
}
