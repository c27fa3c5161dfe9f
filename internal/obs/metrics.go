package obs

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// PriceFoldTotal counts price fold outcomes by operation and result.
	PriceFoldTotal *prometheus.CounterVec
	// PriceFoldDuration records fold latency in milliseconds.
	PriceFoldDuration *prometheus.HistogramVec
	// QuantityEvalTotal counts quantity evaluations by mode and outcome.
	QuantityEvalTotal *prometheus.CounterVec
	// StockLookupTotal counts stock provider lookups by result.
	StockLookupTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific
// Prometheus collectors. Safe to call more than once; an already registered
// collector is reused.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		PriceFoldTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_folds_total",
			Help:      "Count of price chain folds by operation and result.",
		}, []string{"op", "result"})
		PriceFoldDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "price_fold_duration_ms",
			Help:      "Latency of price chain folds in milliseconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100},
		}, []string{"op"})
		QuantityEvalTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quantity_evaluations_total",
			Help:      "Count of quantity change evaluations by mode and outcome.",
		}, []string{"mode", "outcome"})
		StockLookupTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_lookups_total",
			Help:      "Count of stock provider lookups by result.",
		}, []string{"result"})

		mustRegisterCollector(reg, PriceFoldTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				PriceFoldTotal = v
			}
		})
		mustRegisterCollector(reg, PriceFoldDuration, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.HistogramVec); ok {
				PriceFoldDuration = v
			}
		})
		mustRegisterCollector(reg, QuantityEvalTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				QuantityEvalTotal = v
			}
		})
		mustRegisterCollector(reg, StockLookupTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				StockLookupTotal = v
			}
		})
	})
}

// ObservePriceFold records one fold outcome. A no-op until
// MustRegisterDomainMetrics has run.
func ObservePriceFold(op, result string, elapsed time.Duration) {
	if PriceFoldTotal != nil {
		PriceFoldTotal.WithLabelValues(op, result).Inc()
	}
	if PriceFoldDuration != nil {
		PriceFoldDuration.WithLabelValues(op).Observe(DurationMillis(elapsed))
	}
}

// ObserveQuantityEval records one quantity evaluation outcome.
func ObserveQuantityEval(mode, outcome string) {
	if QuantityEvalTotal != nil {
		QuantityEvalTotal.WithLabelValues(mode, outcome).Inc()
	}
}

// ObserveStockLookup records one stock lookup result.
func ObserveStockLookup(result string) {
	if StockLookupTotal != nil {
		StockLookupTotal.WithLabelValues(result).Inc()
	}
}

// DurationMillis converts a duration to milliseconds for metric observation.
func DurationMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
