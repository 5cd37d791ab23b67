package pricing

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// calculations counts price calculations by pricing model and outcome.
	calculations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_calculations_total",
		Help: "Total number of price calculations by pricing model and outcome",
	}, []string{"model", "outcome"}) // outcome: ok, cached, error

	// calculationDuration tracks uncached calculation latency.
	calculationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pricing_calculation_duration_seconds",
		Help:    "Time taken to calculate a price by pricing model",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	}, []string{"model"})

	// calculationErrors counts failed calculations by error kind.
	calculationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_calculation_errors_total",
		Help: "Total number of failed price calculations by error kind",
	}, []string{"kind"})

	// cacheHits tracks result cache hits.
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pricing_cache_hits_total",
		Help: "Total number of price result cache hits",
	})

	// cacheMisses tracks result cache misses.
	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pricing_cache_misses_total",
		Help: "Total number of price result cache misses",
	})

	// cacheEntries tracks the number of cached results.
	cacheEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pricing_cache_entries",
		Help: "Number of price results currently cached",
	})

	// totalPrice tracks the distribution of quoted totals.
	totalPrice = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pricing_total_price_sek",
		Help:    "Distribution of calculated total prices in SEK",
		Buckets: []float64{250, 500, 1000, 2000, 5000, 10000, 25000},
	})
)

// MetricsRecorder provides methods to record pricing metrics.
type MetricsRecorder struct{}

// NewMetricsRecorder creates a new metrics recorder.
func NewMetricsRecorder() *MetricsRecorder {
	return &MetricsRecorder{}
}

// RecordCalculation records a successful uncached calculation.
func (m *MetricsRecorder) RecordCalculation(model ModelName, duration time.Duration, total float64) {
	calculations.WithLabelValues(string(model), "ok").Inc()
	calculationDuration.WithLabelValues(string(model)).Observe(duration.Seconds())
	totalPrice.Observe(total)
}

// RecordCacheHit records a result served from the cache.
func (m *MetricsRecorder) RecordCacheHit(model ModelName) {
	cacheHits.Inc()
	calculations.WithLabelValues(string(model), "cached").Inc()
}

// RecordCacheMiss records a cache miss.
func (m *MetricsRecorder) RecordCacheMiss() {
	cacheMisses.Inc()
}

// RecordError records a failed calculation.
func (m *MetricsRecorder) RecordError(model ModelName, kind string) {
	calculations.WithLabelValues(string(model), "error").Inc()
	calculationErrors.WithLabelValues(kind).Inc()
}

// SetCacheEntries records the current cache size.
func (m *MetricsRecorder) SetCacheEntries(n int) {
	cacheEntries.Set(float64(n))
}
