package rules

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// passDuration tracks rule pass latency.
	passDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rules_pass_duration_seconds",
		Help:    "Time taken to apply the rule set to one price",
		Buckets: []float64{0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
	})

	// appliedPerPass tracks how many rules fire per pass.
	appliedPerPass = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rules_applied_per_pass",
		Help:    "Number of rules applied in one pass",
		Buckets: []float64{0, 1, 2, 3, 5, 10, 20},
	})

	// appliedRules counts applied rules by type.
	appliedRules = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rules_applied_total",
		Help: "Total number of applied rules by rule type",
	}, []string{"type"})

	// failures counts failed rule handlers by type.
	failures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rules_errors_total",
		Help: "Total number of rule failures by rule type",
	}, []string{"type"})

	// registered tracks the registry size.
	registered = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rules_registered",
		Help: "Number of rules currently registered",
	})
)

// MetricsRecorder provides methods to record rules engine metrics.
type MetricsRecorder struct{}

// NewMetricsRecorder creates a new metrics recorder.
func NewMetricsRecorder() *MetricsRecorder {
	return &MetricsRecorder{}
}

// RecordPass records a completed rule pass.
func (m *MetricsRecorder) RecordPass(d time.Duration, appliedCount int) {
	passDuration.Observe(d.Seconds())
	appliedPerPass.Observe(float64(appliedCount))
}

// RecordRuleApplied records an applied rule.
func (m *MetricsRecorder) RecordRuleApplied(t RuleType) {
	appliedRules.WithLabelValues(string(t)).Inc()
}

// RecordRuleError records a failed rule.
func (m *MetricsRecorder) RecordRuleError(t RuleType) {
	failures.WithLabelValues(string(t)).Inc()
}

// SetRuleCount records the registry size.
func (m *MetricsRecorder) SetRuleCount(n int) {
	registered.Set(float64(n))
}
