package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// DispatchMetrics captures delivery pipeline health signals.
type DispatchMetrics struct {
	dispatchTotal        *prometheus.CounterVec
	dispatchDuration     *prometheus.HistogramVec
	occurrencesProcessed *prometheus.CounterVec
	occurrencesPurged    prometheus.Counter
}

var (
	dispatchMetricsOnce sync.Once
	dispatchMetrics     *DispatchMetrics
)

// Dispatch returns the singleton dispatch metrics registry.
func Dispatch() *DispatchMetrics {
	dispatchMetricsOnce.Do(func() {
		dispatchMetrics = &DispatchMetrics{
			dispatchTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "beacon_dispatch_total",
				Help: "Delivery attempts by dispatcher and outcome.",
			}, []string{"dispatcher", "outcome"}),
			dispatchDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "beacon_dispatch_duration_seconds",
				Help:    "Delivery attempt latency by dispatcher.",
				Buckets: prometheus.DefBuckets,
			}, []string{"dispatcher"}),
			occurrencesProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "beacon_occurrences_processed_total",
				Help: "Occurrence processing runs by outcome.",
			}, []string{"outcome"}),
			occurrencesPurged: promauto.NewCounter(prometheus.CounterOpts{
				Name: "beacon_occurrences_purged_total",
				Help: "Occurrences deleted by the retention sweep.",
			}),
		}
	})
	return dispatchMetrics
}

func (m *DispatchMetrics) IncDispatch(dispatcher string, ok bool) {
	outcome := OutcomeSuccess
	if !ok {
		outcome = OutcomeFailure
	}
	m.dispatchTotal.WithLabelValues(dispatcher, outcome).Inc()
}

func (m *DispatchMetrics) ObserveDispatch(dispatcher string, d time.Duration) {
	m.dispatchDuration.WithLabelValues(dispatcher).Observe(d.Seconds())
}

func (m *DispatchMetrics) IncProcessed(ok bool) {
	outcome := OutcomeSuccess
	if !ok {
		outcome = OutcomeFailure
	}
	m.occurrencesProcessed.WithLabelValues(outcome).Inc()
}

func (m *DispatchMetrics) AddPurged(n int) {
	if n > 0 {
		m.occurrencesPurged.Add(float64(n))
	}
}
