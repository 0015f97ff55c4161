package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type LendingMetrics struct {
	operations  *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	withdrawals *prometheus.CounterVec
	publishes   *prometheus.CounterVec
	oracleCache *prometheus.CounterVec
}

var (
	lendingOnce     sync.Once
	lendingRegistry *LendingMetrics
)

func Lending() *LendingMetrics {
	lendingOnce.Do(func() {
		lendingRegistry = newLending()
		prometheus.MustRegister(
			lendingRegistry.operations,
			lendingRegistry.latency,
			lendingRegistry.withdrawals,
			lendingRegistry.publishes,
			lendingRegistry.oracleCache,
		)
	})
	return lendingRegistry
}

func newLending() *LendingMetrics {
	return &LendingMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lending_operations_total",
			Help: "Lifecycle and escrow operations by name and outcome.",
		}, []string{"op", "result"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lending_operation_duration_seconds",
			Help:    "Latency of lifecycle and escrow operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		withdrawals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lending_escrow_withdrawals_total",
			Help: "Successful escrow withdrawals by asset.",
		}, []string{"asset"}),
		publishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lending_events_published_total",
			Help: "Domain event publications by topic and outcome.",
		}, []string{"topic", "result"}),
		oracleCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lending_oracle_cache_lookups_total",
			Help: "Oracle price cache lookups by outcome.",
		}, []string{"result"}),
	}
}

// ObserveOperation records one finished operation. result is "ok",
// "rejected" for protocol errors and "error" otherwise.
func (m *LendingMetrics) ObserveOperation(op, result string, took time.Duration) {
	if m == nil {
		return
	}
	if result == "" {
		result = "unknown"
	}
	m.operations.WithLabelValues(op, result).Inc()
	m.latency.WithLabelValues(op).Observe(took.Seconds())
}

func (m *LendingMetrics) RecordWithdrawal(asset string) {
	if m == nil {
		return
	}
	m.withdrawals.WithLabelValues(asset).Inc()
}

func (m *LendingMetrics) RecordPublish(topic string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.publishes.WithLabelValues(topic, result).Inc()
}

func (m *LendingMetrics) RecordOracleCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.oracleCache.WithLabelValues(result).Inc()
}
