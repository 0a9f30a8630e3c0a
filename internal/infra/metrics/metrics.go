package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private registry so each binary exposes only its own
// series on /metrics.
type Collector struct {
	registry *prometheus.Registry

	balanceMutations    *prometheus.CounterVec
	transactionsTotal   *prometheus.CounterVec
	processingDuration  prometheus.Histogram
	accountBalance      *prometheus.GaugeVec
	breakerState        prometheus.Gauge
	eventsPublishErrors prometheus.Counter
}

func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	return &Collector{
		registry: registry,
		balanceMutations: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "balance_mutations_total",
			Help: "Balance mutation attempts by result",
		}, []string{"result"}),
		transactionsTotal: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "transactions_total",
			Help: "Orchestrated transactions by type and terminal status",
		}, []string{"type", "status"}),
		processingDuration: promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
			Name:    "processing_duration_seconds",
			Help:    "Time taken to process one operation",
			Buckets: prometheus.DefBuckets,
		}),
		accountBalance: promauto.With(registry).NewGaugeVec(prometheus.GaugeOpts{
			Name: "account_balance",
			Help: "Last committed account balance",
		}, []string{"account_number", "currency"}),
		breakerState: promauto.With(registry).NewGauge(prometheus.GaugeOpts{
			Name: "account_client_breaker_state",
			Help: "Circuit breaker state: 0 closed, 1 half-open, 2 open",
		}),
		eventsPublishErrors: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "events_publish_errors_total",
			Help: "Domain events that failed to publish",
		}),
	}
}

// Handler serves the collector's registry for a /metrics route.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) RecordMutation(result string, d time.Duration) {
	c.balanceMutations.WithLabelValues(result).Inc()
	c.processingDuration.Observe(d.Seconds())
}

func (c *Collector) RecordTransaction(txType, status string, d time.Duration) {
	c.transactionsTotal.WithLabelValues(txType, status).Inc()
	c.processingDuration.Observe(d.Seconds())
}

func (c *Collector) SetAccountBalance(accountNumber, currency string, balance float64) {
	c.accountBalance.WithLabelValues(accountNumber, currency).Set(balance)
}

func (c *Collector) SetBreakerState(state float64) {
	c.breakerState.Set(state)
}

func (c *Collector) RecordPublishError() {
	c.eventsPublishErrors.Inc()
}
