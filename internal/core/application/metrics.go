package application

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tdex-network/merchantd/internal/core/domain"
)

const metricsNamespace = "merchantd"

// Metrics groups the prometheus collectors of the payment service.
type Metrics struct {
	ordersCreated      *prometheus.CounterVec
	evaluations        *prometheus.CounterVec
	chainFetchFailures *prometheus.CounterVec
	chainFetchSeconds  *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with the given
// registerer, if not nil.
func NewMetrics(registerer prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		ordersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "orders_created_total",
			Help:      "Number of payment orders created.",
		}, []string{"asset"}),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "evaluations_total",
			Help:      "Number of reconciliations by resulting outcome.",
		}, []string{"asset", "status"}),
		chainFetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "chain_fetch_failures_total",
			Help:      "Number of failed requests to chain data sources.",
		}, []string{"asset"}),
		chainFetchSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "chain_fetch_seconds",
			Help:      "Duration of requests to chain data sources.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"asset"}),
	}

	if registerer != nil {
		for _, c := range []prometheus.Collector{
			m.ordersCreated, m.evaluations, m.chainFetchFailures, m.chainFetchSeconds,
		} {
			if err := registerer.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Metrics) orderCreated(asset string) {
	m.ordersCreated.WithLabelValues(asset).Inc()
}

func (m *Metrics) orderEvaluated(asset string, status domain.OutcomeStatus) {
	m.evaluations.WithLabelValues(asset, string(status)).Inc()
}

func (m *Metrics) chainFetched(asset string, elapsed time.Duration, err error) {
	m.chainFetchSeconds.WithLabelValues(asset).Observe(elapsed.Seconds())
	if err != nil {
		m.chainFetchFailures.WithLabelValues(asset).Inc()
	}
}
