package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "launchpad"

type Metrics struct {
	trades      *prometheus.CounterVec
	volume      *prometheus.CounterVec
	fees        prometheus.Counter
	rejections  *prometheus.CounterVec
	graduations prometheus.Counter
	migrations  *prometheus.CounterVec
}

// New registers the exchange collectors on r.
func New(r prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		trades: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trades_total",
			Help:      "number of accepted trades",
		}, []string{"direction"}),
		volume: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trade_volume_quote_total",
			Help:      "quote paid by buyers or received by sellers, in raw units",
		}, []string{"direction"}),
		fees: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fees_quote_total",
			Help:      "quote sent to the fee sink, in raw units",
		}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejections_total",
			Help:      "number of rejected operations",
		}, []string{"op"}),
		graduations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "graduations_total",
			Help:      "number of curves that completed",
		}),
		migrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "migrations_total",
			Help:      "number of migration steps",
		}, []string{"stage"}),
	}
	err := errors.Join(
		r.Register(m.trades),
		r.Register(m.volume),
		r.Register(m.fees),
		r.Register(m.rejections),
		r.Register(m.graduations),
		r.Register(m.migrations),
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Nil-safe so callers without metrics skip the checks.

func (m *Metrics) Trade(direction string, quote, fee uint64) {
	if m == nil {
		return
	}
	m.trades.WithLabelValues(direction).Inc()
	m.volume.WithLabelValues(direction).Add(float64(quote))
	m.fees.Add(float64(fee))
}

func (m *Metrics) Fee(fee uint64) {
	if m == nil {
		return
	}
	m.fees.Add(float64(fee))
}

func (m *Metrics) Reject(op string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(op).Inc()
}

func (m *Metrics) Graduated() {
	if m == nil {
		return
	}
	m.graduations.Inc()
}

func (m *Metrics) Migration(stage string) {
	if m == nil {
		return
	}
	m.migrations.WithLabelValues(stage).Inc()
}
