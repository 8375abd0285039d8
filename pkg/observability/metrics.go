package observability

import (
	"github.com/aretw0/statekit/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors fed by store hooks.
type Metrics struct {
	updates     *prometheus.CounterVec
	changedKeys *prometheus.HistogramVec
	lastUpdate  *prometheus.GaugeVec
	destroyed   *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		updates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "statekit",
				Subsystem: "store",
				Name:      "updates_total",
				Help:      "Committed store transitions by action.",
			},
			[]string{"store", "action"},
		),
		changedKeys: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "statekit",
				Subsystem: "store",
				Name:      "changed_keys",
				Help:      "Number of root keys changed per transition.",
				Buckets:   []float64{0, 1, 2, 4, 8, 16},
			},
			[]string{"store"},
		),
		lastUpdate: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "statekit",
				Subsystem: "store",
				Name:      "last_update_timestamp_seconds",
				Help:      "Unix time of the last committed transition.",
			},
			[]string{"store"},
		),
		destroyed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "statekit",
				Subsystem: "store",
				Name:      "destroyed_total",
				Help:      "Destroyed stores.",
			},
			[]string{"store"},
		),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{m.updates, m.changedKeys, m.lastUpdate, m.destroyed} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// Hooks returns store hooks recording into m.
func (m *Metrics) Hooks() domain.StoreHooks {
	return domain.StoreHooks{
		OnUpdate: func(e *domain.UpdateEvent) {
			m.updates.WithLabelValues(e.Store, e.Action).Inc()
			m.changedKeys.WithLabelValues(e.Store).Observe(float64(len(e.ChangedKeys)))
			m.lastUpdate.WithLabelValues(e.Store).Set(float64(e.Timestamp.UnixNano()) / 1e9)
		},
		OnDestroy: func(store string) {
			m.destroyed.WithLabelValues(store).Inc()
		},
	}
}
