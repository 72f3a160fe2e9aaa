package clientcache

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	lookups       *prometheus.CounterVec
	stores        *prometheus.CounterVec
	revalidations *prometheus.CounterVec
}

// newMetrics creates the cache counters and registers them with reg, if given.
// Counters already registered by another cache on the same registerer are shared.
func newMetrics(reg prometheus.Registerer, name string) *metrics {
	constLabels := prometheus.Labels{"cache": name}
	m := &metrics{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "clientcache_lookups_total",
			Help:        "Total cache lookups by cache status",
			ConstLabels: constLabels,
		}, []string{"status"}),
		stores: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "clientcache_stores_total",
			Help:        "Total store decisions for cacheable responses",
			ConstLabels: constLabels,
		}, []string{"result"}),
		revalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "clientcache_revalidations_total",
			Help:        "Total 304 responses handled",
			ConstLabels: constLabels,
		}, []string{"result"}),
	}
	if reg == nil {
		return m
	}
	m.lookups = register(reg, m.lookups)
	m.stores = register(reg, m.stores)
	m.revalidations = register(reg, m.revalidations)
	return m
}

func register(reg prometheus.Registerer, c *prometheus.CounterVec) *prometheus.CounterVec {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
		}
	}
	return c
}

func (m *metrics) lookup(status string) {
	m.lookups.WithLabelValues(status).Inc()
}

func (m *metrics) store(result string) {
	m.stores.WithLabelValues(result).Inc()
}

func (m *metrics) revalidation(result string) {
	m.revalidations.WithLabelValues(result).Inc()
}
