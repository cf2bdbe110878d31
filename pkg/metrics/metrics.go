// Package metrics exports registry activity as Prometheus collectors. The
// registry feeds these alongside its own aggregate counters; scraping is left
// to the embedding process.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the Prometheus instruments the registry updates.
type Collector struct {
	executionsTotal *prometheus.CounterVec
	executionErrors *prometheus.CounterVec
	executionTime   *prometheus.HistogramVec
	loadedUnits     prometheus.Gauge
	disabledUnits   prometheus.Gauge
}

// NewCollector creates the instrument set and registers it with the given
// registerer. Pass prometheus.DefaultRegisterer for process-wide exposure or
// a private registry in tests.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		executionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "daedalus",
			Name:      "unit_executions_total",
			Help:      "Number of unit executions, by unit id.",
		}, []string{"unit"}),
		executionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "daedalus",
			Name:      "unit_execution_errors_total",
			Help:      "Number of failed unit executions, by unit id.",
		}, []string{"unit"}),
		executionTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "daedalus",
			Name:      "unit_execution_duration_seconds",
			Help:      "Wall-clock duration of unit executions.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"unit"}),
		loadedUnits: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "daedalus",
			Name:      "loaded_units",
			Help:      "Number of units currently loaded and executable.",
		}),
		disabledUnits: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "daedalus",
			Name:      "disabled_units",
			Help:      "Number of units currently disabled or quarantined.",
		}),
	}
	if reg != nil {
		reg.MustRegister(c.executionsTotal, c.executionErrors, c.executionTime,
			c.loadedUnits, c.disabledUnits)
	}
	return c
}

// ObserveExecution records one finished execution.
func (c *Collector) ObserveExecution(unitID string, seconds float64, failed bool) {
	c.executionsTotal.WithLabelValues(unitID).Inc()
	c.executionTime.WithLabelValues(unitID).Observe(seconds)
	if failed {
		c.executionErrors.WithLabelValues(unitID).Inc()
	}
}

// SetPopulation records the current loaded/disabled unit counts.
func (c *Collector) SetPopulation(loaded, disabled int) {
	c.loadedUnits.Set(float64(loaded))
	c.disabledUnits.Set(float64(disabled))
}
