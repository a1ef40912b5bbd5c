package registry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/traitkit-dev/traitkit/domain/ports"
)

// Collector implements ports.Metrics with Prometheus instruments.
type Collector struct {
	capabilitiesDefined   prometheus.Gauge
	registrationsTotal    *prometheus.CounterVec
	lookupsTotal          prometheus.Counter
	activeImplementations prometheus.Gauge
	compositionsTotal     *prometheus.CounterVec
	orphansSweptTotal     prometheus.Counter
}

var _ ports.Metrics = (*Collector)(nil)

// NewCollector creates a collector registered with the default Prometheus
// registry.
func NewCollector() *Collector {
	return NewCollectorWithRegistry(prometheus.DefaultRegisterer)
}

// NewCollectorWithRegistry creates a collector registered with a custom
// registry. Useful for testing to avoid global state.
func NewCollectorWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		capabilitiesDefined: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "traitkit",
				Name:      "capabilities_defined",
				Help:      "Number of capability definitions currently stored",
			},
		),
		registrationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "traitkit",
				Name:      "registrations_total",
				Help:      "Total registration attempts by capability and outcome",
			},
			[]string{"capability", "outcome"},
		),
		lookupsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "traitkit",
				Name:      "lookups_total",
				Help:      "Total capability queries",
			},
		),
		activeImplementations: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "traitkit",
				Name:      "active_implementations",
				Help:      "Number of live implementation records",
			},
		),
		compositionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "traitkit",
				Name:      "compositions_total",
				Help:      "Total compositions by cache result",
			},
			[]string{"result"},
		),
		orphansSweptTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "traitkit",
				Name:      "orphaned_records_swept_total",
				Help:      "Total records removed by cleanup sweeps",
			},
		),
	}
}

// CapabilitiesDefined implements ports.Metrics.
func (c *Collector) CapabilitiesDefined(total int) {
	c.capabilitiesDefined.Set(float64(total))
}

// RegistrationRecorded implements ports.Metrics.
func (c *Collector) RegistrationRecorded(capability, outcome string) {
	c.registrationsTotal.WithLabelValues(capability, outcome).Inc()
}

// LookupRecorded implements ports.Metrics.
func (c *Collector) LookupRecorded() {
	c.lookupsTotal.Inc()
}

// ActiveImplementations implements ports.Metrics.
func (c *Collector) ActiveImplementations(total int) {
	c.activeImplementations.Set(float64(total))
}

// CompositionRecorded implements ports.Metrics.
func (c *Collector) CompositionRecorded(cacheHit bool) {
	result := "miss"
	if cacheHit {
		result = "hit"
	}
	c.compositionsTotal.WithLabelValues(result).Inc()
}

// OrphansSwept implements ports.Metrics.
func (c *Collector) OrphansSwept(count int) {
	c.orphansSweptTotal.Add(float64(count))
}
