package nfcore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "nfsim"

// Metrics holds every Prometheus instrument a running System reports
// through, registered once at construction time.
type Metrics struct {
	EventsTotal      *prometheus.CounterVec
	NullEventsTotal  prometheus.Counter
	ATot             prometheus.Gauge
	SimTime          prometheus.Gauge
	MoleculeCount    prometheus.Gauge
	ComplexCount     prometheus.Gauge
	PropensityUpdate prometheus.Histogram
}

// NewMetrics registers and returns a fresh Metrics set against reg.
// Passing nil creates the metrics without registering them anywhere.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "events_total",
			Help:      "Total reaction events fired, by rule name",
		}, []string{"rule"}),
		NullEventsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "null_events_total",
			Help:      "Total null events (time advanced, no reaction fired)",
		}),
		ATot: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "a_tot",
			Help:      "Current aggregate propensity",
		}),
		SimTime: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "sim_time",
			Help:      "Current simulated time",
		}),
		MoleculeCount: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "molecule_count",
			Help:      "Current live molecule count",
		}),
		ComplexCount: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "complex_count",
			Help:      "Current live complex count",
		}),
		PropensityUpdate: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "propensity_update_seconds",
			Help:      "Wall-clock time spent recomputing propensities after a firing",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// Observe samples the system's current state into the gauges. The
// server calls it after loading a model and after each /step or /run
// batch rather than every single event, since
// scraping is pull-based and sub-microsecond event rates would make
// per-event updates pure overhead.
func (m *Metrics) Observe(sys *System) {
	m.ATot.Set(sys.aTot)
	m.SimTime.Set(sys.Time)
	m.MoleculeCount.Set(float64(len(sys.molecules)))
	if sys.Complexes.useComplex {
		m.ComplexCount.Set(float64(len(sys.Complexes.All())))
	}
}

// RecordFiring increments the per-rule and null-event counters.
func (m *Metrics) RecordFiring(ruleName string, isNull bool) {
	if isNull {
		m.NullEventsTotal.Inc()
		return
	}
	m.EventsTotal.WithLabelValues(ruleName).Inc()
}
