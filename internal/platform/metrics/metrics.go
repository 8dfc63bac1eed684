package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for verdicts, sweeps and the
// policy cache. All methods are safe on a nil receiver so components can run
// without metrics in tests.
type Metrics struct {
	VacancyVerdicts      *prometheus.CounterVec
	ConsentVerdicts      *prometheus.CounterVec
	SweepDuration        prometheus.Histogram
	SweepFailures        prometheus.Counter
	EntitiesUnderstaffed prometheus.Gauge
	EntitiesBreached     prometheus.Gauge
	ConsentersExpired    prometheus.Gauge
	ConfigCacheLookups   *prometheus.CounterVec
	EventsPublished      *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. Pass
// prometheus.DefaultRegisterer in main and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		VacancyVerdicts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ett_vacancy_verdicts_total",
			Help: "Vacancy verdicts by role and outcome",
		}, []string{"role", "outcome"}),
		ConsentVerdicts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ett_consent_verdicts_total",
			Help: "Consent lifecycle classifications by status",
		}, []string{"status"}),
		SweepDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "ett_sweep_duration_seconds",
			Help:    "Wall time of a full registry sweep",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		SweepFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "ett_sweep_failures_total",
			Help: "Sweeps aborted by a collaborator failure",
		}),
		EntitiesUnderstaffed: f.NewGauge(prometheus.GaugeOpts{
			Name: "ett_entities_understaffed",
			Help: "Entities below minimum headcount at the last sweep",
		}),
		EntitiesBreached: f.NewGauge(prometheus.GaugeOpts{
			Name: "ett_entities_vacancy_breached",
			Help: "Entities with at least one role past its vacancy grace window at the last sweep",
		}),
		ConsentersExpired: f.NewGauge(prometheus.GaugeOpts{
			Name: "ett_consenters_expired",
			Help: "Consenters whose consent had expired at the last sweep",
		}),
		ConfigCacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ett_config_cache_lookups_total",
			Help: "Policy cache lookups by result (hit, miss, error)",
		}, []string{"result"}),
		EventsPublished: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ett_events_published_total",
			Help: "Verdict events published by kind",
		}, []string{"kind"}),
	}
}

func (m *Metrics) ObserveVacancyVerdict(role, outcome string) {
	if m == nil {
		return
	}
	m.VacancyVerdicts.WithLabelValues(role, outcome).Inc()
}

func (m *Metrics) ObserveConsentVerdict(status string) {
	if m == nil {
		return
	}
	m.ConsentVerdicts.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveSweep(elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.SweepDuration.Observe(elapsed.Seconds())
	if err != nil {
		m.SweepFailures.Inc()
	}
}

// SetSweepTotals publishes the gauges computed by the last successful sweep.
func (m *Metrics) SetSweepTotals(understaffed, breached, expired int) {
	if m == nil {
		return
	}
	m.EntitiesUnderstaffed.Set(float64(understaffed))
	m.EntitiesBreached.Set(float64(breached))
	m.ConsentersExpired.Set(float64(expired))
}

func (m *Metrics) ObserveCacheLookup(result string) {
	if m == nil {
		return
	}
	m.ConfigCacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) IncrementEventsPublished(kind string) {
	if m == nil {
		return
	}
	m.EventsPublished.WithLabelValues(kind).Inc()
}
