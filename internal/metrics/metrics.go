package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "benchplot"

// Record outcomes.
const (
	OutcomeReduced   = "reduced"
	OutcomeFiltered  = "filtered"
	OutcomeMalformed = "malformed"
)

// Metrics represents the collection of all Prometheus metrics of one run.
type Metrics struct {
	registry *prometheus.Registry

	RecordsTotal     *prometheus.CounterVec
	GroupsReduced    prometheus.Counter
	StageDuration    *prometheus.HistogramVec
	StageFailures    *prometheus.CounterVec
	ChartsRendered   *prometheus.CounterVec
	LastRunTimestamp prometheus.Gauge
}

// NewMetrics creates the metrics on a dedicated registry, together with the
// Go runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.RecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Report records seen, by outcome",
		},
		[]string{"outcome"},
	)

	m.GroupsReduced = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "groups_reduced_total",
			Help:      "Distinct benchmark groups holding a reduced duration",
		},
	)

	m.StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "build_stage_duration_seconds",
			Help:      "Duration of cmake configure, build and run steps",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"stage"},
	)

	m.StageFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "build_stage_failures_total",
			Help:      "Build steps that returned a non-zero code",
		},
		[]string{"stage"},
	)

	m.ChartsRendered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "charts_rendered_total",
			Help:      "Chart files written",
		},
		[]string{"format", "kind"},
	)

	m.LastRunTimestamp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		},
	)

	m.registry.MustRegister(
		m.RecordsTotal,
		m.GroupsReduced,
		m.StageDuration,
		m.StageFailures,
		m.ChartsRendered,
		m.LastRunTimestamp,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveStage records one build step.
func (m *Metrics) ObserveStage(stage string, d time.Duration, ok bool) {
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
	if !ok {
		m.StageFailures.WithLabelValues(stage).Inc()
	}
}

// ObserveRecords adds the outcome counts of one aggregation.
func (m *Metrics) ObserveRecords(reduced, filtered, malformed, groups int) {
	m.RecordsTotal.WithLabelValues(OutcomeReduced).Add(float64(reduced))
	m.RecordsTotal.WithLabelValues(OutcomeFiltered).Add(float64(filtered))
	m.RecordsTotal.WithLabelValues(OutcomeMalformed).Add(float64(malformed))
	m.GroupsReduced.Add(float64(groups))
}

// ChartRendered counts one written chart file.
func (m *Metrics) ChartRendered(format, kind string) {
	m.ChartsRendered.WithLabelValues(format, kind).Inc()
}

// MarkRun stamps the end of a run.
func (m *Metrics) MarkRun(t time.Time) {
	m.LastRunTimestamp.Set(float64(t.Unix()))
}

// Registry returns the registry holding the metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// WriteTextfile writes the current values in the node exporter textfile
// format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
