// Package metrics counts requirement checks and installs so runs can be
// scraped from a Prometheus textfile.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder owns a private registry; a nil *Recorder records nothing.
type Recorder struct {
	registry      *prometheus.Registry
	checks        *prometheus.CounterVec
	installs      *prometheus.CounterVec
	probeDuration prometheus.Histogram
	missing       prometheus.Gauge
}

// New creates a Recorder with all collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		checks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pyreqs_requirement_checks_total",
				Help: "Requirement checks by outcome.",
			},
			[]string{"outcome"},
		),
		installs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pyreqs_installs_total",
				Help: "Package installs attempted by result.",
			},
			[]string{"result"},
		),
		probeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pyreqs_probe_duration_seconds",
				Help:    "Time taken to list installed packages.",
				Buckets: prometheus.DefBuckets,
			},
		),
		missing: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "pyreqs_missing_requirements",
				Help: "Number of unmet requirements found by the last evaluation.",
			},
		),
	}
	r.registry.MustRegister(r.checks, r.installs, r.probeDuration, r.missing)
	return r
}

// ObserveCheck counts one requirement classification.
func (r *Recorder) ObserveCheck(outcome string) {
	if r == nil {
		return
	}
	r.checks.WithLabelValues(outcome).Inc()
}

// ObserveInstall counts one install attempt.
func (r *Recorder) ObserveInstall(result string) {
	if r == nil {
		return
	}
	r.installs.WithLabelValues(result).Inc()
}

// ObserveProbe records how long a package listing took.
func (r *Recorder) ObserveProbe(d time.Duration) {
	if r == nil {
		return
	}
	r.probeDuration.Observe(d.Seconds())
}

// SetMissing records the size of the last evaluation result.
func (r *Recorder) SetMissing(n int) {
	if r == nil {
		return
	}
	r.missing.Set(float64(n))
}

// Gatherer exposes the underlying registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.registry
}

// WriteTextfile writes all metrics in the text exposition format, for the
// node_exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.Gatherer())
}
