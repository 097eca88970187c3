// Package telemetry counts imports so batch validation runs can be scraped
// through the node_exporter textfile collector.
package telemetry

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"rtcview/cli/loader"
	"rtcview/schema"
)

// Outcomes of an import.
const (
	OutcomeAccepted   = "accepted"
	OutcomeParseError = "parse_error"
	OutcomeRejected   = "rejected"
	OutcomeReadError  = "read_error"
)

// Metrics owns its registry so runs and tests do not share state.
type Metrics struct {
	Registry *prometheus.Registry

	// imports counts imports by source kind, outcome and variant
	imports *prometheus.CounterVec
	// issues counts data-quality issues found in accepted documents
	issues prometheus.Counter
	// duration tracks how long an import took, read included
	duration prometheus.Histogram
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		imports: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rtcview_imports_total",
			Help: "Total imports by source kind, outcome and variant",
		}, []string{"source", "outcome", "variant"}),
		issues: f.NewCounter(prometheus.CounterOpts{
			Name: "rtcview_data_quality_issues_total",
			Help: "Total data-quality issues in accepted documents",
		}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "rtcview_import_duration_seconds",
			Help:    "Import duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8), // 0.1ms to ~1.6s
		}),
	}
}

// Outcome classifies the result of a load.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeAccepted
	case errors.Is(err, loader.ErrParse):
		return OutcomeParseError
	case errors.Is(err, loader.ErrRejected):
		return OutcomeRejected
	}
	return OutcomeReadError
}

// Observe records one import. source is "file" or "sample"; doc is nil when
// err is set.
func (m *Metrics) Observe(source string, doc *schema.Document, err error, took time.Duration) {
	variant := "none"
	if doc != nil {
		variant = string(doc.Variant())
		m.issues.Add(float64(len(doc.Issues)))
	}
	m.imports.WithLabelValues(source, Outcome(err), variant).Inc()
	m.duration.Observe(took.Seconds())
}

// WriteTextfile writes all metrics in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
