// Package metrics collects the counters of a gain update run and exports them in the
// Prometheus text format.
package metrics

import (
	"fmt"
	"time"

	"github.com/bruceraup/glims-aster-gains/pkg/aster"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "astergains"

// Run holds the metrics of a single run. It implements transform.Recorder.
type Run struct {
	ID string

	registry *prometheus.Registry

	rowsTotal      *prometheus.CounterVec
	lookupsTotal   *prometheus.CounterVec
	lookupDuration prometheus.Histogram
	lastRun        prometheus.Gauge
}

// NewRun creates the metrics of the run with the given id on a private registry.
func NewRun(id string) *Run {
	labels := prometheus.Labels{"run_id": id}
	r := &Run{
		ID:       id,
		registry: prometheus.NewRegistry(),
		rowsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "rows_total",
			Help:        "Rows read from the STAR file, by kind.",
			ConstLabels: labels,
		}, []string{"kind"}),
		lookupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "lookups_total",
			Help:        "Classified gain lookups, by band and gain code.",
			ConstLabels: labels,
		}, []string{"band", "code"}),
		lookupDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "lookup_duration_seconds",
			Help:        "Duration of a gain lookup.",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "last_run_timestamp_seconds",
			Help:        "Time the run finished.",
			ConstLabels: labels,
		}),
	}
	r.registry.MustRegister(r.rowsTotal, r.lookupsTotal, r.lookupDuration, r.lastRun)
	return r
}

// Row counts a row read, sentinel rows separately from data rows.
func (r *Run) Row(sentinel bool) {
	kind := "data"
	if sentinel {
		kind = "sentinel"
	}
	r.rowsTotal.WithLabelValues(kind).Inc()
}

// Lookup counts a classified lookup and its duration.
func (r *Run) Lookup(band aster.Band, code aster.GainCode, took time.Duration) {
	r.lookupsTotal.WithLabelValues(band.String(), code.String()).Inc()
	r.lookupDuration.Observe(took.Seconds())
}

// Finish sets the time the run finished.
func (r *Run) Finish(t time.Time) {
	r.lastRun.Set(float64(t.Unix()))
}

// Registry returns the registry holding the run metrics.
func (r *Run) Registry() *prometheus.Registry {
	return r.registry
}

// WriteToTextfile writes the metrics to filename, for the node exporter textfile collector.
func (r *Run) WriteToTextfile(filename string) error {
	if err := prometheus.WriteToTextfile(filename, r.Registry()); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
