// Package metrics exposes Prometheus collectors for generation sessions.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/papercomputeco/scribe/pkg/generation"
)

const namespace = "scribe"

// Recorder records generation outcomes. The zero value is unusable; use New.
type Recorder struct {
	generations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	chunks      *prometheus.HistogramVec
	artifacts   *prometheus.HistogramVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		generations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "generation",
				Name:      "total",
				Help:      "Total number of generation sessions by kind and final status",
			},
			[]string{"kind", "status"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "generation",
				Name:      "duration_seconds",
				Help:      "Generation duration in seconds, stream included",
				Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
			},
			[]string{"kind"},
		),
		chunks: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "generation",
				Name:      "chunks",
				Help:      "Number of chunks consumed per generation",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
			},
			[]string{"kind"},
		),
		artifacts: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "artifact",
				Name:      "size_bytes",
				Help:      "Size of finalized artifacts in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"kind"},
		),
	}
}

// Observe records a finished session of the given kind.
func (r *Recorder) Observe(kind string, s *generation.Session, elapsed time.Duration, artifactSize int) {
	if r == nil {
		return
	}
	r.generations.WithLabelValues(kind, s.Status().String()).Inc()
	r.duration.WithLabelValues(kind).Observe(elapsed.Seconds())
	r.chunks.WithLabelValues(kind).Observe(float64(s.Chunks()))
	if s.Status() == generation.StatusCompleted {
		r.artifacts.WithLabelValues(kind).Observe(float64(artifactSize))
	}
}
