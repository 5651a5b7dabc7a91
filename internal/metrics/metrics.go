// Package metrics registers the Prometheus instruments emitted by the
// preprocessing composites.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SamplesSubmitted counts problems forwarded to a child sampler, labeled
	// by how the effective scalar was determined.
	SamplesSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "preprocessing_scaling_samples_total",
		Help: "Problems submitted through the scaling composite.",
	}, []string{"mode"})

	// ScalarRejections counts sample calls rejected before submission because
	// the effective scalar resolved to zero.
	ScalarRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "preprocessing_scaling_zero_scalar_rejections_total",
		Help: "Sample calls rejected because the effective scalar was zero.",
	})

	// ResolveDuration observes the time spent in deferred energy correction.
	ResolveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "preprocessing_scaling_resolve_seconds",
		Help:    "Duration of deferred energy correction at resolution time.",
		Buckets: prometheus.DefBuckets,
	})
)

// Scalar determination modes used as label values.
const (
	ModeExplicit   = "explicit"
	ModeNormalized = "normalized"
)
