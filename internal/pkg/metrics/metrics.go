// Package metrics exposes Prometheus collectors for the registration pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ProvisioningTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roflexi",
			Subsystem: "provisioning",
			Name:      "requests_total",
			Help:      "Registration submissions by role and result",
		},
		[]string{"role", "result"},
	)

	ProvisioningStepDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "roflexi",
			Subsystem: "provisioning",
			Name:      "step_duration_seconds",
			Help:      "Duration of each provisioning step in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"step"},
	)

	ImageStoreFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roflexi",
			Subsystem: "provisioning",
			Name:      "image_store_failures_total",
			Help:      "Profile images that could not be persisted after the account was created",
		},
		[]string{"role"},
	)

	Compensations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roflexi",
			Subsystem: "provisioning",
			Name:      "compensations_total",
			Help:      "Undo actions run after a failed provisioning step",
		},
		[]string{"step", "result"},
	)

	HandoffTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roflexi",
			Subsystem: "handoff",
			Name:      "requests_total",
			Help:      "Session token re-mint and sign-in requests by operation and result",
		},
		[]string{"operation", "result"},
	)
)

func init() {
	prometheus.MustRegister(
		ProvisioningTotal,
		ProvisioningStepDuration,
		ImageStoreFailures,
		Compensations,
		HandoffTotal,
	)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
