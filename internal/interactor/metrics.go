package interactor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	invocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_interactor_invocations_total",
			Help: "Total number of use case invocations",
		},
		[]string{"interactor", "status"}, // status: success or the error kind
	)

	duration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quiz_interactor_duration_seconds",
			Help:    "Duration of use case invocations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"interactor"},
	)
)
