package method

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	authFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoring_auth_failures_total",
			Help: "Total number of calls rejected by token check",
		},
		[]string{"role"},
	)

	methodCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoring_method_calls_total",
			Help: "Total number of routed method calls by result code",
		},
		[]string{"method", "code"},
	)
)
