package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SubscriptionUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "finstream", Name: "subscription_updates_total", Help: "Number of persisted subscription writes by outcome (created|updated)."},
		[]string{"outcome"},
	)
	RequestFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "finstream", Name: "request_failures_total", Help: "Number of failed requests by error category."},
		[]string{"category"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(SubscriptionUpdates)
	reg.MustRegister(RequestFailures)
}
