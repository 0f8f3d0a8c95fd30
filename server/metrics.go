package server

import (
	"github.com/prometheus/client_golang/prometheus"

	"krypt.co/rpcgate/common/wire"
)

var (
	requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rpcgate_requests_total",
		Help: "Total requests handled, labeled by class, method, and response status.",
	}, []string{"class", "method", "status"})

	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rpcgate_request_duration_seconds",
		Help:    "Request handling latency, from the first byte read to the last byte written.",
		Buckets: prometheus.DefBuckets,
	}, []string{"class", "method"})
)

func init() {
	prometheus.MustRegister(requestsTotal, requestDuration)
}

func observeRequest(class, method string, status wire.StatusCode, seconds float64) {
	requestsTotal.WithLabelValues(class, method, status.String()).Inc()
	requestDuration.WithLabelValues(class, method).Observe(seconds)
}
