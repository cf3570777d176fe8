package vfd

import "github.com/prometheus/client_golang/prometheus"

type metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func newMetrics() *metrics {
	return &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vfd_requests_total",
			Help: "chamadas ao provedor por operação e resultado",
		}, []string{"operation", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vfd_request_duration_seconds",
			Help:    "latência das chamadas ao provedor",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}

// Collectors expõe as métricas do client para registro no main
func (c *Client) Collectors() []prometheus.Collector {
	return []prometheus.Collector{c.metrics.requests, c.metrics.latency}
}
