// Package metrics defines the prometheus collectors shared by the name
// server and storage servers: one counter per operation keyed by result,
// and a latency histogram per operation.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Ops records per-operation outcome counts and latencies for a single
// server role. Methods handle a nil receiver gracefully so metrics can
// be disabled by simply not constructing an Ops.
type Ops struct {
	// Requests counts completed operations by op name and result
	// (SUCCESS or a wire.ErrorCode string).
	Requests *prometheus.CounterVec

	// Duration tracks operation handling latency by op name.
	Duration *prometheus.HistogramVec
}

// NewOps builds and registers a fresh set of collectors under the given
// role ("name_server" or "storage_server"). If registerer is nil,
// prometheus.DefaultRegisterer is used. Callers construct exactly one
// Ops per process; registering the same role twice against the same
// registerer panics, matching prometheus client conventions.
func NewOps(registerer prometheus.Registerer, role string) *Ops {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &Ops{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "dfs",
				Subsystem: role,
				Name:      "requests_total",
				Help:      "Total requests handled, by operation and result.",
			},
			[]string{"op", "result"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "dfs",
				Subsystem: role,
				Name:      "request_duration_seconds",
				Help:      "Request handling latency, by operation.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"op"},
		),
	}

	registerer.MustRegister(m.Requests, m.Duration)
	return m
}

// Observe records one completed operation's outcome and duration.
func (m *Ops) Observe(op, result string, seconds float64) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(op, result).Inc()
	m.Duration.WithLabelValues(op).Observe(seconds)
}
