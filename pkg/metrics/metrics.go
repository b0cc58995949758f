package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	remoteRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "okr_console",
		Subsystem: "remote",
		Name:      "requests_total",
		Help:      "Requests to the remote OKR store broken down by operation and status.",
	}, []string{"op", "status"})

	remoteDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "okr_console",
		Subsystem: "remote",
		Name:      "request_duration_seconds",
		Help:      "Latency of remote OKR store requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})

	cascadeResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "okr_console",
		Subsystem: "cascade",
		Name:      "resolutions_total",
		Help:      "Cascade resolutions broken down by level and outcome (applied, stale, failed).",
	}, []string{"level", "outcome"})

	mutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "okr_console",
		Subsystem: "sync",
		Name:      "mutations_total",
		Help:      "Create/delete mutations broken down by kind, action and outcome.",
	}, []string{"kind", "action", "outcome"})
)

// ObserveRemote: status 0 означает, что ответа не было.
func ObserveRemote(op string, status int, started time.Time) {
	label := "error"
	if status != 0 {
		label = strconv.Itoa(status)
	}
	remoteRequests.WithLabelValues(op, label).Inc()
	remoteDuration.WithLabelValues(op).Observe(time.Since(started).Seconds())
}

func RecordResolution(level, outcome string) {
	cascadeResolutions.WithLabelValues(level, outcome).Inc()
}

func RecordMutation(kind, action, outcome string) {
	mutations.WithLabelValues(kind, action, outcome).Inc()
}
