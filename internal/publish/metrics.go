package publish

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	publishAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contentlab_publish_attempts_total",
		Help: "Publish attempts by outcome.",
	}, []string{"outcome"})

	publishStatementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contentlab_publish_statements_total",
		Help: "Statements executed by successful publishes, by operation.",
	}, []string{"op"})

	publishDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "contentlab_publish_duration_seconds",
		Help:    "Wall time of publish attempts.",
		Buckets: prometheus.DefBuckets,
	})
)
