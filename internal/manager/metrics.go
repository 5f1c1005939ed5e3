package manager

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	generatedTokensTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "neurod",
		Subsystem: "manager",
		Name:      "generated_tokens_total",
		Help:      "Tokens produced by the decode loop",
	}, []string{"endpoint"})

	generationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "neurod",
		Subsystem: "manager",
		Name:      "generation_duration_seconds",
		Help:      "Wall time of complete generation calls",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})
)
