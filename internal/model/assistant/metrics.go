package assistant

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var askDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "travel",
		Subsystem: "assistant",
		Name:      "ask_duration_seconds",
		Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
	},
	[]string{"status"},
)
