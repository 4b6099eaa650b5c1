package rates

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var refreshTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "travel",
		Subsystem: "rates",
		Name:      "refresh_total",
	},
	[]string{"status"},
)

func observeRefresh(err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	refreshTotal.WithLabelValues(status).Inc()
}
