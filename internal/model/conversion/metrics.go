package conversion

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"max.ks1230/travel-finances-bot/internal/entity/currency"
)

var fallbackTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "travel",
		Subsystem: "conversion",
		Name:      "fallback_total",
		Help:      "Amounts passed through unconverted because a rate was missing.",
	},
	[]string{"from"},
)

func observeFallback(from currency.Code) {
	fallbackTotal.WithLabelValues(string(from)).Inc()
}
