package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	redemptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaign_redemptions_total",
			Help: "Redemption attempts by outcome",
		},
		[]string{"outcome"},
	)

	broadcastDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaign_broadcast_deliveries_total",
			Help: "Broadcast delivery attempts by status",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(redemptionsTotal, broadcastDeliveries)
}
