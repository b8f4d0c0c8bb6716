package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(webhookNotificationsTotal)
}

var webhookNotificationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "payment_webhook_notifications_total",
		Help: "Inbound provider notifications by outcome (applied/duplicate/rejected/failed/error).",
	},
	[]string{"provider", "outcome"},
)

func IncWebhookNotification(provider, outcome string) {
	webhookNotificationsTotal.WithLabelValues(norm(provider), norm(outcome)).Inc()
}
