package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		paymentOrdersTotal,
		paymentRevenueTotal,
		gatewayCallsTotal,
		gatewayCallLatency,
	)
}

var (
	paymentOrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_orders_total",
			Help: "Payment orders by terminal status (initiated/completed/failed).",
		},
		[]string{"status"},
	)

	paymentRevenueTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_revenue_total",
			Help: "Total monetary value of completed payments, labeled by method.",
		},
		[]string{"method"},
	)

	gatewayCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_gateway_calls_total",
			Help: "Outbound gateway calls by operation and outcome.",
		},
		[]string{"op", "outcome"},
	)

	gatewayCallLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payment_gateway_call_latency_ms",
			Help:    "Gateway call latency distribution in milliseconds.",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		[]string{"op"},
	)
)

func IncPaymentOrder(status string) {
	paymentOrdersTotal.WithLabelValues(norm(status)).Inc()
}

func AddPaymentRevenue(method string, amount int64) {
	paymentRevenueTotal.WithLabelValues(norm(method)).Add(float64(amount))
}

func IncGatewayCall(op, outcome string) {
	gatewayCallsTotal.WithLabelValues(norm(op), norm(outcome)).Inc()
}

func ObserveGatewayLatency(op string, d time.Duration) {
	gatewayCallLatency.WithLabelValues(norm(op)).Observe(float64(d.Milliseconds()))
}
