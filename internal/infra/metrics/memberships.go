package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		membershipsGrantedTotal,
		membershipsExpiredTotal,
	)
}

var (
	membershipsGrantedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "memberships_granted_total",
			Help: "Premium memberships granted on confirmed payment.",
		},
	)

	membershipsExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "memberships_expired_total",
			Help: "Memberships transitioned active→expired by the expiry check.",
		},
	)
)

func IncMembershipGranted() { membershipsGrantedTotal.Inc() }

func IncMembershipsExpired(n int) { membershipsExpiredTotal.Add(float64(n)) }
