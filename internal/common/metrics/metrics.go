// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TableAPIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snow_table_api_requests_total",
			Help: "Total number of ServiceNow Table API requests",
		},
		[]string{"table", "method", "outcome"},
	)

	TableAPIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "snow_table_api_request_duration_seconds",
			Help: "Duration of ServiceNow Table API requests in seconds",
		},
		[]string{"table", "method"},
	)

	ResolverLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snow_resolver_lookups_total",
			Help: "Total number of identifier resolution attempts",
		},
		[]string{"kind", "outcome"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snow_notifications_sent_total",
			Help: "Total number of requester notifications sent",
		},
		[]string{"channel", "outcome"},
	)
)
