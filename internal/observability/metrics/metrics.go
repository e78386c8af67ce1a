package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	AuthRegistrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_registrations_total",
			Help: "User registrations by result.",
		},
		[]string{"result"},
	)

	AuthLoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Login attempts by result.",
		},
		[]string{"result"},
	)

	TokensIssuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tokens_issued_total",
			Help: "Access tokens issued by result.",
		},
		[]string{"result"},
	)

	UserPromotionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "user_promotions_total",
			Help: "Admin role promotions by result.",
		},
		[]string{"result"},
	)

	DraftsReceivedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "drafts_received_total",
			Help: "Drafts accepted through the webhook intake.",
		},
	)

	DraftStatusTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "draft_status_transitions_total",
			Help: "Draft status updates by target status.",
		},
		[]string{"status"},
	)

	DraftsDeletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "drafts_deleted_total",
			Help: "Drafts removed by moderators.",
		},
	)

	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Approval notifications by result (sent, failed, skipped).",
		},
		[]string{"result"},
	)
)

// MustRegister registers every collector on the default registry with a
// constant service label.
func MustRegister(serviceName string) {
	reg := prometheus.WrapRegistererWith(prometheus.Labels{"service": serviceName}, prometheus.DefaultRegisterer)
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDurationSeconds,
		AuthRegistrationsTotal,
		AuthLoginsTotal,
		TokensIssuedTotal,
		UserPromotionsTotal,
		DraftsReceivedTotal,
		DraftStatusTransitionsTotal,
		DraftsDeletedTotal,
		NotificationsTotal,
	)
}
