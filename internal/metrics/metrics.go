package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forma_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "forma_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	PaymentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forma_payments_total",
			Help: "Total number of payment status updates",
		},
		[]string{"status"},
	)

	ProofUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forma_proof_uploads_total",
			Help: "Total number of payment proof uploads",
		},
		[]string{"result"},
	)

	MembershipsExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "forma_memberships_expired_total",
			Help: "Memberships moved to expired by the daily sweep",
		},
	)

	MembershipsDeactivatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "forma_memberships_deactivated_total",
			Help: "Memberships moved to inactive after grace period",
		},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forma_notifications_total",
			Help: "Notification dispatch attempts",
		},
		[]string{"channel", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "forma_email_queue_length",
			Help: "Current length of the email queue",
		},
	)

	GymsActivatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "forma_gyms_activated_total",
			Help: "Gyms activated through billing events",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordPayment(status string) {
	PaymentsTotal.WithLabelValues(status).Inc()
}

func RecordProofUpload(result string) {
	ProofUploadsTotal.WithLabelValues(result).Inc()
}

func RecordNotification(channel, status string) {
	NotificationsTotal.WithLabelValues(channel, status).Inc()
}

func RecordGymActivation() {
	GymsActivatedTotal.Inc()
}
