package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clubsub_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clubsub_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	EnrollmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clubsub_enrollments_total",
			Help: "Total number of enrollments created",
		},
		[]string{"term_kind"},
	)

	FreezesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clubsub_freezes_total",
			Help: "Total number of freeze attempts",
		},
		[]string{"result"},
	)

	SlotRolloversTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clubsub_slot_rollovers_total",
			Help: "Total number of slot plans rolled forward by the scheduler",
		},
	)

	SweepUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clubsub_sweep_updates_total",
			Help: "Rows touched by the expiry/unfreeze sweep",
		},
		[]string{"kind"},
	)

	WalletTopUpsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clubsub_wallet_topups_total",
			Help: "Total number of wallet top-ups",
		},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clubsub_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clubsub_email_queue_length",
			Help: "Current length of email queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordEnrollment(termKind string) {
	EnrollmentsTotal.WithLabelValues(termKind).Inc()
}

func RecordFreeze(result string) {
	FreezesTotal.WithLabelValues(result).Inc()
}

func RecordSlotRollover() {
	SlotRolloversTotal.Inc()
}

func RecordSweep(kind string, rows int64) {
	SweepUpdatesTotal.WithLabelValues(kind).Add(float64(rows))
}

func RecordWalletTopUp() {
	WalletTopUpsTotal.Inc()
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}
