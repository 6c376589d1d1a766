// Package telemetry holds the process-wide Prometheus metrics and the slog setup.
//
// Metrics are registered against the default registry and served on /metrics.
// HTTP metrics are labelled by chi route pattern, not raw URL, so tokens and
// submission ids in the path never become label values.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route pattern, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and route pattern.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)
)

// Pipeline metrics.
//
// FinalizeOutcomesTotal labels: outcome = submitted | not_found | expired |
// not_verified | upload_missing | duplicate | failed.
var (
	ApplicationsStartedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "applications_started_total",
			Help: "Start-application calls, by result (created, resumed, honeypot).",
		},
		[]string{"result"},
	)

	FinalizeOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finalize_outcomes_total",
			Help: "Finalize-submission attempts, by outcome.",
		},
		[]string{"outcome"},
	)

	UploadCompensationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upload_compensations_total",
			Help: "Compensating upload deletes, by backend mode and result (ok, failed).",
		},
		[]string{"mode", "result"},
	)

	RateLimitRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_rejections_total",
			Help: "Requests rejected by the fixed-window limiter, by action.",
		},
		[]string{"action"},
	)

	VerificationChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verification_checks_total",
			Help: "Verification code checks, by result (ok, invalid).",
		},
		[]string{"result"},
	)

	ReviewsSubmittedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reviews_submitted_total",
			Help: "Review upserts accepted.",
		},
	)
)
