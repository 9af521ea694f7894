// Package metrics holds Prometheus instruments used across the enquiry
// service.  All collectors are registered with the global registry, so
// importing this package is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for SubmissionsTotal.
const (
	OutcomeAccepted = "accepted"
	OutcomeInvalid  = "invalid"
	OutcomeRejected = "rejected" // malformed body, unknown form, oversize
)

var (
	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "form_submissions_total",
			Help: "Cumulative number of form submissions by form and outcome.",
		}, []string{"form", "outcome"})

	ValidationFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "form_validation_failures_total",
			Help: "Cumulative number of server-side field violations by form and field.",
		}, []string{"form", "field"})

	SubmissionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "form_submission_duration_seconds",
			Help:    "Time spent handling a submission from receipt to acknowledgement.",
			Buckets: prometheus.DefBuckets,
		}, []string{"form"})

	NotifyErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "form_notify_errors_total",
			Help: "Cumulative number of support hand-off failures.",
		}, []string{"form"})
)

func init() {
	prometheus.MustRegister(
		SubmissionsTotal,
		ValidationFailuresTotal,
		SubmissionDuration,
		NotifyErrorsTotal,
	)
}
