package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Submission outcomes recorded by SubmissionsTotal.
const (
	OutcomeGraded    = "graded"
	OutcomeDuplicate = "duplicate"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

var (
	registerOnce         sync.Once
	httpRequestsTotal    *prometheus.CounterVec
	httpLatencySeconds   *prometheus.HistogramVec
	httpErrorsTotal      *prometheus.CounterVec
	submissionsTotal     *prometheus.CounterVec
	submissionScores     prometheus.Histogram
	notificationsDropped prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "suitetest_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "suitetest_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "suitetest_http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		submissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "suitetest_submissions_total",
			Help: "Test submissions by outcome.",
		}, []string{"outcome"})

		submissionScores = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "suitetest_submission_score",
			Help:    "Distribution of graded submission scores.",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		})

		notificationsDropped = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "suitetest_notifications_dropped_total",
			Help: "Completion notifications dropped because the queue was full.",
		})

		prometheus.MustRegister(httpRequestsTotal, httpLatencySeconds, httpErrorsTotal, submissionsTotal, submissionScores, notificationsDropped)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// SubmissionsTotal exposes the submission outcome counter.
func SubmissionsTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsTotal
}

// SubmissionScores exposes the graded score histogram.
func SubmissionScores() prometheus.Histogram {
	RegisterMetrics()
	return submissionScores
}

// NotificationsDropped exposes the dropped notification counter.
func NotificationsDropped() prometheus.Counter {
	RegisterMetrics()
	return notificationsDropped
}
