package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "talentportal_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "talentportal_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	redactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "talentportal_redactions_total",
		Help: "Contact details removed from CV text, by kind",
	}, []string{"kind"})

	reviewsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "talentportal_reviews_total",
		Help: "Reviews recorded, by action",
	}, []string{"action"})

	storyGenerations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "talentportal_story_generations_total",
		Help: "Candidate story generations by provider and result",
	}, []string{"provider", "result"})

	storyDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "talentportal_story_generation_duration_seconds",
		Help:    "Duration of candidate story generation",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"provider"})

	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "talentportal_login_attempts_total",
		Help: "Login attempts by result",
	}, []string{"result"})

	uploadSweeps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "talentportal_upload_sweeps_total",
		Help: "Orphaned upload files handled by the sweeper, by result",
	}, []string{"result"})

	reviewFeedSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "talentportal_review_feed_subscribers",
		Help: "Open live review feed connections",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveRedaction adds count redactions of the given kind.
func ObserveRedaction(kind string, count int) {
	if count <= 0 {
		return
	}
	redactions.WithLabelValues(kind).Add(float64(count))
}

func ObserveReview(action string) {
	reviewsTotal.WithLabelValues(action).Inc()
}

// ObserveStory records a story generation attempt with its provider and result label.
func ObserveStory(provider, result string, duration time.Duration) {
	storyGenerations.WithLabelValues(provider, result).Inc()
	storyDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

func ObserveLogin(result string) {
	loginAttempts.WithLabelValues(result).Inc()
}

// ObserveSweep increments the sweeper counter for the given result.
func ObserveSweep(result string, count int) {
	if count <= 0 {
		return
	}
	uploadSweeps.WithLabelValues(result).Add(float64(count))
}

func FeedSubscribed()   { reviewFeedSubscribers.Inc() }
func FeedUnsubscribed() { reviewFeedSubscribers.Dec() }
