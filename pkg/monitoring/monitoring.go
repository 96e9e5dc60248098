package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	QuizSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_submissions_total",
			Help: "Quiz submissions by outcome",
		},
		[]string{"outcome"},
	)

	GradingFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_question_grading_failures_total",
			Help: "Questions scored incorrect because their answer could not be graded",
		},
		[]string{"question_type"},
	)

	GradingDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quiz_grading_duration_seconds",
			Help:    "Time to grade and persist one quiz attempt",
			Buckets: prometheus.DefBuckets,
		},
	)

	GradebookBuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gradebook_build_duration_seconds",
			Help:    "Time to fetch and aggregate a course gradebook",
			Buckets: prometheus.DefBuckets,
		},
	)

	GradebookCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gradebook_cache_lookups_total",
			Help: "Gradebook cache lookups by result",
		},
		[]string{"result"},
	)
)

// Submission outcomes
const (
	OutcomeGraded           = "graded"
	OutcomeAlreadySubmitted = "already_submitted"
	OutcomeRejected         = "rejected"
	OutcomeError            = "error"
)

var registerOnce sync.Once

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			QuizSubmissions,
			GradingFailures,
			GradingDuration,
			GradebookBuildDuration,
			GradebookCacheLookups,
		)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		RequestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(time.Since(start).Seconds())
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
