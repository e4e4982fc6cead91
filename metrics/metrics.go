// Package metrics exposes the Prometheus collectors of the marketplace API.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "homeservices",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "homeservices",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "homeservices",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	paymentVerifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "homeservices",
			Subsystem: "payments",
			Name:      "verifications_total",
			Help:      "Payment verification outcomes.",
		},
		[]string{"outcome"},
	)

	gatewayDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "homeservices",
			Subsystem: "payments",
			Name:      "gateway_request_duration_seconds",
			Help:      "Duration of payment gateway calls.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		},
		[]string{"operation", "success"},
	)

	systemLogEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "homeservices",
			Subsystem: "system_log",
			Name:      "events_total",
			Help:      "System log entries by result (written, dropped, failed).",
		},
		[]string{"result"},
	)

	notificationPushes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "homeservices",
			Subsystem: "notifications",
			Name:      "pushes_total",
			Help:      "Notification deliveries by channel and success.",
		},
		[]string{"channel", "success"},
	)

	ratingRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "homeservices",
			Subsystem: "reviews",
			Name:      "rating_update_retries_total",
			Help:      "Optimistic rating updates that had to be retried.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		paymentVerifications,
		gatewayDuration,
		systemLogEvents,
		notificationPushes,
		ratingRetries,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency per route template.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().URL.Path == "/metrics" {
				return next(c)
			}

			start := time.Now()
			httpInFlight.Inc()
			defer httpInFlight.Dec()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := strings.ToUpper(c.Request().Method)
			status := strconv.Itoa(c.Response().Status)

			httpRequests.WithLabelValues(method, route, status).Inc()
			httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}

// RecordPaymentVerification counts a verification outcome (verified, replayed, invalid_signature, failed).
func RecordPaymentVerification(outcome string) {
	paymentVerifications.WithLabelValues(outcome).Inc()
}

// RecordGatewayCall records a payment gateway round trip.
func RecordGatewayCall(operation string, duration time.Duration, success bool) {
	if duration <= 0 {
		duration = time.Millisecond
	}
	gatewayDuration.WithLabelValues(operation, strconv.FormatBool(success)).Observe(duration.Seconds())
}

// RecordSystemLog counts a system log entry by result.
func RecordSystemLog(result string) {
	systemLogEvents.WithLabelValues(result).Inc()
}

// RecordPush counts a notification delivery attempt.
func RecordPush(channel string, success bool) {
	notificationPushes.WithLabelValues(channel, strconv.FormatBool(success)).Inc()
}

// RecordRatingRetry counts a lost optimistic rating update.
func RecordRatingRetry() {
	ratingRetries.Inc()
}
