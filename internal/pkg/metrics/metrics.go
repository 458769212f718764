package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of the API.
type Metrics struct {
	RequestCounter        *prometheus.CounterVec
	RequestDuration       *prometheus.HistogramVec
	RequestsInFlight      prometheus.Gauge
	ChallengeTransitions  *prometheus.CounterVec
	NotificationsAppended *prometheus.CounterVec
	DeliveryFailures      *prometheus.CounterVec
}

// New registers the collectors on reg. Tests pass a fresh prometheus.NewRegistry().
func New(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		RequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_in_flight",
				Help:      "Number of HTTP requests currently being processed",
			},
		),
		ChallengeTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "challenge",
				Name:      "transitions_total",
				Help:      "Challenge state transitions by target status",
			},
			[]string{"to"},
		),
		NotificationsAppended: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "notification",
				Name:      "appended_total",
				Help:      "Notifications appended by type",
			},
			[]string{"type"},
		),
		DeliveryFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "notification",
				Name:      "delivery_failures_total",
				Help:      "Failed out-of-band deliveries by channel",
			},
			[]string{"channel"},
		),
	}

	reg.MustRegister(
		m.RequestCounter,
		m.RequestDuration,
		m.RequestsInFlight,
		m.ChallengeTransitions,
		m.NotificationsAppended,
		m.DeliveryFailures,
	)
	return m
}

// Middleware records count and latency per matched route.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		m.RequestsInFlight.Inc()
		defer m.RequestsInFlight.Dec()

		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else if status < fiber.StatusBadRequest {
				status = fiber.StatusInternalServerError
			}
		}

		route := c.Route().Path
		m.RequestCounter.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.RequestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())

		return err
	}
}

func (m *Metrics) ChallengeTransition(to string) {
	if m == nil {
		return
	}
	m.ChallengeTransitions.WithLabelValues(to).Inc()
}

func (m *Metrics) NotificationAppended(notifType string) {
	if m == nil {
		return
	}
	m.NotificationsAppended.WithLabelValues(notifType).Inc()
}

func (m *Metrics) DeliveryFailed(channel string) {
	if m == nil {
		return
	}
	m.DeliveryFailures.WithLabelValues(channel).Inc()
}
