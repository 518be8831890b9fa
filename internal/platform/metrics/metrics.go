// Package metrics exposes Prometheus metrics for the registration service.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	UsersRegistered      prometheus.Counter
	UsersActivated       prometheus.Counter
	CodesIssued          prometheus.Counter
	NotificationFailures prometheus.Counter
	RequestDuration      *prometheus.HistogramVec
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		UsersRegistered: f.NewCounter(prometheus.CounterOpts{
			Name: "registration_users_registered_total",
			Help: "Total number of users registered",
		}),
		UsersActivated: f.NewCounter(prometheus.CounterOpts{
			Name: "registration_users_activated_total",
			Help: "Total number of users that completed activation",
		}),
		CodesIssued: f.NewCounter(prometheus.CounterOpts{
			Name: "registration_activation_codes_issued_total",
			Help: "Total number of activation codes issued, including resends",
		}),
		NotificationFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "registration_notification_failures_total",
			Help: "Total number of activation codes that could not be handed to the notifier",
		}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "registration_http_request_duration_seconds",
			Help:    "HTTP request latency by route, method and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}
}

// UserRegistered increments the registered users counter by 1
func (m *Metrics) UserRegistered() { m.UsersRegistered.Inc() }

// UserActivated increments the activated users counter by 1
func (m *Metrics) UserActivated() { m.UsersActivated.Inc() }

// CodeIssued increments the issued codes counter by 1
func (m *Metrics) CodeIssued() { m.CodesIssued.Inc() }

// NotificationFailed increments the notification failures counter by 1
func (m *Metrics) NotificationFailed() { m.NotificationFailures.Inc() }

// Middleware records request latency. Unmatched routes are grouped under "unmatched".
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestDuration.
			WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}
