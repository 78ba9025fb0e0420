// Package metrics provides Prometheus metric collection for the service.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the interface the service layer uses to record events.
// A no-op implementation is used in tests.
type Recorder interface {
	RecordNotificationSubmitted()
	RecordNotificationDelivered()
	RecordNotificationFailed()
	RecordExpiryScheduled()
	RecordExpiryCancelled()
	RecordExpiryFired()
	RecordHTTPStatus(statusCode int)
}

// Collector records service metrics into a Prometheus registry.
type Collector struct {
	registry *prometheus.Registry

	notificationsSubmitted prometheus.Counter
	notificationsDelivered prometheus.Counter
	notificationsFailed    prometheus.Counter
	expiryScheduled        prometheus.Counter
	expiryCancelled        prometheus.Counter
	expiryFired            prometheus.Counter
	httpStatus             *prometheus.CounterVec
}

// NewCollector creates a Collector with its own registry and registers all
// metrics into it.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		notificationsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "listkeeper_notifications_submitted_total",
			Help: "Total deletion notification jobs submitted to the scheduler.",
		}),
		notificationsDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "listkeeper_notifications_delivered_total",
			Help: "Total deletion notifications accepted by the push relay.",
		}),
		notificationsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "listkeeper_notifications_failed_total",
			Help: "Total deletion notifications the push relay rejected or that failed in transit.",
		}),
		expiryScheduled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "listkeeper_expiry_jobs_scheduled_total",
			Help: "Total inactivity-expiry jobs scheduled.",
		}),
		expiryCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "listkeeper_expiry_jobs_cancelled_total",
			Help: "Total inactivity-expiry jobs cancelled by a later refresh.",
		}),
		expiryFired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "listkeeper_expiry_jobs_fired_total",
			Help: "Total inactivity-expiry jobs that fired and deleted an account.",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "listkeeper_http_status_total",
			Help: "HTTP responses by status code.",
		}, []string{"status_code"}),
	}

	c.registry.MustRegister(
		c.notificationsSubmitted,
		c.notificationsDelivered,
		c.notificationsFailed,
		c.expiryScheduled,
		c.expiryCancelled,
		c.expiryFired,
		c.httpStatus,
	)

	return c
}

// Handler returns the HTTP handler serving the /metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) RecordNotificationSubmitted() { c.notificationsSubmitted.Inc() }
func (c *Collector) RecordNotificationDelivered() { c.notificationsDelivered.Inc() }
func (c *Collector) RecordNotificationFailed()    { c.notificationsFailed.Inc() }
func (c *Collector) RecordExpiryScheduled()       { c.expiryScheduled.Inc() }
func (c *Collector) RecordExpiryCancelled()       { c.expiryCancelled.Inc() }
func (c *Collector) RecordExpiryFired()           { c.expiryFired.Inc() }

func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Nop is a Recorder that records nothing. Useful in tests.
type Nop struct{}

func (Nop) RecordNotificationSubmitted() {}
func (Nop) RecordNotificationDelivered() {}
func (Nop) RecordNotificationFailed()    {}
func (Nop) RecordExpiryScheduled()       {}
func (Nop) RecordExpiryCancelled()       {}
func (Nop) RecordExpiryFired()           {}
func (Nop) RecordHTTPStatus(int)         {}
