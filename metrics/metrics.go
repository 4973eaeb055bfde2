// Package metrics exposes the Prometheus collectors served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roster_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "roster_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	SocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "roster_socket_connections",
		Help: "Live-channel connections currently registered.",
	})

	EmittedEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roster_emitted_events_total",
		Help: "Events pushed to the live channel by scope (user, role, all).",
	}, []string{"scope", "event"})

	DroppedMessages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roster_socket_dropped_messages_total",
		Help: "Messages dropped because a client send buffer was full.",
	})

	NotificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roster_notifications_created_total",
		Help: "Persisted notifications by type.",
	}, []string{"type"})

	RemindersSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roster_reminders_sent_total",
		Help: "Shift reminders issued by the reminder monitor.",
	})
)
