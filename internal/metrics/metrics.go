// Package metrics exposes Prometheus collectors for task execution, queue
// depth and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Task outcomes recorded in the status label
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// TaskDurationBuckets are the histogram buckets for task_duration_seconds
var TaskDurationBuckets = []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60}

// Metrics owns a private registry so tests and multiple services in one
// process never collide on the default one.
type Metrics struct {
	registry *prometheus.Registry

	taskDuration *prometheus.HistogramVec
	tasksTotal   *prometheus.CounterVec
	queueLength  *prometheus.GaugeVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New creates a Metrics with every collector registered
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		taskDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "task_duration_seconds",
			Help:    "Time spent executing a task attempt.",
			Buckets: TaskDurationBuckets,
		}, []string{"task_name", "status"}),
		tasksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tasks_total",
			Help: "Task attempts by outcome.",
		}, []string{"task_name", "status"}),
		queueLength: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "queue_length",
			Help: "Messages waiting in a queue.",
		}, []string{"queue_name"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"method", "route", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		m.taskDuration,
		m.tasksTotal,
		m.queueLength,
		m.httpRequests,
		m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveTask records one task attempt
func (m *Metrics) ObserveTask(taskName, status string, elapsed time.Duration) {
	m.taskDuration.WithLabelValues(taskName, status).Observe(elapsed.Seconds())
	m.tasksTotal.WithLabelValues(taskName, status).Inc()
}

// SetQueueLength records the current depth of a queue
func (m *Metrics) SetQueueLength(queueName string, length int) {
	m.queueLength.WithLabelValues(queueName).Set(float64(length))
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// GinMiddleware records request count and latency per matched route
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		m.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
