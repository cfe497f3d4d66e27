// AngelaMos | 2026
// metrics.go

package core

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kandi_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kandi_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	workflowOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kandi_workflow_operations_total",
		Help: "Membership, invite and purchase workflow outcomes",
	}, []string{"operation", "result"})

	notificationDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kandi_notification_deliveries_total",
		Help: "Email notification attempts by kind and result",
	}, []string{"kind", "result"})

	sideEffectFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kandi_side_effect_failures_total",
		Help: "Best-effort side effects that failed after a successful write",
	}, []string{"effect"})
)

func ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// ObserveWorkflow records the outcome of a workflow step. A nil err
// counts as "ok", otherwise the error's HTTP class is used.
func ObserveWorkflow(operation string, err error) {
	workflowOperations.WithLabelValues(operation, resultLabel(err)).Inc()
}

func ObserveNotification(kind, result string) {
	notificationDeliveries.WithLabelValues(kind, result).Inc()
}

func ObserveSideEffectFailure(effect string) {
	sideEffectFailures.WithLabelValues(effect).Inc()
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}

	switch StatusFor(err) {
	case http.StatusBadRequest:
		return "invalid_request"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	default:
		return "internal"
	}
}
