// Package metrics emits application counters and gauges through the
// global telemetry system. All helpers are safe to call before
// observability.InitMetrics has run.
package metrics

import (
	"time"

	"github.com/webinsights/webinsights/internal/observability"
)

// Application-level metrics following Prometheus conventions
var (
	// Analysis pipeline metrics
	AnalysesTotal    = "app_analyses_total"
	AnalysisDuration = "app_analysis_duration_ms"

	// Conversation metrics
	ConversationsTotal = "app_conversations_total"

	// Rate limit metrics
	RateLimitRejectionsTotal = "app_rate_limit_rejections_total"

	// Health check metrics
	HealthCheckTotal    = "app_health_check_total"
	HealthCheckDuration = "app_health_check_duration_ms"

	// Server lifecycle metrics
	ServerStartTime = "app_server_start_time_seconds"
)

// RecordAnalysis records an analysis request with its outcome.
func RecordAnalysis(success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}

	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			AnalysesTotal,
			1,
			map[string]string{
				"status": status,
			},
		)

		_ = observability.TelemetrySystem.Histogram(
			AnalysisDuration,
			duration,
			nil,
		)
	}
}

// RecordConversation records a conversational request with its outcome.
func RecordConversation(success bool) {
	status := "success"
	if !success {
		status = "failure"
	}

	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			ConversationsTotal,
			1,
			map[string]string{
				"status": status,
			},
		)
	}
}

// RecordRateLimitRejection records a request rejected by the rate limiter.
func RecordRateLimitRejection(endpoint string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			RateLimitRejectionsTotal,
			1,
			map[string]string{
				"endpoint": endpoint,
			},
		)
	}
}

// RecordHealthCheck records a health check execution
func RecordHealthCheck(checkName string, healthy bool, duration time.Duration) {
	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}

	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			HealthCheckTotal,
			1,
			map[string]string{
				"check":  checkName,
				"status": status,
			},
		)

		_ = observability.TelemetrySystem.Histogram(
			HealthCheckDuration,
			duration,
			map[string]string{
				"check": checkName,
			},
		)
	}
}

// SetServerStartTime records the server start time (Unix timestamp)
func SetServerStartTime(timestamp int64) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(
			ServerStartTime,
			float64(timestamp),
			nil,
		)
	}
}
