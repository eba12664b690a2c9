package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Attribution engine metrics
	SnapshotsExtracted *prometheus.CounterVec
	MergesTotal        *prometheus.CounterVec
	SessionSources     *prometheus.CounterVec
	CookieFailures     *prometheus.CounterVec
	MirrorWrites       *prometheus.CounterVec

	// Lead metrics
	LeadsCaptured       *prometheus.CounterVec
	ConversionsReceived *prometheus.CounterVec

	// External API metrics
	ExternalAPICalls    *prometheus.CounterVec
	ExternalAPIDuration *prometheus.HistogramVec
	ExternalAPIFailures *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),

		SnapshotsExtracted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "attribution_snapshots_extracted_total",
				Help: "Total number of extractor runs by outcome",
			},
			[]string{"outcome"},
		),

		MergesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "attribution_merges_total",
				Help: "Total number of attribution merges by merge case",
			},
			[]string{"case"},
		),

		SessionSources: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "attribution_session_sources_total",
				Help: "Total number of classified session sources",
			},
			[]string{"source"},
		),

		CookieFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "attribution_cookie_failures_total",
				Help: "Total number of attribution cookie decode failures",
			},
			[]string{"error_type"},
		),

		MirrorWrites: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "attribution_mirror_writes_total",
				Help: "Total number of record mirror writes by status",
			},
			[]string{"status"},
		),

		LeadsCaptured: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leads_captured_total",
				Help: "Total number of leads captured",
			},
			[]string{"site_id"},
		),

		ConversionsReceived: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conversions_received_total",
				Help: "Total number of conversion events received",
			},
			[]string{"site_id", "event_type"},
		),

		ExternalAPICalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "external_api_calls_total",
				Help: "Total number of external API calls",
			},
			[]string{"api", "status"},
		),

		ExternalAPIDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "external_api_duration_seconds",
				Help:    "External API call duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"api"},
		),

		ExternalAPIFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "external_api_failures_total",
				Help: "Total number of external API failures",
			},
			[]string{"api", "error_type"},
		),
	}
}

// HTTP request metrics
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// Extractor outcome: "captured" or "empty"
func (m *Metrics) RecordSnapshotExtraction(outcome string) {
	m.SnapshotsExtracted.WithLabelValues(outcome).Inc()
}

// Merge case: "create", "create_minimal", "merge", "revisit"
func (m *Metrics) RecordMerge(mergeCase string) {
	m.MergesTotal.WithLabelValues(mergeCase).Inc()
}

// Classified session source label
func (m *Metrics) RecordSessionSource(source string) {
	m.SessionSources.WithLabelValues(source).Inc()
}

// Cookie decode failure
func (m *Metrics) RecordCookieFailure(errorType string) {
	m.CookieFailures.WithLabelValues(errorType).Inc()
}

// Mirror write status: "success" or "failure"
func (m *Metrics) RecordMirrorWrite(status string) {
	m.MirrorWrites.WithLabelValues(status).Inc()
}

// Lead capture counter
func (m *Metrics) RecordLeadCaptured(siteID string) {
	m.LeadsCaptured.WithLabelValues(siteID).Inc()
}

// Conversion event counter
func (m *Metrics) RecordConversion(siteID, eventType string) {
	m.ConversionsReceived.WithLabelValues(siteID, eventType).Inc()
}

// External API call metrics
func (m *Metrics) RecordExternalAPICall(api, status string, duration time.Duration) {
	m.ExternalAPICalls.WithLabelValues(api, status).Inc()
	m.ExternalAPIDuration.WithLabelValues(api).Observe(duration.Seconds())
}

// External API failure metrics
func (m *Metrics) RecordExternalAPIFailure(api, errorType string) {
	m.ExternalAPIFailures.WithLabelValues(api, errorType).Inc()
}

// HTTP requests in flight counter
func (m *Metrics) IncHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Inc()
}

// HTTP requests in flight counter
func (m *Metrics) DecHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Dec()
}
