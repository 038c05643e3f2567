// Package metrics exposes Prometheus metrics for the dashboard API
package metrics

import (
	"strconv"

	"github.com/climate-dashboard-api/internal/models"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "climate_dashboard"

// Metrics contains the Prometheus collectors for HTTP traffic, security
// events, audited mutations and host samples. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	authOperationsTotal *prometheus.CounterVec
	auditEntriesTotal   *prometheus.CounterVec
	dataPointsIngested  *prometheus.CounterVec

	cpuUsage       prometheus.Gauge
	memoryUsage    prometheus.Gauge
	diskUsage      prometheus.Gauge
	activeUsers    prometheus.Gauge
	processingRate prometheus.Gauge
}

// New creates and registers the metrics on registry
func New(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Registry returns the registry the metrics were registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) initMetrics() {
	m.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	m.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Time taken for HTTP requests",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	m.authOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_operations_total",
			Help:      "Authentication operations by outcome",
		},
		[]string{"operation", "outcome"}, // operation: login, logout, register; outcome: success, invalid, disabled, throttled
	)

	m.auditEntriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_entries_total",
			Help:      "Audited administrative mutations",
		},
		[]string{"action", "success"},
	)

	m.dataPointsIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "climate_data_points_ingested_total",
			Help:      "Climate readings recorded",
		},
		[]string{"data_type"},
	)

	m.cpuUsage = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "system_cpu_usage_percent",
		Help:      "Host CPU usage at the last sample",
	})
	m.memoryUsage = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "system_memory_usage_percent",
		Help:      "Host memory usage at the last sample",
	})
	m.diskUsage = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "system_disk_usage_percent",
		Help:      "Disk usage of the monitored path at the last sample",
	})
	m.activeUsers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_users",
		Help:      "Accounts holding an active session",
	})
	m.processingRate = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "data_processing_rate_per_minute",
		Help:      "Climate readings ingested during the last minute",
	})
}

func (m *Metrics) getCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.authOperationsTotal,
		m.auditEntriesTotal,
		m.dataPointsIngested,
		m.cpuUsage,
		m.memoryUsage,
		m.diskUsage,
		m.activeUsers,
		m.processingRate,
	}
}

// Describe implements the Collector interface
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.getCollectors() {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.getCollectors() {
		collector.Collect(ch)
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path string, statusCode int, duration float64) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// RecordAuth records an authentication operation
func (m *Metrics) RecordAuth(operation, outcome string) {
	if m == nil {
		return
	}
	m.authOperationsTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordAudit records an audited mutation
func (m *Metrics) RecordAudit(action string, success bool) {
	if m == nil {
		return
	}
	m.auditEntriesTotal.WithLabelValues(action, strconv.FormatBool(success)).Inc()
}

// RecordDataPoint records an ingested reading
func (m *Metrics) RecordDataPoint(dataType models.DataType) {
	if m == nil {
		return
	}
	m.dataPointsIngested.WithLabelValues(string(dataType)).Inc()
}

// SetSystemSample publishes the latest host sample
func (m *Metrics) SetSystemSample(s *models.SystemMetricsSample) {
	if m == nil || s == nil {
		return
	}
	m.cpuUsage.Set(s.CPUUsage)
	m.memoryUsage.Set(s.MemoryUsage)
	m.diskUsage.Set(s.DiskUsage)
	m.activeUsers.Set(float64(s.ActiveUsers))
	m.processingRate.Set(s.DataProcessingRate)
}
