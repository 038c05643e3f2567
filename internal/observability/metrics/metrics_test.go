package metrics

import (
	"testing"

	"github.com/climate-dashboard-api/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	assert.Error(t, err, "second registration on the same registry must fail")
}

func TestRecorders(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	m.RecordHTTPRequest("GET", "/alerts", 200, 0.01)
	m.RecordAuth("login", "success")
	m.RecordAuth("login", "invalid")
	m.RecordAuth("login", "invalid")
	m.RecordAudit(models.AuditActionRoleChange, true)
	m.RecordDataPoint(models.DataTypeTemperature)
	m.SetSystemSample(&models.SystemMetricsSample{CPUUsage: 42, ActiveUsers: 3})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/alerts", "200")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.authOperationsTotal.WithLabelValues("login", "invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.auditEntriesTotal.WithLabelValues(models.AuditActionRoleChange, "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dataPointsIngested.WithLabelValues("temperature")))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.cpuUsage))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.activeUsers))
}

func TestNilMetricsRecordNothing(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordHTTPRequest("GET", "/", 200, 0)
		m.RecordAuth("login", "success")
		m.RecordAudit("x", false)
		m.RecordDataPoint(models.DataTypeHumidity)
		m.SetSystemSample(&models.SystemMetricsSample{})
	})
}
