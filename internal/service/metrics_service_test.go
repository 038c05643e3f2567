package service_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/climate-dashboard-api/internal/apperrors"
	"github.com/climate-dashboard-api/internal/models"
	"github.com/climate-dashboard-api/internal/observability/metrics"
	"github.com/climate-dashboard-api/internal/service"
	"github.com/climate-dashboard-api/internal/sysmon"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fakeSampler struct {
	calls atomic.Int32
	err   error
}

func (s *fakeSampler) Sample(ctx context.Context) (*sysmon.Snapshot, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return &sysmon.Snapshot{CPUUsage: 12.5, MemoryUsage: 40, DiskUsage: 70, NetworkIO: 1.5}, nil
}

func newMetricsFixture(t *testing.T, sampler service.Sampler) *fixture {
	t.Helper()

	m, err := metrics.New(prometheus.NewRegistry())
	require.NoError(t, err)
	return newFixture(t, service.Deps{Metrics: m, Sampler: sampler})
}

func TestCollect_StoresSample(t *testing.T) {
	sampler := &fakeSampler{}
	f := newMetricsFixture(t, sampler)
	ctx := context.Background()
	analyst := f.seedAccount(t, "carol", models.RoleAnalyst)
	station := f.seedSource(t, "Station A")
	f.record(t, analyst, station, models.DataTypeTemperature, 11, time.Now().UTC(), false)
	f.record(t, analyst, station, models.DataTypeTemperature, 12, time.Now().UTC(), false)

	_, err := f.svc.Auth.Login(ctx, &models.LoginRequest{Username: "carol", Password: testPassword}, service.ClientMeta{})
	require.NoError(t, err)

	sample, err := f.svc.Metrics.Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12.5, sample.CPUUsage)
	assert.Equal(t, 1, sample.ActiveUsers)
	assert.Equal(t, 2.0, sample.DataProcessingRate)

	latest, err := f.svc.Metrics.Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, sample.ID, latest.ID)
}

func TestCollect_SamplerFailure(t *testing.T) {
	f := newMetricsFixture(t, &fakeSampler{err: errors.New("proc unavailable")})

	_, err := f.svc.Metrics.Collect(context.Background())
	assert.Error(t, err)

	latest, err := f.svc.Metrics.Latest(context.Background())
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestSeries_AdminOnly(t *testing.T) {
	f := newMetricsFixture(t, &fakeSampler{})
	ctx := context.Background()
	admin := f.seedAccount(t, "admin", models.RoleAdministrator)
	analyst := f.seedAccount(t, "carol", models.RoleAnalyst)

	for i := 0; i < 3; i++ {
		_, err := f.svc.Metrics.Collect(ctx)
		require.NoError(t, err)
	}

	_, err := f.svc.Metrics.Series(ctx, analyst, 24)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	series, err := f.svc.Metrics.Series(ctx, admin, 0)
	require.NoError(t, err)
	assert.Len(t, series.Timestamps, 3)
	assert.Equal(t, []float64{12.5, 12.5, 12.5}, series.CPUUsage)
}

func TestCollector_StartStop(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("github.com/patrickmn/go-cache.(*janitor).Run"))

	sampler := &fakeSampler{}
	f := newMetricsFixture(t, sampler)

	f.svc.Metrics.StartCollector(context.Background())
	f.svc.Metrics.StartCollector(context.Background())

	require.Eventually(t, func() bool {
		return sampler.calls.Load() >= 2
	}, 2*time.Second, 5*time.Millisecond)

	f.svc.Metrics.StopCollector()
	f.svc.Metrics.StopCollector()

	calls := sampler.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, sampler.calls.Load(), "no samples after stop")
}

func TestCollector_WithoutSamplerIsNoop(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("github.com/patrickmn/go-cache.(*janitor).Run"))

	f := newFixture(t)
	f.svc.Metrics.StartCollector(context.Background())
	f.svc.Metrics.StopCollector()

	_, err := f.svc.Metrics.Collect(context.Background())
	assert.Error(t, err)
}
