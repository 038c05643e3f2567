package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/climate-dashboard-api/internal/access"
	"github.com/climate-dashboard-api/internal/models"
	"github.com/climate-dashboard-api/internal/observability/metrics"
	"github.com/climate-dashboard-api/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Series window bounds in hours
const (
	DefaultSeriesHours = 24
	MaxSeriesHours     = 24 * 30
)

const (
	defaultSampleInterval = time.Minute
	ingestRateWindow      = time.Minute
)

// metricsService is the concrete implementation of MetricsService
type metricsService struct {
	repos    *repository.Repositories
	sampler  Sampler
	metrics  *metrics.Metrics
	interval time.Duration
	now      func() time.Time
	log      zerolog.Logger
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	running  bool
	mu       sync.Mutex
}

// newMetricsService creates a new MetricsService sampling every interval
func newMetricsService(repos *repository.Repositories, sampler Sampler, m *metrics.Metrics,
	interval time.Duration, clock func() time.Time, log zerolog.Logger) *metricsService {
	if interval <= 0 {
		interval = defaultSampleInterval
	}
	return &metricsService{
		repos:    repos,
		sampler:  sampler,
		metrics:  m,
		interval: interval,
		now:      clock,
		log:      log.With().Str("service", "metrics").Logger(),
	}
}

// StartCollector starts sampling in the background. It returns immediately;
// StopCollector waits for the sampling goroutine to exit.
func (s *metricsService) StartCollector(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running || s.sampler == nil {
		return
	}
	s.running = true

	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.run(ctx)

	s.log.Info().Dur("interval", s.interval).Msg("Metrics collector started")
}

func (s *metricsService) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("Metrics collector stopping")
			return
		case <-ticker.C:
			if _, err := s.Collect(ctx); err != nil && ctx.Err() == nil {
				s.log.Error().Err(err).Msg("Failed to collect system metrics")
			}
		}
	}
}

// StopCollector stops the background collector
func (s *metricsService) StopCollector() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cancel()
	s.wg.Wait()
	s.running = false
	s.log.Info().Msg("Metrics collector stopped")
}

// Collect takes one sample, stores it and publishes it as gauges
func (s *metricsService) Collect(ctx context.Context) (*models.SystemMetricsSample, error) {
	if s.sampler == nil {
		return nil, fmt.Errorf("no system sampler configured")
	}

	snap, err := s.sampler.Sample(ctx)
	if err != nil {
		return nil, err
	}

	stats, err := s.repos.Account.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count active users: %w", err)
	}

	now := s.now()
	ingested, err := s.repos.Climate.CountCreatedSince(ctx, now.Add(-ingestRateWindow))
	if err != nil {
		return nil, fmt.Errorf("failed to count ingested readings: %w", err)
	}

	sample := &models.SystemMetricsSample{
		ID:                 uuid.New().String(),
		CPUUsage:           snap.CPUUsage,
		MemoryUsage:        snap.MemoryUsage,
		DiskUsage:          snap.DiskUsage,
		NetworkIO:          snap.NetworkIO,
		ActiveUsers:        stats.ActiveSessions,
		DataProcessingRate: float64(ingested) / ingestRateWindow.Minutes(),
		Timestamp:          now,
	}
	if err := s.repos.Metrics.Create(ctx, sample); err != nil {
		return nil, fmt.Errorf("failed to store system metrics: %w", err)
	}

	s.metrics.SetSystemSample(sample)
	s.log.Debug().
		Float64("cpu", sample.CPUUsage).
		Float64("memory", sample.MemoryUsage).
		Int("active_users", sample.ActiveUsers).
		Msg("System metrics collected")
	return sample, nil
}

// Latest returns the most recent sample, or nil when none exists
func (s *metricsService) Latest(ctx context.Context) (*models.SystemMetricsSample, error) {
	return s.repos.Metrics.Latest(ctx)
}

// Series returns the samples of the last hours, oldest first
func (s *metricsService) Series(ctx context.Context, actor *models.Account, hours int) (*models.MetricsSeries, error) {
	if err := access.RequireCapability(actor, models.RoleAdministrator); err != nil {
		return nil, err
	}
	if hours < 1 {
		hours = DefaultSeriesHours
	}
	if hours > MaxSeriesHours {
		hours = MaxSeriesHours
	}

	to := s.now()
	samples, err := s.repos.Metrics.Range(ctx, to.Add(-time.Duration(hours)*time.Hour), to)
	if err != nil {
		return nil, fmt.Errorf("failed to load system metrics: %w", err)
	}

	series := &models.MetricsSeries{
		Timestamps:  make([]string, len(samples)),
		CPUUsage:    make([]float64, len(samples)),
		MemoryUsage: make([]float64, len(samples)),
		DiskUsage:   make([]float64, len(samples)),
		NetworkIO:   make([]float64, len(samples)),
		ActiveUsers: make([]int, len(samples)),
	}
	for i, m := range samples {
		series.Timestamps[i] = m.Timestamp.Format(time.RFC3339)
		series.CPUUsage[i] = m.CPUUsage
		series.MemoryUsage[i] = m.MemoryUsage
		series.DiskUsage[i] = m.DiskUsage
		series.NetworkIO[i] = m.NetworkIO
		series.ActiveUsers[i] = m.ActiveUsers
	}
	return series, nil
}
