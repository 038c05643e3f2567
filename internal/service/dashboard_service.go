package service

import (
	"context"
	"fmt"
	"time"

	"github.com/climate-dashboard-api/internal/access"
	"github.com/climate-dashboard-api/internal/models"
	"github.com/climate-dashboard-api/internal/query"
	"github.com/climate-dashboard-api/internal/repository"
	"github.com/rs/zerolog"
)

// Dashboard list sizes
const (
	adminRecentAlerts     = 10
	analystRecentAnomaly  = 20
	viewerActiveAlerts    = 5
	viewerTemperatureDays = 30
)

// AdminDashboard is the administrator landing page
type AdminDashboard struct {
	UserStats         *models.UserStats           `json:"user_stats"`
	DataSourceStats   *models.SourceStats         `json:"data_source_stats"`
	RecentAlerts      []*models.Alert             `json:"recent_alerts"`
	LatestMetrics     *models.SystemMetricsSample `json:"latest_metrics"`
	DataIngestionRate int                         `json:"data_ingestion_rate"`
}

// AnalystDashboard is the analyst landing page
type AnalystDashboard struct {
	DataSummary        *models.ClimateSummary     `json:"data_summary"`
	RecentAnomalies    []*models.ClimateDataPoint `json:"recent_anomalies"`
	ActiveModels       []*models.MLModel          `json:"active_models"`
	SourceDistribution []models.SourceTypeCount   `json:"source_distribution"`
}

// ViewerDashboard is the viewer landing page
type ViewerDashboard struct {
	TemperatureData *models.ChartSeries  `json:"temperature_data"`
	ActiveAlerts    []*models.Alert      `json:"active_alerts"`
	DataSources     []*models.DataSource `json:"data_sources"`
}

// dashboardService is the concrete implementation of DashboardService
type dashboardService struct {
	repos   *repository.Repositories
	climate *climateService
	metrics *metricsService
	alerts  *alertService
	catalog *modelService
	now     func() time.Time
	log     zerolog.Logger
}

// newDashboardService creates a new DashboardService
func newDashboardService(repos *repository.Repositories, climateSvc *climateService, metricsSvc *metricsService,
	alertSvc *alertService, modelSvc *modelService, clock func() time.Time, log zerolog.Logger) *dashboardService {
	return &dashboardService{
		repos:   repos,
		climate: climateSvc,
		metrics: metricsSvc,
		alerts:  alertSvc,
		catalog: modelSvc,
		now:     clock,
		log:     log.With().Str("service", "dashboard").Logger(),
	}
}

// Admin assembles the administrator dashboard
func (s *dashboardService) Admin(ctx context.Context, actor *models.Account) (*AdminDashboard, error) {
	if err := access.RequireCapability(actor, models.RoleAdministrator); err != nil {
		return nil, err
	}

	userStats, err := s.repos.Account.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load account stats: %w", err)
	}
	sourceStats, err := s.repos.DataSource.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load data source stats: %w", err)
	}
	alerts, err := s.alerts.recent(ctx, actor.Role, adminRecentAlerts)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent alerts: %w", err)
	}
	latest, err := s.metrics.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest metrics: %w", err)
	}
	ingested, err := s.repos.Climate.CountCreatedSince(ctx, s.now().Add(-ingestRateWindow))
	if err != nil {
		return nil, fmt.Errorf("failed to count ingested readings: %w", err)
	}

	return &AdminDashboard{
		UserStats:         userStats,
		DataSourceStats:   sourceStats,
		RecentAlerts:      alerts,
		LatestMetrics:     latest,
		DataIngestionRate: ingested,
	}, nil
}

// Analyst assembles the analyst dashboard
func (s *dashboardService) Analyst(ctx context.Context, actor *models.Account) (*AnalystDashboard, error) {
	if err := access.RequireCapability(actor, models.RoleAnalyst); err != nil {
		return nil, err
	}

	summary, err := s.repos.Climate.Summary(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize climate data: %w", err)
	}
	anomalies, err := s.repos.Climate.List(ctx,
		query.NewFilter(query.Eq("cd.is_anomaly", true)), query.First(analystRecentAnomaly))
	if err != nil {
		return nil, fmt.Errorf("failed to list anomalies: %w", err)
	}
	active, err := s.catalog.active(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active models: %w", err)
	}
	distribution, err := s.repos.DataSource.TypeDistribution(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load source distribution: %w", err)
	}

	return &AnalystDashboard{
		DataSummary:        summary,
		RecentAnomalies:    anomalies,
		ActiveModels:       active,
		SourceDistribution: distribution,
	}, nil
}

// Viewer assembles the viewer dashboard. Alerts are limited to the
// severities actor's role may see.
func (s *dashboardService) Viewer(ctx context.Context, actor *models.Account) (*ViewerDashboard, error) {
	if err := access.RequireCapability(actor, models.RoleViewer); err != nil {
		return nil, err
	}

	temperature, err := s.climate.series(ctx, string(models.DataTypeTemperature), viewerTemperatureDays)
	if err != nil {
		return nil, err
	}
	alerts, err := s.alerts.recent(ctx, actor.Role, viewerActiveAlerts)
	if err != nil {
		return nil, fmt.Errorf("failed to list active alerts: %w", err)
	}

	f := query.NewFilter(query.Eq("is_active", true))
	n, err := s.repos.DataSource.Count(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to count data sources: %w", err)
	}
	sources, err := s.repos.DataSource.List(ctx, f, query.First(n))
	if err != nil {
		return nil, fmt.Errorf("failed to list data sources: %w", err)
	}

	return &ViewerDashboard{
		TemperatureData: temperature,
		ActiveAlerts:    alerts,
		DataSources:     sources,
	}, nil
}
