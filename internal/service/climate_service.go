package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/climate-dashboard-api/internal/access"
	"github.com/climate-dashboard-api/internal/apperrors"
	"github.com/climate-dashboard-api/internal/models"
	"github.com/climate-dashboard-api/internal/observability/metrics"
	"github.com/climate-dashboard-api/internal/query"
	"github.com/climate-dashboard-api/internal/repository"
	"github.com/climate-dashboard-api/internal/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Chart window bounds in days
const (
	DefaultChartDays = 30
	MaxChartDays     = 365
)

const (
	defaultQualityScore = 1.0
	homeRecentData      = 5
)

// climateService is the concrete implementation of ClimateService
type climateService struct {
	repos     *repository.Repositories
	validator *validation.Validator
	audit     *auditor
	metrics   *metrics.Metrics
	now       func() time.Time
	log       zerolog.Logger
}

// newClimateService creates a new ClimateService
func newClimateService(repos *repository.Repositories, validator *validation.Validator, audit *auditor,
	m *metrics.Metrics, clock func() time.Time, log zerolog.Logger) *climateService {
	return &climateService{
		repos:     repos,
		validator: validator,
		audit:     audit,
		metrics:   m,
		now:       clock,
		log:       log.With().Str("service", "climate").Logger(),
	}
}

// ListSources returns one page of data sources with inventory statistics
func (s *climateService) ListSources(ctx context.Context, actor *models.Account, p query.Params) (*SourceListing, error) {
	if err := access.RequireCapability(actor, models.RoleAnalyst); err != nil {
		return nil, err
	}

	f, err := query.SourcesView.Build(p)
	if err != nil {
		return nil, err
	}
	total, err := s.repos.DataSource.Count(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to count data sources: %w", err)
	}
	w := query.SourcesView.Window(p, total)
	sources, err := s.repos.DataSource.List(ctx, f, w)
	if err != nil {
		return nil, fmt.Errorf("failed to list data sources: %w", err)
	}
	stats, err := s.repos.DataSource.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load data source stats: %w", err)
	}

	return &SourceListing{
		Sources:     query.NewPage(sources, w),
		Stats:       stats,
		SourceTypes: models.ValidSourceTypes,
	}, nil
}

// CreateSource registers a new active data source
func (s *climateService) CreateSource(ctx context.Context, actor *models.Account, req *models.DataSourceRequest) (*models.DataSource, error) {
	if err := access.RequireCapability(actor, models.RoleAdministrator); err != nil {
		return nil, err
	}
	id := uuid.New().String()
	entry := s.audit.entry(actor, models.AuditActionSourceCreate, "data_source", id)
	entry.NewValue = strings.TrimSpace(req.Name)

	if err := s.validator.ValidateDataSource(req).Err(); err != nil {
		s.audit.failed(ctx, entry, err)
		return nil, err
	}

	installed, _, _ := query.ParseDate(req.InstallationDate)
	source := &models.DataSource{
		ID:               id,
		Name:             strings.TrimSpace(req.Name),
		SourceType:       models.SourceType(req.SourceType),
		Latitude:         *req.Latitude,
		Longitude:        *req.Longitude,
		Altitude:         req.Altitude,
		IsActive:         true,
		InstallationDate: installed,
		CreatedAt:        s.now(),
	}

	err := s.repos.WithinTx(ctx, func(tx *repository.Repositories) error {
		if err := tx.DataSource.Create(ctx, source); err != nil {
			return err
		}
		return s.audit.record(ctx, tx, entry)
	})
	if err != nil {
		s.audit.failed(ctx, entry, err)
		return nil, err
	}

	s.audit.committed(ctx, entry)
	return source, nil
}

// SetSourceActive enables or disables a data source
func (s *climateService) SetSourceActive(ctx context.Context, actor *models.Account, id string, active bool) (*models.DataSource, error) {
	if err := access.RequireCapability(actor, models.RoleAdministrator); err != nil {
		return nil, err
	}

	entry := s.audit.entry(actor, models.AuditActionSourceActive, "data_source", id)
	entry.NewValue = strconv.FormatBool(active)

	var source *models.DataSource
	err := s.repos.WithinTx(ctx, func(tx *repository.Repositories) error {
		var err error
		source, err = tx.DataSource.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load data source: %w", err)
		}
		if source == nil {
			return apperrors.NotFound("data source")
		}
		entry.OldValue = strconv.FormatBool(source.IsActive)

		if err := tx.DataSource.SetActive(ctx, id, active); err != nil {
			return err
		}
		source.IsActive = active
		return s.audit.record(ctx, tx, entry)
	})
	if err != nil {
		s.audit.failed(ctx, entry, err)
		return nil, err
	}

	s.audit.committed(ctx, entry)
	return source, nil
}

// DeleteSource removes a data source together with its readings and alerts
func (s *climateService) DeleteSource(ctx context.Context, actor *models.Account, id string) error {
	if err := access.RequireCapability(actor, models.RoleAdministrator); err != nil {
		return err
	}

	entry := s.audit.entry(actor, models.AuditActionSourceDelete, "data_source", id)

	err := s.repos.WithinTx(ctx, func(tx *repository.Repositories) error {
		source, err := tx.DataSource.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load data source: %w", err)
		}
		if source == nil {
			return apperrors.NotFound("data source")
		}
		entry.OldValue = source.Name

		if err := tx.DataSource.Delete(ctx, id); err != nil {
			return err
		}
		return s.audit.record(ctx, tx, entry)
	})
	if err != nil {
		s.audit.failed(ctx, entry, err)
		return err
	}

	s.audit.committed(ctx, entry)
	return nil
}

// ListData returns one page of readings and a summary over every reading
// that matches the filters
func (s *climateService) ListData(ctx context.Context, actor *models.Account, p query.Params) (*ClimateListing, error) {
	if err := access.RequireCapability(actor, models.RoleAnalyst); err != nil {
		return nil, err
	}

	f, err := query.ClimateDataView.Build(p)
	if err != nil {
		return nil, err
	}
	summary, err := s.repos.Climate.Summary(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize climate data: %w", err)
	}
	w := query.ClimateDataView.Window(p, summary.TotalRecords)
	points, err := s.repos.Climate.List(ctx, f, w)
	if err != nil {
		return nil, fmt.Errorf("failed to list climate data: %w", err)
	}

	return &ClimateListing{
		Data:      query.NewPage(points, w),
		Summary:   summary,
		DataTypes: models.ValidDataTypes,
	}, nil
}

// RecordDataPoint stores a reading for an existing data source
func (s *climateService) RecordDataPoint(ctx context.Context, actor *models.Account, req *models.DataPointRequest) (*models.ClimateDataPoint, error) {
	if err := access.RequireCapability(actor, models.RoleAnalyst); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateDataPoint(req).Err(); err != nil {
		return nil, err
	}

	source, err := s.repos.DataSource.GetByID(ctx, req.DataSourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load data source: %w", err)
	}
	if source == nil {
		return nil, apperrors.Validation("data_source_id", "referenced record does not exist")
	}

	ts, _, _ := query.ParseDate(req.Timestamp)
	quality := defaultQualityScore
	if req.QualityScore != nil {
		quality = *req.QualityScore
	}

	point := &models.ClimateDataPoint{
		ID:             uuid.New().String(),
		DataSourceID:   source.ID,
		DataSourceName: source.Name,
		DataType:       models.DataType(req.DataType),
		Value:          *req.Value,
		Unit:           strings.TrimSpace(req.Unit),
		Timestamp:      ts,
		QualityScore:   quality,
		IsAnomaly:      req.IsAnomaly,
		CreatedAt:      s.now(),
	}
	if err := s.repos.Climate.Create(ctx, point); err != nil {
		return nil, err
	}

	s.metrics.RecordDataPoint(point.DataType)
	s.log.Debug().
		Str("data_source_id", point.DataSourceID).
		Str("data_type", string(point.DataType)).
		Bool("is_anomaly", point.IsAnomaly).
		Msg("Climate reading recorded")
	return point, nil
}

// MarkProcessed flags a reading as processed
func (s *climateService) MarkProcessed(ctx context.Context, actor *models.Account, id string) (*models.ClimateDataPoint, error) {
	if err := access.RequireCapability(actor, models.RoleAnalyst); err != nil {
		return nil, err
	}

	point, err := s.repos.Climate.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load climate reading: %w", err)
	}
	if point == nil {
		return nil, apperrors.NotFound("climate data")
	}
	if err := s.repos.Climate.MarkProcessed(ctx, id); err != nil {
		return nil, err
	}
	point.Processed = true
	return point, nil
}

// Chart returns readings of one data type over the last days, oldest first
func (s *climateService) Chart(ctx context.Context, actor *models.Account, dataType string, days int) (*models.ChartSeries, error) {
	if err := access.RequireCapability(actor, models.RoleViewer); err != nil {
		return nil, err
	}
	return s.series(ctx, dataType, days)
}

func (s *climateService) series(ctx context.Context, dataType string, days int) (*models.ChartSeries, error) {
	if dataType == "" {
		dataType = string(models.DataTypeTemperature)
	}
	dt := models.DataType(dataType)
	if _, ok := models.ValidDataTypes[dt]; !ok {
		return nil, apperrors.Validationf("data_type", "invalid value %q", dataType)
	}
	if days < 1 {
		days = DefaultChartDays
	}
	if days > MaxChartDays {
		days = MaxChartDays
	}

	to := s.now()
	from := to.AddDate(0, 0, -days)
	points, err := s.repos.Climate.Series(ctx, dt, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load chart series: %w", err)
	}

	chart := &models.ChartSeries{
		Timestamps: make([]string, len(points)),
		Values:     make([]float64, len(points)),
		DataType:   dt,
	}
	for i, p := range points {
		chart.Timestamps[i] = p.Timestamp.Format(time.RFC3339)
		chart.Values[i] = p.Value
	}
	if len(points) > 0 {
		chart.Unit = points[0].Unit
	}
	return chart, nil
}

// HomeStats returns the public landing page counters
func (s *climateService) HomeStats(ctx context.Context) (*HomeStats, error) {
	activeSources, err := s.repos.DataSource.Count(ctx, query.NewFilter(query.Eq("is_active", true)))
	if err != nil {
		return nil, fmt.Errorf("failed to count data sources: %w", err)
	}
	totalPoints, err := s.repos.Climate.Count(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count climate data: %w", err)
	}
	activeAlerts, err := s.repos.Alert.Count(ctx, query.NewFilter(query.Eq("is_active", true)))
	if err != nil {
		return nil, fmt.Errorf("failed to count alerts: %w", err)
	}
	recent, err := s.repos.Climate.List(ctx, nil, query.First(homeRecentData))
	if err != nil {
		return nil, fmt.Errorf("failed to list recent climate data: %w", err)
	}

	return &HomeStats{
		ActiveSources:   activeSources,
		TotalDataPoints: totalPoints,
		ActiveAlerts:    activeAlerts,
		RecentData:      recent,
	}, nil
}
