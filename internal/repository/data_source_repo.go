package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/climate-dashboard-api/internal/models"
	"github.com/climate-dashboard-api/internal/query"
	"github.com/jmoiron/sqlx"
)

const dataSourceColumns = `id, name, source_type, latitude, longitude, altitude, is_active,
	installation_date, last_maintenance, created_at`

// dataSourceRepo is the concrete implementation of DataSourceRepository
type dataSourceRepo struct {
	db sqlx.ExtContext
}

// NewDataSourceRepo creates a new data source repository
func NewDataSourceRepo(db sqlx.ExtContext) DataSourceRepository {
	return &dataSourceRepo{db: db}
}

// Create inserts a new data source
func (r *dataSourceRepo) Create(ctx context.Context, s *models.DataSource) error {
	query := `
		INSERT INTO data_sources (id, name, source_type, latitude, longitude, altitude, is_active,
			installation_date, last_maintenance, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.Name, s.SourceType, s.Latitude, s.Longitude, s.Altitude, s.IsActive,
		s.InstallationDate, s.LastMaintenance, s.CreatedAt,
	)
	return translate(err)
}

// GetByID retrieves a data source by ID
func (r *dataSourceRepo) GetByID(ctx context.Context, id string) (*models.DataSource, error) {
	if !validID(id) {
		return nil, nil
	}
	var s models.DataSource
	err := sqlx.GetContext(ctx, r.db, &s, "SELECT "+dataSourceColumns+" FROM data_sources WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SetActive flips the activity flag
func (r *dataSourceRepo) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx, "UPDATE data_sources SET is_active = $2 WHERE id = $1", id, active)
	if err != nil {
		return err
	}
	return requireAffected(res, "data source")
}

// Delete removes a data source. Its readings and alerts cascade.
func (r *dataSourceRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM data_sources WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireAffected(res, "data source")
}

// List returns one page of filtered data sources
func (r *dataSourceRepo) List(ctx context.Context, f *query.Filter, w query.Window) ([]*models.DataSource, error) {
	sources := []*models.DataSource{}
	err := selectPage(ctx, r.db, &sources, "SELECT "+dataSourceColumns+" FROM data_sources", f, query.SourcesView.OrderBy, w)
	return sources, err
}

// Count returns the number of filtered data sources
func (r *dataSourceRepo) Count(ctx context.Context, f *query.Filter) (int, error) {
	return count(ctx, r.db, "data_sources", f)
}

// Stats returns source counts for the admin dashboard
func (r *dataSourceRepo) Stats(ctx context.Context) (*models.SourceStats, error) {
	query := `
		SELECT
			COUNT(*) AS total_sources,
			COUNT(*) FILTER (WHERE is_active) AS active_sources,
			COUNT(*) FILTER (WHERE source_type = 'satellite') AS satellite_sources,
			COUNT(*) FILTER (WHERE source_type = 'weather_station') AS weather_stations
		FROM data_sources
	`
	var row struct {
		TotalSources    int `db:"total_sources"`
		ActiveSources   int `db:"active_sources"`
		SatelliteCount  int `db:"satellite_sources"`
		WeatherStations int `db:"weather_stations"`
	}
	if err := sqlx.GetContext(ctx, r.db, &row, query); err != nil {
		return nil, err
	}
	stats := models.SourceStats(row)
	return &stats, nil
}

// TypeDistribution counts sources per type
func (r *dataSourceRepo) TypeDistribution(ctx context.Context) ([]models.SourceTypeCount, error) {
	counts := []models.SourceTypeCount{}
	err := sqlx.SelectContext(ctx, r.db, &counts,
		"SELECT source_type, COUNT(*) AS count FROM data_sources GROUP BY source_type ORDER BY source_type")
	return counts, err
}
