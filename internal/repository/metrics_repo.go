package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/climate-dashboard-api/internal/models"
	"github.com/jmoiron/sqlx"
)

const metricsColumns = `id, cpu_usage, memory_usage, disk_usage, network_io, active_users,
	data_processing_rate, timestamp`

// metricsRepo is the concrete implementation of MetricsRepository
type metricsRepo struct {
	db sqlx.ExtContext
}

// NewMetricsRepo creates a new system metrics repository
func NewMetricsRepo(db sqlx.ExtContext) MetricsRepository {
	return &metricsRepo{db: db}
}

// Create appends a sample
func (r *metricsRepo) Create(ctx context.Context, s *models.SystemMetricsSample) error {
	query := `
		INSERT INTO system_metrics (id, cpu_usage, memory_usage, disk_usage, network_io,
			active_users, data_processing_rate, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.CPUUsage, s.MemoryUsage, s.DiskUsage, s.NetworkIO,
		s.ActiveUsers, s.DataProcessingRate, s.Timestamp,
	)
	return err
}

// Latest returns the most recent sample, or nil when none exist
func (r *metricsRepo) Latest(ctx context.Context) (*models.SystemMetricsSample, error) {
	var s models.SystemMetricsSample
	err := sqlx.GetContext(ctx, r.db, &s,
		"SELECT "+metricsColumns+" FROM system_metrics ORDER BY timestamp DESC LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Range returns samples in [from, to], oldest first
func (r *metricsRepo) Range(ctx context.Context, from, to time.Time) ([]*models.SystemMetricsSample, error) {
	samples := []*models.SystemMetricsSample{}
	err := sqlx.SelectContext(ctx, r.db, &samples,
		"SELECT "+metricsColumns+" FROM system_metrics WHERE timestamp BETWEEN $1 AND $2 ORDER BY timestamp ASC",
		from, to)
	return samples, err
}
