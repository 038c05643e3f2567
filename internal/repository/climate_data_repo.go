package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/climate-dashboard-api/internal/models"
	"github.com/climate-dashboard-api/internal/query"
	"github.com/jmoiron/sqlx"
)

const climateSelect = `
	SELECT cd.id, cd.data_source_id, ds.name AS data_source_name, cd.data_type, cd.value, cd.unit,
		cd.timestamp, cd.quality_score, cd.is_anomaly, cd.processed, cd.created_at
	FROM climate_data cd
	JOIN data_sources ds ON ds.id = cd.data_source_id`

const climateFrom = "climate_data cd"

// climateDataRepo is the concrete implementation of ClimateDataRepository
type climateDataRepo struct {
	db sqlx.ExtContext
}

// NewClimateDataRepo creates a new climate data repository
func NewClimateDataRepo(db sqlx.ExtContext) ClimateDataRepository {
	return &climateDataRepo{db: db}
}

// Create inserts a new reading
func (r *climateDataRepo) Create(ctx context.Context, p *models.ClimateDataPoint) error {
	query := `
		INSERT INTO climate_data (id, data_source_id, data_type, value, unit, timestamp,
			quality_score, is_anomaly, processed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.DataSourceID, p.DataType, p.Value, p.Unit, p.Timestamp,
		p.QualityScore, p.IsAnomaly, p.Processed, p.CreatedAt,
	)
	return translate(err)
}

// GetByID retrieves a reading by ID
func (r *climateDataRepo) GetByID(ctx context.Context, id string) (*models.ClimateDataPoint, error) {
	if !validID(id) {
		return nil, nil
	}
	var p models.ClimateDataPoint
	err := sqlx.GetContext(ctx, r.db, &p, climateSelect+" WHERE cd.id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// MarkProcessed sets the processed flag, the only mutable field of a reading
func (r *climateDataRepo) MarkProcessed(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE climate_data SET processed = TRUE WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireAffected(res, "climate data")
}

// List returns one page of filtered readings, newest first
func (r *climateDataRepo) List(ctx context.Context, f *query.Filter, w query.Window) ([]*models.ClimateDataPoint, error) {
	points := []*models.ClimateDataPoint{}
	err := selectPage(ctx, r.db, &points, climateSelect, f, query.ClimateDataView.OrderBy, w)
	return points, err
}

// Count returns the number of filtered readings
func (r *climateDataRepo) Count(ctx context.Context, f *query.Filter) (int, error) {
	return count(ctx, r.db, climateFrom, f)
}

// Summary aggregates the whole filtered population
func (r *climateDataRepo) Summary(ctx context.Context, f *query.Filter) (*models.ClimateSummary, error) {
	where, args := f.Where()

	var totals struct {
		TotalRecords   int      `db:"total_records"`
		AnomalyCount   int      `db:"anomaly_count"`
		AvgValue       *float64 `db:"avg_value"`
		MinValue       *float64 `db:"min_value"`
		MaxValue       *float64 `db:"max_value"`
		AvgTemperature *float64 `db:"avg_temperature"`
		MaxCO2         *float64 `db:"max_co2"`
	}
	totalsQuery := `
		SELECT
			COUNT(*) AS total_records,
			COUNT(*) FILTER (WHERE cd.is_anomaly) AS anomaly_count,
			AVG(cd.value) AS avg_value,
			MIN(cd.value) AS min_value,
			MAX(cd.value) AS max_value,
			AVG(cd.value) FILTER (WHERE cd.data_type = 'temperature') AS avg_temperature,
			MAX(cd.value) FILTER (WHERE cd.data_type = 'co2_level') AS max_co2
		FROM ` + climateFrom + " " + where
	if err := sqlx.GetContext(ctx, r.db, &totals, r.db.Rebind(totalsQuery), args...); err != nil {
		return nil, err
	}

	byType := []models.DataTypeStat{}
	byTypeQuery := `
		SELECT cd.data_type, COUNT(*) AS count, AVG(cd.value) AS avg, MIN(cd.value) AS min, MAX(cd.value) AS max
		FROM ` + climateFrom + " " + where + `
		GROUP BY cd.data_type
		ORDER BY cd.data_type`
	if err := sqlx.SelectContext(ctx, r.db, &byType, r.db.Rebind(byTypeQuery), args...); err != nil {
		return nil, err
	}

	return &models.ClimateSummary{
		TotalRecords:   totals.TotalRecords,
		AnomalyCount:   totals.AnomalyCount,
		AvgValue:       totals.AvgValue,
		MinValue:       totals.MinValue,
		MaxValue:       totals.MaxValue,
		AvgTemperature: totals.AvgTemperature,
		MaxCO2:         totals.MaxCO2,
		ByType:         byType,
	}, nil
}

// Series returns readings of one type in [from, to], oldest first
func (r *climateDataRepo) Series(ctx context.Context, dataType models.DataType, from, to time.Time) ([]*models.ClimateDataPoint, error) {
	points := []*models.ClimateDataPoint{}
	err := sqlx.SelectContext(ctx, r.db, &points,
		climateSelect+" WHERE cd.data_type = $1 AND cd.timestamp BETWEEN $2 AND $3 ORDER BY cd.timestamp ASC",
		dataType, from, to)
	return points, err
}

// CountCreatedSince counts readings ingested after since
func (r *climateDataRepo) CountCreatedSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.db, &n, "SELECT COUNT(*) FROM climate_data WHERE created_at >= $1", since)
	return n, err
}
