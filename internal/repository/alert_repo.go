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

const alertColumns = `id, alert_type, severity, title, description, data_source_id, threshold_value,
	actual_value, is_active, acknowledged_by, acknowledged_at, created_at, resolved_at`

// alertRepo is the concrete implementation of AlertRepository
type alertRepo struct {
	db sqlx.ExtContext
}

// NewAlertRepo creates a new alert repository
func NewAlertRepo(db sqlx.ExtContext) AlertRepository {
	return &alertRepo{db: db}
}

// Create inserts a new alert
func (r *alertRepo) Create(ctx context.Context, a *models.Alert) error {
	query := `
		INSERT INTO alerts (id, alert_type, severity, title, description, data_source_id,
			threshold_value, actual_value, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.AlertType, a.Severity, a.Title, a.Description, a.DataSourceID,
		a.ThresholdValue, a.ActualValue, a.IsActive, a.CreatedAt,
	)
	return translate(err)
}

// GetByID retrieves an alert by ID
func (r *alertRepo) GetByID(ctx context.Context, id string) (*models.Alert, error) {
	if !validID(id) {
		return nil, nil
	}
	var a models.Alert
	err := sqlx.GetContext(ctx, r.db, &a, "SELECT "+alertColumns+" FROM alerts WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Acknowledge sets acknowledged_by and acknowledged_at together, overwriting
// any earlier acknowledgment
func (r *alertRepo) Acknowledge(ctx context.Context, id, accountID string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE alerts SET acknowledged_by = $2, acknowledged_at = $3 WHERE id = $1", id, accountID, at)
	if err != nil {
		return err
	}
	return requireAffected(res, "alert")
}

// Resolve deactivates an alert
func (r *alertRepo) Resolve(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE alerts SET is_active = FALSE, resolved_at = $2 WHERE id = $1", id, at)
	if err != nil {
		return err
	}
	return requireAffected(res, "alert")
}

// List returns one page of filtered alerts
func (r *alertRepo) List(ctx context.Context, f *query.Filter, w query.Window) ([]*models.Alert, error) {
	alerts := []*models.Alert{}
	err := selectPage(ctx, r.db, &alerts, "SELECT "+alertColumns+" FROM alerts", f, query.AlertsView.OrderBy, w)
	return alerts, err
}

// Count returns the number of filtered alerts
func (r *alertRepo) Count(ctx context.Context, f *query.Filter) (int, error) {
	return count(ctx, r.db, "alerts", f)
}

// SeverityCounts groups the filtered alerts by severity
func (r *alertRepo) SeverityCounts(ctx context.Context, f *query.Filter) (map[models.Severity]int, error) {
	where, args := f.Where()
	var rows []struct {
		Severity models.Severity `db:"severity"`
		Count    int             `db:"count"`
	}
	err := sqlx.SelectContext(ctx, r.db, &rows,
		r.db.Rebind("SELECT severity, COUNT(*) AS count FROM alerts "+where+" GROUP BY severity"), args...)
	if err != nil {
		return nil, err
	}

	counts := make(map[models.Severity]int, len(rows))
	for _, row := range rows {
		counts[row.Severity] = row.Count
	}
	return counts, nil
}
