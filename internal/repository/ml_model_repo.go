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

const modelColumns = `id, name, model_type, version, description, accuracy_score, is_active,
	training_period_start, training_period_end, created_by, created_at, last_updated`

// mlModelRepo is the concrete implementation of MLModelRepository
type mlModelRepo struct {
	db sqlx.ExtContext
}

// NewMLModelRepo creates a new model registry repository
func NewMLModelRepo(db sqlx.ExtContext) MLModelRepository {
	return &mlModelRepo{db: db}
}

// Create inserts a new registry entry
func (r *mlModelRepo) Create(ctx context.Context, m *models.MLModel) error {
	query := `
		INSERT INTO ml_models (id, name, model_type, version, description, accuracy_score, is_active,
			training_period_start, training_period_end, created_by, created_at, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.Name, m.ModelType, m.Version, m.Description, m.AccuracyScore, m.IsActive,
		m.TrainingPeriodStart, m.TrainingPeriodEnd, m.CreatedBy, m.CreatedAt, m.LastUpdated,
	)
	return translate(err)
}

// GetByID retrieves a registry entry by ID
func (r *mlModelRepo) GetByID(ctx context.Context, id string) (*models.MLModel, error) {
	if !validID(id) {
		return nil, nil
	}
	var m models.MLModel
	err := sqlx.GetContext(ctx, r.db, &m, "SELECT "+modelColumns+" FROM ml_models WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// SetActive flips the activity flag
func (r *mlModelRepo) SetActive(ctx context.Context, id string, active bool, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE ml_models SET is_active = $2, last_updated = $3 WHERE id = $1", id, active, at)
	if err != nil {
		return err
	}
	return requireAffected(res, "model")
}

// List returns one page of filtered models
func (r *mlModelRepo) List(ctx context.Context, f *query.Filter, w query.Window) ([]*models.MLModel, error) {
	list := []*models.MLModel{}
	err := selectPage(ctx, r.db, &list, "SELECT "+modelColumns+" FROM ml_models", f, query.ModelsView.OrderBy, w)
	return list, err
}

// Count returns the number of filtered models
func (r *mlModelRepo) Count(ctx context.Context, f *query.Filter) (int, error) {
	return count(ctx, r.db, "ml_models", f)
}
