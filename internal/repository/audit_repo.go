package repository

import (
	"context"

	"github.com/climate-dashboard-api/internal/models"
	"github.com/climate-dashboard-api/internal/query"
	"github.com/jmoiron/sqlx"
)

const auditColumns = `id, COALESCE(actor_id::text, '') AS actor_id, action, target_type, target_id,
	old_value, new_value, success, message, created_at`

// auditRepo is the concrete implementation of AuditRepository
type auditRepo struct {
	db sqlx.ExtContext
}

// NewAuditRepo creates a new audit log repository
func NewAuditRepo(db sqlx.ExtContext) AuditRepository {
	return &auditRepo{db: db}
}

// Create appends an audit entry
func (r *auditRepo) Create(ctx context.Context, e *models.AuditEntry) error {
	query := `
		INSERT INTO audit_log (id, actor_id, action, target_type, target_id, old_value, new_value,
			success, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		e.ID, nullString(e.ActorID), e.Action, e.TargetType, e.TargetID, e.OldValue, e.NewValue,
		e.Success, e.Message, e.CreatedAt,
	)
	return err
}

// List returns one page of filtered audit entries
func (r *auditRepo) List(ctx context.Context, f *query.Filter, w query.Window) ([]*models.AuditEntry, error) {
	entries := []*models.AuditEntry{}
	err := selectPage(ctx, r.db, &entries, "SELECT "+auditColumns+" FROM audit_log", f, query.AuditView.OrderBy, w)
	return entries, err
}

// Count returns the number of filtered audit entries
func (r *auditRepo) Count(ctx context.Context, f *query.Filter) (int, error) {
	return count(ctx, r.db, "audit_log", f)
}
