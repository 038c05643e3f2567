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

const ticketColumns = `id, title, description, priority, status, created_by, assigned_to,
	created_at, updated_at, resolved_at`

// ticketRepo is the concrete implementation of TicketRepository
type ticketRepo struct {
	db sqlx.ExtContext
}

// NewTicketRepo creates a new support ticket repository
func NewTicketRepo(db sqlx.ExtContext) TicketRepository {
	return &ticketRepo{db: db}
}

// Create inserts a new ticket
func (r *ticketRepo) Create(ctx context.Context, t *models.SupportTicket) error {
	query := `
		INSERT INTO support_tickets (id, title, description, priority, status, created_by,
			assigned_to, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.Title, t.Description, t.Priority, t.Status, t.CreatedBy,
		t.AssignedTo, t.CreatedAt, t.UpdatedAt,
	)
	return translate(err)
}

// GetByID retrieves a ticket by ID
func (r *ticketRepo) GetByID(ctx context.Context, id string) (*models.SupportTicket, error) {
	if !validID(id) {
		return nil, nil
	}
	var t models.SupportTicket
	err := sqlx.GetContext(ctx, r.db, &t, "SELECT "+ticketColumns+" FROM support_tickets WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateStatus saves status, updated_at and resolved_at
func (r *ticketRepo) UpdateStatus(ctx context.Context, t *models.SupportTicket) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE support_tickets SET status = $2, updated_at = $3, resolved_at = $4 WHERE id = $1",
		t.ID, t.Status, t.UpdatedAt, t.ResolvedAt)
	if err != nil {
		return err
	}
	return requireAffected(res, "ticket")
}

// Assign sets the assignee
func (r *ticketRepo) Assign(ctx context.Context, id, accountID string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE support_tickets SET assigned_to = $2, updated_at = $3 WHERE id = $1", id, accountID, at)
	if err != nil {
		return translate(err)
	}
	return requireAffected(res, "ticket")
}

// List returns one page of filtered tickets
func (r *ticketRepo) List(ctx context.Context, f *query.Filter, w query.Window) ([]*models.SupportTicket, error) {
	tickets := []*models.SupportTicket{}
	err := selectPage(ctx, r.db, &tickets, "SELECT "+ticketColumns+" FROM support_tickets", f, query.TicketsView.OrderBy, w)
	return tickets, err
}

// Count returns the number of filtered tickets
func (r *ticketRepo) Count(ctx context.Context, f *query.Filter) (int, error) {
	return count(ctx, r.db, "support_tickets", f)
}

// StatusCounts groups the filtered tickets by status
func (r *ticketRepo) StatusCounts(ctx context.Context, f *query.Filter) (map[models.TicketStatus]int, error) {
	where, args := f.Where()
	var rows []struct {
		Status models.TicketStatus `db:"status"`
		Count  int                 `db:"count"`
	}
	err := sqlx.SelectContext(ctx, r.db, &rows,
		r.db.Rebind("SELECT status, COUNT(*) AS count FROM support_tickets "+where+" GROUP BY status"), args...)
	if err != nil {
		return nil, err
	}

	counts := make(map[models.TicketStatus]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
