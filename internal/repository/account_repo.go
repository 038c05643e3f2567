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

const accountColumns = `id, username, email, password_hash, first_name, last_name, role,
	organization, phone, is_active, is_active_session, last_login_ip, last_login_at,
	created_at, updated_at`

// accountRepo is the concrete implementation of AccountRepository
type accountRepo struct {
	db sqlx.ExtContext
}

// NewAccountRepo creates a new account repository
func NewAccountRepo(db sqlx.ExtContext) AccountRepository {
	return &accountRepo{db: db}
}

// Create inserts a new account. Duplicate usernames or emails surface as
// conflicts naming the field.
func (r *accountRepo) Create(ctx context.Context, a *models.Account) error {
	query := `
		INSERT INTO accounts (id, username, email, password_hash, first_name, last_name, role,
			organization, phone, is_active, is_active_session, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.Username, a.Email, a.PasswordHash, a.FirstName, a.LastName, a.Role,
		a.Organization, a.Phone, a.IsActive, a.IsActiveSession, a.CreatedAt, a.UpdatedAt,
	)
	return translate(err)
}

// GetByID retrieves an account by ID
func (r *accountRepo) GetByID(ctx context.Context, id string) (*models.Account, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.getOne(ctx, "id", id)
}

// GetByUsername retrieves an account by username
func (r *accountRepo) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	return r.getOne(ctx, "username", username)
}

func (r *accountRepo) getOne(ctx context.Context, column, value string) (*models.Account, error) {
	var a models.Account
	err := sqlx.GetContext(ctx, r.db, &a, "SELECT "+accountColumns+" FROM accounts WHERE "+column+" = $1", value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// UsernameExists checks if an account with the given username exists
func (r *accountRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, r.db, &exists, "SELECT EXISTS(SELECT 1 FROM accounts WHERE username = $1)", username)
	return exists, err
}

// EmailExists checks if an account with the given email exists
func (r *accountRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, r.db, &exists, "SELECT EXISTS(SELECT 1 FROM accounts WHERE LOWER(email) = LOWER($1))", email)
	return exists, err
}

// UpdateProfile saves the self-editable fields
func (r *accountRepo) UpdateProfile(ctx context.Context, a *models.Account) error {
	query := `
		UPDATE accounts SET first_name = $2, last_name = $3, email = $4,
			organization = $5, phone = $6, updated_at = $7
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		a.ID, a.FirstName, a.LastName, a.Email, a.Organization, a.Phone, a.UpdatedAt,
	)
	if err != nil {
		return translate(err)
	}
	return requireAffected(res, "user")
}

// UpdatePassword replaces the password hash
func (r *accountRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE accounts SET password_hash = $2, updated_at = NOW() WHERE id = $1", id, passwordHash)
	if err != nil {
		return err
	}
	return requireAffected(res, "user")
}

// UpdateRole sets an account's role
func (r *accountRepo) UpdateRole(ctx context.Context, id string, role models.Role) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE accounts SET role = $2, updated_at = NOW() WHERE id = $1", id, role)
	if err != nil {
		return err
	}
	return requireAffected(res, "user")
}

// SetActive activates or deactivates an account. Deactivation also clears
// the active session flag.
func (r *accountRepo) SetActive(ctx context.Context, id string, active bool) error {
	query := `
		UPDATE accounts SET is_active = $2,
			is_active_session = CASE WHEN $2 THEN is_active_session ELSE FALSE END,
			updated_at = NOW()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, active)
	if err != nil {
		return err
	}
	return requireAffected(res, "user")
}

// RecordLogin stores the client address and time of a successful login
func (r *accountRepo) RecordLogin(ctx context.Context, id, ip string, at time.Time) error {
	query := `
		UPDATE accounts SET last_login_ip = $2, last_login_at = $3, is_active_session = TRUE
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, id, nullString(ip), at)
	return err
}

// SetActiveSession flags whether the account currently holds a session
func (r *accountRepo) SetActiveSession(ctx context.Context, id string, active bool) error {
	_, err := r.db.ExecContext(ctx, "UPDATE accounts SET is_active_session = $2 WHERE id = $1", id, active)
	return err
}

// List returns one page of filtered accounts
func (r *accountRepo) List(ctx context.Context, f *query.Filter, w query.Window) ([]*models.Account, error) {
	accounts := []*models.Account{}
	err := selectPage(ctx, r.db, &accounts, "SELECT "+accountColumns+" FROM accounts", f, query.AccountsView.OrderBy, w)
	return accounts, err
}

// Count returns the number of filtered accounts
func (r *accountRepo) Count(ctx context.Context, f *query.Filter) (int, error) {
	return count(ctx, r.db, "accounts", f)
}

// Stats returns account counts for the admin dashboard
func (r *accountRepo) Stats(ctx context.Context) (*models.UserStats, error) {
	query := `
		SELECT
			COUNT(*) AS total_users,
			COUNT(*) FILTER (WHERE is_active_session) AS active_sessions,
			COUNT(*) FILTER (WHERE role = 'admin') AS admin_users,
			COUNT(*) FILTER (WHERE role = 'analyst') AS analyst_users,
			COUNT(*) FILTER (WHERE role = 'viewer') AS viewer_users
		FROM accounts
	`
	var row struct {
		TotalUsers     int `db:"total_users"`
		ActiveSessions int `db:"active_sessions"`
		AdminUsers     int `db:"admin_users"`
		AnalystUsers   int `db:"analyst_users"`
		ViewerUsers    int `db:"viewer_users"`
	}
	if err := sqlx.GetContext(ctx, r.db, &row, query); err != nil {
		return nil, err
	}
	stats := models.UserStats(row)
	return &stats, nil
}
