package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/climate-dashboard-api/internal/apperrors"
	"github.com/climate-dashboard-api/internal/query"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// constraintFields maps constraint names to the request field they guard
var constraintFields = map[string]string{
	"accounts_username_key":            "username",
	"accounts_email_key":               "email",
	"climate_data_data_source_id_fkey": "data_source_id",
	"alerts_data_source_id_fkey":       "data_source_id",
	"support_tickets_assigned_to_fkey": "assigned_to",
	"ml_models_created_by_fkey":        "created_by",
	"support_tickets_created_by_fkey":  "created_by",
	"alerts_acknowledged_by_fkey":      "acknowledged_by",
}

// translate converts constraint violations into application errors
func translate(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	field := constraintFields[pqErr.Constraint]
	switch pqErr.Code {
	case uniqueViolation:
		if field == "" {
			return apperrors.Conflict("", "record already exists")
		}
		return apperrors.Conflict(field, fmt.Sprintf("an account with this %s already exists", field))
	case foreignKeyViolation:
		return apperrors.Validation(field, "referenced record does not exist")
	}
	return err
}

// requireAffected turns an update that touched no rows into NotFound
func requireAffected(res sql.Result, resource string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NotFound(resource)
	}
	return nil
}

// selectPage runs base + filter + ordering + window
func selectPage(ctx context.Context, ext sqlx.ExtContext, dest interface{}, base string, f *query.Filter, orderBy string, w query.Window) error {
	where, args := f.Where()
	stmt := fmt.Sprintf("%s %s ORDER BY %s LIMIT ? OFFSET ?", base, where, orderBy)
	args = append(args, w.Size, w.Offset)
	return sqlx.SelectContext(ctx, ext, dest, ext.Rebind(stmt), args...)
}

// count runs SELECT COUNT(*) over base + filter
func count(ctx context.Context, ext sqlx.ExtContext, from string, f *query.Filter) (int, error) {
	where, args := f.Where()
	var n int
	err := sqlx.GetContext(ctx, ext, &n, ext.Rebind(fmt.Sprintf("SELECT COUNT(*) FROM %s %s", from, where)), args...)
	return n, err
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// validID reports whether id can name a row. Lookups by a malformed id
// find nothing instead of failing in the driver.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
