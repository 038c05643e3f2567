package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/climate-dashboard-api/internal/apperrors"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResult struct {
	rows int64
	err  error
}

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.rows, r.err }

func TestTranslate_UniqueViolation(t *testing.T) {
	err := translate(&pq.Error{Code: uniqueViolation, Constraint: "accounts_username_key"})

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindConflict, appErr.Kind)
	assert.Equal(t, "username", appErr.Field)
	assert.Contains(t, appErr.Message, "username already exists")
}

func TestTranslate_UnknownUniqueConstraint(t *testing.T) {
	err := translate(&pq.Error{Code: uniqueViolation, Constraint: "something_else_key"})

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindConflict, appErr.Kind)
	assert.Empty(t, appErr.Field)
}

func TestTranslate_ForeignKeyViolation(t *testing.T) {
	wrapped := fmt.Errorf("insert failed: %w", &pq.Error{Code: foreignKeyViolation, Constraint: "climate_data_data_source_id_fkey"})

	appErr, ok := apperrors.As(translate(wrapped))
	require.True(t, ok)
	assert.Equal(t, apperrors.KindValidation, appErr.Kind)
	assert.Equal(t, "data_source_id", appErr.Field)
}

func TestTranslate_PassesOtherErrorsThrough(t *testing.T) {
	plain := errors.New("connection reset")
	assert.Same(t, plain, translate(plain))

	other := &pq.Error{Code: "40001"}
	assert.Equal(t, error(other), translate(other))
	assert.Nil(t, translate(nil))
}

func TestRequireAffected(t *testing.T) {
	assert.NoError(t, requireAffected(fakeResult{rows: 1}, "alert"))

	err := requireAffected(fakeResult{rows: 0}, "alert")
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	driverErr := errors.New("rows affected unsupported")
	assert.ErrorIs(t, requireAffected(fakeResult{err: driverErr}, "alert"), driverErr)
}

func TestValidID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"550e8400-e29b-41d4-a716-446655440000", true},
		{"", false},
		{"42", false},
		{"not-a-uuid", false},
		{"550e8400-e29b-41d4-a716-44665544000g", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, validID(tt.id), "validID(%q)", tt.id)
	}
}

func TestNullString(t *testing.T) {
	assert.False(t, nullString("").Valid)

	ns := nullString("Lisbon")
	assert.True(t, ns.Valid)
	assert.Equal(t, "Lisbon", ns.String)
}

func TestWithinTx_WithoutDatabaseRunsDirectly(t *testing.T) {
	repos := &Repositories{}

	var got *Repositories
	err := repos.WithinTx(context.Background(), func(tx *Repositories) error {
		got = tx
		return nil
	})
	require.NoError(t, err)
	assert.Same(t, repos, got)

	boom := errors.New("boom")
	err = repos.WithinTx(context.Background(), func(*Repositories) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestSessionKeys(t *testing.T) {
	assert.Equal(t, "session:abc", sessionKey("abc"))
	assert.Equal(t, "account_sessions:u1", accountSessionsKey("u1"))
}
