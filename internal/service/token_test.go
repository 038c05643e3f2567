package service

import (
	"testing"
	"time"

	"github.com/climate-dashboard-api/internal/config"
	"github.com/climate-dashboard-api/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestTokenExpiresWithSession(t *testing.T) {
	tokens := newTokenService([]byte("test-secret-that-is-at-least-32-bytes"))
	now := time.Now().UTC().Truncate(time.Second)

	session := &models.Session{
		ID:        "session-1",
		AccountID: "account-1",
		CreatedAt: now,
		ExpiresAt: now.Add(90 * time.Minute),
	}
	raw, err := tokens.Issue(session, models.RoleAnalyst)
	require.NoError(t, err)

	claims, err := tokens.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, session.ExpiresAt, claims.ExpiresAt.Time.UTC())
	assert.Equal(t, "session-1", claims.ID)
	assert.Equal(t, "account-1", claims.Subject)
	assert.Equal(t, "analyst", claims.Role)

	session.ExpiresAt = now.Add(-time.Minute)
	raw, err = tokens.Issue(session, models.RoleAnalyst)
	require.NoError(t, err)
	_, err = tokens.Parse(raw)
	assert.Error(t, err)
}

func TestPasswordMatches_UnknownAccountStillHashes(t *testing.T) {
	cfg := &config.AuthConfig{BcryptCost: bcrypt.MinCost, LockoutWindow: time.Minute}
	s := newAuthService(nil, nil, nil, cfg, nil, time.Now, zerolog.Nop())

	require.NotEmpty(t, s.dummyHash)
	cost, err := bcrypt.Cost(s.dummyHash)
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)

	assert.False(t, s.passwordMatches(nil, ""))
	assert.False(t, s.passwordMatches(nil, "s3cure-passw0rd"))

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cure-passw0rd"), bcrypt.MinCost)
	require.NoError(t, err)
	account := &models.Account{PasswordHash: string(hash)}
	assert.True(t, s.passwordMatches(account, "s3cure-passw0rd"))
	assert.False(t, s.passwordMatches(account, "wrong"))
}
