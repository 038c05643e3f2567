package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/climate-dashboard-api/internal/models"
	"github.com/redis/go-redis/v9"
)

// sessionRepo stores sessions in redis as JSON under session:<id>, with a
// per-account set indexing the live session ids
type sessionRepo struct {
	client     *redis.Client
	expiration time.Duration
}

// NewSessionRepo creates a new redis-backed session repository
func NewSessionRepo(client *redis.Client, expiration time.Duration) SessionRepository {
	return &sessionRepo{client: client, expiration: expiration}
}

// Create stores a session and indexes it under its account
func (r *sessionRepo) Create(ctx context.Context, s *models.Session) error {
	if s.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	if s.AccountID == "" {
		return errors.New("account ID cannot be empty")
	}

	if s.ExpiresAt.IsZero() {
		s.ExpiresAt = time.Now().Add(r.expiration)
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	accountKey := accountSessionsKey(s.AccountID)

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, sessionKey(s.ID), data, r.expiration)
	pipe.SAdd(ctx, accountKey, s.ID)
	pipe.Expire(ctx, accountKey, r.expiration)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Get returns a live session, or nil when it is missing or expired
func (r *sessionRepo) Get(ctx context.Context, id string) (*models.Session, error) {
	if id == "" {
		return nil, nil
	}

	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var s models.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if time.Now().After(s.ExpiresAt) {
		_ = r.Delete(ctx, id)
		return nil, nil
	}
	return &s, nil
}

// Delete removes one session. Deleting a missing session is not an error.
func (r *sessionRepo) Delete(ctx context.Context, id string) error {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}

	var s models.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return r.client.Del(ctx, sessionKey(id)).Err()
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, sessionKey(id))
	pipe.SRem(ctx, accountSessionsKey(s.AccountID), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteAccountSessions revokes every session of an account
func (r *sessionRepo) DeleteAccountSessions(ctx context.Context, accountID string) error {
	accountKey := accountSessionsKey(accountID)

	ids, err := r.client.SMembers(ctx, accountKey).Result()
	if err != nil {
		return fmt.Errorf("failed to list account sessions: %w", err)
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, sessionKey(id))
	}
	keys = append(keys, accountKey)

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete account sessions: %w", err)
	}
	return nil
}

func sessionKey(id string) string {
	return "session:" + id
}

func accountSessionsKey(accountID string) string {
	return "account_sessions:" + accountID
}
