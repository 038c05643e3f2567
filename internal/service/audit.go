package service

import (
	"context"
	"time"

	"github.com/climate-dashboard-api/internal/models"
	"github.com/climate-dashboard-api/internal/observability/metrics"
	"github.com/climate-dashboard-api/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxTargetIDLength matches audit_log.target_id
const maxTargetIDLength = 64

// auditor writes audit entries and forwards them once they are durable
type auditor struct {
	repos    *repository.Repositories
	notifier AuditNotifier
	metrics  *metrics.Metrics
	now      func() time.Time
	log      zerolog.Logger
}

func newAuditor(repos *repository.Repositories, notifier AuditNotifier, m *metrics.Metrics, clock func() time.Time, log zerolog.Logger) *auditor {
	return &auditor{
		repos:    repos,
		notifier: notifier,
		metrics:  m,
		now:      clock,
		log:      log.With().Str("component", "audit").Logger(),
	}
}

// entry builds an entry for actor acting on a target
func (a *auditor) entry(actor *models.Account, action, targetType, targetID string) *models.AuditEntry {
	e := &models.AuditEntry{
		ID:         uuid.New().String(),
		Action:     action,
		TargetType: targetType,
		TargetID:   clip(targetID, maxTargetIDLength),
		CreatedAt:  a.now(),
	}
	if actor != nil {
		e.ActorID = actor.ID
	}
	return e
}

// clip shortens s to at most n characters
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// record stores a successful entry inside the caller's transaction. Callers
// pass it to committed once the transaction succeeds.
func (a *auditor) record(ctx context.Context, tx *repository.Repositories, e *models.AuditEntry) error {
	e.Success = true
	return tx.Audit.Create(ctx, e)
}

// committed publishes entries after their transaction committed
func (a *auditor) committed(ctx context.Context, entries ...*models.AuditEntry) {
	for _, e := range entries {
		a.log.Info().
			Str("actor_id", e.ActorID).
			Str("action", e.Action).
			Str("target_type", e.TargetType).
			Str("target_id", e.TargetID).
			Str("old_value", e.OldValue).
			Str("new_value", e.NewValue).
			Msg("Administrative action succeeded")
		a.metrics.RecordAudit(e.Action, true)
		a.publish(ctx, e)
	}
}

// failed stores a rejected attempt outside any transaction
func (a *auditor) failed(ctx context.Context, e *models.AuditEntry, cause error) {
	e.Success = false
	e.Message = cause.Error()

	a.log.Warn().
		Str("actor_id", e.ActorID).
		Str("action", e.Action).
		Str("target_id", e.TargetID).
		Str("old_value", e.OldValue).
		Str("new_value", e.NewValue).
		Err(cause).
		Msg("Administrative action rejected")
	a.metrics.RecordAudit(e.Action, false)

	if err := a.repos.Audit.Create(ctx, e); err != nil {
		a.log.Error().Err(err).Str("action", e.Action).Msg("Failed to store audit entry")
		return
	}
	a.publish(ctx, e)
}

func (a *auditor) publish(ctx context.Context, e *models.AuditEntry) {
	if a.notifier == nil {
		return
	}
	if err := a.notifier.Publish(ctx, e); err != nil {
		a.log.Error().Err(err).Str("action", e.Action).Msg("Failed to publish audit event")
	}
}
