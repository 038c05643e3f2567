package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/climate-dashboard-api/internal/access"
	"github.com/climate-dashboard-api/internal/apperrors"
	"github.com/climate-dashboard-api/internal/models"
	"github.com/climate-dashboard-api/internal/query"
	"github.com/climate-dashboard-api/internal/repository"
	"github.com/climate-dashboard-api/internal/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// alertService is the concrete implementation of AlertService
type alertService struct {
	repos     *repository.Repositories
	validator *validation.Validator
	audit     *auditor
	now       func() time.Time
	log       zerolog.Logger
}

// newAlertService creates a new AlertService
func newAlertService(repos *repository.Repositories, validator *validation.Validator, audit *auditor,
	clock func() time.Time, log zerolog.Logger) *alertService {
	return &alertService{
		repos:     repos,
		validator: validator,
		audit:     audit,
		now:       clock,
		log:       log.With().Str("service", "alert").Logger(),
	}
}

// List returns one page of the alerts visible to actor's role
func (s *alertService) List(ctx context.Context, actor *models.Account, p query.Params) (*AlertListing, error) {
	if err := access.RequireCapability(actor, models.RoleViewer); err != nil {
		return nil, err
	}

	scope := access.ScopeAlertsForRole(actor.Role)
	f, err := query.AlertsView.Build(p, scope.Conditions("severity")...)
	if err != nil {
		return nil, err
	}
	total, err := s.repos.Alert.Count(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to count alerts: %w", err)
	}
	w := query.AlertsView.Window(p, total)
	alerts, err := s.repos.Alert.List(ctx, f, w)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	counts, err := s.repos.Alert.SeverityCounts(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to count alert severities: %w", err)
	}

	return &AlertListing{
		Alerts:         query.NewPage(alerts, w),
		SeverityCounts: counts,
	}, nil
}

// recent returns up to n active alerts visible to role, newest first
func (s *alertService) recent(ctx context.Context, role models.Role, n int) ([]*models.Alert, error) {
	scope := access.ScopeAlertsForRole(role)
	f := query.NewFilter(query.Eq("is_active", true)).And(scope.Conditions("severity")...)
	return s.repos.Alert.List(ctx, f, query.First(n))
}

// Raise creates an active alert
func (s *alertService) Raise(ctx context.Context, actor *models.Account, req *models.AlertRequest) (*models.Alert, error) {
	if err := access.RequireCapability(actor, models.RoleAnalyst); err != nil {
		return nil, err
	}
	id := uuid.New().String()
	entry := s.audit.entry(actor, models.AuditActionAlertRaise, "alert", id)
	entry.NewValue = req.Severity

	if err := s.validator.ValidateAlert(req).Err(); err != nil {
		s.audit.failed(ctx, entry, err)
		return nil, err
	}

	alert := &models.Alert{
		ID:             id,
		AlertType:      models.AlertType(req.AlertType),
		Severity:       models.Severity(req.Severity),
		Title:          strings.TrimSpace(req.Title),
		Description:    strings.TrimSpace(req.Description),
		DataSourceID:   req.DataSourceID,
		ThresholdValue: req.ThresholdValue,
		ActualValue:    req.ActualValue,
		IsActive:       true,
		CreatedAt:      s.now(),
	}

	err := s.repos.WithinTx(ctx, func(tx *repository.Repositories) error {
		if alert.DataSourceID != nil {
			source, err := tx.DataSource.GetByID(ctx, *alert.DataSourceID)
			if err != nil {
				return fmt.Errorf("failed to load data source: %w", err)
			}
			if source == nil {
				return apperrors.Validation("data_source_id", "referenced record does not exist")
			}
		}
		if err := tx.Alert.Create(ctx, alert); err != nil {
			return err
		}
		return s.audit.record(ctx, tx, entry)
	})
	if err != nil {
		s.audit.failed(ctx, entry, err)
		return nil, err
	}

	s.audit.committed(ctx, entry)
	return alert, nil
}

// Acknowledge records actor as the acknowledger of an alert, replacing any
// earlier acknowledgment. Alerts outside actor's severity scope are reported
// as not found.
func (s *alertService) Acknowledge(ctx context.Context, actor *models.Account, id string) (*models.Alert, error) {
	if err := access.RequireCapability(actor, models.RoleAnalyst); err != nil {
		return nil, err
	}

	entry := s.audit.entry(actor, models.AuditActionAlertAcknowledge, "alert", id)
	entry.NewValue = actor.ID

	var alert *models.Alert
	err := s.repos.WithinTx(ctx, func(tx *repository.Repositories) error {
		var err error
		alert, err = s.visible(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		if alert.AcknowledgedBy != nil {
			entry.OldValue = *alert.AcknowledgedBy
		}

		at := s.now()
		if err := tx.Alert.Acknowledge(ctx, id, actor.ID, at); err != nil {
			return err
		}
		accountID := actor.ID
		alert.AcknowledgedBy = &accountID
		alert.AcknowledgedAt = &at
		return s.audit.record(ctx, tx, entry)
	})
	if err != nil {
		s.audit.failed(ctx, entry, err)
		return nil, err
	}

	s.audit.committed(ctx, entry)
	return alert, nil
}

// Resolve deactivates an alert
func (s *alertService) Resolve(ctx context.Context, actor *models.Account, id string) (*models.Alert, error) {
	if err := access.RequireCapability(actor, models.RoleAnalyst); err != nil {
		return nil, err
	}

	entry := s.audit.entry(actor, models.AuditActionAlertResolve, "alert", id)
	entry.OldValue = "active"
	entry.NewValue = "resolved"

	var alert *models.Alert
	err := s.repos.WithinTx(ctx, func(tx *repository.Repositories) error {
		var err error
		alert, err = s.visible(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		if !alert.IsActive {
			return apperrors.Conflict("alertId", "alert is already resolved")
		}

		at := s.now()
		if err := tx.Alert.Resolve(ctx, id, at); err != nil {
			return err
		}
		alert.IsActive = false
		alert.ResolvedAt = &at
		return s.audit.record(ctx, tx, entry)
	})
	if err != nil {
		s.audit.failed(ctx, entry, err)
		return nil, err
	}

	s.audit.committed(ctx, entry)
	return alert, nil
}

// visible loads an alert and hides it unless actor's role may see it
func (s *alertService) visible(ctx context.Context, tx *repository.Repositories, actor *models.Account, id string) (*models.Alert, error) {
	alert, err := tx.Alert.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load alert: %w", err)
	}
	if alert == nil || !access.CanViewAlert(actor.Role, alert.Severity) {
		return nil, apperrors.NotFound("alert")
	}
	return alert, nil
}
