package service

import (
	"context"
	"fmt"
	"strconv"
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

// modelService is the concrete implementation of ModelService
type modelService struct {
	repos     *repository.Repositories
	validator *validation.Validator
	audit     *auditor
	now       func() time.Time
	log       zerolog.Logger
}

// newModelService creates a new ModelService
func newModelService(repos *repository.Repositories, validator *validation.Validator, audit *auditor,
	clock func() time.Time, log zerolog.Logger) *modelService {
	return &modelService{
		repos:     repos,
		validator: validator,
		audit:     audit,
		now:       clock,
		log:       log.With().Str("service", "model").Logger(),
	}
}

// List returns one page of registered models with registry counts
func (s *modelService) List(ctx context.Context, actor *models.Account, p query.Params) (*ModelListing, error) {
	if err := access.RequireCapability(actor, models.RoleViewer); err != nil {
		return nil, err
	}

	f, err := query.ModelsView.Build(p)
	if err != nil {
		return nil, err
	}
	filtered, err := s.repos.Model.Count(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to count models: %w", err)
	}
	w := query.ModelsView.Window(p, filtered)
	items, err := s.repos.Model.List(ctx, f, w)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	total, err := s.repos.Model.Count(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count models: %w", err)
	}
	active, err := s.repos.Model.Count(ctx, query.NewFilter(query.Eq("is_active", true)))
	if err != nil {
		return nil, fmt.Errorf("failed to count active models: %w", err)
	}

	return &ModelListing{
		Models:       query.NewPage(items, w),
		TotalModels:  total,
		ActiveModels: active,
	}, nil
}

// active returns every active model, newest first
func (s *modelService) active(ctx context.Context) ([]*models.MLModel, error) {
	f := query.NewFilter(query.Eq("is_active", true))
	n, err := s.repos.Model.Count(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.repos.Model.List(ctx, f, query.First(n))
}

// Register adds an inactive model to the registry
func (s *modelService) Register(ctx context.Context, actor *models.Account, req *models.MLModelRequest) (*models.MLModel, error) {
	if err := access.RequireCapability(actor, models.RoleAnalyst); err != nil {
		return nil, err
	}
	id := uuid.New().String()
	entry := s.audit.entry(actor, models.AuditActionModelRegister, "ml_model", id)
	entry.NewValue = strings.TrimSpace(req.Name) + " " + strings.TrimSpace(req.Version)

	if err := s.validator.ValidateModel(req).Err(); err != nil {
		s.audit.failed(ctx, entry, err)
		return nil, err
	}

	start, _, _ := query.ParseDate(req.TrainingPeriodStart)
	end, _, _ := query.ParseDate(req.TrainingPeriodEnd)
	now := s.now()
	model := &models.MLModel{
		ID:                  id,
		Name:                strings.TrimSpace(req.Name),
		ModelType:           models.ModelType(req.ModelType),
		Version:             strings.TrimSpace(req.Version),
		Description:         strings.TrimSpace(req.Description),
		AccuracyScore:       req.AccuracyScore,
		TrainingPeriodStart: start,
		TrainingPeriodEnd:   end,
		CreatedBy:           actor.ID,
		CreatedAt:           now,
		LastUpdated:         now,
	}

	err := s.repos.WithinTx(ctx, func(tx *repository.Repositories) error {
		if err := tx.Model.Create(ctx, model); err != nil {
			return err
		}
		return s.audit.record(ctx, tx, entry)
	})
	if err != nil {
		s.audit.failed(ctx, entry, err)
		return nil, err
	}

	s.audit.committed(ctx, entry)
	return model, nil
}

// SetActive enables or disables a model
func (s *modelService) SetActive(ctx context.Context, actor *models.Account, id string, active bool) (*models.MLModel, error) {
	if err := access.RequireCapability(actor, models.RoleAdministrator); err != nil {
		return nil, err
	}

	entry := s.audit.entry(actor, models.AuditActionModelActive, "ml_model", id)
	entry.NewValue = strconv.FormatBool(active)

	var model *models.MLModel
	err := s.repos.WithinTx(ctx, func(tx *repository.Repositories) error {
		var err error
		model, err = tx.Model.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load model: %w", err)
		}
		if model == nil {
			return apperrors.NotFound("model")
		}
		entry.OldValue = strconv.FormatBool(model.IsActive)

		now := s.now()
		if err := tx.Model.SetActive(ctx, id, active, now); err != nil {
			return err
		}
		model.IsActive = active
		model.LastUpdated = now
		return s.audit.record(ctx, tx, entry)
	})
	if err != nil {
		s.audit.failed(ctx, entry, err)
		return nil, err
	}

	s.audit.committed(ctx, entry)
	return model, nil
}
