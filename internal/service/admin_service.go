package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/climate-dashboard-api/internal/access"
	"github.com/climate-dashboard-api/internal/apperrors"
	"github.com/climate-dashboard-api/internal/models"
	"github.com/climate-dashboard-api/internal/query"
	"github.com/climate-dashboard-api/internal/repository"
	"github.com/rs/zerolog"
)

// adminService is the concrete implementation of AdminService
type adminService struct {
	repos *repository.Repositories
	audit *auditor
	now   func() time.Time
	log   zerolog.Logger
}

// newAdminService creates a new AdminService
func newAdminService(repos *repository.Repositories, audit *auditor, clock func() time.Time, log zerolog.Logger) *adminService {
	return &adminService{
		repos: repos,
		audit: audit,
		now:   clock,
		log:   log.With().Str("service", "admin").Logger(),
	}
}

// ListAccounts returns one page of accounts with role statistics
func (s *adminService) ListAccounts(ctx context.Context, actor *models.Account, p query.Params) (*AccountListing, error) {
	if err := access.RequireCapability(actor, models.RoleAdministrator); err != nil {
		return nil, err
	}

	f, err := query.AccountsView.Build(p)
	if err != nil {
		return nil, err
	}
	total, err := s.repos.Account.Count(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to count accounts: %w", err)
	}
	w := query.AccountsView.Window(p, total)
	accounts, err := s.repos.Account.List(ctx, f, w)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	stats, err := s.repos.Account.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load account stats: %w", err)
	}

	return &AccountListing{
		Accounts: query.NewPage(accounts, w),
		Stats:    stats,
	}, nil
}

// GetAccount returns a single account
func (s *adminService) GetAccount(ctx context.Context, actor *models.Account, id string) (*models.Account, error) {
	if err := access.RequireCapability(actor, models.RoleAdministrator); err != nil {
		return nil, err
	}

	account, err := s.repos.Account.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if account == nil {
		return nil, apperrors.NotFound("user")
	}
	return account, nil
}

// ChangeRole sets target's role. The attempt is audited whether or not it
// succeeds; the role update and its audit entry commit together.
func (s *adminService) ChangeRole(ctx context.Context, actor *models.Account, targetID, newRole string) (*RoleChange, error) {
	if err := access.RequireCapability(actor, models.RoleAdministrator); err != nil {
		return nil, err
	}

	entry := s.audit.entry(actor, models.AuditActionRoleChange, "account", targetID)
	entry.NewValue = newRole

	role, err := models.ParseRole(newRole)
	if err != nil {
		err = apperrors.Validation("newRole", err.Error())
		s.audit.failed(ctx, entry, err)
		return nil, &RoleChangeError{NewRole: newRole, Err: err}
	}

	var change *RoleChange
	err = s.repos.WithinTx(ctx, func(tx *repository.Repositories) error {
		target, err := tx.Account.GetByID(ctx, targetID)
		if err != nil {
			return fmt.Errorf("failed to load account: %w", err)
		}
		if target != nil {
			entry.OldValue = target.Role.String()
		}
		if err := access.CheckRoleChange(actor, target, role); err != nil {
			return err
		}

		if err := tx.Account.UpdateRole(ctx, target.ID, role); err != nil {
			return err
		}
		if err := s.audit.record(ctx, tx, entry); err != nil {
			return fmt.Errorf("failed to write audit entry: %w", err)
		}

		old := target.Role
		target.Role = role
		change = &RoleChange{Account: target, OldRole: old, NewRole: role}
		return nil
	})
	if err != nil {
		s.audit.failed(ctx, entry, err)
		return nil, &RoleChangeError{OldRole: entry.OldValue, NewRole: newRole, Err: err}
	}

	s.audit.committed(ctx, entry)
	return change, nil
}

// ToggleStatus activates or deactivates target. Deactivation revokes every
// session the account holds.
func (s *adminService) ToggleStatus(ctx context.Context, actor *models.Account, targetID string) (*models.Account, error) {
	if err := access.RequireCapability(actor, models.RoleAdministrator); err != nil {
		return nil, err
	}

	entry := s.audit.entry(actor, models.AuditActionStatusToggle, "account", targetID)

	var updated *models.Account
	err := s.repos.WithinTx(ctx, func(tx *repository.Repositories) error {
		target, err := tx.Account.GetByID(ctx, targetID)
		if err != nil {
			return fmt.Errorf("failed to load account: %w", err)
		}
		if target != nil {
			entry.OldValue = strconv.FormatBool(target.IsActive)
			entry.NewValue = strconv.FormatBool(!target.IsActive)
		}
		if err := access.CheckStatusToggle(actor, target); err != nil {
			return err
		}

		target.IsActive = !target.IsActive
		if err := tx.Account.SetActive(ctx, target.ID, target.IsActive); err != nil {
			return err
		}
		if !target.IsActive {
			if err := tx.Account.SetActiveSession(ctx, target.ID, false); err != nil {
				return err
			}
			target.IsActiveSession = false
		}
		if err := s.audit.record(ctx, tx, entry); err != nil {
			return fmt.Errorf("failed to write audit entry: %w", err)
		}

		updated = target
		return nil
	})
	if err != nil {
		s.audit.failed(ctx, entry, err)
		return nil, err
	}

	if !updated.IsActive {
		if err := s.repos.Session.DeleteAccountSessions(ctx, updated.ID); err != nil {
			s.log.Error().Err(err).Str("account_id", updated.ID).Msg("Failed to revoke sessions of deactivated account")
		}
	}

	s.audit.committed(ctx, entry)
	return updated, nil
}

// ListAudit returns one page of the audit log
func (s *adminService) ListAudit(ctx context.Context, actor *models.Account, p query.Params) (*query.Page[*models.AuditEntry], error) {
	if err := access.RequireCapability(actor, models.RoleAdministrator); err != nil {
		return nil, err
	}

	f, err := query.AuditView.Build(p)
	if err != nil {
		return nil, err
	}
	total, err := s.repos.Audit.Count(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to count audit entries: %w", err)
	}
	w := query.AuditView.Window(p, total)
	entries, err := s.repos.Audit.List(ctx, f, w)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return query.NewPage(entries, w), nil
}
