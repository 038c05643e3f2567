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

var statusOrder = map[models.TicketStatus]int{
	models.TicketStatusOpen:       0,
	models.TicketStatusInProgress: 1,
	models.TicketStatusResolved:   2,
	models.TicketStatusClosed:     3,
}

// ticketService is the concrete implementation of TicketService
type ticketService struct {
	repos     *repository.Repositories
	validator *validation.Validator
	audit     *auditor
	now       func() time.Time
	log       zerolog.Logger
}

// newTicketService creates a new TicketService
func newTicketService(repos *repository.Repositories, validator *validation.Validator, audit *auditor,
	clock func() time.Time, log zerolog.Logger) *ticketService {
	return &ticketService{
		repos:     repos,
		validator: validator,
		audit:     audit,
		now:       clock,
		log:       log.With().Str("service", "ticket").Logger(),
	}
}

// List returns one page of tickets. Non-administrators only see tickets
// they created.
func (s *ticketService) List(ctx context.Context, actor *models.Account, p query.Params) (*TicketListing, error) {
	if err := access.RequireCapability(actor, models.RoleViewer); err != nil {
		return nil, err
	}

	scope := access.ScopeTicketsForRole(actor)
	f, err := query.TicketsView.Build(p, scope.Conditions("created_by")...)
	if err != nil {
		return nil, err
	}
	total, err := s.repos.Ticket.Count(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to count tickets: %w", err)
	}
	w := query.TicketsView.Window(p, total)
	tickets, err := s.repos.Ticket.List(ctx, f, w)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	counts, err := s.repos.Ticket.StatusCounts(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to count ticket statuses: %w", err)
	}

	return &TicketListing{
		Tickets:      query.NewPage(tickets, w),
		StatusCounts: counts,
	}, nil
}

// Get returns a ticket actor may see
func (s *ticketService) Get(ctx context.Context, actor *models.Account, id string) (*models.SupportTicket, error) {
	if err := access.RequireCapability(actor, models.RoleViewer); err != nil {
		return nil, err
	}
	return s.load(ctx, s.repos, actor, id)
}

// load returns the ticket when actor is an administrator, its creator or its
// assignee. Anything else is reported as not found.
func (s *ticketService) load(ctx context.Context, repos *repository.Repositories, actor *models.Account, id string) (*models.SupportTicket, error) {
	ticket, err := repos.Ticket.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load ticket: %w", err)
	}
	if ticket == nil {
		return nil, apperrors.NotFound("ticket")
	}
	if access.ScopeTicketsForRole(actor).Allows(ticket.CreatedBy) || isAssignee(ticket, actor) {
		return ticket, nil
	}
	return nil, apperrors.NotFound("ticket")
}

func isAssignee(t *models.SupportTicket, actor *models.Account) bool {
	return t.AssignedTo != nil && actor != nil && *t.AssignedTo == actor.ID
}

// Create opens a ticket on behalf of actor
func (s *ticketService) Create(ctx context.Context, actor *models.Account, req *models.TicketRequest) (*models.SupportTicket, error) {
	if err := access.RequireCapability(actor, models.RoleViewer); err != nil {
		return nil, err
	}
	priority := models.TicketPriority(req.Priority)
	if priority == "" {
		priority = models.PriorityMedium
	}

	id := uuid.New().String()
	entry := s.audit.entry(actor, models.AuditActionTicketCreate, "ticket", id)
	entry.NewValue = string(priority)

	if err := s.validator.ValidateTicket(req).Err(); err != nil {
		s.audit.failed(ctx, entry, err)
		return nil, err
	}

	now := s.now()
	ticket := &models.SupportTicket{
		ID:          id,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Priority:    priority,
		Status:      models.TicketStatusOpen,
		CreatedBy:   actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.repos.WithinTx(ctx, func(tx *repository.Repositories) error {
		if err := tx.Ticket.Create(ctx, ticket); err != nil {
			return err
		}
		return s.audit.record(ctx, tx, entry)
	})
	if err != nil {
		s.audit.failed(ctx, entry, err)
		return nil, err
	}

	s.audit.committed(ctx, entry)
	return ticket, nil
}

// UpdateStatus moves a ticket forward. Administrators may skip ahead to any
// later status; the creator or assignee may only advance one step.
func (s *ticketService) UpdateStatus(ctx context.Context, actor *models.Account, id, status string) (*models.SupportTicket, error) {
	if err := access.RequireCapability(actor, models.RoleViewer); err != nil {
		return nil, err
	}

	entry := s.audit.entry(actor, models.AuditActionTicketStatus, "ticket", id)
	entry.NewValue = status

	next := models.TicketStatus(status)
	if !models.ValidTicketStatuses[next] {
		err := apperrors.Validationf("status", "invalid value %q, must be one of: open, in_progress, resolved, closed", status)
		s.audit.failed(ctx, entry, err)
		return nil, err
	}

	var ticket *models.SupportTicket
	err := s.repos.WithinTx(ctx, func(tx *repository.Repositories) error {
		var err error
		ticket, err = s.load(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		entry.OldValue = string(ticket.Status)

		if err := checkTransition(actor, ticket.Status, next); err != nil {
			return err
		}

		now := s.now()
		ticket.Status = next
		ticket.UpdatedAt = now
		if statusOrder[next] >= statusOrder[models.TicketStatusResolved] && ticket.ResolvedAt == nil {
			ticket.ResolvedAt = &now
		}
		if err := tx.Ticket.UpdateStatus(ctx, ticket); err != nil {
			return err
		}
		return s.audit.record(ctx, tx, entry)
	})
	if err != nil {
		s.audit.failed(ctx, entry, err)
		return nil, err
	}

	s.audit.committed(ctx, entry)
	return ticket, nil
}

func checkTransition(actor *models.Account, from, to models.TicketStatus) error {
	if statusOrder[to] <= statusOrder[from] {
		return apperrors.Conflict("status", fmt.Sprintf("cannot move ticket from %s to %s", from, to))
	}
	if access.HasAdminAccess(actor) {
		return nil
	}
	if step, ok := from.NextStatus(); !ok || step != to {
		return apperrors.Conflict("status", fmt.Sprintf("cannot move ticket from %s to %s", from, to))
	}
	return nil
}

// Assign hands a ticket to an active account
func (s *ticketService) Assign(ctx context.Context, actor *models.Account, id, assigneeID string) (*models.SupportTicket, error) {
	if err := access.RequireCapability(actor, models.RoleAdministrator); err != nil {
		return nil, err
	}

	entry := s.audit.entry(actor, models.AuditActionTicketAssign, "ticket", id)
	entry.NewValue = assigneeID

	var ticket *models.SupportTicket
	err := s.repos.WithinTx(ctx, func(tx *repository.Repositories) error {
		var err error
		ticket, err = tx.Ticket.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load ticket: %w", err)
		}
		if ticket == nil {
			return apperrors.NotFound("ticket")
		}
		if ticket.AssignedTo != nil {
			entry.OldValue = *ticket.AssignedTo
		}

		assignee, err := tx.Account.GetByID(ctx, assigneeID)
		if err != nil {
			return fmt.Errorf("failed to load assignee: %w", err)
		}
		if assignee == nil || !assignee.IsActive {
			return apperrors.Validation("assignedTo", "assignee must be an active account")
		}

		now := s.now()
		if err := tx.Ticket.Assign(ctx, id, assignee.ID, now); err != nil {
			return err
		}
		ticket.AssignedTo = &assignee.ID
		ticket.UpdatedAt = now
		return s.audit.record(ctx, tx, entry)
	})
	if err != nil {
		s.audit.failed(ctx, entry, err)
		return nil, err
	}

	s.audit.committed(ctx, entry)
	return ticket, nil
}
