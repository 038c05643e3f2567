package service_test

import (
	"context"
	"testing"

	"github.com/climate-dashboard-api/internal/apperrors"
	"github.com/climate-dashboard-api/internal/models"
	"github.com/climate-dashboard-api/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) openTicket(t *testing.T, actor *models.Account, title string) *models.SupportTicket {
	t.Helper()

	ticket, err := f.svc.Ticket.Create(context.Background(), actor, &models.TicketRequest{
		Title:       title,
		Description: "details for " + title,
	})
	require.NoError(t, err)
	return ticket
}

func TestCreateTicket_Defaults(t *testing.T) {
	f := newFixture(t)
	bob := f.seedAccount(t, "bob", models.RoleViewer)

	ticket := f.openTicket(t, bob, "Chart is empty")
	assert.Equal(t, models.TicketStatusOpen, ticket.Status)
	assert.Equal(t, models.PriorityMedium, ticket.Priority)
	assert.Equal(t, bob.ID, ticket.CreatedBy)
	assert.Nil(t, ticket.AssignedTo)

	_, err := f.svc.Ticket.Create(context.Background(), bob, &models.TicketRequest{Title: "x", Description: "y", Priority: "whenever"})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	entries := f.audit().Find(models.AuditActionTicketCreate)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Success)
	assert.False(t, entries[1].Success, "rejected tickets are audited")
}

func TestListTickets_OwnerScope(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.seedAccount(t, "admin", models.RoleAdministrator)
	bob := f.seedAccount(t, "bob", models.RoleViewer)
	carol := f.seedAccount(t, "carol", models.RoleAnalyst)

	f.openTicket(t, bob, "bob 1")
	f.openTicket(t, bob, "bob 2")
	f.openTicket(t, carol, "carol 1")

	listing, err := f.svc.Ticket.List(ctx, bob, nil)
	require.NoError(t, err)
	assert.Len(t, listing.Tickets.Items, 2)
	assert.Equal(t, 2, listing.StatusCounts[models.TicketStatusOpen])

	listing, err = f.svc.Ticket.List(ctx, carol, nil)
	require.NoError(t, err)
	require.Len(t, listing.Tickets.Items, 1)
	assert.Equal(t, "carol 1", listing.Tickets.Items[0].Title)

	listing, err = f.svc.Ticket.List(ctx, admin, query.Params{"status": "open"})
	require.NoError(t, err)
	assert.Len(t, listing.Tickets.Items, 3)
}

func TestGetTicket_OthersAreNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.seedAccount(t, "admin", models.RoleAdministrator)
	bob := f.seedAccount(t, "bob", models.RoleViewer)
	carol := f.seedAccount(t, "carol", models.RoleAnalyst)

	ticket := f.openTicket(t, bob, "bob 1")

	_, err := f.svc.Ticket.Get(ctx, carol, ticket.ID)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	got, err := f.svc.Ticket.Get(ctx, admin, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, got.ID)

	_, err = f.svc.Ticket.Assign(ctx, admin, ticket.ID, carol.ID)
	require.NoError(t, err)

	got, err = f.svc.Ticket.Get(ctx, carol, ticket.ID)
	require.NoError(t, err, "the assignee may see the ticket")
	require.NotNil(t, got.AssignedTo)
	assert.Equal(t, carol.ID, *got.AssignedTo)
}

func TestUpdateTicketStatus_Transitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.seedAccount(t, "admin", models.RoleAdministrator)
	bob := f.seedAccount(t, "bob", models.RoleViewer)
	carol := f.seedAccount(t, "carol", models.RoleAnalyst)

	ticket := f.openTicket(t, bob, "bob 1")

	_, err := f.svc.Ticket.UpdateStatus(ctx, bob, ticket.ID, "resolved")
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err), "owners advance one step at a time")

	updated, err := f.svc.Ticket.UpdateStatus(ctx, bob, ticket.ID, "in_progress")
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusInProgress, updated.Status)
	assert.Nil(t, updated.ResolvedAt)

	_, err = f.svc.Ticket.UpdateStatus(ctx, bob, ticket.ID, "open")
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err), "tickets never move backwards")

	_, err = f.svc.Ticket.UpdateStatus(ctx, carol, ticket.ID, "resolved")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	_, err = f.svc.Ticket.UpdateStatus(ctx, bob, ticket.ID, "archived")
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	updated, err = f.svc.Ticket.UpdateStatus(ctx, admin, ticket.ID, "closed")
	require.NoError(t, err, "administrators may skip ahead")
	assert.Equal(t, models.TicketStatusClosed, updated.Status)
	require.NotNil(t, updated.ResolvedAt)

	entries := f.audit().Find(models.AuditActionTicketStatus)
	var ok, failed int
	for _, e := range entries {
		if e.Success {
			ok++
		} else {
			failed++
		}
	}
	assert.Equal(t, 2, ok)
	assert.Equal(t, 4, failed, "every rejected transition is audited")
}

func TestAssignTicket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.seedAccount(t, "admin", models.RoleAdministrator)
	bob := f.seedAccount(t, "bob", models.RoleViewer)
	carol := f.seedAccount(t, "carol", models.RoleAnalyst)

	ticket := f.openTicket(t, bob, "bob 1")

	_, err := f.svc.Ticket.Assign(ctx, carol, ticket.ID, carol.ID)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	_, err = f.svc.Admin.ToggleStatus(ctx, admin, carol.ID)
	require.NoError(t, err)
	_, err = f.svc.Ticket.Assign(ctx, admin, ticket.ID, carol.ID)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err), "inactive accounts cannot be assigned")

	_, err = f.svc.Ticket.Assign(ctx, admin, "missing", admin.ID)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	assigned, err := f.svc.Ticket.Assign(ctx, admin, ticket.ID, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, *assigned.AssignedTo)
}
