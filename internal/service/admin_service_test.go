package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/climate-dashboard-api/internal/access"
	"github.com/climate-dashboard-api/internal/apperrors"
	"github.com/climate-dashboard-api/internal/models"
	"github.com/climate-dashboard-api/internal/query"
	"github.com/climate-dashboard-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangeRole_PromotesAndAudits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.seedAccount(t, "admin", models.RoleAdministrator)
	bob := f.seedAccount(t, "bob", models.RoleViewer)

	change, err := f.svc.Admin.ChangeRole(ctx, admin, bob.ID, "analyst")
	require.NoError(t, err)
	assert.Equal(t, models.RoleViewer, change.OldRole)
	assert.Equal(t, models.RoleAnalyst, change.NewRole)

	stored, _ := f.repos.Account.GetByID(ctx, bob.ID)
	assert.True(t, access.HasAnalystAccess(stored))
	assert.False(t, access.HasAdminAccess(stored))

	entries := f.audit().Find(models.AuditActionRoleChange)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, admin.ID, e.ActorID)
	assert.Equal(t, bob.ID, e.TargetID)
	assert.Equal(t, "viewer", e.OldValue)
	assert.Equal(t, "analyst", e.NewValue)
	assert.True(t, e.Success)

	assert.Equal(t, 1, f.notifier.Len(), "committed entries are published")
}

func TestChangeRole_SelfDemotionRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.seedAccount(t, "admin", models.RoleAdministrator)

	for _, role := range []string{"analyst", "viewer"} {
		_, err := f.svc.Admin.ChangeRole(ctx, admin, admin.ID, role)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrSelfDemotion)
		assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

		var rejected *service.RoleChangeError
		require.ErrorAs(t, err, &rejected)
		assert.Equal(t, "admin", rejected.OldRole)
		assert.Equal(t, role, rejected.NewRole)

		stored, _ := f.repos.Account.GetByID(ctx, admin.ID)
		assert.Equal(t, models.RoleAdministrator, stored.Role, "role is unchanged")
	}

	entries := f.audit().Find(models.AuditActionRoleChange)
	require.Len(t, entries, 2, "failed attempts are audited")
	for _, e := range entries {
		assert.False(t, e.Success)
		assert.Equal(t, "admin", e.OldValue)
	}
}

func TestChangeRole_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.seedAccount(t, "admin", models.RoleAdministrator)
	analyst := f.seedAccount(t, "carol", models.RoleAnalyst)
	bob := f.seedAccount(t, "bob", models.RoleViewer)

	_, err := f.svc.Admin.ChangeRole(ctx, analyst, bob.ID, "admin")
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err), "analysts cannot change roles")

	_, err = f.svc.Admin.ChangeRole(ctx, admin, bob.ID, "superuser")
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, err = f.svc.Admin.ChangeRole(ctx, admin, "00000000-0000-0000-0000-000000000000", "analyst")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	stored, _ := f.repos.Account.GetByID(ctx, bob.ID)
	assert.Equal(t, models.RoleViewer, stored.Role)
}

func TestToggleStatus_SelfDeactivationRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.seedAccount(t, "admin", models.RoleAdministrator)

	_, err := f.svc.Admin.ToggleStatus(ctx, admin, admin.ID)
	assert.ErrorIs(t, err, apperrors.ErrSelfDeactivation)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

	stored, _ := f.repos.Account.GetByID(ctx, admin.ID)
	assert.True(t, stored.IsActive)
}

func TestToggleStatus_DeactivationRevokesSessions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.seedAccount(t, "admin", models.RoleAdministrator)
	bob := f.seedAccount(t, "bob", models.RoleViewer)

	login, err := f.svc.Auth.Login(ctx, &models.LoginRequest{Username: "bob", Password: testPassword}, service.ClientMeta{})
	require.NoError(t, err)

	updated, err := f.svc.Admin.ToggleStatus(ctx, admin, bob.ID)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Equal(t, 0, f.sessions().CountFor(bob.ID))

	_, err = f.svc.Auth.Authenticate(ctx, login.Token)
	assert.Error(t, err)

	updated, err = f.svc.Admin.ToggleStatus(ctx, admin, bob.ID)
	require.NoError(t, err)
	assert.True(t, updated.IsActive)

	entries := f.audit().Find(models.AuditActionStatusToggle)
	require.Len(t, entries, 2)
	assert.Equal(t, "true", entries[0].OldValue)
	assert.Equal(t, "false", entries[0].NewValue)
}

func TestChangeRole_UnknownTargetIsAuditedWithClippedID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.seedAccount(t, "admin", models.RoleAdministrator)

	longID := strings.Repeat("x", 200)
	_, err := f.svc.Admin.ChangeRole(ctx, admin, longID, "analyst")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	_, err = f.svc.Admin.ToggleStatus(ctx, admin, longID)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	require.Len(t, f.audit().Entries, 2)
	for _, e := range f.audit().Entries {
		assert.False(t, e.Success)
		assert.Len(t, e.TargetID, 64)
	}
}

func TestListAccounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.seedAccount(t, "admin", models.RoleAdministrator)
	f.seedAccount(t, "bob", models.RoleViewer)
	f.seedAccount(t, "carol", models.RoleAnalyst)

	listing, err := f.svc.Admin.ListAccounts(ctx, admin, query.Params{"roleFilter": "viewer"})
	require.NoError(t, err)
	require.Len(t, listing.Accounts.Items, 1)
	assert.Equal(t, "bob", listing.Accounts.Items[0].Username)
	assert.Equal(t, 3, listing.Stats.TotalUsers, "stats cover every account")

	listing, err = f.svc.Admin.ListAccounts(ctx, admin, nil)
	require.NoError(t, err)
	names := []string{}
	for _, a := range listing.Accounts.Items {
		names = append(names, a.Username)
	}
	assert.Equal(t, []string{"admin", "bob", "carol"}, names)

	_, err = f.svc.Admin.ListAccounts(ctx, admin, query.Params{"roleFilter": "root"})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestGetAccount_UnknownIsNotFound(t *testing.T) {
	f := newFixture(t)
	admin := f.seedAccount(t, "admin", models.RoleAdministrator)

	_, err := f.svc.Admin.GetAccount(context.Background(), admin, "missing")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestListAudit_FiltersByAction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.seedAccount(t, "admin", models.RoleAdministrator)
	bob := f.seedAccount(t, "bob", models.RoleViewer)

	_, err := f.svc.Admin.ChangeRole(ctx, admin, bob.ID, "analyst")
	require.NoError(t, err)
	_, err = f.svc.Admin.ToggleStatus(ctx, admin, bob.ID)
	require.NoError(t, err)

	page, err := f.svc.Admin.ListAudit(ctx, admin, query.Params{"action": models.AuditActionRoleChange})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, models.AuditActionRoleChange, page.Items[0].Action)

	_, err = f.svc.Admin.ListAudit(ctx, bob, nil)
	assert.Error(t, err)
}
