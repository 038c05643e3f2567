package access

import (
	"testing"

	"github.com/climate-dashboard-api/internal/apperrors"
	"github.com/climate-dashboard-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func account(id string, role models.Role) *models.Account {
	return &models.Account{ID: id, Username: id, Role: role, IsActive: true}
}

func TestCapabilityMonotonicity(t *testing.T) {
	roles := append([]models.Role{models.RoleUnknown}, models.AllRoles...)
	for _, r := range roles {
		a := account("u", r)
		if HasAdminAccess(a) {
			assert.True(t, HasAnalystAccess(a), "role %s", r)
		}
		for _, min := range models.AllRoles {
			if RequireCapability(a, min) == nil {
				for _, lower := range models.AllRoles {
					if lower.Level() <= min.Level() {
						assert.NoError(t, RequireCapability(a, lower), "role %s min %s", r, lower)
					}
				}
			}
		}
	}
}

func TestHasAccess(t *testing.T) {
	assert.True(t, HasAdminAccess(account("a", models.RoleAdministrator)))
	assert.False(t, HasAdminAccess(account("a", models.RoleAnalyst)))
	assert.False(t, HasAdminAccess(nil))

	assert.True(t, HasAnalystAccess(account("a", models.RoleAdministrator)))
	assert.True(t, HasAnalystAccess(account("a", models.RoleAnalyst)))
	assert.False(t, HasAnalystAccess(account("a", models.RoleViewer)))
	assert.False(t, HasAnalystAccess(nil))
}

func TestRequireCapability(t *testing.T) {
	assert.True(t, apperrors.Is(RequireCapability(nil, models.RoleViewer), apperrors.KindAuthentication))

	inactive := account("x", models.RoleAdministrator)
	inactive.IsActive = false
	assert.ErrorIs(t, RequireCapability(inactive, models.RoleViewer), apperrors.ErrAccountDisabled)

	assert.ErrorIs(t, RequireCapability(account("v", models.RoleViewer), models.RoleAnalyst), apperrors.ErrForbidden)
	assert.NoError(t, RequireCapability(account("an", models.RoleAnalyst), models.RoleAnalyst))
	assert.NoError(t, RequireCapability(account("ad", models.RoleAdministrator), models.RoleAnalyst))
}

func TestScopeAlertsForRole(t *testing.T) {
	viewer := ScopeAlertsForRole(models.RoleViewer)
	assert.True(t, viewer.Allows(models.SeverityLow))
	assert.True(t, viewer.Allows(models.SeverityMedium))
	assert.False(t, viewer.Allows(models.SeverityHigh))
	assert.False(t, viewer.Allows(models.SeverityCritical))

	analyst := ScopeAlertsForRole(models.RoleAnalyst)
	assert.True(t, analyst.Allows(models.SeverityHigh))
	assert.False(t, analyst.Allows(models.SeverityCritical))

	admin := ScopeAlertsForRole(models.RoleAdministrator)
	assert.True(t, admin.Allows(models.SeverityCritical))
	assert.Nil(t, admin.Conditions("severity"))

	assert.False(t, ScopeAlertsForRole(models.RoleUnknown).Allows(models.SeverityLow))
}

func TestViewerSeverityConditionExcludesCritical(t *testing.T) {
	conds := ScopeAlertsForRole(models.RoleViewer).Conditions("severity")
	require.Len(t, conds, 1)
	assert.Equal(t, []string{"low", "medium"}, conds[0].Value)
}

func TestScopeTicketsForRole(t *testing.T) {
	admin := account("admin", models.RoleAdministrator)
	viewer := account("viewer", models.RoleViewer)

	assert.True(t, ScopeTicketsForRole(admin).Allows("anyone"))
	assert.Nil(t, ScopeTicketsForRole(admin).Conditions("created_by"))

	scope := ScopeTicketsForRole(viewer)
	assert.True(t, scope.Allows("viewer"))
	assert.False(t, scope.Allows("someone-else"))
	require.Len(t, scope.Conditions("created_by"), 1)

	assert.False(t, ScopeTicketsForRole(nil).Allows(""))
}

func TestCheckRoleChange(t *testing.T) {
	admin := account("admin", models.RoleAdministrator)
	bob := account("bob", models.RoleViewer)

	assert.NoError(t, CheckRoleChange(admin, bob, models.RoleAnalyst))
	assert.NoError(t, CheckRoleChange(admin, admin, models.RoleAdministrator))

	for _, r := range []models.Role{models.RoleAnalyst, models.RoleViewer} {
		err := CheckRoleChange(admin, admin, r)
		assert.ErrorIs(t, err, apperrors.ErrSelfDemotion)
		assert.True(t, apperrors.Is(err, apperrors.KindConflict))
	}

	assert.ErrorIs(t, CheckRoleChange(account("an", models.RoleAnalyst), bob, models.RoleAnalyst), apperrors.ErrForbidden)
	assert.True(t, apperrors.Is(CheckRoleChange(admin, bob, models.RoleUnknown), apperrors.KindValidation))
	assert.True(t, apperrors.Is(CheckRoleChange(admin, nil, models.RoleAnalyst), apperrors.KindNotFound))
}

func TestCheckStatusToggle(t *testing.T) {
	admin := account("admin", models.RoleAdministrator)
	bob := account("bob", models.RoleViewer)

	assert.NoError(t, CheckStatusToggle(admin, bob))

	err := CheckStatusToggle(admin, admin)
	assert.ErrorIs(t, err, apperrors.ErrSelfDeactivation)
	assert.True(t, apperrors.Is(err, apperrors.KindConflict))

	assert.ErrorIs(t, CheckStatusToggle(account("v", models.RoleViewer), bob), apperrors.ErrForbidden)
}

func TestDashboardPath(t *testing.T) {
	assert.Equal(t, AdminDashboardPath, DashboardPath(models.RoleAdministrator))
	assert.Equal(t, AnalystDashboardPath, DashboardPath(models.RoleAnalyst))
	assert.Equal(t, ViewerDashboardPath, DashboardPath(models.RoleViewer))
	assert.Equal(t, ViewerDashboardPath, DashboardPath(models.RoleUnknown))

	assert.Equal(t, LoginPath, DefaultPath(nil))
	assert.Equal(t, ViewerDashboardPath, DefaultPath(account("a", models.RoleAdministrator)))
}
