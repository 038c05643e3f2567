// Package access decides what an authenticated account may do and which rows
// it may see. The acting account is always passed in explicitly.
package access

import (
	"github.com/climate-dashboard-api/internal/apperrors"
	"github.com/climate-dashboard-api/internal/models"
	"github.com/climate-dashboard-api/internal/query"
)

// Dashboard paths by role
const (
	AdminDashboardPath   = "/dashboard/admin"
	AnalystDashboardPath = "/dashboard/analyst"
	ViewerDashboardPath  = "/dashboard/viewer"
	LoginPath            = "/login"
)

// HasAdminAccess reports whether account is an Administrator
func HasAdminAccess(account *models.Account) bool {
	return account != nil && account.Role == models.RoleAdministrator
}

// HasAnalystAccess reports whether account is an Analyst or Administrator
func HasAnalystAccess(account *models.Account) bool {
	return account != nil && account.Role.AtLeast(models.RoleAnalyst)
}

// RequireCapability fails unless account is an active account whose role is
// at least min
func RequireCapability(account *models.Account, min models.Role) error {
	if account == nil {
		return apperrors.ErrUnauthenticated
	}
	if !account.IsActive {
		return apperrors.ErrAccountDisabled
	}
	if !account.Role.AtLeast(min) {
		return apperrors.ErrForbidden
	}
	return nil
}

// visibleSeverities lists what each role may see. Critical alerts are
// reserved for administrators.
var visibleSeverities = map[models.Role][]models.Severity{
	models.RoleViewer:  {models.SeverityLow, models.SeverityMedium},
	models.RoleAnalyst: {models.SeverityLow, models.SeverityMedium, models.SeverityHigh},
}

// SeverityFilter restricts alerts to a set of severities. All is true when
// no restriction applies.
type SeverityFilter struct {
	All        bool
	Severities []models.Severity
}

// ScopeAlertsForRole returns the alert severities visible to role. Unknown
// roles see nothing.
func ScopeAlertsForRole(role models.Role) SeverityFilter {
	if role == models.RoleAdministrator {
		return SeverityFilter{All: true}
	}
	return SeverityFilter{Severities: visibleSeverities[role]}
}

// Allows reports whether an alert of severity s passes the filter
func (f SeverityFilter) Allows(s models.Severity) bool {
	if f.All {
		return true
	}
	for _, v := range f.Severities {
		if v == s {
			return true
		}
	}
	return false
}

// Conditions renders the filter for a listing. Unrestricted filters add no
// condition.
func (f SeverityFilter) Conditions(column string) []query.Condition {
	if f.All {
		return nil
	}
	values := make([]string, len(f.Severities))
	for i, s := range f.Severities {
		values[i] = string(s)
	}
	return []query.Condition{query.In(column, values)}
}

// OwnerFilter restricts tickets to those created by one account. An empty
// OwnerID means no restriction.
type OwnerFilter struct {
	OwnerID string
}

// ScopeTicketsForRole lets administrators see every ticket and everyone
// else only the tickets they created
func ScopeTicketsForRole(account *models.Account) OwnerFilter {
	if HasAdminAccess(account) {
		return OwnerFilter{}
	}
	if account == nil {
		return OwnerFilter{OwnerID: "-"}
	}
	return OwnerFilter{OwnerID: account.ID}
}

// Allows reports whether a ticket created by createdBy passes the filter
func (f OwnerFilter) Allows(createdBy string) bool {
	return f.OwnerID == "" || f.OwnerID == createdBy
}

// Conditions renders the filter for a listing
func (f OwnerFilter) Conditions(column string) []query.Condition {
	if f.OwnerID == "" {
		return nil
	}
	return []query.Condition{query.Eq(column, f.OwnerID)}
}

// CanViewAlert reports whether role may see an alert of severity s
func CanViewAlert(role models.Role, s models.Severity) bool {
	return ScopeAlertsForRole(role).Allows(s)
}

// CheckRoleChange enforces that only administrators change roles and never
// demote themselves
func CheckRoleChange(actor, target *models.Account, newRole models.Role) error {
	if err := RequireCapability(actor, models.RoleAdministrator); err != nil {
		return err
	}
	if !newRole.Valid() {
		return apperrors.Validation("newRole", "invalid role, must be one of: admin, analyst, viewer")
	}
	if target == nil {
		return apperrors.NotFound("user")
	}
	if actor.ID == target.ID && newRole != models.RoleAdministrator {
		return apperrors.ErrSelfDemotion
	}
	return nil
}

// CheckStatusToggle enforces that only administrators toggle activation and
// never deactivate themselves
func CheckStatusToggle(actor, target *models.Account) error {
	if err := RequireCapability(actor, models.RoleAdministrator); err != nil {
		return err
	}
	if target == nil {
		return apperrors.NotFound("user")
	}
	if actor.ID == target.ID {
		return apperrors.ErrSelfDeactivation
	}
	return nil
}

// DashboardPath returns the landing dashboard for role
func DashboardPath(role models.Role) string {
	switch role {
	case models.RoleAdministrator:
		return AdminDashboardPath
	case models.RoleAnalyst:
		return AnalystDashboardPath
	}
	return ViewerDashboardPath
}

// DefaultPath is where denied requests are sent. It never depends on the
// resource that was denied.
func DefaultPath(account *models.Account) string {
	if account == nil {
		return LoginPath
	}
	return ViewerDashboardPath
}
