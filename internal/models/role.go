package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Role is an account's capability tier. Higher values are strictly more
// privileged: every Administrator is also an Analyst and a Viewer.
type Role int

const (
	RoleUnknown Role = iota
	RoleViewer
	RoleAnalyst
	RoleAdministrator
)

// Stored and wire representations
const (
	roleViewerName        = "viewer"
	roleAnalystName       = "analyst"
	roleAdministratorName = "admin"
)

// AllRoles lists the valid roles from least to most privileged
var AllRoles = []Role{RoleViewer, RoleAnalyst, RoleAdministrator}

// ParseRole converts a stored role name into a Role
func ParseRole(s string) (Role, error) {
	switch s {
	case roleViewerName:
		return RoleViewer, nil
	case roleAnalystName:
		return RoleAnalyst, nil
	case roleAdministratorName, "administrator":
		return RoleAdministrator, nil
	}
	return RoleUnknown, fmt.Errorf("invalid role %q, must be one of: admin, analyst, viewer", s)
}

// String returns the stored role name
func (r Role) String() string {
	switch r {
	case RoleViewer:
		return roleViewerName
	case RoleAnalyst:
		return roleAnalystName
	case RoleAdministrator:
		return roleAdministratorName
	}
	return "unknown"
}

// DisplayName returns the human readable role label
func (r Role) DisplayName() string {
	switch r {
	case RoleViewer:
		return "Data Viewer"
	case RoleAnalyst:
		return "Climate Analyst"
	case RoleAdministrator:
		return "Administrator"
	}
	return "Unknown"
}

// Valid reports whether r is one of the three defined roles
func (r Role) Valid() bool {
	return r >= RoleViewer && r <= RoleAdministrator
}

// Level returns the capability level, 0 for an unknown role
func (r Role) Level() int {
	if !r.Valid() {
		return 0
	}
	return int(r)
}

// AtLeast reports whether r is at least as privileged as min
func (r Role) AtLeast(min Role) bool {
	return r.Valid() && r.Level() >= min.Level()
}

// MarshalJSON encodes the role as its stored name
func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON decodes a role name
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Value implements driver.Valuer
func (r Role) Value() (driver.Value, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("cannot store invalid role %d", int(r))
	}
	return r.String(), nil
}

// Scan implements sql.Scanner
func (r *Role) Scan(src interface{}) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Role", src)
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
