package models

import (
	"time"
)

// Account represents a dashboard user with an assigned role
type Account struct {
	ID              string     `json:"id" db:"id"`
	Username        string     `json:"username" db:"username"`
	Email           string     `json:"email" db:"email"`
	PasswordHash    string     `json:"-" db:"password_hash"`
	FirstName       string     `json:"first_name" db:"first_name"`
	LastName        string     `json:"last_name" db:"last_name"`
	Role            Role       `json:"role" db:"role"`
	Organization    string     `json:"organization" db:"organization"`
	Phone           string     `json:"phone" db:"phone"`
	IsActive        bool       `json:"is_active" db:"is_active"`
	IsActiveSession bool       `json:"is_active_session" db:"is_active_session"`
	LastLoginIP     *string    `json:"last_login_ip,omitempty" db:"last_login_ip"`
	LastLoginAt     *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// FullName joins first and last name, falling back to the username
func (a *Account) FullName() string {
	switch {
	case a.FirstName != "" && a.LastName != "":
		return a.FirstName + " " + a.LastName
	case a.FirstName != "":
		return a.FirstName
	case a.LastName != "":
		return a.LastName
	}
	return a.Username
}

// RegisterRequest is the input for account registration
type RegisterRequest struct {
	Username     string `json:"username" form:"username"`
	Email        string `json:"email" form:"email"`
	Password     string `json:"password" form:"password"`
	FirstName    string `json:"first_name" form:"first_name"`
	LastName     string `json:"last_name" form:"last_name"`
	Organization string `json:"organization" form:"organization"`
	Phone        string `json:"phone" form:"phone"`
}

// LoginRequest carries credentials for authentication
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// ProfileUpdate holds the self-editable account fields. Nil fields are left unchanged.
type ProfileUpdate struct {
	FirstName    *string `json:"first_name" form:"first_name"`
	LastName     *string `json:"last_name" form:"last_name"`
	Email        *string `json:"email" form:"email"`
	Organization *string `json:"organization" form:"organization"`
	Phone        *string `json:"phone" form:"phone"`
}

// UserStats summarizes accounts for the admin dashboard
type UserStats struct {
	TotalUsers     int `json:"total_users"`
	ActiveSessions int `json:"active_sessions"`
	AdminUsers     int `json:"admin_users"`
	AnalystUsers   int `json:"analyst_users"`
	ViewerUsers    int `json:"viewer_users"`
}
