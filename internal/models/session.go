package models

import "time"

// Session is a server-side login session
type Session struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
