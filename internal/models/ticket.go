package models

import (
	"time"
)

// TicketPriority ranks a support ticket
type TicketPriority string

const (
	PriorityLow    TicketPriority = "low"
	PriorityMedium TicketPriority = "medium"
	PriorityHigh   TicketPriority = "high"
	PriorityUrgent TicketPriority = "urgent"
)

// ValidPriorities defines allowed ticket priorities
var ValidPriorities = map[TicketPriority]bool{
	PriorityLow:    true,
	PriorityMedium: true,
	PriorityHigh:   true,
	PriorityUrgent: true,
}

// TicketStatus is a support ticket lifecycle state
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// ValidTicketStatuses defines allowed ticket statuses
var ValidTicketStatuses = map[TicketStatus]bool{
	TicketStatusOpen:       true,
	TicketStatusInProgress: true,
	TicketStatusResolved:   true,
	TicketStatusClosed:     true,
}

// NextStatus returns the single forward step from s, if any
func (s TicketStatus) NextStatus() (TicketStatus, bool) {
	switch s {
	case TicketStatusOpen:
		return TicketStatusInProgress, true
	case TicketStatusInProgress:
		return TicketStatusResolved, true
	case TicketStatusResolved:
		return TicketStatusClosed, true
	}
	return "", false
}

// SupportTicket is a help request raised by an account
type SupportTicket struct {
	ID          string         `json:"id" db:"id"`
	Title       string         `json:"title" db:"title"`
	Description string         `json:"description" db:"description"`
	Priority    TicketPriority `json:"priority" db:"priority"`
	Status      TicketStatus   `json:"status" db:"status"`
	CreatedBy   string         `json:"created_by" db:"created_by"`
	AssignedTo  *string        `json:"assigned_to,omitempty" db:"assigned_to"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
	ResolvedAt  *time.Time     `json:"resolved_at,omitempty" db:"resolved_at"`
}

// TicketRequest is the input for creating a ticket
type TicketRequest struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	Priority    string `json:"priority" form:"priority"`
}
