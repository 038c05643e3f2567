package models

import "time"

// Audit actions
const (
	AuditActionRoleChange       = "account.role_change"
	AuditActionStatusToggle     = "account.status_toggle"
	AuditActionAlertAcknowledge = "alert.acknowledge"
	AuditActionAlertResolve     = "alert.resolve"
	AuditActionAlertRaise       = "alert.raise"
	AuditActionTicketCreate     = "ticket.create"
	AuditActionTicketStatus     = "ticket.status"
	AuditActionTicketAssign     = "ticket.assign"
	AuditActionSourceCreate     = "source.create"
	AuditActionSourceActive     = "source.set_active"
	AuditActionSourceDelete     = "source.delete"
	AuditActionModelRegister    = "model.register"
	AuditActionModelActive      = "model.set_active"
)

// AuditEntry records who changed what, from which value to which value
type AuditEntry struct {
	ID         string    `json:"id" db:"id"`
	ActorID    string    `json:"actor_id" db:"actor_id"`
	Action     string    `json:"action" db:"action"`
	TargetType string    `json:"target_type" db:"target_type"`
	TargetID   string    `json:"target_id" db:"target_id"`
	OldValue   string    `json:"old_value" db:"old_value"`
	NewValue   string    `json:"new_value" db:"new_value"`
	Success    bool      `json:"success" db:"success"`
	Message    string    `json:"message,omitempty" db:"message"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
