package events

import (
	"time"

	"github.com/sinless777/helix-support/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketEscalated     EventType = "ticket_escalated"
	EventRoleAssigned        EventType = "role_assigned"
)

// Event represents a domain event emitted by services. TicketKey is the
// external ticket identifier; role events leave it empty.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketKey string      `json:"ticket_key,omitempty"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	OwnerID  string                `json:"owner_id"`
	Title    string                `json:"title"`
	Category domain.TicketCategory `json:"category"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OwnerID   string              `json:"owner_id"`
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	OwnerID    string  `json:"owner_id"`
	AssigneeID *string `json:"assignee_id,omitempty"`
}

// TicketEscalatedPayload carries everything the escalation notifier
// needs; the ticket write has already committed when this is published.
type TicketEscalatedPayload struct {
	OwnerID     string                `json:"owner_id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Category    domain.TicketCategory `json:"category"`
	Status      domain.TicketStatus   `json:"status"`
}

// RoleAssignedPayload payload.
type RoleAssignedPayload struct {
	TargetUserID string      `json:"target_user_id"`
	Role         domain.Role `json:"role"`
}
