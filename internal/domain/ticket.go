package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
	TicketStatusEscalated  TicketStatus = "ESCALATED"
)

// TicketStatuses lists every recognized status.
var TicketStatuses = []TicketStatus{
	TicketStatusOpen,
	TicketStatusInProgress,
	TicketStatusResolved,
	TicketStatusClosed,
	TicketStatusEscalated,
}

// Valid reports whether the value is a recognized status.
func (s TicketStatus) Valid() bool {
	for _, status := range TicketStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// TicketCategory classifies the kind of request.
type TicketCategory string

const (
	TicketCategoryBug            TicketCategory = "BUG"
	TicketCategoryFeatureRequest TicketCategory = "FEATURE_REQUEST"
	TicketCategoryOther          TicketCategory = "OTHER"
)

// TicketCategories lists every recognized category.
var TicketCategories = []TicketCategory{
	TicketCategoryBug,
	TicketCategoryFeatureRequest,
	TicketCategoryOther,
}

// Valid reports whether the value is a recognized category.
func (c TicketCategory) Valid() bool {
	for _, category := range TicketCategories {
		if c == category {
			return true
		}
	}
	return false
}

// Ticket is the aggregate for support requests. ExternalKey is the
// opaque identifier exposed to clients; it is generated at creation and
// stable for the ticket's lifetime. UserID (the owner) is immutable.
// Tickets are never hard-deleted; closure is a status.
type Ticket struct {
	ID          string
	ExternalKey string
	UserID      string
	Title       string
	Description string
	Category    TicketCategory
	Status      TicketStatus
	AssigneeID  *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type statusTransition struct {
	from TicketStatus
	to   TicketStatus
}

// transitionPolicy maps every (from, to) pair to the minimum role
// required to apply it. The table is deliberately permissive: restating
// the current status is open to anyone who can edit the ticket, and any
// actual change needs moderator rank, with no directed graph beyond
// that. Tightening a transition is a data change here, not a code
// change.
var transitionPolicy = buildTransitionPolicy()

func buildTransitionPolicy() map[statusTransition]Role {
	policy := make(map[statusTransition]Role, len(TicketStatuses)*len(TicketStatuses))
	for _, from := range TicketStatuses {
		for _, to := range TicketStatuses {
			required := RoleModerator
			if from == to {
				required = RoleUser
			}
			policy[statusTransition{from: from, to: to}] = required
		}
	}
	return policy
}

// RequiredRankForTransition returns the minimum role needed to move a
// ticket between the two statuses. The second result is false when
// either status is unrecognized.
func RequiredRankForTransition(from, to TicketStatus) (Role, bool) {
	required, ok := transitionPolicy[statusTransition{from: from, to: to}]
	return required, ok
}
