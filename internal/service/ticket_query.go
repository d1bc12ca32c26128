package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/sinless777/helix-support/internal/authz"
	"github.com/sinless777/helix-support/internal/domain"
	"github.com/sinless777/helix-support/internal/repository"
	apperrors "github.com/sinless777/helix-support/pkg/util"
)

// Scope controls the visibility breadth of a ticket listing.
type Scope string

const (
	ScopeMine Scope = "mine"
	ScopeAll  Scope = "all"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// TicketQueryService resolves list/get requests under the caller's
// role-derived visibility.
type TicketQueryService struct {
	tickets    repository.TicketRepository
	authorizer *authz.Authorizer
}

// TicketListInput describes a listing request. TargetUserID narrows an
// "all" listing to one user's tickets; it is ignored for "mine". A nil
// Limit takes the default; a supplied value is clamped to [1, 200].
type TicketListInput struct {
	Scope        Scope
	Status       *domain.TicketStatus
	Category     *domain.TicketCategory
	TargetUserID *string
	Limit        *int
}

// NewTicketQueryService constructs the service.
func NewTicketQueryService(tickets repository.TicketRepository, authorizer *authz.Authorizer) *TicketQueryService {
	return &TicketQueryService{tickets: tickets, authorizer: authorizer}
}

// List returns tickets visible to the requester, newest first. Scope
// "all" requires moderator rank. An absent limit defaults to 50; a
// supplied limit is clamped to [1, 200].
func (s *TicketQueryService) List(ctx context.Context, requesterID string, input TicketListInput) ([]domain.Ticket, error) {
	if input.Status != nil && !input.Status.Valid() {
		return nil, apperrors.NewValidationError("unrecognized status", map[string]any{"status": string(*input.Status)})
	}
	if input.Category != nil && !input.Category.Valid() {
		return nil, apperrors.NewValidationError("unrecognized category", map[string]any{"category": string(*input.Category)})
	}

	filter := repository.TicketFilter{
		Status:   input.Status,
		Category: input.Category,
		Limit:    clampLimit(input.Limit),
	}

	switch input.Scope {
	case ScopeMine:
		if requesterID == "" {
			return nil, apperrors.NewAuthenticationRequired("caller identity required")
		}
		filter.UserID = &requesterID
	case ScopeAll:
		if _, err := s.authorizer.RequireRank(ctx, requesterID, domain.RoleModerator); err != nil {
			return nil, err
		}
		filter.UserID = input.TargetUserID
	default:
		return nil, apperrors.NewValidationError("scope must be mine or all", map[string]any{"scope": string(input.Scope)})
	}

	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// GetByKey fetches one ticket by its external id. Non-owners need
// moderator rank. Absence is reported before authorization so a caller
// probing a missing id learns nothing extra from the error shape.
func (s *TicketQueryService) GetByKey(ctx context.Context, requesterID, ticketKey string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByExternalKey(ctx, ticketKey)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketKey})
		}
		return nil, apperrors.MapError(err)
	}
	if ticket.UserID != requesterID {
		if _, err := s.authorizer.RequireRank(ctx, requesterID, domain.RoleModerator); err != nil {
			return nil, err
		}
	}
	return ticket, nil
}

func clampLimit(limit *int) int {
	if limit == nil {
		return defaultListLimit
	}
	if *limit < 1 {
		return 1
	}
	if *limit > maxListLimit {
		return maxListLimit
	}
	return *limit
}
