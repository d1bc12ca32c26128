package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/sinless777/helix-support/internal/authz"
	"github.com/sinless777/helix-support/internal/domain"
	"github.com/sinless777/helix-support/internal/events"
	"github.com/sinless777/helix-support/internal/repository"
	apperrors "github.com/sinless777/helix-support/pkg/util"
)

// TicketCommandService validates and applies ticket mutations.
type TicketCommandService struct {
	tickets      repository.TicketRepository
	profiles     repository.ProfileRepository
	authorizer   *authz.Authorizer
	dispatcher   events.Dispatcher
	logger       *zap.Logger
	newTicketKey func() string
}

// TicketCommandDependencies bundles collaborators for the command handler.
type TicketCommandDependencies struct {
	TicketRepo  repository.TicketRepository
	ProfileRepo repository.ProfileRepository
	Authorizer  *authz.Authorizer
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Category    domain.TicketCategory
}

// TicketPatch describes a partial update. Nil pointer fields are left
// untouched. SetAssignee distinguishes "leave the assignee alone" from
// "set it" and "clear it" (SetAssignee true with a nil AssigneeID).
type TicketPatch struct {
	Title       *string
	Description *string
	Category    *domain.TicketCategory
	Status      *domain.TicketStatus
	SetAssignee bool
	AssigneeID  *string
}

// NewTicketCommandService constructs the service.
func NewTicketCommandService(deps TicketCommandDependencies) *TicketCommandService {
	return &TicketCommandService{
		tickets:      deps.TicketRepo,
		profiles:     deps.ProfileRepo,
		authorizer:   deps.Authorizer,
		dispatcher:   deps.Dispatcher,
		logger:       deps.Logger,
		newTicketKey: generateTicketKey,
	}
}

// Create files a new ticket for the requester. Creation is gated on the
// ticket_system entitlement; moderators and above bypass the flag so
// staff can file on a member's behalf.
func (s *TicketCommandService) Create(ctx context.Context, requesterID string, input TicketCreateInput) (*domain.Ticket, error) {
	role, err := s.authorizer.ActorRole(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.GetByUserID(ctx, requesterID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}
	if !profile.HasFeature(domain.FeatureTicketSystem) && !role.AtLeast(domain.RoleModerator) {
		return nil, apperrors.NewFeatureDisabled("ticket system is not enabled for this account")
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title is required", nil)
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, apperrors.NewValidationError("description is required", nil)
	}
	category := input.Category
	if category == "" {
		category = domain.TicketCategoryOther
	}
	if !category.Valid() {
		return nil, apperrors.NewValidationError("unrecognized category", map[string]any{"category": string(category)})
	}

	ticket := &domain.Ticket{
		ExternalKey: s.newTicketKey(),
		UserID:      requesterID,
		Title:       title,
		Description: description,
		Category:    category,
		Status:      domain.TicketStatusOpen,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:      events.EventTicketCreated,
		TicketKey: ticket.ExternalKey,
		ActorID:   requesterID,
		Payload: events.TicketCreatedPayload{
			OwnerID:  ticket.UserID,
			Title:    ticket.Title,
			Category: ticket.Category,
		},
	})
	return ticket, nil
}

// Update applies a partial update to the ticket identified by its
// external key. The requester must be the owner or hold moderator rank;
// status and assignee changes carry their own rank gates on top. When
// the applied status is ESCALATED the escalation event fires after the
// write has committed, whether the status is newly transitioned or
// re-confirmed.
func (s *TicketCommandService) Update(ctx context.Context, requesterID, ticketKey string, patch TicketPatch) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByExternalKey(ctx, ticketKey)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketKey})
		}
		return nil, apperrors.MapError(err)
	}

	role, err := s.authorizer.RequireOwnerOrRank(ctx, requesterID, ticket.UserID, domain.RoleModerator)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		trimmed := strings.TrimSpace(*patch.Title)
		if trimmed == "" {
			return nil, apperrors.NewValidationError("title cannot be blank", nil)
		}
		ticket.Title = trimmed
	}
	if patch.Description != nil {
		trimmed := strings.TrimSpace(*patch.Description)
		if trimmed == "" {
			return nil, apperrors.NewValidationError("description cannot be blank", nil)
		}
		ticket.Description = trimmed
	}
	if patch.Category != nil {
		if !patch.Category.Valid() {
			return nil, apperrors.NewValidationError("unrecognized category", map[string]any{"category": string(*patch.Category)})
		}
		ticket.Category = *patch.Category
	}

	oldStatus := ticket.Status
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return nil, apperrors.NewValidationError("unrecognized status", map[string]any{"status": string(*patch.Status)})
		}
		required, ok := domain.RequiredRankForTransition(ticket.Status, *patch.Status)
		if !ok {
			return nil, apperrors.NewValidationError("unrecognized status", map[string]any{"status": string(*patch.Status)})
		}
		if !role.AtLeast(required) {
			return nil, apperrors.NewAuthorizationDenied("you are not allowed to change ticket status")
		}
		ticket.Status = *patch.Status
	}

	assigneeChanged := false
	if patch.SetAssignee {
		if !role.AtLeast(domain.RoleModerator) {
			return nil, apperrors.NewAuthorizationDenied("you are not allowed to modify the assignee")
		}
		ticket.AssigneeID = patch.AssigneeID
		assigneeChanged = true
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	if patch.Status != nil && ticket.Status != oldStatus {
		s.publish(ctx, events.Event{
			Type:      events.EventTicketStatusChanged,
			TicketKey: ticket.ExternalKey,
			ActorID:   requesterID,
			Payload: events.TicketStatusChangedPayload{
				OwnerID:   ticket.UserID,
				OldStatus: oldStatus,
				NewStatus: ticket.Status,
			},
		})
	}
	if assigneeChanged {
		s.publish(ctx, events.Event{
			Type:      events.EventTicketAssigned,
			TicketKey: ticket.ExternalKey,
			ActorID:   requesterID,
			Payload: events.TicketAssignedPayload{
				OwnerID:    ticket.UserID,
				AssigneeID: ticket.AssigneeID,
			},
		})
	}
	if patch.Status != nil && ticket.Status == domain.TicketStatusEscalated {
		s.publish(ctx, events.Event{
			Type:      events.EventTicketEscalated,
			TicketKey: ticket.ExternalKey,
			ActorID:   requesterID,
			Payload: events.TicketEscalatedPayload{
				OwnerID:     ticket.UserID,
				Title:       ticket.Title,
				Description: ticket.Description,
				Category:    ticket.Category,
				Status:      ticket.Status,
			},
		})
	}
	return ticket, nil
}

func (s *TicketCommandService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func generateTicketKey() string {
	return "TCK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}
