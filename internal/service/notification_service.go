package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/sinless777/helix-support/internal/domain"
	"github.com/sinless777/helix-support/internal/events"
	"github.com/sinless777/helix-support/internal/repository"
	apperrors "github.com/sinless777/helix-support/pkg/util"
)

// NotificationService turns ticket lifecycle events into in-app
// notifications and serves the owner-scoped inbox operations.
type NotificationService struct {
	notifications repository.NotificationRepository
	dispatcher    events.Dispatcher
	logger        *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(notifications repository.NotificationRepository, dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		dispatcher:    dispatcher,
		logger:        logger,
	}
}

// RegisterHandlers subscribes to ticket lifecycle events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
	n.dispatcher.Subscribe(events.EventTicketEscalated, n.handleTicketEscalated)
	n.dispatcher.Subscribe(events.EventRoleAssigned, n.handleRoleAssigned)
}

const (
	defaultInboxLimit = 50
	maxInboxLimit     = 200
)

// ListForUser returns the caller's notifications, newest first. The
// limit is clamped to [1, 200] with a default of 50.
func (n *NotificationService) ListForUser(ctx context.Context, userID string, read *bool, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = defaultInboxLimit
	} else if limit > maxInboxLimit {
		limit = maxInboxLimit
	}
	items, err := n.notifications.ListByUser(ctx, userID, repository.NotificationFilter{
		Read:  read,
		Limit: limit,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return items, nil
}

// MarkRead flags one of the caller's notifications as read.
func (n *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	if err := n.notifications.MarkRead(ctx, userID, notificationID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("notification", map[string]any{"notification_id": notificationID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// Delete removes one of the caller's notifications.
func (n *NotificationService) Delete(ctx context.Context, userID, notificationID string) error {
	if err := n.notifications.Delete(ctx, userID, notificationID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("notification", map[string]any{"notification_id": notificationID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return nil
	}
	return n.create(ctx, &domain.Notification{
		UserID:  payload.OwnerID,
		Title:   "Ticket received",
		Message: fmt.Sprintf("We received your ticket %q (%s).", payload.Title, event.TicketKey),
		Metadata: map[string]any{
			"ticket_key": event.TicketKey,
			"category":   string(payload.Category),
		},
	})
}

func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return nil
	}
	return n.create(ctx, &domain.Notification{
		UserID:  payload.OwnerID,
		Title:   "Ticket status updated",
		Message: fmt.Sprintf("Ticket %s moved from %s to %s.", event.TicketKey, payload.OldStatus, payload.NewStatus),
		Metadata: map[string]any{
			"ticket_key": event.TicketKey,
			"old_status": string(payload.OldStatus),
			"new_status": string(payload.NewStatus),
		},
	})
}

func (n *NotificationService) handleTicketEscalated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketEscalatedPayload)
	if !ok {
		return nil
	}
	return n.create(ctx, &domain.Notification{
		UserID:  payload.OwnerID,
		Title:   "Ticket escalated",
		Message: fmt.Sprintf("Ticket %s was escalated to the engineering tracker.", event.TicketKey),
		Metadata: map[string]any{
			"ticket_key": event.TicketKey,
		},
	})
}

func (n *NotificationService) handleRoleAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.RoleAssignedPayload)
	if !ok {
		return nil
	}
	return n.create(ctx, &domain.Notification{
		UserID:  payload.TargetUserID,
		Title:   "Role updated",
		Message: fmt.Sprintf("Your account role is now %s.", payload.Role),
		Metadata: map[string]any{
			"role": string(payload.Role),
		},
	})
}

func (n *NotificationService) create(ctx context.Context, notification *domain.Notification) error {
	if err := n.notifications.Create(ctx, notification); err != nil {
		n.logger.Warn("failed to create notification",
			zap.String("user_id", notification.UserID),
			zap.Error(err))
		return err
	}
	return nil
}
