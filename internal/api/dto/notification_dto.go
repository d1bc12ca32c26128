package dto

import (
	"time"

	"github.com/sinless777/helix-support/internal/domain"
)

// NotificationResponse is the public shape of an in-app notification.
type NotificationResponse struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Read      bool           `json:"read"`
	CreatedAt time.Time      `json:"created_at"`
}

// NewNotificationResponse maps a domain notification.
func NewNotificationResponse(notification *domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        notification.ID,
		Title:     notification.Title,
		Message:   notification.Message,
		Metadata:  notification.Metadata,
		Read:      notification.Read,
		CreatedAt: notification.CreatedAt,
	}
}
