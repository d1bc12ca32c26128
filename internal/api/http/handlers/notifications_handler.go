package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/sinless777/helix-support/internal/api/dto"
	"github.com/sinless777/helix-support/internal/auth"
	"github.com/sinless777/helix-support/internal/service"
	apperrors "github.com/sinless777/helix-support/pkg/util"
)

// NotificationsHandler manages the in-app notification endpoints.
type NotificationsHandler struct {
	notifications *service.NotificationService
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notifications *service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{notifications: notifications}
}

// List GET /notifications. The read query parameter filters to
// "unread" or "read"; anything else returns both.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewAuthenticationRequired("authentication required")
	}

	var read *bool
	switch c.Query("read") {
	case "unread":
		value := false
		read = &value
	case "read":
		value := true
		read = &value
	}

	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil {
			limit = parsed
		}
	}

	items, err := h.notifications.ListForUser(c.UserContext(), principal.UserID, read, limit)
	if err != nil {
		return err
	}
	resp := make([]dto.NotificationResponse, 0, len(items))
	for i := range items {
		resp = append(resp, dto.NewNotificationResponse(&items[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// MarkRead POST /notifications/:id/read.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewAuthenticationRequired("authentication required")
	}
	if err := h.notifications.MarkRead(c.UserContext(), principal.UserID, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": c.Params("id"), "read": true}})
}

// Delete DELETE /notifications/:id.
func (h *NotificationsHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewAuthenticationRequired("authentication required")
	}
	if err := h.notifications.Delete(c.UserContext(), principal.UserID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(204)
}
