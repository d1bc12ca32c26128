package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sinless777/helix-support/internal/api/dto"
	"github.com/sinless777/helix-support/internal/service"
	apperrors "github.com/sinless777/helix-support/pkg/util"
)

// AdminHandler exposes operator-only maintenance endpoints.
type AdminHandler struct {
	roles *service.RoleService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(roles *service.RoleService) *AdminHandler {
	return &AdminHandler{roles: roles}
}

// BootstrapOwner POST /admin/bootstrap-owner. The bootstrap key is the
// credential; the route is not behind the session middleware because
// the first owner has no session to assign roles with.
func (h *AdminHandler) BootstrapOwner(c *fiber.Ctx) error {
	var req dto.BootstrapOwnerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	record, err := h.roles.BootstrapOwner(c.UserContext(), req.Key, req.UserID)
	if err != nil {
		return err
	}
	return c.Status(201).JSON(fiber.Map{"data": dto.NewRoleRecordResponse(record)})
}
