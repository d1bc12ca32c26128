package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sinless777/helix-support/internal/api/dto"
	"github.com/sinless777/helix-support/internal/auth"
	"github.com/sinless777/helix-support/internal/authz"
	"github.com/sinless777/helix-support/internal/domain"
	"github.com/sinless777/helix-support/internal/service"
	apperrors "github.com/sinless777/helix-support/pkg/util"
)

// RolesHandler manages the role ledger endpoints.
type RolesHandler struct {
	roles      *service.RoleService
	authorizer *authz.Authorizer
}

// NewRolesHandler constructs handler.
func NewRolesHandler(roles *service.RoleService, authorizer *authz.Authorizer) *RolesHandler {
	return &RolesHandler{roles: roles, authorizer: authorizer}
}

// List GET /roles. The ledger listing is a low-level primitive, so the
// admin gate lives here in the invoking layer.
func (h *RolesHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewAuthenticationRequired("authentication required")
	}
	if _, err := h.authorizer.RequireRank(c.UserContext(), principal.UserID, domain.RoleAdmin); err != nil {
		return err
	}
	records, err := h.roles.ListRoles(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.RoleRecordResponse, 0, len(records))
	for i := range records {
		items = append(items, dto.NewRoleRecordResponse(&records[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /roles/:userId. Callers may read their own effective role;
// reading someone else's requires moderator rank.
func (h *RolesHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewAuthenticationRequired("authentication required")
	}
	target := c.Params("userId")
	if target != principal.UserID {
		if _, err := h.authorizer.RequireRank(c.UserContext(), principal.UserID, domain.RoleModerator); err != nil {
			return err
		}
	}
	role, err := h.roles.GetRole(c.UserContext(), target)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"user_id": target, "role": role}})
}

// Assign PUT /roles/:userId.
func (h *RolesHandler) Assign(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewAuthenticationRequired("authentication required")
	}
	var req dto.AssignRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	record, err := h.roles.AssignRole(c.UserContext(), principal.UserID, c.Params("userId"), req.Role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRoleRecordResponse(record)})
}
