package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/sinless777/helix-support/internal/api/dto"
	"github.com/sinless777/helix-support/internal/auth"
	"github.com/sinless777/helix-support/internal/domain"
	"github.com/sinless777/helix-support/internal/service"
	apperrors "github.com/sinless777/helix-support/pkg/util"
)

// TicketsHandler manages the ticket endpoints.
type TicketsHandler struct {
	commands *service.TicketCommandService
	queries  *service.TicketQueryService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(commands *service.TicketCommandService, queries *service.TicketQueryService) *TicketsHandler {
	return &TicketsHandler{commands: commands, queries: queries}
}

// Create POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewAuthenticationRequired("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.commands.Create(c.UserContext(), principal.UserID, service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// List GET /tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewAuthenticationRequired("authentication required")
	}

	input := service.TicketListInput{
		Scope: service.Scope(c.Query("scope", string(service.ScopeMine))),
	}
	if statusStr := strings.TrimSpace(c.Query("status")); statusStr != "" {
		status := domain.TicketStatus(statusStr)
		input.Status = &status
	}
	if categoryStr := strings.TrimSpace(c.Query("category")); categoryStr != "" {
		category := domain.TicketCategory(categoryStr)
		input.Category = &category
	}
	if target := strings.TrimSpace(c.Query("user_id")); target != "" {
		input.TargetUserID = &target
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			input.Limit = &limit
		}
	}

	tickets, err := h.queries.List(c.UserContext(), principal.UserID, input)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.NewTicketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewAuthenticationRequired("authentication required")
	}
	ticket, err := h.queries.GetByKey(c.UserContext(), principal.UserID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// Update PATCH /tickets/:id.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewAuthenticationRequired("authentication required")
	}

	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	// BodyParser cannot tell an absent assignee_id from an explicit
	// null, and null means "clear the assignee". Check key presence on
	// the raw body.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &raw); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	_, setAssignee := raw["assignee_id"]

	ticket, err := h.commands.Update(c.UserContext(), principal.UserID, c.Params("id"), service.TicketPatch{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Status:      req.Status,
		SetAssignee: setAssignee,
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}
