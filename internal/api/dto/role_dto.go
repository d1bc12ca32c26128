package dto

import (
	"time"

	"github.com/sinless777/helix-support/internal/domain"
)

// AssignRoleRequest payload.
type AssignRoleRequest struct {
	Role domain.Role `json:"role"`
}

// BootstrapOwnerRequest payload for the one-shot owner seeding.
type BootstrapOwnerRequest struct {
	Key    string `json:"key"`
	UserID string `json:"user_id"`
}

// RoleRecordResponse is the public shape of a ledger entry.
type RoleRecordResponse struct {
	UserID     string      `json:"user_id"`
	Role       domain.Role `json:"role"`
	AssignedBy string      `json:"assigned_by"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// NewRoleRecordResponse maps a ledger record.
func NewRoleRecordResponse(record *domain.RoleRecord) RoleRecordResponse {
	return RoleRecordResponse{
		UserID:     record.UserID,
		Role:       record.Role,
		AssignedBy: record.AssignedBy,
		CreatedAt:  record.CreatedAt,
		UpdatedAt:  record.UpdatedAt,
	}
}
