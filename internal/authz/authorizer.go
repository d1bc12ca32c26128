// Package authz centralizes rank and ownership decisions so commands
// and queries all deny with the same rules and messages.
package authz

import (
	"context"
	"fmt"

	"github.com/sinless777/helix-support/internal/domain"
	apperrors "github.com/sinless777/helix-support/pkg/util"
)

// RoleResolver reports the effective role for a user id, defaulting
// when no ledger record exists.
type RoleResolver interface {
	GetRole(ctx context.Context, userID string) (domain.Role, error)
}

// Authorizer answers allow/deny questions against the role ledger.
type Authorizer struct {
	roles RoleResolver
}

// NewAuthorizer constructs an Authorizer over the given resolver.
func NewAuthorizer(roles RoleResolver) *Authorizer {
	return &Authorizer{roles: roles}
}

// ActorRole resolves the actor's effective role.
func (a *Authorizer) ActorRole(ctx context.Context, actorID string) (domain.Role, error) {
	if actorID == "" {
		return "", apperrors.NewAuthenticationRequired("caller identity required")
	}
	return a.roles.GetRole(ctx, actorID)
}

// RequireRank resolves the actor's role and denies unless it ranks at
// or above the minimum.
func (a *Authorizer) RequireRank(ctx context.Context, actorID string, minimum domain.Role) (domain.Role, error) {
	role, err := a.ActorRole(ctx, actorID)
	if err != nil {
		return "", err
	}
	if !role.AtLeast(minimum) {
		return "", apperrors.NewAuthorizationDenied(fmt.Sprintf("requires %s rank or above", minimum))
	}
	return role, nil
}

// RequireOwnerOrRank allows the resource owner through regardless of
// rank, otherwise requires the minimum rank. The resolved role is
// returned either way so callers can apply further field-level gates.
func (a *Authorizer) RequireOwnerOrRank(ctx context.Context, actorID, ownerID string, minimum domain.Role) (domain.Role, error) {
	role, err := a.ActorRole(ctx, actorID)
	if err != nil {
		return "", err
	}
	if actorID == ownerID {
		return role, nil
	}
	if !role.AtLeast(minimum) {
		return "", apperrors.NewAuthorizationDenied("not the owner and insufficient rank")
	}
	return role, nil
}
