package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/sinless777/helix-support/internal/domain"
	"github.com/sinless777/helix-support/internal/events"
	"github.com/sinless777/helix-support/internal/repository"
	apperrors "github.com/sinless777/helix-support/pkg/util"
)

// RoleCache caches resolved roles. Implemented by persistence.Redis;
// nil-safe fakes stand in for tests.
type RoleCache interface {
	GetRole(ctx context.Context, userID string) (domain.Role, bool)
	SetRole(ctx context.Context, userID string, role domain.Role)
	InvalidateRole(ctx context.Context, userID string)
}

// RoleService is the role ledger: it resolves effective roles and
// guards assignments so an actor can never grant, revoke, or touch a
// rank at or above its own.
type RoleService struct {
	roles            repository.RoleRepository
	cache            RoleCache
	dispatcher       events.Dispatcher
	logger           *zap.Logger
	bootstrapKeyHash string
}

// RoleDependencies bundles collaborators for the role ledger.
type RoleDependencies struct {
	RoleRepo         repository.RoleRepository
	Cache            RoleCache
	Dispatcher       events.Dispatcher
	Logger           *zap.Logger
	BootstrapKeyHash string
}

// NewRoleService constructs the service.
func NewRoleService(deps RoleDependencies) *RoleService {
	return &RoleService{
		roles:            deps.RoleRepo,
		cache:            deps.Cache,
		dispatcher:       deps.Dispatcher,
		logger:           deps.Logger,
		bootstrapKeyHash: deps.BootstrapKeyHash,
	}
}

// GetRole resolves the effective role for a user. Absence of a ledger
// record means the default role; it is not an error.
func (s *RoleService) GetRole(ctx context.Context, userID string) (domain.Role, error) {
	if s.cache != nil {
		if role, ok := s.cache.GetRole(ctx, userID); ok {
			return role, nil
		}
	}
	record, err := s.roles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.DefaultRole, nil
		}
		return "", apperrors.MapError(err)
	}
	role := domain.NormalizeRole(string(record.Role))
	if s.cache != nil {
		s.cache.SetRole(ctx, userID, role)
	}
	return role, nil
}

// ListRoles returns every ledger record. This is a low-level primitive:
// it performs no checks of its own, and the invoking layer is expected
// to pre-authorize the caller.
func (s *RoleService) ListRoles(ctx context.Context) ([]domain.RoleRecord, error) {
	records, err := s.roles.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return records, nil
}

// AssignRole sets the target user's role. The actor must hold moderator
// rank or above and strictly outrank both the granted role and the
// target's current role, so self-modification is always denied.
func (s *RoleService) AssignRole(ctx context.Context, actorID, targetID string, newRole domain.Role) (*domain.RoleRecord, error) {
	if actorID == "" {
		return nil, apperrors.NewAuthenticationRequired("caller identity required")
	}
	if targetID == "" {
		return nil, apperrors.NewValidationError("target user id required", nil)
	}
	if !newRole.Valid() {
		return nil, apperrors.NewValidationError("unrecognized role", map[string]any{"role": string(newRole)})
	}

	actorRole, err := s.GetRole(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actorRole.AtLeast(domain.RoleModerator) {
		return nil, apperrors.NewAuthorizationDenied("insufficient permissions to assign roles")
	}

	targetRole, err := s.GetRole(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !domain.CanActOn(actorRole, newRole) || !domain.CanActOn(actorRole, targetRole) {
		return nil, apperrors.NewAuthorizationDenied("cannot assign a role at or above your own")
	}

	record := &domain.RoleRecord{
		UserID:     targetID,
		Role:       newRole,
		AssignedBy: actorID,
	}
	if err := s.roles.Upsert(ctx, record); err != nil {
		return nil, apperrors.MapError(err)
	}
	if s.cache != nil {
		s.cache.InvalidateRole(ctx, targetID)
	}
	s.publish(ctx, events.Event{
		Type:    events.EventRoleAssigned,
		ActorID: actorID,
		Payload: events.RoleAssignedPayload{
			TargetUserID: targetID,
			Role:         newRole,
		},
	})
	return record, nil
}

// BootstrapOwner seeds the initial owner record. The rank rule makes
// owner ungrantable through AssignRole, so the first owner is installed
// with an operator-held key compared against a bcrypt hash from config.
// Runs at most once: a second call conflicts.
func (s *RoleService) BootstrapOwner(ctx context.Context, suppliedKey, targetUserID string) (*domain.RoleRecord, error) {
	if s.bootstrapKeyHash == "" {
		return nil, apperrors.NewAuthorizationDenied("owner bootstrap is not configured")
	}
	if targetUserID == "" {
		return nil, apperrors.NewValidationError("target user id required", nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.bootstrapKeyHash), []byte(suppliedKey)); err != nil {
		return nil, apperrors.NewAuthorizationDenied("invalid bootstrap key")
	}
	exists, err := s.roles.HasAnyWithRole(ctx, domain.RoleOwner)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if exists {
		return nil, apperrors.NewConflict("an owner already exists", nil)
	}

	record := &domain.RoleRecord{
		UserID:     targetUserID,
		Role:       domain.RoleOwner,
		AssignedBy: "system",
	}
	if err := s.roles.Upsert(ctx, record); err != nil {
		return nil, apperrors.MapError(err)
	}
	if s.cache != nil {
		s.cache.InvalidateRole(ctx, targetUserID)
	}
	s.logger.Info("owner role bootstrapped", zap.String("user_id", targetUserID))
	return record, nil
}

func (s *RoleService) publish(ctx context.Context, event events.Event) {
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
