package service

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/sinless777/helix-support/internal/domain"
	"github.com/sinless777/helix-support/internal/events"
	apperrors "github.com/sinless777/helix-support/pkg/util"
)

func newRoleService(repo *fakeRoleRepo, cache *fakeCache, dispatcher *recordingDispatcher, bootstrapHash string) *RoleService {
	deps := RoleDependencies{
		RoleRepo:         repo,
		Logger:           zap.NewNop(),
		BootstrapKeyHash: bootstrapHash,
	}
	// Assign the interface fields only for a real fake: a typed nil
	// wrapped in the interface would defeat the service's nil guards.
	if cache != nil {
		deps.Cache = cache
	}
	if dispatcher != nil {
		deps.Dispatcher = dispatcher
	}
	return NewRoleService(deps)
}

func TestRoleServiceWithoutOptionalCollaborators(t *testing.T) {
	// Cache and dispatcher are optional; with neither configured every
	// operation must still work off the ledger alone.
	repo := newFakeRoleRepo()
	repo.set("admin", domain.RoleAdmin)
	svc := newRoleService(repo, nil, nil, "")
	ctx := context.Background()

	role, err := svc.GetRole(ctx, "admin")
	if err != nil {
		t.Fatalf("GetRole: %v", err)
	}
	if role != domain.RoleAdmin {
		t.Errorf("role = %s", role)
	}
	if role, err = svc.GetRole(ctx, "stranger"); err != nil || role != domain.RoleUser {
		t.Errorf("GetRole(stranger) = %s, %v", role, err)
	}
	if _, err := svc.AssignRole(ctx, "admin", "target", domain.RoleModerator); err != nil {
		t.Fatalf("AssignRole: %v", err)
	}
}

func TestGetRoleDefaultsWhenAbsent(t *testing.T) {
	svc := newRoleService(newFakeRoleRepo(), nil, nil, "")

	role, err := svc.GetRole(context.Background(), "stranger")
	if err != nil {
		t.Fatalf("GetRole: %v", err)
	}
	if role != domain.RoleUser {
		t.Errorf("role = %s, want %s", role, domain.RoleUser)
	}
}

func TestGetRoleUsesCache(t *testing.T) {
	repo := newFakeRoleRepo()
	repo.set("alice", domain.RoleAdmin)
	cache := newFakeCache()
	svc := newRoleService(repo, cache, nil, "")

	role, err := svc.GetRole(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetRole: %v", err)
	}
	if role != domain.RoleAdmin {
		t.Fatalf("role = %s", role)
	}
	if cached, ok := cache.roles["alice"]; !ok || cached != domain.RoleAdmin {
		t.Error("role was not written to cache")
	}

	// Serve from cache even after the ledger record changes.
	repo.set("alice", domain.RoleUser)
	role, err = svc.GetRole(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetRole: %v", err)
	}
	if role != domain.RoleAdmin {
		t.Errorf("role = %s, want cached %s", role, domain.RoleAdmin)
	}
}

func TestAssignRoleDeniesWhenActorDoesNotOutrank(t *testing.T) {
	// Every pairing where the actor fails to strictly outrank either the
	// granted role or the target's current role must be denied.
	tests := []struct {
		name       string
		actorRole  domain.Role
		targetRole domain.Role
		newRole    domain.Role
	}{
		{"plain user", domain.RoleUser, domain.RoleUser, domain.RoleUser},
		{"moderator grants own rank", domain.RoleModerator, domain.RoleUser, domain.RoleModerator},
		{"moderator grants above", domain.RoleModerator, domain.RoleUser, domain.RoleAdmin},
		{"admin demotes a peer", domain.RoleAdmin, domain.RoleAdmin, domain.RoleUser},
		{"admin demotes superior", domain.RoleAdmin, domain.RoleOwner, domain.RoleUser},
		{"owner grants owner", domain.RoleOwner, domain.RoleUser, domain.RoleOwner},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRoleRepo()
			repo.set("actor", tt.actorRole)
			repo.set("target", tt.targetRole)
			svc := newRoleService(repo, nil, nil, "")

			_, err := svc.AssignRole(context.Background(), "actor", "target", tt.newRole)
			if apperrors.CodeOf(err) != apperrors.CodeAuthorizationDenied {
				t.Fatalf("err = %v, want authorization denied", err)
			}
			if repo.upserts != 0 {
				t.Error("ledger was written on a denied assignment")
			}
		})
	}
}

func TestAssignRoleDeniesSelfModification(t *testing.T) {
	repo := newFakeRoleRepo()
	repo.set("admin", domain.RoleAdmin)
	svc := newRoleService(repo, nil, nil, "")

	_, err := svc.AssignRole(context.Background(), "admin", "admin", domain.RoleUser)
	if apperrors.CodeOf(err) != apperrors.CodeAuthorizationDenied {
		t.Fatalf("err = %v, want authorization denied", err)
	}
}

func TestAssignRoleSucceeds(t *testing.T) {
	repo := newFakeRoleRepo()
	repo.set("admin", domain.RoleAdmin)
	cache := newFakeCache()
	cache.roles["target"] = domain.RoleUser
	dispatcher := &recordingDispatcher{}
	svc := newRoleService(repo, cache, dispatcher, "")

	record, err := svc.AssignRole(context.Background(), "admin", "target", domain.RoleModerator)
	if err != nil {
		t.Fatalf("AssignRole: %v", err)
	}
	if record.Role != domain.RoleModerator || record.AssignedBy != "admin" {
		t.Errorf("record = %+v", record)
	}
	if _, ok := cache.roles["target"]; ok {
		t.Error("cache entry survived an assignment")
	}
	published := dispatcher.ofType(events.EventRoleAssigned)
	if len(published) != 1 {
		t.Fatalf("published %d role events, want 1", len(published))
	}
	payload, ok := published[0].Payload.(events.RoleAssignedPayload)
	if !ok || payload.TargetUserID != "target" || payload.Role != domain.RoleModerator {
		t.Errorf("payload = %+v", published[0].Payload)
	}
}

func TestAssignRoleRejectsUnknownRole(t *testing.T) {
	repo := newFakeRoleRepo()
	repo.set("admin", domain.RoleAdmin)
	svc := newRoleService(repo, nil, nil, "")

	_, err := svc.AssignRole(context.Background(), "admin", "target", "superuser")
	if apperrors.CodeOf(err) != apperrors.CodeValidationFailed {
		t.Fatalf("err = %v, want validation failure", err)
	}
}

func TestAssignRoleRequiresIdentity(t *testing.T) {
	svc := newRoleService(newFakeRoleRepo(), nil, nil, "")
	_, err := svc.AssignRole(context.Background(), "", "target", domain.RoleModerator)
	if apperrors.CodeOf(err) != apperrors.CodeAuthenticationRequired {
		t.Fatalf("err = %v, want authentication required", err)
	}
}

func TestBootstrapOwner(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("open-sesame"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	t.Run("succeeds once", func(t *testing.T) {
		repo := newFakeRoleRepo()
		svc := newRoleService(repo, nil, nil, string(hash))

		record, err := svc.BootstrapOwner(context.Background(), "open-sesame", "founder")
		if err != nil {
			t.Fatalf("BootstrapOwner: %v", err)
		}
		if record.Role != domain.RoleOwner || record.AssignedBy != "system" {
			t.Errorf("record = %+v", record)
		}

		_, err = svc.BootstrapOwner(context.Background(), "open-sesame", "pretender")
		if apperrors.CodeOf(err) != apperrors.CodeConflict {
			t.Fatalf("second call err = %v, want conflict", err)
		}
	})

	t.Run("rejects a wrong key", func(t *testing.T) {
		svc := newRoleService(newFakeRoleRepo(), nil, nil, string(hash))
		_, err := svc.BootstrapOwner(context.Background(), "guess", "founder")
		if apperrors.CodeOf(err) != apperrors.CodeAuthorizationDenied {
			t.Fatalf("err = %v, want authorization denied", err)
		}
	})

	t.Run("denied when unconfigured", func(t *testing.T) {
		svc := newRoleService(newFakeRoleRepo(), nil, nil, "")
		_, err := svc.BootstrapOwner(context.Background(), "open-sesame", "founder")
		if apperrors.CodeOf(err) != apperrors.CodeAuthorizationDenied {
			t.Fatalf("err = %v, want authorization denied", err)
		}
	})
}
