package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/sinless777/helix-support/internal/domain"
	"github.com/sinless777/helix-support/internal/events"
	apperrors "github.com/sinless777/helix-support/pkg/util"
)

func newNotificationFixture() (*NotificationService, *fakeNotificationRepo, events.Dispatcher) {
	repo := &fakeNotificationRepo{}
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	svc := NewNotificationService(repo, dispatcher, zap.NewNop())
	svc.RegisterHandlers()
	return svc, repo, dispatcher
}

func TestNotificationOnTicketCreated(t *testing.T) {
	_, repo, dispatcher := newNotificationFixture()

	_ = dispatcher.Publish(context.Background(), events.Event{
		Type:      events.EventTicketCreated,
		TicketKey: "TCK-1",
		ActorID:   "alice",
		Payload: events.TicketCreatedPayload{
			OwnerID:  "alice",
			Title:    "Login broken",
			Category: domain.TicketCategoryBug,
		},
	})

	if len(repo.created) != 1 {
		t.Fatalf("created %d notifications, want 1", len(repo.created))
	}
	notification := repo.created[0]
	if notification.UserID != "alice" {
		t.Errorf("user = %q", notification.UserID)
	}
	if notification.Metadata["ticket_key"] != "TCK-1" {
		t.Errorf("metadata = %+v", notification.Metadata)
	}
}

func TestNotificationOnStatusChange(t *testing.T) {
	_, repo, dispatcher := newNotificationFixture()

	_ = dispatcher.Publish(context.Background(), events.Event{
		Type:      events.EventTicketStatusChanged,
		TicketKey: "TCK-1",
		ActorID:   "mod",
		Payload: events.TicketStatusChangedPayload{
			OwnerID:   "alice",
			OldStatus: domain.TicketStatusOpen,
			NewStatus: domain.TicketStatusResolved,
		},
	})

	if len(repo.created) != 1 {
		t.Fatalf("created %d notifications, want 1", len(repo.created))
	}
	if repo.created[0].UserID != "alice" {
		t.Errorf("notification targeted %q, want the ticket owner", repo.created[0].UserID)
	}
}

func TestNotificationOnRoleAssigned(t *testing.T) {
	_, repo, dispatcher := newNotificationFixture()

	_ = dispatcher.Publish(context.Background(), events.Event{
		Type:    events.EventRoleAssigned,
		ActorID: "admin",
		Payload: events.RoleAssignedPayload{
			TargetUserID: "bob",
			Role:         domain.RoleModerator,
		},
	})

	if len(repo.created) != 1 {
		t.Fatalf("created %d notifications, want 1", len(repo.created))
	}
	if repo.created[0].UserID != "bob" {
		t.Errorf("notification targeted %q, want the promoted user", repo.created[0].UserID)
	}
}

func TestNotificationIgnoresForeignPayload(t *testing.T) {
	_, repo, dispatcher := newNotificationFixture()

	_ = dispatcher.Publish(context.Background(), events.Event{
		Type:    events.EventTicketCreated,
		Payload: "not a payload struct",
	})

	if len(repo.created) != 0 {
		t.Errorf("created %d notifications from a malformed event", len(repo.created))
	}
}

func TestNotificationInboxOperations(t *testing.T) {
	svc, repo, _ := newNotificationFixture()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := repo.Create(ctx, &domain.Notification{UserID: "alice", Title: "t", Message: "m"}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	items, err := svc.ListForUser(ctx, "alice", nil, 10)
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("got %d notifications, want 3", len(items))
	}

	if err := svc.MarkRead(ctx, "alice", items[0].ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	unread := false
	remaining, err := svc.ListForUser(ctx, "alice", &unread, 10)
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(remaining) != 2 {
		t.Errorf("got %d unread, want 2", len(remaining))
	}

	if err := svc.Delete(ctx, "alice", items[1].ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	// The inbox limit is capped like the ticket listing.
	for i := 0; i < 250; i++ {
		if err := repo.Create(ctx, &domain.Notification{UserID: "carol", Title: "t", Message: "m"}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	capped, err := svc.ListForUser(ctx, "carol", nil, 1000)
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(capped) != 200 {
		t.Errorf("got %d notifications, want the 200 cap", len(capped))
	}
	defaulted, err := svc.ListForUser(ctx, "carol", nil, 0)
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(defaulted) != 50 {
		t.Errorf("got %d notifications, want the default 50", len(defaulted))
	}

	// Another user's id must not reach alice's rows.
	if err := svc.MarkRead(ctx, "bob", items[2].ID); apperrors.CodeOf(err) != apperrors.CodeNotFound {
		t.Errorf("cross-user MarkRead err = %v, want not found", err)
	}
	if err := svc.Delete(ctx, "bob", items[2].ID); apperrors.CodeOf(err) != apperrors.CodeNotFound {
		t.Errorf("cross-user Delete err = %v, want not found", err)
	}
}
