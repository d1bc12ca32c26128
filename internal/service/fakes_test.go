package service

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/sinless777/helix-support/internal/domain"
	"github.com/sinless777/helix-support/internal/events"
	"github.com/sinless777/helix-support/internal/repository"
)

type fakeRoleRepo struct {
	records map[string]*domain.RoleRecord
	err     error
	upserts int
}

func newFakeRoleRepo() *fakeRoleRepo {
	return &fakeRoleRepo{records: make(map[string]*domain.RoleRecord)}
}

func (f *fakeRoleRepo) set(userID string, role domain.Role) {
	f.records[userID] = &domain.RoleRecord{
		ID:     "role-" + userID,
		UserID: userID,
		Role:   role,
	}
}

func (f *fakeRoleRepo) GetByUserID(ctx context.Context, userID string) (*domain.RoleRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	record, ok := f.records[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *record
	return &copied, nil
}

func (f *fakeRoleRepo) List(ctx context.Context) ([]domain.RoleRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.RoleRecord, 0, len(f.records))
	for _, record := range f.records {
		out = append(out, *record)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (f *fakeRoleRepo) Upsert(ctx context.Context, record *domain.RoleRecord) error {
	if f.err != nil {
		return f.err
	}
	f.upserts++
	now := time.Now()
	if existing, ok := f.records[record.UserID]; ok {
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
	} else {
		record.ID = "role-" + record.UserID
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	copied := *record
	f.records[record.UserID] = &copied
	return nil
}

func (f *fakeRoleRepo) HasAnyWithRole(ctx context.Context, role domain.Role) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	for _, record := range f.records {
		if record.Role == role {
			return true, nil
		}
	}
	return false, nil
}

type fakeCache struct {
	roles         map[string]domain.Role
	invalidations []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{roles: make(map[string]domain.Role)}
}

func (f *fakeCache) GetRole(ctx context.Context, userID string) (domain.Role, bool) {
	role, ok := f.roles[userID]
	return role, ok
}

func (f *fakeCache) SetRole(ctx context.Context, userID string, role domain.Role) {
	f.roles[userID] = role
}

func (f *fakeCache) InvalidateRole(ctx context.Context, userID string) {
	delete(f.roles, userID)
	f.invalidations = append(f.invalidations, userID)
}

type fakeTicketRepo struct {
	tickets map[string]*domain.Ticket
	seq     int
	now     time.Time
	err     error
	updates int
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{
		tickets: make(map[string]*domain.Ticket),
		now:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *fakeTicketRepo) tick() time.Time {
	f.now = f.now.Add(time.Minute)
	return f.now
}

func (f *fakeTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	if f.err != nil {
		return f.err
	}
	f.seq++
	ticket.ID = "tid-" + strconv.Itoa(f.seq)
	ticket.CreatedAt = f.tick()
	ticket.UpdatedAt = ticket.CreatedAt
	copied := *ticket
	f.tickets[ticket.ExternalKey] = &copied
	return nil
}

func (f *fakeTicketRepo) Update(ctx context.Context, ticket *domain.Ticket) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.tickets[ticket.ExternalKey]; !ok {
		return pgx.ErrNoRows
	}
	f.updates++
	ticket.UpdatedAt = f.tick()
	copied := *ticket
	f.tickets[ticket.ExternalKey] = &copied
	return nil
}

func (f *fakeTicketRepo) GetByExternalKey(ctx context.Context, key string) (*domain.Ticket, error) {
	if f.err != nil {
		return nil, f.err
	}
	ticket, ok := f.tickets[key]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (f *fakeTicketRepo) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Ticket
	for _, ticket := range f.tickets {
		if filter.UserID != nil && ticket.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && ticket.Status != *filter.Status {
			continue
		}
		if filter.Category != nil && ticket.Category != *filter.Category {
			continue
		}
		out = append(out, *ticket)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

type fakeProfileRepo struct {
	profiles map[string]*domain.Profile
	err      error
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]*domain.Profile)}
}

func (f *fakeProfileRepo) enable(userID string, features ...string) {
	f.profiles[userID] = &domain.Profile{ID: "pid-" + userID, UserID: userID, Features: features}
}

func (f *fakeProfileRepo) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	profile, ok := f.profiles[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return profile, nil
}

type fakeNotificationRepo struct {
	created []domain.Notification
	err     error
	seq     int
}

func (f *fakeNotificationRepo) Create(ctx context.Context, notification *domain.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.seq++
	notification.ID = "nid-" + strconv.Itoa(f.seq)
	notification.CreatedAt = time.Now()
	f.created = append(f.created, *notification)
	return nil
}

func (f *fakeNotificationRepo) ListByUser(ctx context.Context, userID string, filter repository.NotificationFilter) ([]domain.Notification, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Notification
	for _, notification := range f.created {
		if notification.UserID != userID {
			continue
		}
		if filter.Read != nil && notification.Read != *filter.Read {
			continue
		}
		out = append(out, notification)
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, userID, id string) error {
	if f.err != nil {
		return f.err
	}
	for i := range f.created {
		if f.created[i].ID == id && f.created[i].UserID == userID {
			f.created[i].Read = true
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeNotificationRepo) Delete(ctx context.Context, userID, id string) error {
	if f.err != nil {
		return f.err
	}
	for i := range f.created {
		if f.created[i].ID == id && f.created[i].UserID == userID {
			f.created = append(f.created[:i], f.created[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

// recordingDispatcher captures published events without running
// handlers.
type recordingDispatcher struct {
	published []events.Event
}

func (d *recordingDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {}

func (d *recordingDispatcher) ofType(eventType events.EventType) []events.Event {
	var out []events.Event
	for _, event := range d.published {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}
