package service

import (
	"context"
	"testing"
	"time"

	usererrors "stayhub/internal/users/errors"
	"stayhub/internal/webhooks"
	"stayhub/pkg/config"
	"stayhub/pkg/logger"
	"stayhub/pkg/model"
)

type mockUserStore struct {
	createFn           func(ctx context.Context, user *model.User) error
	findByClerkIDFn    func(ctx context.Context, clerkID string) (*model.User, error)
	findByEmailFn      func(ctx context.Context, email string) (*model.User, error)
	replaceByClerkIDFn func(ctx context.Context, clerkID string, user *model.User) error
	linkClerkAccountFn func(ctx context.Context, email, clerkID string) error
	deleteByClerkIDFn  func(ctx context.Context, clerkID string) error
	recordLoginFn      func(ctx context.Context, clerkID string, at time.Time) error
}

func (m *mockUserStore) Create(ctx context.Context, user *model.User) error {
	return m.createFn(ctx, user)
}

func (m *mockUserStore) FindByClerkID(ctx context.Context, clerkID string) (*model.User, error) {
	return m.findByClerkIDFn(ctx, clerkID)
}

func (m *mockUserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return m.findByEmailFn(ctx, email)
}

func (m *mockUserStore) ReplaceByClerkID(ctx context.Context, clerkID string, user *model.User) error {
	return m.replaceByClerkIDFn(ctx, clerkID, user)
}

func (m *mockUserStore) LinkClerkAccount(ctx context.Context, email, clerkID string) error {
	return m.linkClerkAccountFn(ctx, email, clerkID)
}

func (m *mockUserStore) DeleteByClerkID(ctx context.Context, clerkID string) error {
	return m.deleteByClerkIDFn(ctx, clerkID)
}

func (m *mockUserStore) RecordLogin(ctx context.Context, clerkID string, at time.Time) error {
	return m.recordLoginFn(ctx, clerkID, at)
}

type recordedEvent struct {
	eventType string
	key       string
}

type mockPublisher struct {
	events []recordedEvent
}

func (m *mockPublisher) Publish(_ context.Context, eventType, key string, _ any) error {
	m.events = append(m.events, recordedEvent{eventType: eventType, key: key})
	return nil
}

func (m *mockPublisher) Close() error { return nil }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{Log: logger.New(logger.Config{Level: logger.ERROR})}
}

func createdEvent() *webhooks.ClerkEvent {
	return &webhooks.ClerkEvent{
		Type: webhooks.EventUserCreated,
		Data: webhooks.ClerkUser{
			ID:             "user_clerk_1",
			FirstName:      "Grace",
			LastName:       "Hopper",
			PrimaryEmailID: "email_1",
			EmailAddresses: []webhooks.ClerkEmail{
				{
					ID:           "email_1",
					EmailAddress: "Grace@Example.com",
					Verification: webhooks.ClerkVerification{Status: "verified"},
				},
			},
			PublicMetadata: webhooks.ClerkPublicMeta{Role: "hotel_owner"},
		},
	}
}

func TestSyncCreatedInsertsUser(t *testing.T) {
	var inserted *model.User
	store := &mockUserStore{
		findByClerkIDFn: func(_ context.Context, _ string) (*model.User, error) {
			return nil, usererrors.ErrNotFound
		},
		findByEmailFn: func(_ context.Context, _ string) (*model.User, error) {
			return nil, usererrors.ErrNotFound
		},
		createFn: func(_ context.Context, u *model.User) error {
			inserted = u
			return nil
		},
	}
	pub := &mockPublisher{}

	svc := NewSyncService(store, pub, testConfig(t))
	if err := svc.HandleEvent(context.Background(), createdEvent()); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	if inserted == nil {
		t.Fatal("expected user insert")
	}
	if inserted.Email != "grace@example.com" {
		t.Errorf("email = %q, want lowercased grace@example.com", inserted.Email)
	}
	if inserted.Name != "Grace Hopper" {
		t.Errorf("name = %q, want Grace Hopper", inserted.Name)
	}
	if inserted.Role != model.RoleHotelOwner {
		t.Errorf("role = %q, want hotel_owner", inserted.Role)
	}
	if inserted.UserType() != model.UserTypeOwner {
		t.Errorf("user type = %q, want owner", inserted.UserType())
	}
	if !inserted.IsEmailVerified {
		t.Error("email should be marked verified")
	}
	if len(pub.events) != 1 || pub.events[0].eventType != "user.synced" {
		t.Errorf("expected one user.synced event, got %v", pub.events)
	}
}

func TestSyncCreatedIsIdempotent(t *testing.T) {
	created := false
	store := &mockUserStore{
		findByClerkIDFn: func(_ context.Context, clerkID string) (*model.User, error) {
			return &model.User{ID: "existing", ClerkID: clerkID}, nil
		},
		createFn: func(_ context.Context, _ *model.User) error {
			created = true
			return nil
		},
	}

	svc := NewSyncService(store, &mockPublisher{}, testConfig(t))
	if err := svc.HandleEvent(context.Background(), createdEvent()); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if created {
		t.Error("a redelivered user.created must not insert a second user")
	}
}

func TestSyncCreatedAdoptsAccountByEmail(t *testing.T) {
	linked := false
	replaced := false
	store := &mockUserStore{
		findByClerkIDFn: func(_ context.Context, _ string) (*model.User, error) {
			return nil, usererrors.ErrNotFound
		},
		findByEmailFn: func(_ context.Context, email string) (*model.User, error) {
			return &model.User{ID: "pre_existing", Email: email}, nil
		},
		linkClerkAccountFn: func(_ context.Context, email, clerkID string) error {
			linked = true
			if clerkID != "user_clerk_1" {
				t.Errorf("linked clerk ID = %q", clerkID)
			}
			return nil
		},
		replaceByClerkIDFn: func(_ context.Context, _ string, _ *model.User) error {
			replaced = true
			return nil
		},
		createFn: func(_ context.Context, _ *model.User) error {
			t.Error("must adopt the existing account, not create a duplicate")
			return nil
		},
	}

	svc := NewSyncService(store, &mockPublisher{}, testConfig(t))
	if err := svc.HandleEvent(context.Background(), createdEvent()); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if !linked || !replaced {
		t.Errorf("linked=%v replaced=%v, want both", linked, replaced)
	}
}

func TestSyncCreatedSurvivesInsertRace(t *testing.T) {
	store := &mockUserStore{
		findByClerkIDFn: func(_ context.Context, _ string) (*model.User, error) {
			return nil, usererrors.ErrNotFound
		},
		findByEmailFn: func(_ context.Context, _ string) (*model.User, error) {
			return nil, usererrors.ErrNotFound
		},
		createFn: func(_ context.Context, _ *model.User) error {
			return usererrors.ErrDuplicate
		},
	}

	svc := NewSyncService(store, &mockPublisher{}, testConfig(t))
	if err := svc.HandleEvent(context.Background(), createdEvent()); err != nil {
		t.Errorf("a lost insert race must not surface as an error, got %v", err)
	}
}

func TestSyncUpdatedUpserts(t *testing.T) {
	replaced := false
	store := &mockUserStore{
		replaceByClerkIDFn: func(_ context.Context, clerkID string, user *model.User) error {
			replaced = true
			if user.Role != model.RoleHotelOwner {
				t.Errorf("role = %q, want hotel_owner", user.Role)
			}
			return nil
		},
		findByClerkIDFn: func(_ context.Context, clerkID string) (*model.User, error) {
			return &model.User{ID: "synced", ClerkID: clerkID}, nil
		},
	}
	pub := &mockPublisher{}

	event := createdEvent()
	event.Type = webhooks.EventUserUpdated

	svc := NewSyncService(store, pub, testConfig(t))
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if !replaced {
		t.Error("expected upsert")
	}
	if len(pub.events) != 1 || pub.events[0].eventType != "user.synced" {
		t.Errorf("expected one user.synced event, got %v", pub.events)
	}
}

func TestSyncDeletedRemovesUser(t *testing.T) {
	deleted := ""
	store := &mockUserStore{
		deleteByClerkIDFn: func(_ context.Context, clerkID string) error {
			deleted = clerkID
			return nil
		},
	}
	pub := &mockPublisher{}

	event := &webhooks.ClerkEvent{
		Type: webhooks.EventUserDeleted,
		Data: webhooks.ClerkUser{ID: "user_clerk_1", Deleted: true},
	}

	svc := NewSyncService(store, pub, testConfig(t))
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if deleted != "user_clerk_1" {
		t.Errorf("deleted = %q, want user_clerk_1", deleted)
	}
	if len(pub.events) != 1 || pub.events[0].eventType != "user.removed" {
		t.Errorf("expected one user.removed event, got %v", pub.events)
	}
}

func TestSyncDeletedAbsentUserIsFine(t *testing.T) {
	store := &mockUserStore{
		deleteByClerkIDFn: func(_ context.Context, _ string) error {
			return usererrors.ErrNotFound
		},
	}

	event := &webhooks.ClerkEvent{
		Type: webhooks.EventUserDeleted,
		Data: webhooks.ClerkUser{ID: "user_clerk_gone"},
	}

	svc := NewSyncService(store, &mockPublisher{}, testConfig(t))
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Errorf("deleting an absent user must succeed, got %v", err)
	}
}

func TestUnhandledEventIsIgnored(t *testing.T) {
	svc := NewSyncService(&mockUserStore{}, &mockPublisher{}, testConfig(t))

	event := &webhooks.ClerkEvent{Type: "organization.created"}
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Errorf("unhandled event types must be acknowledged, got %v", err)
	}
}

func TestSessionCreatedRecordsLogin(t *testing.T) {
	recorded := ""
	store := &mockUserStore{
		recordLoginFn: func(_ context.Context, clerkID string, _ time.Time) error {
			recorded = clerkID
			return nil
		},
	}

	event := &webhooks.ClerkEvent{
		Type: webhooks.EventSessionCreated,
		Data: webhooks.ClerkUser{ID: "sess_1", UserID: "user_clerk_1"},
	}

	svc := NewSyncService(store, &mockPublisher{}, testConfig(t))
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if recorded != "user_clerk_1" {
		t.Errorf("recorded login for %q, want user_clerk_1", recorded)
	}
}

func TestSessionCreatedForUnsyncedUser(t *testing.T) {
	store := &mockUserStore{
		recordLoginFn: func(_ context.Context, _ string, _ time.Time) error {
			return usererrors.ErrNotFound
		},
	}

	event := &webhooks.ClerkEvent{
		Type: webhooks.EventSessionCreated,
		Data: webhooks.ClerkUser{UserID: "user_clerk_unknown"},
	}

	svc := NewSyncService(store, &mockPublisher{}, testConfig(t))
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Errorf("a session for an unsynced user must not error, got %v", err)
	}
}

func TestSyncCreatedRequiresEmail(t *testing.T) {
	event := createdEvent()
	event.Data.EmailAddresses = nil

	svc := NewSyncService(&mockUserStore{}, &mockPublisher{}, testConfig(t))
	if err := svc.HandleEvent(context.Background(), event); err == nil {
		t.Error("expected error for payload without email")
	}
}

func TestSyncCreatedDefaultsRoleToCustomer(t *testing.T) {
	var inserted *model.User
	store := &mockUserStore{
		findByClerkIDFn: func(_ context.Context, _ string) (*model.User, error) {
			return nil, usererrors.ErrNotFound
		},
		findByEmailFn: func(_ context.Context, _ string) (*model.User, error) {
			return nil, usererrors.ErrNotFound
		},
		createFn: func(_ context.Context, u *model.User) error {
			inserted = u
			return nil
		},
	}

	event := createdEvent()
	event.Data.PublicMetadata.Role = "superadmin"

	svc := NewSyncService(store, &mockPublisher{}, testConfig(t))
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if inserted.Role != model.RoleCustomer {
		t.Errorf("role = %q, unknown metadata roles must fall back to customer", inserted.Role)
	}
}
