package service

import (
	"context"
	"errors"
	"strings"
	"time"

	usererrors "stayhub/internal/users/errors"
	"stayhub/internal/webhooks"
	"stayhub/pkg/config"
	apperrors "stayhub/pkg/errors"
	"stayhub/pkg/events"
	"stayhub/pkg/model"
	"stayhub/pkg/sanitizer"
)

// UserStore is the slice of the users repository the sync needs.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByClerkID(ctx context.Context, clerkID string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	ReplaceByClerkID(ctx context.Context, clerkID string, user *model.User) error
	LinkClerkAccount(ctx context.Context, email, clerkID string) error
	DeleteByClerkID(ctx context.Context, clerkID string) error
	RecordLogin(ctx context.Context, clerkID string, at time.Time) error
}

type SyncService interface {
	HandleEvent(ctx context.Context, event *webhooks.ClerkEvent) error
}

type syncService struct {
	store     UserStore
	publisher events.Publisher
	cfg       *config.Config
}

func NewSyncService(store UserStore, publisher events.Publisher, cfg *config.Config) SyncService {
	return &syncService{
		store:     store,
		publisher: publisher,
		cfg:       cfg,
	}
}

// HandleEvent applies one Clerk event. Every branch is idempotent: Clerk
// retries deliveries, so re-applying an event must converge on the same
// state instead of erroring or duplicating.
func (s *syncService) HandleEvent(ctx context.Context, event *webhooks.ClerkEvent) error {
	switch event.Type {
	case webhooks.EventUserCreated:
		return s.syncCreated(ctx, &event.Data)
	case webhooks.EventUserUpdated:
		return s.syncUpdated(ctx, &event.Data)
	case webhooks.EventUserDeleted:
		return s.syncDeleted(ctx, &event.Data)
	case webhooks.EventSessionCreated:
		return s.recordLogin(ctx, &event.Data)
	default:
		s.cfg.Log.Debug("Ignoring unhandled webhook event", "type", event.Type)
		return nil
	}
}

func (s *syncService) syncCreated(ctx context.Context, data *webhooks.ClerkUser) error {
	if data.ID == "" {
		return apperrors.InvalidInput("Webhook payload is missing the user ID")
	}

	user, err := mapUser(data)
	if err != nil {
		return err
	}

	existing, err := s.store.FindByClerkID(ctx, data.ID)
	if err == nil {
		s.cfg.Log.Info("User already synced, skipping", "clerk_id", data.ID, "id", existing.ID)
		return nil
	}
	if !errors.Is(err, usererrors.ErrNotFound) {
		return apperrors.Internal("Failed to look up user by Clerk ID", err)
	}

	// An account may predate the identity provider; adopt it by email
	// instead of creating a duplicate.
	if byEmail, err := s.store.FindByEmail(ctx, user.Email); err == nil {
		if linkErr := s.store.LinkClerkAccount(ctx, byEmail.Email, data.ID); linkErr != nil {
			return apperrors.Internal("Failed to link existing account", linkErr)
		}
		if replErr := s.store.ReplaceByClerkID(ctx, data.ID, user); replErr != nil {
			return apperrors.Internal("Failed to sync linked account", replErr)
		}
		s.cfg.Log.Info("Linked existing account to Clerk identity", "clerk_id", data.ID, "email", user.Email)
		s.publishSynced(ctx, byEmail.ID, user, "updated")
		return nil
	} else if !errors.Is(err, usererrors.ErrNotFound) {
		return apperrors.Internal("Failed to look up user by email", err)
	}

	if err := s.store.Create(ctx, user); err != nil {
		// A concurrent delivery of the same event won the insert race.
		if errors.Is(err, usererrors.ErrDuplicate) {
			s.cfg.Log.Info("User inserted by concurrent delivery", "clerk_id", data.ID)
			return nil
		}
		return apperrors.Internal("Failed to create user from webhook", err)
	}

	s.cfg.Log.Info("User synced", "id", user.ID, "clerk_id", data.ID, "role", user.Role)
	s.publishSynced(ctx, user.ID, user, "created")
	return nil
}

func (s *syncService) syncUpdated(ctx context.Context, data *webhooks.ClerkUser) error {
	if data.ID == "" {
		return apperrors.InvalidInput("Webhook payload is missing the user ID")
	}

	user, err := mapUser(data)
	if err != nil {
		return err
	}

	// Upsert: an update for a user this service never saw still lands.
	if err := s.store.ReplaceByClerkID(ctx, data.ID, user); err != nil {
		return apperrors.Internal("Failed to sync user update", err)
	}

	synced, err := s.store.FindByClerkID(ctx, data.ID)
	if err != nil {
		return apperrors.Internal("Failed to reload synced user", err)
	}

	s.cfg.Log.Info("User update synced", "id", synced.ID, "clerk_id", data.ID)
	s.publishSynced(ctx, synced.ID, user, "updated")
	return nil
}

func (s *syncService) syncDeleted(ctx context.Context, data *webhooks.ClerkUser) error {
	if data.ID == "" {
		return apperrors.InvalidInput("Webhook payload is missing the user ID")
	}

	if err := s.store.DeleteByClerkID(ctx, data.ID); err != nil {
		// Absence is the desired end state.
		if errors.Is(err, usererrors.ErrNotFound) {
			s.cfg.Log.Info("User already removed", "clerk_id", data.ID)
			return nil
		}
		return apperrors.Internal("Failed to delete user from webhook", err)
	}

	s.cfg.Log.Info("User removed", "clerk_id", data.ID)
	if err := s.publisher.Publish(ctx, events.TypeUserRemoved, data.ID, events.UserRemoved{ClerkID: data.ID}); err != nil {
		s.cfg.Log.Warn("Failed to publish event", "type", events.TypeUserRemoved, "error", err)
	}
	return nil
}

// recordLogin bumps last_login/login_count. A session for a user this
// service never synced is not an error; the user event may still be in
// flight.
func (s *syncService) recordLogin(ctx context.Context, data *webhooks.ClerkUser) error {
	clerkID := data.UserID
	if clerkID == "" {
		return apperrors.InvalidInput("Webhook payload is missing the user ID")
	}

	if err := s.store.RecordLogin(ctx, clerkID, time.Now().UTC().Truncate(time.Millisecond)); err != nil {
		if errors.Is(err, usererrors.ErrNotFound) {
			s.cfg.Log.Debug("Login for unsynced user, skipping", "clerk_id", clerkID)
			return nil
		}
		return apperrors.Internal("Failed to record login", err)
	}
	return nil
}

func (s *syncService) publishSynced(ctx context.Context, userID string, user *model.User, action string) {
	payload := events.UserSynced{
		UserID:  userID,
		ClerkID: user.ClerkID,
		Email:   user.Email,
		Role:    user.Role,
		Action:  action,
	}
	if err := s.publisher.Publish(ctx, events.TypeUserSynced, user.ClerkID, payload); err != nil {
		s.cfg.Log.Warn("Failed to publish event", "type", events.TypeUserSynced, "error", err)
	}
}

func mapUser(data *webhooks.ClerkUser) (*model.User, error) {
	email, verified := data.PrimaryEmail()
	email = sanitizer.NormalizeEmail(email)
	if email == "" {
		return nil, apperrors.InvalidInput("Webhook payload has no email address")
	}

	role := data.PublicMetadata.Role
	if role != model.RoleHotelOwner {
		role = model.RoleCustomer
	}

	first := sanitizer.NormalizeName(data.FirstName)
	last := sanitizer.NormalizeName(data.LastName)
	name := strings.TrimSpace(first + " " + last)
	if name == "" {
		name = data.Username
	}
	if name == "" {
		name = email
	}

	return &model.User{
		ClerkID:         data.ID,
		Email:           email,
		Name:            name,
		FirstName:       first,
		LastName:        last,
		Phone:           sanitizer.NormalizePhone(data.Phone()),
		Avatar:          data.ImageURL,
		Role:            role,
		IsActive:        true,
		IsEmailVerified: verified,
		Notifications:   model.DefaultNotificationSettings(),
	}, nil
}
