package service

import (
	"context"
	"errors"
	"time"

	usererrors "stayhub/internal/users/errors"
	"stayhub/internal/users/repository"
	"stayhub/internal/users/validator"
	"stayhub/pkg/config"
	apperrors "stayhub/pkg/errors"
	"stayhub/pkg/model"
	"stayhub/pkg/sanitizer"
)

type UserService interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByClerkID(ctx context.Context, clerkID string) (*model.User, error)
	GetAll(ctx context.Context, filter repository.Filter, limit int, offset int64) ([]*model.User, int64, error)
	Update(ctx context.Context, id string, updates *model.UserUpdate) error
	UpdateByClerkID(ctx context.Context, clerkID string, updates *model.UserUpdate) error
	Delete(ctx context.Context, id string) error
	AddRecentSearch(ctx context.Context, id string, city string) error
}

type userService struct {
	repo      repository.UserRepository
	validator *validator.UserValidator
	cfg       *config.Config
}

func NewUserService(repo repository.UserRepository, userValidator *validator.UserValidator, cfg *config.Config) UserService {
	return &userService{
		repo:      repo,
		validator: userValidator,
		cfg:       cfg,
	}
}

func (s *userService) Create(ctx context.Context, user *model.User) error {
	user.Name = sanitizer.NormalizeName(user.Name)
	user.Email = sanitizer.NormalizeEmail(user.Email)
	user.Phone = sanitizer.NormalizePhone(user.Phone)
	if user.Role == "" {
		user.Role = model.RoleCustomer
	}
	user.IsActive = true
	if user.Notifications == (model.NotificationSettings{}) {
		user.Notifications = model.DefaultNotificationSettings()
	}

	if err := s.validator.Validate(user); err != nil {
		return apperrors.Validation(err.Error(), nil)
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, usererrors.ErrDuplicate) {
			return apperrors.Conflict("A user with this Clerk ID already exists")
		}
		s.cfg.Log.Error("Failed to create user", "clerk_id", user.ClerkID, "error", err)
		return apperrors.Internal("Failed to create user", err)
	}

	s.cfg.Log.Info("User created", "id", user.ID, "clerk_id", user.ClerkID, "role", user.Role)
	return nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("User ID cannot be empty")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err, id)
	}
	return user, nil
}

func (s *userService) GetByClerkID(ctx context.Context, clerkID string) (*model.User, error) {
	if clerkID == "" {
		return nil, apperrors.InvalidInput("Clerk ID cannot be empty")
	}

	user, err := s.repo.FindByClerkID(ctx, clerkID)
	if err != nil {
		return nil, translateRepoError(err, clerkID)
	}
	return user, nil
}

func (s *userService) GetAll(ctx context.Context, filter repository.Filter, limit int, offset int64) ([]*model.User, int64, error) {
	count, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to count users", err)
	}

	users, err := s.repo.FindAll(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to retrieve users", err)
	}

	return users, count, nil
}

func (s *userService) Update(ctx context.Context, id string, updates *model.UserUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("User ID cannot be empty")
	}

	updates.Name = sanitizer.NormalizeName(updates.Name)
	updates.Phone = sanitizer.NormalizePhone(updates.Phone)

	if err := s.validator.ValidateUpdate(updates); err != nil {
		return apperrors.Validation(err.Error(), nil)
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return translateRepoError(err, id)
	}

	s.cfg.Log.Info("User updated", "id", id)
	return nil
}

func (s *userService) UpdateByClerkID(ctx context.Context, clerkID string, updates *model.UserUpdate) error {
	user, err := s.GetByClerkID(ctx, clerkID)
	if err != nil {
		return err
	}
	return s.Update(ctx, user.ID, updates)
}

func (s *userService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("User ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return translateRepoError(err, id)
	}

	s.cfg.Log.Info("User deleted", "id", id)
	return nil
}

func (s *userService) AddRecentSearch(ctx context.Context, id string, city string) error {
	if id == "" {
		return apperrors.InvalidInput("User ID cannot be empty")
	}

	city = sanitizer.NormalizeCity(city)
	if city == "" {
		return apperrors.InvalidInput("Search city cannot be empty")
	}

	search := model.RecentSearch{
		City:       city,
		SearchedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	if err := s.repo.AddRecentSearch(ctx, id, search); err != nil {
		return translateRepoError(err, id)
	}
	return nil
}

func translateRepoError(err error, id string) error {
	switch {
	case errors.Is(err, usererrors.ErrNotFound):
		return apperrors.NotFoundWithID("User", id)
	case errors.Is(err, usererrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid user ID format")
	case errors.Is(err, usererrors.ErrDuplicate):
		return apperrors.Conflict("A user with this Clerk ID already exists")
	default:
		return apperrors.Internal("User storage operation failed", err)
	}
}
