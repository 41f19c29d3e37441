package service

import (
	"context"
	"errors"

	roomerrors "stayhub/internal/rooms/errors"
	"stayhub/internal/rooms/repository"
	"stayhub/internal/rooms/validator"
	"stayhub/pkg/config"
	apperrors "stayhub/pkg/errors"
	"stayhub/pkg/model"
	"stayhub/pkg/sanitizer"
)

type RoomService interface {
	Create(ctx context.Context, room *model.Room) error
	GetByID(ctx context.Context, id string) (*model.Room, error)
	GetAll(ctx context.Context, filter repository.Filter, limit int, offset int64) ([]*model.Room, int64, error)
	Update(ctx context.Context, id string, updates *model.RoomUpdate) error
	Delete(ctx context.Context, id string) error
}

type roomService struct {
	repo      repository.RoomRepository
	validator *validator.RoomValidator
	cfg       *config.Config
}

func NewRoomService(repo repository.RoomRepository, validator *validator.RoomValidator, cfg *config.Config) RoomService {
	return &roomService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *roomService) Create(ctx context.Context, room *model.Room) error {
	room.Name = sanitizer.NormalizeName(room.Name)
	s.applyDefaults(room)

	if err := s.validator.Validate(room); err != nil {
		return apperrors.Validation(err.Error(), nil)
	}

	if err := s.repo.Create(ctx, room); err != nil {
		s.cfg.Log.Error("Failed to create room", "error", err)
		return apperrors.Internal("Failed to create room", err)
	}

	s.cfg.Log.Info("Room created",
		"id", room.ID,
		"hotel", room.HotelID,
		"type", room.Type,
		"total_rooms", room.Availability.TotalRooms,
	)
	return nil
}

// applyDefaults fills the availability counter for a fresh room and keeps
// the is_available flag coherent with it.
func (s *roomService) applyDefaults(room *model.Room) {
	if room.Availability.AvailableRooms == 0 && room.Availability.TotalRooms > 0 {
		room.Availability.AvailableRooms = room.Availability.TotalRooms
	}
	room.Availability.IsAvailable = room.Availability.AvailableRooms > 0

	if room.Pricing.Currency == "" {
		room.Pricing.Currency = "USD"
	}
	if room.Policies == (model.RoomPolicies{}) {
		room.Policies = model.DefaultRoomPolicies()
	}
}

func (s *roomService) GetByID(ctx context.Context, id string) (*model.Room, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}

	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err, id)
	}
	return room, nil
}

func (s *roomService) GetAll(ctx context.Context, filter repository.Filter, limit int, offset int64) ([]*model.Room, int64, error) {
	count, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to count rooms", err)
	}

	rooms, err := s.repo.FindAll(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to retrieve rooms", err)
	}

	return rooms, count, nil
}

func (s *roomService) Update(ctx context.Context, id string, updates *model.RoomUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Room ID cannot be empty")
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		return apperrors.Validation(err.Error(), nil)
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return translateRepoError(err, id)
	}

	s.cfg.Log.Info("Room updated", "id", id)
	return nil
}

func (s *roomService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Room ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return translateRepoError(err, id)
	}

	s.cfg.Log.Info("Room deleted", "id", id)
	return nil
}

func translateRepoError(err error, id string) error {
	switch {
	case errors.Is(err, roomerrors.ErrNotFound):
		return apperrors.NotFoundWithID("Room", id)
	case errors.Is(err, roomerrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid room ID format")
	default:
		return apperrors.Internal("Room storage operation failed", err)
	}
}
