package service

import (
	"context"
	"errors"

	hotelerrors "stayhub/internal/hotels/errors"
	"stayhub/internal/hotels/repository"
	"stayhub/internal/hotels/validator"
	"stayhub/pkg/config"
	apperrors "stayhub/pkg/errors"
	"stayhub/pkg/model"
	"stayhub/pkg/sanitizer"
)

// AvailableRoomLister is the slice of the rooms repository the hotel
// detail view needs.
type AvailableRoomLister interface {
	FindAvailableByHotel(ctx context.Context, hotelID string) ([]*model.Room, error)
}

// HotelWithRooms is the detail-view payload: the hotel plus its rooms that
// can currently be booked.
type HotelWithRooms struct {
	*model.Hotel
	Rooms []*model.Room `json:"rooms"`
}

type HotelService interface {
	Create(ctx context.Context, hotel *model.Hotel) error
	GetByID(ctx context.Context, id string) (*HotelWithRooms, error)
	GetAll(ctx context.Context, filter repository.Filter, limit int, offset int64) ([]*model.Hotel, int64, error)
	Update(ctx context.Context, id string, updates *model.HotelUpdate) error
	Delete(ctx context.Context, id string) error
	GetStats(ctx context.Context, id string) (*repository.Stats, error)
}

type hotelService struct {
	repo      repository.HotelRepository
	rooms     AvailableRoomLister
	validator *validator.HotelValidator
	cfg       *config.Config
}

func NewHotelService(
	repo repository.HotelRepository,
	rooms AvailableRoomLister,
	validator *validator.HotelValidator,
	cfg *config.Config,
) HotelService {
	return &hotelService{
		repo:      repo,
		rooms:     rooms,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *hotelService) Create(ctx context.Context, hotel *model.Hotel) error {
	hotel.Name = sanitizer.NormalizeName(hotel.Name)
	hotel.City = sanitizer.NormalizeCity(hotel.City)
	hotel.Country = sanitizer.TrimAndNormalize(hotel.Country)
	if hotel.Status == "" {
		hotel.Status = model.HotelStatusActive
	}

	if err := s.validator.Validate(hotel); err != nil {
		return apperrors.Validation(err.Error(), nil)
	}

	if err := s.repo.Create(ctx, hotel); err != nil {
		s.cfg.Log.Error("Failed to create hotel", "error", err)
		return apperrors.Internal("Failed to create hotel", err)
	}

	s.cfg.Log.Info("Hotel created", "id", hotel.ID, "city", hotel.City, "owner", hotel.OwnerID)
	return nil
}

func (s *hotelService) GetByID(ctx context.Context, id string) (*HotelWithRooms, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Hotel ID cannot be empty")
	}

	hotel, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err, id)
	}

	rooms, err := s.rooms.FindAvailableByHotel(ctx, hotel.ID)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve hotel rooms", err)
	}

	return &HotelWithRooms{Hotel: hotel, Rooms: rooms}, nil
}

// GetAll lists active hotels only; the caller cannot widen the status.
// Offset pagination here is not stable under concurrent writes, which is
// acceptable for a browsing surface.
func (s *hotelService) GetAll(ctx context.Context, filter repository.Filter, limit int, offset int64) ([]*model.Hotel, int64, error) {
	filter.Status = model.HotelStatusActive
	filter.City = sanitizer.NormalizeCity(filter.City)

	count, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to count hotels", err)
	}

	hotels, err := s.repo.FindAll(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to retrieve hotels", err)
	}

	return hotels, count, nil
}

func (s *hotelService) Update(ctx context.Context, id string, updates *model.HotelUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Hotel ID cannot be empty")
	}

	updates.Name = sanitizer.NormalizeName(updates.Name)
	updates.City = sanitizer.NormalizeCity(updates.City)

	if err := s.validator.ValidateUpdate(updates); err != nil {
		return apperrors.Validation(err.Error(), nil)
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return translateRepoError(err, id)
	}

	s.cfg.Log.Info("Hotel updated", "id", id)
	return nil
}

// Delete is a soft delete: the hotel row stays, status flips to inactive and
// the listing queries stop returning it.
func (s *hotelService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Hotel ID cannot be empty")
	}

	if err := s.repo.SetStatus(ctx, id, model.HotelStatusInactive); err != nil {
		return translateRepoError(err, id)
	}

	s.cfg.Log.Info("Hotel deactivated", "id", id)
	return nil
}

func (s *hotelService) GetStats(ctx context.Context, id string) (*repository.Stats, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Hotel ID cannot be empty")
	}

	// Existence check first so a stats request for a missing hotel is a 404,
	// not an empty aggregate.
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, translateRepoError(err, id)
	}

	stats, err := s.repo.AggregateStats(ctx, id)
	if err != nil {
		return nil, apperrors.Internal("Failed to aggregate hotel statistics", err)
	}
	return stats, nil
}

func translateRepoError(err error, id string) error {
	switch {
	case errors.Is(err, hotelerrors.ErrNotFound):
		return apperrors.NotFoundWithID("Hotel", id)
	case errors.Is(err, hotelerrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid hotel ID format")
	default:
		return apperrors.Internal("Hotel storage operation failed", err)
	}
}
