package service

import (
	"context"
	"testing"

	hotelerrors "stayhub/internal/hotels/errors"
	"stayhub/internal/hotels/repository"
	"stayhub/internal/hotels/validator"
	"stayhub/pkg/config"
	apperrors "stayhub/pkg/errors"
	"stayhub/pkg/logger"
	"stayhub/pkg/model"
)

type mockHotelRepo struct {
	createFn         func(ctx context.Context, hotel *model.Hotel) error
	findByIDFn       func(ctx context.Context, id string) (*model.Hotel, error)
	findAllFn        func(ctx context.Context, filter repository.Filter, limit int, offset int64) ([]*model.Hotel, error)
	countFn          func(ctx context.Context, filter repository.Filter) (int64, error)
	updateFn         func(ctx context.Context, id string, updates *model.HotelUpdate) error
	setStatusFn      func(ctx context.Context, id string, status string) error
	aggregateStatsFn func(ctx context.Context, hotelID string) (*repository.Stats, error)
}

func (m *mockHotelRepo) Create(ctx context.Context, hotel *model.Hotel) error {
	return m.createFn(ctx, hotel)
}

func (m *mockHotelRepo) FindByID(ctx context.Context, id string) (*model.Hotel, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockHotelRepo) FindAll(ctx context.Context, filter repository.Filter, limit int, offset int64) ([]*model.Hotel, error) {
	return m.findAllFn(ctx, filter, limit, offset)
}

func (m *mockHotelRepo) Count(ctx context.Context, filter repository.Filter) (int64, error) {
	return m.countFn(ctx, filter)
}

func (m *mockHotelRepo) Update(ctx context.Context, id string, updates *model.HotelUpdate) error {
	return m.updateFn(ctx, id, updates)
}

func (m *mockHotelRepo) SetStatus(ctx context.Context, id string, status string) error {
	return m.setStatusFn(ctx, id, status)
}

func (m *mockHotelRepo) AggregateStats(ctx context.Context, hotelID string) (*repository.Stats, error) {
	return m.aggregateStatsFn(ctx, hotelID)
}

type mockRoomLister struct {
	rooms []*model.Room
}

func (m *mockRoomLister) FindAvailableByHotel(_ context.Context, _ string) ([]*model.Room, error) {
	return m.rooms, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{Log: logger.New(logger.Config{Level: logger.ERROR})}
}

func newTestService(repo *mockHotelRepo, rooms *mockRoomLister, cfg *config.Config) HotelService {
	return NewHotelService(repo, rooms, validator.NewHotelValidator(cfg.Log), cfg)
}

func TestGetAllForcesActiveStatus(t *testing.T) {
	cfg := testConfig(t)
	var seen repository.Filter
	repo := &mockHotelRepo{
		countFn: func(_ context.Context, f repository.Filter) (int64, error) {
			return 0, nil
		},
		findAllFn: func(_ context.Context, f repository.Filter, _ int, _ int64) ([]*model.Hotel, error) {
			seen = f
			return nil, nil
		},
	}

	svc := newTestService(repo, &mockRoomLister{}, cfg)

	// Callers cannot widen the listing to inactive hotels.
	filter := repository.Filter{Status: "inactive", City: "  Paris   "}
	if _, _, err := svc.GetAll(context.Background(), filter, 10, 0); err != nil {
		t.Fatalf("GetAll: %v", err)
	}

	if seen.Status != model.HotelStatusActive {
		t.Errorf("status = %q, want active", seen.Status)
	}
	if seen.City != "Paris" {
		t.Errorf("city = %q, want trimmed Paris", seen.City)
	}
}

func TestDeleteIsSoftDelete(t *testing.T) {
	cfg := testConfig(t)
	gotStatus := ""
	repo := &mockHotelRepo{
		setStatusFn: func(_ context.Context, _ string, status string) error {
			gotStatus = status
			return nil
		},
	}

	svc := newTestService(repo, &mockRoomLister{}, cfg)

	if err := svc.Delete(context.Background(), "507f1f77bcf86cd799439012"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if gotStatus != model.HotelStatusInactive {
		t.Errorf("status = %q, want inactive", gotStatus)
	}
}

func TestGetByIDIncludesAvailableRooms(t *testing.T) {
	cfg := testConfig(t)
	repo := &mockHotelRepo{
		findByIDFn: func(_ context.Context, id string) (*model.Hotel, error) {
			return &model.Hotel{ID: id, Name: "Grand Central", Status: model.HotelStatusActive}, nil
		},
	}
	rooms := &mockRoomLister{
		rooms: []*model.Room{{ID: "room1"}, {ID: "room2"}},
	}

	svc := newTestService(repo, rooms, cfg)

	result, err := svc.GetByID(context.Background(), "507f1f77bcf86cd799439012")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(result.Rooms) != 2 {
		t.Errorf("rooms = %d, want 2", len(result.Rooms))
	}
}

func TestGetByIDNotFound(t *testing.T) {
	cfg := testConfig(t)
	repo := &mockHotelRepo{
		findByIDFn: func(_ context.Context, _ string) (*model.Hotel, error) {
			return nil, hotelerrors.ErrNotFound
		},
	}

	svc := newTestService(repo, &mockRoomLister{}, cfg)

	_, err := svc.GetByID(context.Background(), "507f1f77bcf86cd799439012")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != "NOT_FOUND" {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestGetStatsRequiresExistingHotel(t *testing.T) {
	cfg := testConfig(t)
	aggregated := false
	repo := &mockHotelRepo{
		findByIDFn: func(_ context.Context, _ string) (*model.Hotel, error) {
			return nil, hotelerrors.ErrNotFound
		},
		aggregateStatsFn: func(_ context.Context, _ string) (*repository.Stats, error) {
			aggregated = true
			return &repository.Stats{}, nil
		},
	}

	svc := newTestService(repo, &mockRoomLister{}, cfg)

	_, err := svc.GetStats(context.Background(), "507f1f77bcf86cd799439012")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != "NOT_FOUND" {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
	if aggregated {
		t.Error("stats must not be aggregated for a missing hotel")
	}
}

func TestCreateRejectsInvalidHotel(t *testing.T) {
	cfg := testConfig(t)
	svc := newTestService(&mockHotelRepo{}, &mockRoomLister{}, cfg)

	hotel := &model.Hotel{Name: "X"} // too short, missing required fields
	err := svc.Create(context.Background(), hotel)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR, got %v", err)
	}
}
