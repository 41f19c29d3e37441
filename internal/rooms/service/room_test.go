package service

import (
	"context"
	"testing"

	"stayhub/internal/rooms/repository"
	"stayhub/internal/rooms/validator"
	"stayhub/pkg/config"
	apperrors "stayhub/pkg/errors"
	"stayhub/pkg/logger"
	"stayhub/pkg/model"
)

type mockRoomRepo struct {
	createFn func(ctx context.Context, room *model.Room) error
}

func (m *mockRoomRepo) Create(ctx context.Context, room *model.Room) error {
	return m.createFn(ctx, room)
}

func (m *mockRoomRepo) FindByID(_ context.Context, _ string) (*model.Room, error) { return nil, nil }

func (m *mockRoomRepo) FindAll(_ context.Context, _ repository.Filter, _ int, _ int64) ([]*model.Room, error) {
	return nil, nil
}

func (m *mockRoomRepo) Count(_ context.Context, _ repository.Filter) (int64, error) { return 0, nil }

func (m *mockRoomRepo) FindAvailableByHotel(_ context.Context, _ string) ([]*model.Room, error) {
	return nil, nil
}

func (m *mockRoomRepo) Update(_ context.Context, _ string, _ *model.RoomUpdate) error { return nil }

func (m *mockRoomRepo) Delete(_ context.Context, _ string) error { return nil }

func (m *mockRoomRepo) ReserveUnit(_ context.Context, _ string) error { return nil }

func (m *mockRoomRepo) ReleaseUnit(_ context.Context, _ string) error { return nil }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{Log: logger.New(logger.Config{Level: logger.ERROR})}
}

func validRoom() *model.Room {
	return &model.Room{
		HotelID:     "507f1f77bcf86cd799439012",
		Type:        "Deluxe",
		Name:        "Deluxe King",
		Description: "Corner room with a king bed",
		Capacity:    model.Capacity{Adults: 2},
		BedConfiguration: model.BedConfiguration{
			BedType:  "King",
			BedCount: 1,
		},
		Pricing: model.RoomPricing{BasePrice: 150},
		Availability: model.Availability{
			TotalRooms: 4,
		},
	}
}

func TestCreateAppliesDefaults(t *testing.T) {
	cfg := testConfig(t)
	var created *model.Room
	repo := &mockRoomRepo{
		createFn: func(_ context.Context, r *model.Room) error {
			created = r
			return nil
		},
	}

	svc := NewRoomService(repo, validator.NewRoomValidator(cfg.Log), cfg)

	if err := svc.Create(context.Background(), validRoom()); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if created.Availability.AvailableRooms != 4 {
		t.Errorf("available rooms = %d, want seeded to total 4", created.Availability.AvailableRooms)
	}
	if !created.Availability.IsAvailable {
		t.Error("a room with free units must be available")
	}
	if created.Pricing.Currency != "USD" {
		t.Errorf("currency = %q, want USD default", created.Pricing.Currency)
	}
	if created.Policies.CheckIn == "" {
		t.Error("expected default policies")
	}
}

func TestCreateRejectsOversubscribedAvailability(t *testing.T) {
	cfg := testConfig(t)
	svc := NewRoomService(&mockRoomRepo{}, validator.NewRoomValidator(cfg.Log), cfg)

	room := validRoom()
	room.Availability.AvailableRooms = 9 // more than total

	err := svc.Create(context.Background(), room)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestCreateRejectsUnknownType(t *testing.T) {
	cfg := testConfig(t)
	svc := NewRoomService(&mockRoomRepo{}, validator.NewRoomValidator(cfg.Log), cfg)

	room := validRoom()
	room.Type = "Penthouse"

	err := svc.Create(context.Background(), room)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR, got %v", err)
	}
}
