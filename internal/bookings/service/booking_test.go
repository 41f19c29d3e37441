package service

import (
	"context"
	"strings"
	"testing"
	"time"

	bookingerrors "stayhub/internal/bookings/errors"
	"stayhub/internal/bookings/repository"
	"stayhub/internal/bookings/validator"
	roomerrors "stayhub/internal/rooms/errors"
	"stayhub/pkg/config"
	dbmongo "stayhub/pkg/db/mongo"
	apperrors "stayhub/pkg/errors"
	"stayhub/pkg/logger"
	"stayhub/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	testUserID  = "507f1f77bcf86cd799439011"
	testHotelID = "507f1f77bcf86cd799439012"
	testRoomID  = "507f1f77bcf86cd799439013"
)

type mockBookingRepo struct {
	createFn          func(ctx context.Context, booking *model.Booking) error
	findByIDFn        func(ctx context.Context, id string) (*model.Booking, error)
	findByReferenceFn func(ctx context.Context, reference string) (*model.Booking, error)
	findAllFn         func(ctx context.Context, filter repository.Filter, limit int, offset int64) ([]*model.Booking, error)
	countFn           func(ctx context.Context, filter repository.Filter) (int64, error)
	updateFn          func(ctx context.Context, id string, updates *model.BookingUpdate) error
	markCancelledFn   func(ctx context.Context, id string, cancellation *model.Cancellation) error
}

func (m *mockBookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	return m.createFn(ctx, booking)
}

func (m *mockBookingRepo) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockBookingRepo) FindByReference(ctx context.Context, reference string) (*model.Booking, error) {
	return m.findByReferenceFn(ctx, reference)
}

func (m *mockBookingRepo) FindAll(ctx context.Context, filter repository.Filter, limit int, offset int64) ([]*model.Booking, error) {
	return m.findAllFn(ctx, filter, limit, offset)
}

func (m *mockBookingRepo) Count(ctx context.Context, filter repository.Filter) (int64, error) {
	return m.countFn(ctx, filter)
}

func (m *mockBookingRepo) Update(ctx context.Context, id string, updates *model.BookingUpdate) error {
	return m.updateFn(ctx, id, updates)
}

func (m *mockBookingRepo) MarkCancelled(ctx context.Context, id string, cancellation *model.Cancellation) error {
	return m.markCancelledFn(ctx, id, cancellation)
}

type mockInventory struct {
	findByIDFn    func(ctx context.Context, id string) (*model.Room, error)
	reserveUnitFn func(ctx context.Context, id string) error
	releaseUnitFn func(ctx context.Context, id string) error
}

func (m *mockInventory) FindByID(ctx context.Context, id string) (*model.Room, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockInventory) ReserveUnit(ctx context.Context, id string) error {
	return m.reserveUnitFn(ctx, id)
}

func (m *mockInventory) ReleaseUnit(ctx context.Context, id string) error {
	return m.releaseUnitFn(ctx, id)
}

// mockTx runs the transaction body directly; the mocks below never touch
// the session context.
type mockTx struct{}

func (mockTx) ExecuteTransaction(_ context.Context, fn dbmongo.TransactionFunc) error {
	var sessCtx mongo.SessionContext
	return fn(sessCtx)
}

type recordedEvent struct {
	eventType string
	key       string
	payload   any
}

type mockPublisher struct {
	events []recordedEvent
}

func (m *mockPublisher) Publish(_ context.Context, eventType, key string, payload any) error {
	m.events = append(m.events, recordedEvent{eventType: eventType, key: key, payload: payload})
	return nil
}

func (m *mockPublisher) Close() error { return nil }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		TaxRate:    0.10,
		ServiceFee: 0,
		Log:        logger.New(logger.Config{Level: logger.ERROR}),
	}
}

func testRoom() *model.Room {
	return &model.Room{
		ID:      testRoomID,
		HotelID: testHotelID,
		Type:    "deluxe",
		Name:    "Deluxe King",
		Capacity: model.Capacity{
			Adults: 2,
		},
		Pricing: model.RoomPricing{
			BasePrice: 100,
			Currency:  "USD",
		},
		Availability: model.Availability{
			IsAvailable:    true,
			TotalRooms:     5,
			AvailableRooms: 3,
		},
	}
}

func testRequest() *model.BookingRequest {
	checkIn := time.Date(2026, 10, 1, 15, 0, 0, 0, time.UTC)
	return &model.BookingRequest{
		UserID:  testUserID,
		HotelID: testHotelID,
		RoomID:  testRoomID,
		Guest: model.GuestDetails{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Email:     "ada@example.com",
			Phone:     "+14155550123",
			Adults:    2,
		},
		CheckIn:  checkIn,
		CheckOut: checkIn.Add(48 * time.Hour),
	}
}

func newTestService(repo *mockBookingRepo, rooms *mockInventory, pub *mockPublisher, cfg *config.Config) BookingService {
	return NewBookingService(repo, rooms, mockTx{}, pub, validator.NewBookingValidator(cfg.Log), cfg)
}

func TestCreateComputesPricing(t *testing.T) {
	cfg := testConfig(t)
	var created *model.Booking
	repo := &mockBookingRepo{
		createFn: func(_ context.Context, b *model.Booking) error {
			created = b
			return nil
		},
	}
	rooms := &mockInventory{
		findByIDFn:    func(_ context.Context, _ string) (*model.Room, error) { return testRoom(), nil },
		reserveUnitFn: func(_ context.Context, _ string) error { return nil },
	}
	pub := &mockPublisher{}

	svc := newTestService(repo, rooms, pub, cfg)
	booking, err := svc.Create(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if created == nil {
		t.Fatal("expected booking insert")
	}
	if booking.Dates.Nights != 2 {
		t.Errorf("nights = %d, want 2", booking.Dates.Nights)
	}
	if booking.Pricing.RoomPrice != 200 {
		t.Errorf("room price = %g, want 200", booking.Pricing.RoomPrice)
	}
	if booking.Pricing.Taxes != 20 {
		t.Errorf("taxes = %g, want 20", booking.Pricing.Taxes)
	}
	if booking.Pricing.Total != 220 {
		t.Errorf("total = %g, want 220", booking.Pricing.Total)
	}
	if booking.Pricing.Currency != "USD" {
		t.Errorf("currency = %q, want USD", booking.Pricing.Currency)
	}
	if !strings.HasPrefix(booking.Reference, "BK-") {
		t.Errorf("reference %q missing BK- prefix", booking.Reference)
	}
	if booking.Status != model.BookingStatusPending {
		t.Errorf("status = %q, want pending", booking.Status)
	}

	if len(pub.events) != 1 || pub.events[0].eventType != "booking.created" {
		t.Errorf("expected one booking.created event, got %v", pub.events)
	}
}

func TestCreateGeneratesUniqueReferences(t *testing.T) {
	cfg := testConfig(t)
	repo := &mockBookingRepo{
		createFn: func(_ context.Context, _ *model.Booking) error { return nil },
	}
	rooms := &mockInventory{
		findByIDFn:    func(_ context.Context, _ string) (*model.Room, error) { return testRoom(), nil },
		reserveUnitFn: func(_ context.Context, _ string) error { return nil },
	}

	svc := newTestService(repo, rooms, &mockPublisher{}, cfg)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		booking, err := svc.Create(context.Background(), testRequest())
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if seen[booking.Reference] {
			t.Fatalf("duplicate reference %q", booking.Reference)
		}
		seen[booking.Reference] = true
	}
}

func TestCreateRejectsInvalidDateRange(t *testing.T) {
	cfg := testConfig(t)
	rooms := &mockInventory{
		findByIDFn: func(_ context.Context, _ string) (*model.Room, error) { return testRoom(), nil },
	}
	svc := newTestService(&mockBookingRepo{}, rooms, &mockPublisher{}, cfg)

	checkIn := time.Date(2026, 10, 1, 15, 0, 0, 0, time.UTC)
	cases := []struct {
		name     string
		checkOut time.Time
	}{
		{"checkout before checkin", checkIn.Add(-24 * time.Hour)},
		{"checkout equals checkin", checkIn},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := testRequest()
			req.CheckIn = checkIn
			req.CheckOut = tc.checkOut

			_, err := svc.Create(context.Background(), req)
			appErr := apperrors.AsAppError(err)
			if appErr == nil || appErr.Code != "INVALID_DATE_RANGE" {
				t.Errorf("expected INVALID_DATE_RANGE, got %v", err)
			}
		})
	}
}

func TestCreatePartialNightRoundsUp(t *testing.T) {
	cfg := testConfig(t)
	var created *model.Booking
	repo := &mockBookingRepo{
		createFn: func(_ context.Context, b *model.Booking) error {
			created = b
			return nil
		},
	}
	rooms := &mockInventory{
		findByIDFn:    func(_ context.Context, _ string) (*model.Room, error) { return testRoom(), nil },
		reserveUnitFn: func(_ context.Context, _ string) error { return nil },
	}

	svc := newTestService(repo, rooms, &mockPublisher{}, cfg)

	req := testRequest()
	req.CheckOut = req.CheckIn.Add(26 * time.Hour)

	if _, err := svc.Create(context.Background(), req); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Dates.Nights != 2 {
		t.Errorf("nights = %d, want 2 for a 26h stay", created.Dates.Nights)
	}
}

func TestCreateRoomUnavailable(t *testing.T) {
	cfg := testConfig(t)
	inserted := false
	repo := &mockBookingRepo{
		createFn: func(_ context.Context, _ *model.Booking) error {
			inserted = true
			return nil
		},
	}
	rooms := &mockInventory{
		findByIDFn:    func(_ context.Context, _ string) (*model.Room, error) { return testRoom(), nil },
		reserveUnitFn: func(_ context.Context, _ string) error { return roomerrors.ErrNoUnits },
	}
	pub := &mockPublisher{}

	svc := newTestService(repo, rooms, pub, cfg)

	_, err := svc.Create(context.Background(), testRequest())
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != "ROOM_UNAVAILABLE" {
		t.Fatalf("expected ROOM_UNAVAILABLE, got %v", err)
	}
	if inserted {
		t.Error("booking must not be inserted when the reservation fails")
	}
	if len(pub.events) != 0 {
		t.Errorf("no events expected, got %v", pub.events)
	}
}

func TestCreateRejectsHotelMismatch(t *testing.T) {
	cfg := testConfig(t)
	rooms := &mockInventory{
		findByIDFn: func(_ context.Context, _ string) (*model.Room, error) { return testRoom(), nil },
	}
	svc := newTestService(&mockBookingRepo{}, rooms, &mockPublisher{}, cfg)

	req := testRequest()
	req.HotelID = "507f1f77bcf86cd799439099"

	_, err := svc.Create(context.Background(), req)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != "INVALID_INPUT" {
		t.Errorf("expected INVALID_INPUT for hotel mismatch, got %v", err)
	}
}

func TestCreateRejectsInvalidGuest(t *testing.T) {
	cfg := testConfig(t)
	svc := newTestService(&mockBookingRepo{}, &mockInventory{}, &mockPublisher{}, cfg)

	req := testRequest()
	req.Guest.Email = "not-an-email"

	_, err := svc.Create(context.Background(), req)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR, got %v", err)
	}
}

func cancelledBooking() *model.Booking {
	b := &model.Booking{
		ID:        "507f1f77bcf86cd799439021",
		Reference: "BK-test",
		UserID:    testUserID,
		HotelID:   testHotelID,
		RoomID:    testRoomID,
		Status:    model.BookingStatusCancelled,
	}
	return b
}

func confirmedBooking() *model.Booking {
	return &model.Booking{
		ID:        "507f1f77bcf86cd799439021",
		Reference: "BK-test",
		UserID:    testUserID,
		HotelID:   testHotelID,
		RoomID:    testRoomID,
		Status:    model.BookingStatusConfirmed,
		Payment: model.Payment{
			Method: "credit_card",
			Status: model.PaymentStatusCompleted,
		},
		Pricing: model.BookingPricing{Total: 220, Currency: "USD"},
	}
}

func TestCancelReleasesInventory(t *testing.T) {
	cfg := testConfig(t)
	booking := confirmedBooking()

	repo := &mockBookingRepo{
		findByIDFn: func(_ context.Context, _ string) (*model.Booking, error) { return booking, nil },
		markCancelledFn: func(_ context.Context, _ string, c *model.Cancellation) error {
			if !c.IsCancelled {
				t.Error("cancellation flag not set")
			}
			if c.RefundAmount != 220 {
				t.Errorf("refund = %g, want full total for a completed payment", c.RefundAmount)
			}
			return nil
		},
	}
	released := ""
	rooms := &mockInventory{
		releaseUnitFn: func(_ context.Context, id string) error {
			released = id
			return nil
		},
	}
	pub := &mockPublisher{}

	svc := newTestService(repo, rooms, pub, cfg)

	result, err := svc.Cancel(context.Background(), booking.ID, "plans changed")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if released != testRoomID {
		t.Errorf("released room = %q, want %q", released, testRoomID)
	}
	if result.Status != model.BookingStatusCancelled {
		t.Errorf("status = %q, want cancelled", result.Status)
	}
	if len(pub.events) != 1 || pub.events[0].eventType != "booking.cancelled" {
		t.Errorf("expected one booking.cancelled event, got %v", pub.events)
	}
}

func TestCancelAlreadyCancelled(t *testing.T) {
	cfg := testConfig(t)
	repo := &mockBookingRepo{
		findByIDFn: func(_ context.Context, _ string) (*model.Booking, error) { return cancelledBooking(), nil },
	}
	released := false
	rooms := &mockInventory{
		releaseUnitFn: func(_ context.Context, _ string) error {
			released = true
			return nil
		},
	}

	svc := newTestService(repo, rooms, &mockPublisher{}, cfg)

	_, err := svc.Cancel(context.Background(), "507f1f77bcf86cd799439021", "")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != "ALREADY_CANCELLED" {
		t.Fatalf("expected ALREADY_CANCELLED, got %v", err)
	}
	if released {
		t.Error("inventory must not be released twice")
	}
}

func TestCancelLosesConditionalUpdateRace(t *testing.T) {
	cfg := testConfig(t)
	repo := &mockBookingRepo{
		findByIDFn: func(_ context.Context, _ string) (*model.Booking, error) { return confirmedBooking(), nil },
		markCancelledFn: func(_ context.Context, _ string, _ *model.Cancellation) error {
			return bookingerrors.ErrAlreadyCancelled
		},
	}
	released := false
	rooms := &mockInventory{
		releaseUnitFn: func(_ context.Context, _ string) error {
			released = true
			return nil
		},
	}

	svc := newTestService(repo, rooms, &mockPublisher{}, cfg)

	_, err := svc.Cancel(context.Background(), "507f1f77bcf86cd799439021", "")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != "ALREADY_CANCELLED" {
		t.Fatalf("expected ALREADY_CANCELLED when the flip matched nothing, got %v", err)
	}
	if released {
		t.Error("inventory must not be released when the flip matched nothing")
	}
}

func TestCancelUnpaidBookingRefundsNothing(t *testing.T) {
	cfg := testConfig(t)
	booking := confirmedBooking()
	booking.Payment.Status = model.PaymentStatusPending

	repo := &mockBookingRepo{
		findByIDFn: func(_ context.Context, _ string) (*model.Booking, error) { return booking, nil },
		markCancelledFn: func(_ context.Context, _ string, c *model.Cancellation) error {
			if c.RefundAmount != 0 {
				t.Errorf("refund = %g, want 0 for an unpaid booking", c.RefundAmount)
			}
			return nil
		},
	}
	rooms := &mockInventory{
		releaseUnitFn: func(_ context.Context, _ string) error { return nil },
	}

	svc := newTestService(repo, rooms, &mockPublisher{}, cfg)
	if _, err := svc.Cancel(context.Background(), booking.ID, ""); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	cfg := testConfig(t)
	repo := &mockBookingRepo{
		findByIDFn: func(_ context.Context, _ string) (*model.Booking, error) {
			return nil, bookingerrors.ErrNotFound
		},
	}

	svc := newTestService(repo, &mockInventory{}, &mockPublisher{}, cfg)

	_, err := svc.GetByID(context.Background(), "507f1f77bcf86cd799439021")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != "NOT_FOUND" {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestComputeNights(t *testing.T) {
	base := time.Date(2026, 10, 1, 15, 0, 0, 0, time.UTC)
	cases := []struct {
		name  string
		hours time.Duration
		want  int
	}{
		{"one night", 24 * time.Hour, 1},
		{"two nights", 48 * time.Hour, 2},
		{"partial second day", 26 * time.Hour, 2},
		{"under a day", 10 * time.Hour, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := computeNights(base, base.Add(tc.hours))
			if got != tc.want {
				t.Errorf("computeNights(%s) = %d, want %d", tc.hours, got, tc.want)
			}
		})
	}
}
