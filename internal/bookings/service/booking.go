package service

import (
	"context"
	"errors"
	"math"
	"time"

	bookingerrors "stayhub/internal/bookings/errors"
	"stayhub/internal/bookings/repository"
	"stayhub/internal/bookings/validator"
	roomerrors "stayhub/internal/rooms/errors"
	"stayhub/pkg/config"
	dbmongo "stayhub/pkg/db/mongo"
	apperrors "stayhub/pkg/errors"
	"stayhub/pkg/events"
	"stayhub/pkg/model"
	"stayhub/pkg/sanitizer"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// RoomInventory is the slice of the rooms repository the booking flow
// needs: pricing lookup plus the two atomic inventory operations.
type RoomInventory interface {
	FindByID(ctx context.Context, id string) (*model.Room, error)
	ReserveUnit(ctx context.Context, id string) error
	ReleaseUnit(ctx context.Context, id string) error
}

type BookingService interface {
	Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetByReference(ctx context.Context, reference string) (*model.Booking, error)
	GetByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, int64, error)
	GetAll(ctx context.Context, filter repository.Filter, limit int, offset int64) ([]*model.Booking, int64, error)
	Update(ctx context.Context, id string, updates *model.BookingUpdate) error
	Cancel(ctx context.Context, id string, reason string) (*model.Booking, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	rooms     RoomInventory
	tx        dbmongo.TransactionManager
	publisher events.Publisher
	validator *validator.BookingValidator
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	rooms RoomInventory,
	tx dbmongo.TransactionManager,
	publisher events.Publisher,
	bookingValidator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		rooms:     rooms,
		tx:        tx,
		publisher: publisher,
		validator: bookingValidator,
		cfg:       cfg,
	}
}

// Create prices the stay from the room document and reserves inventory and
// inserts the booking inside one transaction. Either both writes land or
// neither does.
func (s *bookingService) Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error) {
	req.Guest.FirstName = sanitizer.NormalizeName(req.Guest.FirstName)
	req.Guest.LastName = sanitizer.NormalizeName(req.Guest.LastName)
	req.Guest.Email = sanitizer.NormalizeEmail(req.Guest.Email)
	req.Guest.Phone = sanitizer.NormalizePhone(req.Guest.Phone)

	if err := s.validator.ValidateRequest(req); err != nil {
		return nil, apperrors.Validation(err.Error(), nil)
	}
	if err := s.validator.ValidateDates(req.CheckIn, req.CheckOut); err != nil {
		return nil, apperrors.InvalidDateRange(err.Error())
	}

	nights := computeNights(req.CheckIn, req.CheckOut)
	if nights < 1 {
		return nil, apperrors.InvalidDateRange("stay must cover at least one night")
	}

	room, err := s.rooms.FindByID(ctx, req.RoomID)
	if err != nil {
		return nil, translateRoomError(err, req.RoomID)
	}
	if room.HotelID != req.HotelID {
		return nil, apperrors.InvalidInput("Room does not belong to the requested hotel")
	}

	booking := s.buildBooking(req, room, nights)

	err = s.tx.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.rooms.ReserveUnit(sessCtx, room.ID); err != nil {
			if errors.Is(err, roomerrors.ErrNoUnits) {
				return apperrors.RoomUnavailable(room.ID)
			}
			return err
		}
		return s.repo.Create(sessCtx, booking)
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		s.cfg.Log.Error("Booking transaction failed", "room", room.ID, "error", err)
		return nil, apperrors.Internal("Failed to create booking", err)
	}

	s.cfg.Log.Info("Booking created",
		"id", booking.ID,
		"reference", booking.Reference,
		"room", booking.RoomID,
		"nights", nights,
		"total", booking.Pricing.Total,
	)

	s.publish(ctx, events.TypeBookingCreated, booking.RoomID, events.BookingCreated{
		BookingID: booking.ID,
		Reference: booking.Reference,
		UserID:    booking.UserID,
		HotelID:   booking.HotelID,
		RoomID:    booking.RoomID,
		CheckIn:   booking.Dates.CheckIn,
		CheckOut:  booking.Dates.CheckOut,
		Nights:    booking.Dates.Nights,
		Total:     booking.Pricing.Total,
		Currency:  booking.Pricing.Currency,
		Status:    booking.Status,
	})

	return booking, nil
}

func (s *bookingService) buildBooking(req *model.BookingRequest, room *model.Room, nights int) *model.Booking {
	roomPrice := room.Pricing.BasePrice * float64(nights)
	taxes := roomPrice * s.cfg.TaxRate
	fees := s.cfg.ServiceFee

	status := model.BookingStatusPending
	if req.Confirm {
		status = model.BookingStatusConfirmed
	}

	method := req.PaymentMethod
	if method == "" {
		method = "credit_card"
	}

	return &model.Booking{
		Reference: "BK-" + uuid.NewString(),
		UserID:    req.UserID,
		HotelID:   req.HotelID,
		RoomID:    req.RoomID,
		Guest:     req.Guest,
		Dates: model.StayDates{
			CheckIn:  req.CheckIn,
			CheckOut: req.CheckOut,
			Nights:   nights,
		},
		Pricing: model.BookingPricing{
			RoomPrice: roomPrice,
			Taxes:     taxes,
			Fees:      fees,
			Discount:  0,
			Total:     roomPrice + taxes + fees,
			Currency:  room.Pricing.Currency,
		},
		Payment: model.Payment{
			Method: method,
			Status: model.PaymentStatusPending,
		},
		Status:          status,
		SpecialRequests: req.SpecialRequests,
	}
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err, id)
	}
	return booking, nil
}

func (s *bookingService) GetByReference(ctx context.Context, reference string) (*model.Booking, error) {
	if reference == "" {
		return nil, apperrors.InvalidInput("Booking reference cannot be empty")
	}

	booking, err := s.repo.FindByReference(ctx, reference)
	if err != nil {
		return nil, translateRepoError(err, reference)
	}
	return booking, nil
}

func (s *bookingService) GetByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, int64, error) {
	if userID == "" {
		return nil, 0, apperrors.InvalidInput("User ID cannot be empty")
	}
	return s.GetAll(ctx, repository.Filter{UserID: userID}, limit, offset)
}

func (s *bookingService) GetAll(ctx context.Context, filter repository.Filter, limit int, offset int64) ([]*model.Booking, int64, error) {
	count, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to count bookings", err)
	}

	bookings, err := s.repo.FindAll(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to retrieve bookings", err)
	}

	return bookings, count, nil
}

func (s *bookingService) Update(ctx context.Context, id string, updates *model.BookingUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		return apperrors.Validation(err.Error(), nil)
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return translateRepoError(err, id)
	}

	s.cfg.Log.Info("Booking updated", "id", id)
	return nil
}

// Cancel flips the booking to cancelled and returns its room unit, both in
// one transaction. Repeating a cancel is a conflict, not a second refund or
// a second inventory release.
func (s *bookingService) Cancel(ctx context.Context, id string, reason string) (*model.Booking, error) {
	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status == model.BookingStatusCancelled {
		return nil, apperrors.AlreadyCancelled(id)
	}

	cancellation := &model.Cancellation{
		IsCancelled:  true,
		CancelledAt:  time.Now().UTC().Truncate(time.Millisecond),
		Reason:       reason,
		RefundAmount: refundFor(booking),
	}

	err = s.tx.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.MarkCancelled(sessCtx, id, cancellation); err != nil {
			return err
		}
		return s.rooms.ReleaseUnit(sessCtx, booking.RoomID)
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		if errors.Is(err, bookingerrors.ErrAlreadyCancelled) {
			return nil, apperrors.AlreadyCancelled(id)
		}
		if errors.Is(err, bookingerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		s.cfg.Log.Error("Cancellation transaction failed", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to cancel booking", err)
	}

	booking.Status = model.BookingStatusCancelled
	booking.Cancellation = cancellation

	s.cfg.Log.Info("Booking cancelled", "id", id, "reference", booking.Reference, "room", booking.RoomID)

	s.publish(ctx, events.TypeBookingCancelled, booking.RoomID, events.BookingCancelled{
		BookingID:   booking.ID,
		Reference:   booking.Reference,
		RoomID:      booking.RoomID,
		Reason:      reason,
		CancelledAt: cancellation.CancelledAt,
	})

	return booking, nil
}

func (s *bookingService) publish(ctx context.Context, eventType, key string, payload any) {
	if err := s.publisher.Publish(ctx, eventType, key, payload); err != nil {
		s.cfg.Log.Warn("Failed to publish event", "type", eventType, "key", key, "error", err)
	}
}

// refundFor is the refund policy: full refund once payment completed,
// nothing otherwise.
func refundFor(booking *model.Booking) float64 {
	if booking.Payment.Status == model.PaymentStatusCompleted {
		return booking.Pricing.Total
	}
	return 0
}

// computeNights rounds a partial last day up, so a 26-hour stay is billed
// as two nights.
func computeNights(checkIn, checkOut time.Time) int {
	hours := checkOut.Sub(checkIn).Hours()
	return int(math.Ceil(hours / 24))
}

func translateRepoError(err error, id string) error {
	switch {
	case errors.Is(err, bookingerrors.ErrNotFound):
		return apperrors.NotFoundWithID("Booking", id)
	case errors.Is(err, bookingerrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid booking ID format")
	case errors.Is(err, bookingerrors.ErrAlreadyCancelled):
		return apperrors.AlreadyCancelled(id)
	default:
		return apperrors.Internal("Booking storage operation failed", err)
	}
}

func translateRoomError(err error, roomID string) error {
	switch {
	case errors.Is(err, roomerrors.ErrNotFound):
		return apperrors.NotFoundWithID("Room", roomID)
	case errors.Is(err, roomerrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid room ID format")
	default:
		return apperrors.Internal("Room lookup failed", err)
	}
}
