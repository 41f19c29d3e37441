package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingerrors "stayhub/internal/bookings/errors"
	"stayhub/pkg/config"
	"stayhub/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Bookings"
)

type Filter struct {
	UserID        string
	HotelID       string
	RoomID        string
	Status        string
	CheckInFrom   *time.Time
	CheckInUntil  *time.Time
	CheckOutUntil *time.Time
}

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindByReference(ctx context.Context, reference string) (*model.Booking, error)
	FindAll(ctx context.Context, filter Filter, limit int, offset int64) ([]*model.Booking, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	Update(ctx context.Context, id string, updates *model.BookingUpdate) error
	MarkCancelled(ctx context.Context, id string, cancellation *model.Cancellation) error
}

type mongoBookingRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoBookingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	booking.CreatedAt = now
	booking.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", bookingerrors.ErrDuplicateReference, booking.Reference)
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingerrors.ErrInvalidID, id)
	}

	var booking model.Booking
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) FindByReference(ctx context.Context, reference string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var booking model.Booking
	err := r.collection.FindOne(ctx, bson.M{"booking_reference": reference}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking by reference: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) FindAll(ctx context.Context, filter Filter, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, buildFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

func (r *mongoBookingRepository) Count(ctx context.Context, filter Filter) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func (r *mongoBookingRepository) Update(ctx context.Context, id string, updates *model.BookingUpdate) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingerrors.ErrInvalidID, id)
	}

	set := bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)}
	if updates.Status != "" {
		set["status"] = updates.Status
	}
	if updates.PaymentStatus != "" {
		set["payment.status"] = updates.PaymentStatus
		if updates.PaymentStatus == model.PaymentStatusCompleted {
			set["payment.paid_at"] = time.Now().UTC().Truncate(time.Millisecond)
		}
	}
	if updates.TransactionID != "" {
		set["payment.transaction_id"] = updates.TransactionID
	}
	if updates.SpecialRequests != nil {
		set["special_requests"] = *updates.SpecialRequests
	}
	if updates.RefundAmount != nil {
		set["cancellation.refund_amount"] = *updates.RefundAmount
	}

	// Cancelled bookings are immutable through the generic update path;
	// cancellation itself goes through MarkCancelled.
	filter := bson.M{"_id": objectID, "status": bson.M{"$ne": model.BookingStatusCancelled}}

	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	if result.MatchedCount == 0 {
		return bookingerrors.ErrNotFound
	}
	return nil
}

// MarkCancelled flips status to cancelled only when the booking is not
// already cancelled. The filter carries the precondition, so a concurrent or
// repeated cancel matches nothing instead of double-applying.
func (r *mongoBookingRepository) MarkCancelled(ctx context.Context, id string, cancellation *model.Cancellation) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingerrors.ErrInvalidID, id)
	}

	filter := bson.M{
		"_id":    objectID,
		"status": bson.M{"$ne": model.BookingStatusCancelled},
	}
	update := bson.M{"$set": bson.M{
		"status":       model.BookingStatusCancelled,
		"cancellation": cancellation,
		"updated_at":   time.Now().UTC().Truncate(time.Millisecond),
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to cancel booking: %w", err)
	}
	if result.MatchedCount == 0 {
		// Distinguish missing from already cancelled so the caller can map
		// to 404 vs 409.
		count, countErr := r.collection.CountDocuments(ctx, bson.M{"_id": objectID})
		if countErr != nil {
			return fmt.Errorf("failed to cancel booking: %w", countErr)
		}
		if count == 0 {
			return bookingerrors.ErrNotFound
		}
		return bookingerrors.ErrAlreadyCancelled
	}
	return nil
}

func buildFilter(f Filter) bson.M {
	filter := bson.M{}

	if f.UserID != "" {
		filter["user"] = f.UserID
	}
	if f.HotelID != "" {
		filter["hotel"] = f.HotelID
	}
	if f.RoomID != "" {
		filter["room"] = f.RoomID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.CheckInFrom != nil || f.CheckInUntil != nil {
		checkIn := bson.M{}
		if f.CheckInFrom != nil {
			checkIn["$gte"] = *f.CheckInFrom
		}
		if f.CheckInUntil != nil {
			checkIn["$lte"] = *f.CheckInUntil
		}
		filter["dates.check_in"] = checkIn
	}
	if f.CheckOutUntil != nil {
		filter["dates.check_out"] = bson.M{"$lte": *f.CheckOutUntil}
	}

	return filter
}
