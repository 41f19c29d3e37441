package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	hotelerrors "stayhub/internal/hotels/errors"
	"stayhub/pkg/config"
	"stayhub/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName        = "Hotels"
	bookingCollectionName = "Bookings"
)

// Filter narrows hotel listings. Zero values mean "no constraint";
// Status is always applied by the service.
type Filter struct {
	City      string
	MinPrice  *float64
	MaxPrice  *float64
	Amenities []string
	MinRating *float64
	Status    string
}

// Stats is the owner-dashboard aggregate computed from real bookings.
type Stats struct {
	HotelID       string  `json:"hotel_id" bson:"_id"`
	TotalBookings int64   `json:"total_bookings" bson:"total_bookings"`
	Cancelled     int64   `json:"cancelled_bookings" bson:"cancelled_bookings"`
	TotalRevenue  float64 `json:"total_revenue" bson:"total_revenue"`
}

type HotelRepository interface {
	Create(ctx context.Context, hotel *model.Hotel) error
	FindByID(ctx context.Context, id string) (*model.Hotel, error)
	FindAll(ctx context.Context, filter Filter, limit int, offset int64) ([]*model.Hotel, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	Update(ctx context.Context, id string, updates *model.HotelUpdate) error
	SetStatus(ctx context.Context, id string, status string) error
	AggregateStats(ctx context.Context, hotelID string) (*Stats, error)
}

type mongoHotelRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
}

func NewMongoHotelRepository(cfg *config.Config) HotelRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoHotelRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoHotelRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoHotelRepository) Create(ctx context.Context, hotel *model.Hotel) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	hotel.CreatedAt = now
	hotel.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, hotel)
	if err != nil {
		return fmt.Errorf("failed to create hotel: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		hotel.ID = oid.Hex()
	}
	return nil
}

func (r *mongoHotelRepository) FindByID(ctx context.Context, id string) (*model.Hotel, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", hotelerrors.ErrInvalidID, id)
	}

	var hotel model.Hotel
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&hotel)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, hotelerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find hotel: %w", err)
	}

	return &hotel, nil
}

func (r *mongoHotelRepository) FindAll(ctx context.Context, filter Filter, limit int, offset int64) ([]*model.Hotel, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "rating.average", Value: -1}, {Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, buildFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find hotels: %w", err)
	}
	defer cursor.Close(ctx)

	var hotels []*model.Hotel
	if err = cursor.All(ctx, &hotels); err != nil {
		return nil, fmt.Errorf("failed to decode hotels: %w", err)
	}

	return hotels, nil
}

func (r *mongoHotelRepository) Count(ctx context.Context, filter Filter) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count hotels: %w", err)
	}
	return count, nil
}

func (r *mongoHotelRepository) Update(ctx context.Context, id string, updates *model.HotelUpdate) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", hotelerrors.ErrInvalidID, id)
	}

	set := bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)}
	if updates.Name != "" {
		set["name"] = updates.Name
	}
	if updates.Description != "" {
		set["description"] = updates.Description
	}
	if updates.Address != "" {
		set["address"] = updates.Address
	}
	if updates.City != "" {
		set["city"] = updates.City
	}
	if updates.Country != "" {
		set["country"] = updates.Country
	}
	if updates.Coordinates != nil {
		set["coordinates"] = updates.Coordinates
	}
	if updates.Images != nil {
		set["images"] = updates.Images
	}
	if updates.Amenities != nil {
		set["amenities"] = updates.Amenities
	}
	if updates.Contact != nil {
		set["contact"] = updates.Contact
	}
	if updates.Status != "" {
		set["status"] = updates.Status
	}
	if updates.PriceRange != nil {
		set["price_range"] = updates.PriceRange
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update hotel: %w", err)
	}
	if result.MatchedCount == 0 {
		return hotelerrors.ErrNotFound
	}
	return nil
}

// SetStatus implements soft deletion: rows are never removed, the
// lifecycle status is flipped instead.
func (r *mongoHotelRepository) SetStatus(ctx context.Context, id string, status string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", hotelerrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC().Truncate(time.Millisecond),
	}})
	if err != nil {
		return fmt.Errorf("failed to update hotel status: %w", err)
	}
	if result.MatchedCount == 0 {
		return hotelerrors.ErrNotFound
	}
	return nil
}

func (r *mongoHotelRepository) AggregateStats(ctx context.Context, hotelID string) (*Stats, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	if _, err := primitive.ObjectIDFromHex(hotelID); err != nil {
		return nil, fmt.Errorf("%w: %s", hotelerrors.ErrInvalidID, hotelID)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"hotel": hotelID}}},
		{{Key: "$group", Value: bson.M{
			"_id":            "$hotel",
			"total_bookings": bson.M{"$sum": 1},
			"cancelled_bookings": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$status", model.BookingStatusCancelled}}, 1, 0},
			}},
			"total_revenue": bson.M{"$sum": bson.M{
				"$cond": bson.A{
					bson.M{"$eq": bson.A{"$status", model.BookingStatusCancelled}},
					0,
					"$pricing.total_amount",
				},
			}},
		}}},
	}

	cursor, err := r.db.Collection(bookingCollectionName).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate hotel stats: %w", err)
	}
	defer cursor.Close(ctx)

	var results []Stats
	if err = cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode hotel stats: %w", err)
	}

	if len(results) == 0 {
		return &Stats{HotelID: hotelID}, nil
	}
	return &results[0], nil
}

func buildFilter(f Filter) bson.M {
	filter := bson.M{}

	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.City != "" {
		// QuoteMeta keeps user input from becoming a pathological pattern.
		filter["city"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.City), Options: "i"}
	}
	if f.MinPrice != nil {
		filter["price_range.min"] = bson.M{"$gte": *f.MinPrice}
	}
	if f.MaxPrice != nil {
		filter["price_range.max"] = bson.M{"$lte": *f.MaxPrice}
	}
	if len(f.Amenities) > 0 {
		filter["amenities"] = bson.M{"$in": f.Amenities}
	}
	if f.MinRating != nil {
		filter["rating.average"] = bson.M{"$gte": *f.MinRating}
	}

	return filter
}
