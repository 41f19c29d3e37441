package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	roomerrors "stayhub/internal/rooms/errors"
	"stayhub/pkg/config"
	"stayhub/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Rooms"
)

type Filter struct {
	HotelID       string
	Type          string
	MinPrice      *float64
	MaxPrice      *float64
	Adults        *int
	Children      *int
	AvailableOnly bool
}

type RoomRepository interface {
	Create(ctx context.Context, room *model.Room) error
	FindByID(ctx context.Context, id string) (*model.Room, error)
	FindAll(ctx context.Context, filter Filter, limit int, offset int64) ([]*model.Room, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	FindAvailableByHotel(ctx context.Context, hotelID string) ([]*model.Room, error)
	Update(ctx context.Context, id string, updates *model.RoomUpdate) error
	Delete(ctx context.Context, id string) error
	ReserveUnit(ctx context.Context, id string) error
	ReleaseUnit(ctx context.Context, id string) error
}

type mongoRoomRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
}

func NewMongoRoomRepository(cfg *config.Config) RoomRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRoomRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoRoomRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoRoomRepository) Create(ctx context.Context, room *model.Room) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	room.CreatedAt = now
	room.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, room)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		room.ID = oid.Hex()
	}
	return nil
}

func (r *mongoRoomRepository) FindByID(ctx context.Context, id string) (*model.Room, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", roomerrors.ErrInvalidID, id)
	}

	var room model.Room
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&room)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, roomerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find room: %w", err)
	}

	return &room, nil
}

func (r *mongoRoomRepository) FindAll(ctx context.Context, filter Filter, limit int, offset int64) ([]*model.Room, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "pricing.base_price", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, buildFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find rooms: %w", err)
	}
	defer cursor.Close(ctx)

	var rooms []*model.Room
	if err = cursor.All(ctx, &rooms); err != nil {
		return nil, fmt.Errorf("failed to decode rooms: %w", err)
	}

	return rooms, nil
}

func (r *mongoRoomRepository) Count(ctx context.Context, filter Filter) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count rooms: %w", err)
	}
	return count, nil
}

func (r *mongoRoomRepository) FindAvailableByHotel(ctx context.Context, hotelID string) ([]*model.Room, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"hotel":                     hotelID,
		"availability.is_available": true,
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "pricing.base_price", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find hotel rooms: %w", err)
	}
	defer cursor.Close(ctx)

	var rooms []*model.Room
	if err = cursor.All(ctx, &rooms); err != nil {
		return nil, fmt.Errorf("failed to decode hotel rooms: %w", err)
	}

	return rooms, nil
}

func (r *mongoRoomRepository) Update(ctx context.Context, id string, updates *model.RoomUpdate) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", roomerrors.ErrInvalidID, id)
	}

	set := bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)}
	if updates.Type != "" {
		set["type"] = updates.Type
	}
	if updates.Name != "" {
		set["name"] = updates.Name
	}
	if updates.Description != "" {
		set["description"] = updates.Description
	}
	if updates.Images != nil {
		set["images"] = updates.Images
	}
	if updates.Capacity != nil {
		set["capacity"] = updates.Capacity
	}
	if updates.BedConfiguration != nil {
		set["bed_configuration"] = updates.BedConfiguration
	}
	if updates.Amenities != nil {
		set["amenities"] = updates.Amenities
	}
	if updates.Pricing != nil {
		set["pricing"] = updates.Pricing
	}
	if updates.Policies != nil {
		set["policies"] = updates.Policies
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update room: %w", err)
	}
	if result.MatchedCount == 0 {
		return roomerrors.ErrNotFound
	}
	return nil
}

func (r *mongoRoomRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", roomerrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	if result.DeletedCount == 0 {
		return roomerrors.ErrNotFound
	}
	return nil
}

// ReserveUnit atomically takes one unit of inventory. The filter and the
// pipeline update run as a single document operation, so two concurrent
// bookings can never both take the last unit.
func (r *mongoRoomRepository) ReserveUnit(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", roomerrors.ErrInvalidID, id)
	}

	filter := bson.M{
		"_id":                          objectID,
		"availability.is_available":    true,
		"availability.available_rooms": bson.M{"$gte": 1},
	}
	update := bson.A{
		bson.M{"$set": bson.M{
			"availability.available_rooms": bson.M{"$subtract": bson.A{"$availability.available_rooms", 1}},
			"availability.is_available": bson.M{"$gt": bson.A{
				bson.M{"$subtract": bson.A{"$availability.available_rooms", 1}}, 0,
			}},
			"updated_at": time.Now().UTC().Truncate(time.Millisecond),
		}},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to reserve room unit: %w", err)
	}
	if result.MatchedCount == 0 {
		return roomerrors.ErrNoUnits
	}
	return nil
}

// ReleaseUnit returns one unit of inventory, clamped at total_rooms so a
// repeated release can never mint capacity.
func (r *mongoRoomRepository) ReleaseUnit(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", roomerrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID}
	update := bson.A{
		bson.M{"$set": bson.M{
			"availability.available_rooms": bson.M{"$min": bson.A{
				"$availability.total_rooms",
				bson.M{"$add": bson.A{"$availability.available_rooms", 1}},
			}},
			"availability.is_available": true,
			"updated_at":                time.Now().UTC().Truncate(time.Millisecond),
		}},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to release room unit: %w", err)
	}
	if result.MatchedCount == 0 {
		return roomerrors.ErrNotFound
	}
	return nil
}

func buildFilter(f Filter) bson.M {
	filter := bson.M{}

	if f.HotelID != "" {
		filter["hotel"] = f.HotelID
	}
	if f.Type != "" {
		filter["type"] = f.Type
	}
	if f.AvailableOnly {
		filter["availability.is_available"] = true
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		price := bson.M{}
		if f.MinPrice != nil {
			price["$gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			price["$lte"] = *f.MaxPrice
		}
		filter["pricing.base_price"] = price
	}
	if f.Adults != nil {
		filter["capacity.adults"] = bson.M{"$gte": *f.Adults}
	}
	if f.Children != nil {
		filter["capacity.children"] = bson.M{"$gte": *f.Children}
	}

	return filter
}
