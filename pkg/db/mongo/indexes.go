package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	hotelIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "city", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{
			{Key: "rating.average", Value: -1},
			{Key: "created_at", Value: -1},
		}},
	}

	roomIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "hotel", Value: 1},
			{Key: "availability.is_available", Value: 1},
		}},
	}

	bookingIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "booking_reference", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "hotel", Value: 1}, {Key: "dates.check_in", Value: 1}}},
	}

	userIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "clerk_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
)

// EnsureIndexes provisions the indexes the repositories depend on. The
// unique models back the duplicate-key detection on user inserts and
// booking references, so this must complete before any writer starts.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	collections := map[string][]mongo.IndexModel{
		"Hotels":   hotelIndexes,
		"Rooms":    roomIndexes,
		"Bookings": bookingIndexes,
		"Users":    userIndexes,
	}

	for name, models := range collections {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	return nil
}
