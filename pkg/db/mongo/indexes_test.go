package mongo

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func findIndex(models []mongo.IndexModel, key string) *mongo.IndexModel {
	for i, m := range models {
		keys, ok := m.Keys.(bson.D)
		if !ok || len(keys) != 1 {
			continue
		}
		if keys[0].Key == key {
			return &models[i]
		}
	}
	return nil
}

// Duplicate-key detection in the user and booking repositories only works
// when these single-field indexes exist and are unique.
func TestUniqueIndexDefinitions(t *testing.T) {
	cases := []struct {
		name   string
		models []mongo.IndexModel
		key    string
	}{
		{"booking reference", bookingIndexes, "booking_reference"},
		{"user clerk id", userIndexes, "clerk_id"},
		{"user email", userIndexes, "email"},
	}

	for _, tc := range cases {
		model := findIndex(tc.models, tc.key)
		if model == nil {
			t.Errorf("%s: no index model on %q", tc.name, tc.key)
			continue
		}
		if model.Options == nil || model.Options.Unique == nil || !*model.Options.Unique {
			t.Errorf("%s: index on %q is not unique", tc.name, tc.key)
		}
	}
}
