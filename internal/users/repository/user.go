package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	usererrors "stayhub/internal/users/errors"
	"stayhub/pkg/config"
	"stayhub/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Users"

	// recentSearchLimit caps the per-user search history.
	recentSearchLimit = 10
)

type Filter struct {
	Role     string
	IsActive *bool
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByClerkID(ctx context.Context, clerkID string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindAll(ctx context.Context, filter Filter, limit int, offset int64) ([]*model.User, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	Update(ctx context.Context, id string, updates *model.UserUpdate) error
	ReplaceByClerkID(ctx context.Context, clerkID string, user *model.User) error
	LinkClerkAccount(ctx context.Context, email, clerkID string) error
	DeleteByClerkID(ctx context.Context, clerkID string) error
	Delete(ctx context.Context, id string) error
	AddRecentSearch(ctx context.Context, id string, search model.RecentSearch) error
	RecordLogin(ctx context.Context, clerkID string, at time.Time) error
}

type mongoUserRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
}

func NewMongoUserRepository(cfg *config.Config) UserRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoUserRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoUserRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoUserRepository) Create(ctx context.Context, user *model.User) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: clerk_id %s", usererrors.ErrDuplicate, user.ClerkID)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid.Hex()
	}
	return nil
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", usererrors.ErrInvalidID, id)
	}

	return r.findOne(ctx, bson.M{"_id": objectID})
}

func (r *mongoUserRepository) FindByClerkID(ctx context.Context, clerkID string) (*model.User, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	return r.findOne(ctx, bson.M{"clerk_id": clerkID})
}

func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var user model.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, usererrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

func (r *mongoUserRepository) FindAll(ctx context.Context, filter Filter, limit int, offset int64) ([]*model.User, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, buildFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []*model.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}

	return users, nil
}

func (r *mongoUserRepository) Count(ctx context.Context, filter Filter) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func (r *mongoUserRepository) Update(ctx context.Context, id string, updates *model.UserUpdate) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", usererrors.ErrInvalidID, id)
	}

	set := bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)}
	if updates.Name != "" {
		set["name"] = updates.Name
	}
	if updates.FirstName != "" {
		set["first_name"] = updates.FirstName
	}
	if updates.LastName != "" {
		set["last_name"] = updates.LastName
	}
	if updates.Phone != "" {
		set["phone"] = updates.Phone
	}
	if updates.Avatar != "" {
		set["avatar"] = updates.Avatar
	}
	if updates.Role != "" {
		set["role"] = updates.Role
	}
	if updates.Address != nil {
		set["address"] = updates.Address
	}
	if updates.Preferences != nil {
		set["preferences"] = updates.Preferences
	}
	if updates.OwnerInfo != nil {
		set["hotel_owner_info"] = updates.OwnerInfo
	}
	if updates.Notifications != nil {
		set["notifications"] = updates.Notifications
	}
	if updates.IsActive != nil {
		set["is_active"] = *updates.IsActive
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.MatchedCount == 0 {
		return usererrors.ErrNotFound
	}
	return nil
}

// ReplaceByClerkID upserts the identity-provider view of a user. The insert
// branch seeds created_at; an existing document keeps its own.
func (r *mongoUserRepository) ReplaceByClerkID(ctx context.Context, clerkID string, user *model.User) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)

	set := bson.M{
		"clerk_id":          clerkID,
		"email":             user.Email,
		"name":              user.Name,
		"first_name":        user.FirstName,
		"last_name":         user.LastName,
		"avatar":            user.Avatar,
		"role":              user.Role,
		"is_active":         user.IsActive,
		"is_email_verified": user.IsEmailVerified,
		"updated_at":        now,
	}
	if user.Phone != "" {
		set["phone"] = user.Phone
	}
	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"created_at":    now,
			"notifications": user.Notifications,
		},
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"clerk_id": clerkID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// LinkClerkAccount attaches a Clerk identity to an account that was created
// before the identity provider knew about it, matched by email.
func (r *mongoUserRepository) LinkClerkAccount(ctx context.Context, email, clerkID string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"clerk_id":   clerkID,
		"updated_at": time.Now().UTC().Truncate(time.Millisecond),
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"email": email}, update)
	if err != nil {
		return fmt.Errorf("failed to link clerk account: %w", err)
	}
	if result.MatchedCount == 0 {
		return usererrors.ErrNotFound
	}
	return nil
}

func (r *mongoUserRepository) DeleteByClerkID(ctx context.Context, clerkID string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"clerk_id": clerkID})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.DeletedCount == 0 {
		return usererrors.ErrNotFound
	}
	return nil
}

func (r *mongoUserRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", usererrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.DeletedCount == 0 {
		return usererrors.ErrNotFound
	}
	return nil
}

// AddRecentSearch prepends the city and trims the list to the newest ten.
// A repeated city is pulled first so the list holds distinct entries.
func (r *mongoUserRepository) AddRecentSearch(ctx context.Context, id string, search model.RecentSearch) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", usererrors.ErrInvalidID, id)
	}

	pull := bson.M{"$pull": bson.M{"recent_searches": bson.M{"city": search.City}}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, pull)
	if err != nil {
		return fmt.Errorf("failed to dedupe recent searches: %w", err)
	}
	if result.MatchedCount == 0 {
		return usererrors.ErrNotFound
	}

	push := bson.M{
		"$push": bson.M{
			"recent_searches": bson.M{
				"$each":     bson.A{search},
				"$position": 0,
				"$slice":    recentSearchLimit,
			},
		},
		"$set": bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)},
	}
	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, push); err != nil {
		return fmt.Errorf("failed to record recent search: %w", err)
	}
	return nil
}

func (r *mongoUserRepository) RecordLogin(ctx context.Context, clerkID string, at time.Time) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	update := bson.M{
		"$set": bson.M{"last_login": at, "updated_at": at},
		"$inc": bson.M{"login_count": 1},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"clerk_id": clerkID}, update)
	if err != nil {
		return fmt.Errorf("failed to record login: %w", err)
	}
	if result.MatchedCount == 0 {
		return usererrors.ErrNotFound
	}
	return nil
}

func buildFilter(f Filter) bson.M {
	filter := bson.M{}

	if f.Role != "" {
		filter["role"] = f.Role
	}
	if f.IsActive != nil {
		filter["is_active"] = *f.IsActive
	}

	return filter
}
