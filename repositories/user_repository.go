package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/HSouheill/homeservices_backend/models"
)

type MongoUserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{
		collection: db.Collection(UsersCollection),
	}
}

func (r *MongoUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// EnsureUser upserts with $setOnInsert so an existing profile is never overwritten
func (r *MongoUserRepository) EnsureUser(ctx context.Context, user *models.User) (*models.User, error) {
	onInsert := bson.M{
		"email":       user.Email,
		"displayName": user.DisplayName,
		"role":        user.Role,
		"createdAt":   user.CreatedAt,
		"updatedAt":   user.UpdatedAt,
	}
	if user.PhotoURL != "" {
		onInsert["photoURL"] = user.PhotoURL
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var stored models.User
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": user.ID},
		bson.M{"$setOnInsert": onInsert},
		opts,
	).Decode(&stored)
	if err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}
	return &stored, nil
}

func (r *MongoUserRepository) UpdateProfile(ctx context.Context, id string, req models.UpdateProfileRequest, now time.Time) (*models.User, error) {
	set := bson.M{
		"displayName": req.DisplayName,
		"updatedAt":   now,
	}
	if req.FirstName != "" {
		set["firstName"] = req.FirstName
	}
	if req.LastName != "" {
		set["lastName"] = req.LastName
	}
	if req.Phone != "" {
		set["phone"] = req.Phone
	}
	if req.PhotoURL != "" {
		set["photoURL"] = req.PhotoURL
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return &user, nil
}

func (r *MongoUserRepository) UpdateRole(ctx context.Context, id, role string, now time.Time) error {
	return r.set(ctx, id, bson.M{"role": role, "updatedAt": now})
}

func (r *MongoUserRepository) SetFCMToken(ctx context.Context, id, token string) error {
	return r.set(ctx, id, bson.M{"fcmToken": token})
}

func (r *MongoUserRepository) List(ctx context.Context) ([]models.User, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func (r *MongoUserRepository) set(ctx context.Context, id string, fields bson.M) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
