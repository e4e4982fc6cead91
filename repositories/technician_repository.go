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

type MongoTechnicianRepository struct {
	collection *mongo.Collection
}

func NewTechnicianRepository(db *mongo.Database) *MongoTechnicianRepository {
	return &MongoTechnicianRepository{collection: db.Collection(TechniciansCollection)}
}

func (r *MongoTechnicianRepository) Create(ctx context.Context, technician *models.Technician) error {
	if _, err := r.collection.InsertOne(ctx, technician); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert technician: %w", err)
	}
	return nil
}

func (r *MongoTechnicianRepository) FindByID(ctx context.Context, id string) (*models.Technician, error) {
	var technician models.Technician
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&technician); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find technician: %w", err)
	}
	return &technician, nil
}

// List returns technicians with the given status, or all of them when status is empty
func (r *MongoTechnicianRepository) List(ctx context.Context, status string) ([]models.Technician, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find technicians: %w", err)
	}
	defer cursor.Close(ctx)

	technicians := []models.Technician{}
	if err := cursor.All(ctx, &technicians); err != nil {
		return nil, fmt.Errorf("decode technicians: %w", err)
	}
	return technicians, nil
}

func (r *MongoTechnicianRepository) SetStatus(ctx context.Context, id, status string, now time.Time) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updatedAt": now}},
	)
	if err != nil {
		return fmt.Errorf("update technician status: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoTechnicianRepository) UpdateRating(ctx context.Context, id string, expectedVersion int64, rating float64, totalReviews int, now time.Time) error {
	filter := bson.M{"_id": id, "version": expectedVersion}
	if expectedVersion == 0 {
		// documents written before versioning have no version field
		filter["version"] = bson.M{"$in": bson.A{int64(0), nil}}
	}
	update := bson.M{
		"$set": bson.M{"rating": rating, "totalReviews": totalReviews, "updatedAt": now},
		"$inc": bson.M{"version": 1},
	}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update technician rating: %w", err)
	}
	if result.MatchedCount == 0 {
		count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return fmt.Errorf("count technician: %w", err)
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrConflict
	}
	return nil
}
