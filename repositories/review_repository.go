package repositories

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/HSouheill/homeservices_backend/models"
)

type MongoReviewRepository struct {
	collection *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *MongoReviewRepository {
	return &MongoReviewRepository{collection: db.Collection(ReviewsCollection)}
}

// Create relies on the unique bookingId index for one review per booking
func (r *MongoReviewRepository) Create(ctx context.Context, review *models.Review) error {
	if _, err := r.collection.InsertOne(ctx, review); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

func (r *MongoReviewRepository) ExistsForBooking(ctx context.Context, bookingID string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"bookingId": bookingID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count reviews: %w", err)
	}
	return count > 0, nil
}

func (r *MongoReviewRepository) ListByTechnician(ctx context.Context, technicianID string) ([]models.Review, error) {
	cursor, err := r.collection.Find(ctx,
		bson.M{"technicianId": technicianID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("find reviews: %w", err)
	}
	defer cursor.Close(ctx)

	reviews := []models.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("decode reviews: %w", err)
	}
	return reviews, nil
}
