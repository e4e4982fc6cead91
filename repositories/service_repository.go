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

type MongoServiceRepository struct {
	collection *mongo.Collection
}

func NewServiceRepository(db *mongo.Database) *MongoServiceRepository {
	return &MongoServiceRepository{collection: db.Collection(ServicesCollection)}
}

func (r *MongoServiceRepository) Create(ctx context.Context, service *models.Service) error {
	if _, err := r.collection.InsertOne(ctx, service); err != nil {
		return fmt.Errorf("insert service: %w", err)
	}
	return nil
}

func (r *MongoServiceRepository) FindByID(ctx context.Context, id string) (*models.Service, error) {
	var service models.Service
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&service); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find service: %w", err)
	}
	return &service, nil
}

func (r *MongoServiceRepository) List(ctx context.Context, category string) ([]models.Service, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "title", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find services: %w", err)
	}
	defer cursor.Close(ctx)

	services := []models.Service{}
	if err := cursor.All(ctx, &services); err != nil {
		return nil, fmt.Errorf("decode services: %w", err)
	}
	return services, nil
}

func (r *MongoServiceRepository) Replace(ctx context.Context, service *models.Service) error {
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": service.ID}, service)
	if err != nil {
		return fmt.Errorf("replace service: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoServiceRepository) SetImage(ctx context.Context, id, imageURL string, now time.Time) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"image": imageURL, "updatedAt": now}},
	)
	if err != nil {
		return fmt.Errorf("update service image: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
