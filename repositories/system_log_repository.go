package repositories

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/HSouheill/homeservices_backend/models"
)

type MongoSystemLogRepository struct {
	collection *mongo.Collection
}

func NewSystemLogRepository(db *mongo.Database) *MongoSystemLogRepository {
	return &MongoSystemLogRepository{collection: db.Collection(SystemLogsCollection)}
}

func (r *MongoSystemLogRepository) Create(ctx context.Context, entry *models.SystemLog) error {
	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("insert system log: %w", err)
	}
	return nil
}

// ListRecent returns the newest entries first
func (r *MongoSystemLogRepository) ListRecent(ctx context.Context, limit int64) ([]models.SystemLog, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		findOptions.SetLimit(limit)
	}
	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("find system logs: %w", err)
	}
	defer cursor.Close(ctx)

	entries := []models.SystemLog{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decode system logs: %w", err)
	}
	return entries, nil
}
