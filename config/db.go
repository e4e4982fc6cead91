// config/db.go
package config

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectDB establishes the MongoDB connection and makes sure the indexes exist
func ConnectDB(ctx context.Context, cfg *Config, log *logrus.Logger) (*mongo.Client, error) {
	mongoURI := cfg.MongoURI
	if mongoURI == "" {
		if cfg.IsProduction() {
			return nil, errors.New("MONGO_URI or MONGODB_URI environment variable is required for production")
		}
		mongoURI = "mongodb://localhost:27017"
	}

	log.WithField("uri", maskMongoURI(mongoURI)).Info("Connecting to MongoDB")

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	log.Info("Connected to MongoDB")

	setupCollections(client.Database(cfg.DBName), log)
	return client, nil
}

// setupCollections ensures the indexes the repositories rely on
func setupCollections(db *mongo.Database, log *logrus.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	indexes := map[string][]mongo.IndexModel{
		// one review per booking
		"reviews": {
			{Keys: bson.D{{Key: "bookingId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "technicianId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		"bookings": {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "technicianId", Value: 1}}},
		},
		"notifications": {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		"system_logs": {
			{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		},
		"technicians": {
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		// one invoice per booking
		"invoices": {
			{Keys: bson.D{{Key: "bookingId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}

	for collName, models := range indexes {
		if _, err := db.Collection(collName).Indexes().CreateMany(ctx, models); err != nil {
			log.WithError(err).WithField("collection", collName).Error("Error creating indexes")
		}
	}

	log.Info("Database collections and indexes setup complete")
}

// maskMongoURI masks the password in MongoDB URI for logging
func maskMongoURI(uri string) string {
	if idx := strings.Index(uri, "@"); idx > 0 {
		if colonIdx := strings.LastIndex(uri[:idx], ":"); colonIdx > 0 {
			return uri[:colonIdx+1] + "***" + uri[idx:]
		}
	}
	return uri
}
