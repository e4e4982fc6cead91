package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/HSouheill/homeservices_backend/models"
)

type MongoInvoiceRepository struct {
	collection *mongo.Collection
}

func NewInvoiceRepository(db *mongo.Database) *MongoInvoiceRepository {
	return &MongoInvoiceRepository{collection: db.Collection(InvoicesCollection)}
}

func (r *MongoInvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	if _, err := r.collection.InsertOne(ctx, invoice); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

func (r *MongoInvoiceRepository) FindByID(ctx context.Context, id string) (*models.Invoice, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoInvoiceRepository) FindByBooking(ctx context.Context, bookingID string) (*models.Invoice, error) {
	return r.findOne(ctx, bson.M{"bookingId": bookingID})
}

func (r *MongoInvoiceRepository) findOne(ctx context.Context, filter bson.M) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := r.collection.FindOne(ctx, filter).Decode(&invoice); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find invoice: %w", err)
	}
	return &invoice, nil
}
