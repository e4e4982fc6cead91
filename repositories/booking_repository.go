package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/HSouheill/homeservices_backend/models"
)

// MongoBookingRepository stores bookings in the "bookings" collection
type MongoBookingRepository struct {
	collection *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *MongoBookingRepository {
	return &MongoBookingRepository{
		collection: db.Collection(BookingsCollection),
	}
}

func (r *MongoBookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	if _, err := r.collection.InsertOne(ctx, booking); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (r *MongoBookingRepository) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find booking: %w", err)
	}
	return &booking, nil
}

func (r *MongoBookingRepository) Update(ctx context.Context, id string, patch models.BookingPatch) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bookingSetDoc(patch)})
	if err != nil {
		return fmt.Errorf("update booking: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoBookingRepository) UpdateIf(ctx context.Context, id string, cond models.BookingCondition, patch models.BookingPatch) (*models.Booking, error) {
	filter := bson.M{"_id": id}
	if len(cond.Statuses) > 0 {
		filter["status"] = bson.M{"$in": cond.Statuses}
	}
	if len(cond.PaymentStatuses) > 0 {
		filter["paymentStatus"] = bson.M{"$in": cond.PaymentStatuses}
	}
	if cond.TechnicianID != nil {
		if *cond.TechnicianID == "" {
			// unassigned bookings may have the field empty or missing
			filter["technicianId"] = bson.M{"$in": bson.A{"", nil}}
		} else {
			filter["technicianId"] = *cond.TechnicianID
		}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Booking
	err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": bookingSetDoc(patch)}, opts).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("conditional update booking: %w", err)
	}

	// Nothing matched: tell a missing booking apart from a failed precondition
	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, fmt.Errorf("count booking: %w", err)
	}
	if count == 0 {
		return nil, ErrNotFound
	}
	return nil, ErrConflict
}

func (r *MongoBookingRepository) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	return r.find(ctx, bson.M{"userId": userID})
}

func (r *MongoBookingRepository) ListByTechnician(ctx context.Context, technicianID string) ([]models.Booking, error) {
	return r.find(ctx, bson.M{"technicianId": technicianID})
}

func (r *MongoBookingRepository) ListUnassigned(ctx context.Context) ([]models.Booking, error) {
	return r.find(ctx, bson.M{
		"status":       models.BookingStatusConfirmed,
		"technicianId": bson.M{"$in": bson.A{"", nil}},
	})
}

func (r *MongoBookingRepository) ListAll(ctx context.Context) ([]models.Booking, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoBookingRepository) find(ctx context.Context, filter bson.M) ([]models.Booking, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, fmt.Errorf("find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []models.Booking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("decode bookings: %w", err)
	}
	return bookings, nil
}

// bookingSetDoc translates a patch into a $set document
func bookingSetDoc(p models.BookingPatch) bson.M {
	set := bson.M{}
	if p.Status != nil {
		set["status"] = *p.Status
	}
	if p.PaymentStatus != nil {
		set["paymentStatus"] = *p.PaymentStatus
	}
	if p.PaymentMethod != nil {
		set["paymentMethod"] = *p.PaymentMethod
	}
	if p.PaymentDetails != nil {
		set["paymentDetails"] = p.PaymentDetails
	}
	if p.TechnicianID != nil {
		set["technicianId"] = *p.TechnicianID
	}
	if p.InvoiceID != nil {
		set["invoiceId"] = *p.InvoiceID
	}
	if p.InvoiceGeneratedAt != nil {
		set["invoiceGeneratedAt"] = *p.InvoiceGeneratedAt
	}
	if !p.UpdatedAt.IsZero() {
		set["updatedAt"] = p.UpdatedAt
	}
	return set
}
