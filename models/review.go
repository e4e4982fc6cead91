package models

import (
	"time"
)

// Review is append-only; at most one exists per booking.
type Review struct {
	ID           string    `json:"id" bson:"_id"`
	BookingID    string    `json:"bookingId" bson:"bookingId"`
	UserID       string    `json:"userId" bson:"userId"`
	TechnicianID string    `json:"technicianId" bson:"technicianId"`
	Rating       int       `json:"rating" bson:"rating"`
	Comment      string    `json:"comment" bson:"comment"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

// ReviewRequest is the model for creating a review
type ReviewRequest struct {
	BookingID    string `json:"bookingId" validate:"required"`
	TechnicianID string `json:"technicianId" validate:"required"`
	Rating       int    `json:"rating" validate:"min=1,max=5"`
	Comment      string `json:"comment" validate:"min=5"`
}
