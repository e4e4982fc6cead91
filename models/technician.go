package models

import (
	"time"
)

// Technician application statuses
const (
	TechnicianStatusPending  = "pending"
	TechnicianStatusApproved = "approved"
	TechnicianStatusRejected = "rejected"
)

// Technician is a service provider profile. Rating and TotalReviews are only
// changed by review aggregation; Version guards that read-modify-write.
type Technician struct {
	ID           string    `json:"id" bson:"_id"`
	UserID       string    `json:"userId" bson:"userId"`
	FullName     string    `json:"fullName" bson:"fullName"`
	Email        string    `json:"email" bson:"email"`
	Phone        string    `json:"phone" bson:"phone"`
	Address      string    `json:"address" bson:"address"`
	City         string    `json:"city" bson:"city"`
	State        string    `json:"state" bson:"state"`
	Zip          string    `json:"zip" bson:"zip"`
	Category     string    `json:"category" bson:"category"`
	Experience   string    `json:"experience" bson:"experience"`
	Bio          string    `json:"bio,omitempty" bson:"bio,omitempty"`
	Status       string    `json:"status" bson:"status"`
	Rating       float64   `json:"rating" bson:"rating"`
	TotalReviews int       `json:"totalReviews" bson:"totalReviews"`
	Version      int64     `json:"-" bson:"version"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

// TechnicianApplicationRequest is the onboarding form
type TechnicianApplicationRequest struct {
	FullName   string `json:"fullName" validate:"min=2"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"phonedigits"`
	Address    string `json:"address" validate:"min=5"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state" validate:"required"`
	Zip        string `json:"zip" validate:"required,min=6"`
	Category   string `json:"category" validate:"required"`
	Experience string `json:"experience" validate:"required"`
	Bio        string `json:"bio,omitempty"`
}

// TechnicianDecisionRequest optionally carries a note for the applicant
type TechnicianDecisionRequest struct {
	Note string `json:"note,omitempty"`
}
