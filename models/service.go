package models

import "time"

// ServicePackage is one purchasable tier of a service
type ServicePackage struct {
	Name     string   `json:"name" bson:"name"`
	Price    float64  `json:"price" bson:"price"`
	Duration string   `json:"duration" bson:"duration"`
	Features []string `json:"features,omitempty" bson:"features,omitempty"`
}

// Service is a catalog entry
type Service struct {
	ID          string                    `json:"id" bson:"_id"`
	Title       string                    `json:"title" bson:"title"`
	Category    string                    `json:"category" bson:"category"`
	Price       float64                   `json:"price" bson:"price"`
	Rating      float64                   `json:"rating" bson:"rating"`
	Reviews     int                       `json:"reviews" bson:"reviews"`
	Image       string                    `json:"image,omitempty" bson:"image,omitempty"`
	Description string                    `json:"description" bson:"description"`
	Features    []string                  `json:"features,omitempty" bson:"features,omitempty"`
	Packages    map[string]ServicePackage `json:"packages,omitempty" bson:"packages,omitempty"`
	CreatedAt   time.Time                 `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time                 `json:"updatedAt" bson:"updatedAt"`
}

// ServiceRequest is the admin-authored catalog payload
type ServiceRequest struct {
	Title       string                    `json:"title" validate:"min=3"`
	Category    string                    `json:"category" validate:"required"`
	Price       float64                   `json:"price" validate:"gte=0,money"`
	Description string                    `json:"description" validate:"min=10"`
	Image       string                    `json:"image,omitempty" validate:"omitempty,url"`
	Features    []string                  `json:"features,omitempty"`
	Packages    map[string]ServicePackage `json:"packages,omitempty"`
}
