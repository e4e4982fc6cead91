// models/user.go
package models

import (
	"time"
)

// User roles
const (
	RoleUser       = "user"
	RoleTechnician = "technician"
	RoleManager    = "manager"
	RoleAdmin      = "admin"
)

// ValidRoles lists every role an admin may assign
var ValidRoles = []string{RoleUser, RoleTechnician, RoleManager, RoleAdmin}

// IsValidRole reports whether role is one of ValidRoles
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// User model. The id is the identity provider's uid.
type User struct {
	ID          string    `json:"id" bson:"_id"`
	Email       string    `json:"email" bson:"email"`
	DisplayName string    `json:"displayName" bson:"displayName"`
	FirstName   string    `json:"firstName,omitempty" bson:"firstName,omitempty"`
	LastName    string    `json:"lastName,omitempty" bson:"lastName,omitempty"`
	Phone       string    `json:"phone,omitempty" bson:"phone,omitempty"`
	PhotoURL    string    `json:"photoURL,omitempty" bson:"photoURL,omitempty"`
	Role        string    `json:"role" bson:"role"`
	FCMToken    string    `json:"-" bson:"fcmToken,omitempty"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

// HasRole reports whether the user holds one of roles
func (u *User) HasRole(roles ...string) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// Actor identifies who performed a logged action
type Actor struct {
	UserID   string `json:"userId" bson:"userId"`
	UserName string `json:"userName" bson:"userName"`
}

// ActorOf returns the log actor for u
func ActorOf(u *User) *Actor {
	if u == nil {
		return nil
	}
	name := u.DisplayName
	if name == "" {
		name = u.Email
	}
	return &Actor{UserID: u.ID, UserName: name}
}

// UpdateProfileRequest is the self-service profile payload
type UpdateProfileRequest struct {
	DisplayName string `json:"displayName" validate:"min=2"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	Phone       string `json:"phone,omitempty" validate:"omitempty,phonedigits"`
	PhotoURL    string `json:"photoURL,omitempty" validate:"omitempty,url"`
}

// UpdateRoleRequest is the admin payload for changing a user's role
type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user technician manager admin"`
}

// DeviceTokenRequest registers a push token for the caller
type DeviceTokenRequest struct {
	FCMToken string `json:"fcmToken" validate:"required"`
}
