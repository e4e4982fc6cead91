package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/HSouheill/homeservices_backend/models"
	"github.com/HSouheill/homeservices_backend/repositories"
)

// UserService covers self-service profile operations and admin role changes
type UserService struct {
	auth      *Authenticator
	users     repositories.UserRepository
	validator RequestValidator
	actions   ActionLogger
	now       func() time.Time
}

func NewUserService(auth *Authenticator, users repositories.UserRepository, validator RequestValidator, actions ActionLogger) *UserService {
	return &UserService{auth: auth, users: users, validator: validator, actions: actions, now: time.Now}
}

// GetUserProfile returns the caller's profile, creating it on first sign-in
func (s *UserService) GetUserProfile(ctx context.Context, token string) (*models.User, error) {
	return s.auth.CurrentUser(ctx, token)
}

func (s *UserService) UpdateUserProfile(ctx context.Context, token string, req models.UpdateProfileRequest) (*models.User, error) {
	user, err := s.auth.CurrentUser(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(&req); err != nil {
		return nil, err
	}

	updated, err := s.users.UpdateProfile(ctx, user.ID, req, s.now())
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, models.ErrNotFound("User not found")
		}
		return nil, models.ErrUpstream("Failed to update profile", err)
	}

	s.actions.LogAction(models.ActionUpdate, models.ModuleUser, "Profile updated", models.ActorOf(updated), nil)
	return updated, nil
}

// RegisterDeviceToken stores the caller's FCM token for push delivery
func (s *UserService) RegisterDeviceToken(ctx context.Context, token string, req models.DeviceTokenRequest) error {
	user, err := s.auth.CurrentUser(ctx, token)
	if err != nil {
		return err
	}
	if err := s.validator.Validate(&req); err != nil {
		return err
	}
	if err := s.users.SetFCMToken(ctx, user.ID, req.FCMToken); err != nil {
		return models.ErrUpstream("Failed to save device token", err)
	}
	return nil
}

// UpdateUserRole changes another user's role; admin only
func (s *UserService) UpdateUserRole(ctx context.Context, token, userID string, req models.UpdateRoleRequest) (*models.User, error) {
	admin, err := s.auth.RequireRole(ctx, token, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(&req); err != nil {
		return nil, err
	}

	target, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, models.ErrNotFound("User not found")
		}
		return nil, models.ErrUpstream("Failed to load user", err)
	}

	now := s.now()
	if err := s.users.UpdateRole(ctx, target.ID, req.Role, now); err != nil {
		return nil, models.ErrUpstream("Failed to update role", err)
	}
	previous := target.Role
	target.Role = req.Role
	target.UpdatedAt = now

	s.actions.LogAction(models.ActionUpdate, models.ModuleUser,
		fmt.Sprintf("Role of %s changed from %s to %s", target.Email, previous, req.Role),
		models.ActorOf(admin),
		map[string]interface{}{"userId": target.ID, "from": previous, "to": req.Role},
	)
	return target, nil
}
