package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HSouheill/homeservices_backend/models"
)

func TestUserProfile(t *testing.T) {
	env := newTestEnv(t)
	token := env.signIn(t, "u1", models.RoleUser)
	ctx := context.Background()

	profile, err := env.users.GetUserProfile(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "u1@example.com", profile.Email)

	updated, err := env.users.UpdateUserProfile(ctx, token, models.UpdateProfileRequest{
		DisplayName: "Asha",
		Phone:       "+91 98765 43210",
	})
	require.NoError(t, err)
	assert.Equal(t, "Asha", updated.DisplayName)
	assert.Equal(t, models.RoleUser, updated.Role)

	_, err = env.users.UpdateUserProfile(ctx, token, models.UpdateProfileRequest{DisplayName: "A"})
	requireKind(t, err, models.KindValidationFailed)

	_, err = env.users.GetUserProfile(ctx, "bogus")
	requireKind(t, err, models.KindUnauthenticated)
}

func TestRegisterDeviceToken(t *testing.T) {
	env := newTestEnv(t)
	token := env.signIn(t, "u1", models.RoleUser)
	ctx := context.Background()

	err := env.users.RegisterDeviceToken(ctx, token, models.DeviceTokenRequest{})
	requireKind(t, err, models.KindValidationFailed)

	require.NoError(t, env.users.RegisterDeviceToken(ctx, token, models.DeviceTokenRequest{FCMToken: "fcm-abc"}))
	user, err := env.store.Users.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "fcm-abc", user.FCMToken)
}

func TestUpdateUserRole(t *testing.T) {
	env := newTestEnv(t)
	admin := env.signIn(t, "a1", models.RoleAdmin)
	manager := env.signIn(t, "m1", models.RoleManager)
	env.signIn(t, "u1", models.RoleUser)
	ctx := context.Background()

	_, err := env.users.UpdateUserRole(ctx, manager, "u1", models.UpdateRoleRequest{Role: models.RoleManager})
	requireKind(t, err, models.KindUnauthorized)

	_, err = env.users.UpdateUserRole(ctx, admin, "u1", models.UpdateRoleRequest{Role: "owner"})
	requireKind(t, err, models.KindValidationFailed)

	_, err = env.users.UpdateUserRole(ctx, admin, "nobody", models.UpdateRoleRequest{Role: models.RoleManager})
	requireKind(t, err, models.KindNotFound)

	user, err := env.users.UpdateUserRole(ctx, admin, "u1", models.UpdateRoleRequest{Role: models.RoleManager})
	require.NoError(t, err)
	assert.Equal(t, models.RoleManager, user.Role)

	stored, err := env.store.Users.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleManager, stored.Role)
	assert.Equal(t, 1, env.actions.count())
}
