// controllers/user_controller.go
package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/HSouheill/homeservices_backend/models"
	"github.com/HSouheill/homeservices_backend/services"
)

type UserController struct {
	base
	users *services.UserService
}

func NewUserController(users *services.UserService, log *logrus.Logger) *UserController {
	return &UserController{base: base{log: log}, users: users}
}

// GetUserProfile handles GET /api/users/me
func (uc *UserController) GetUserProfile(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := uc.users.GetUserProfile(ctx, bearerToken(c))
	if err != nil {
		return uc.fail(c, err)
	}
	return ok(c, http.StatusOK, map[string]interface{}{"user": user})
}

// UpdateUserProfile handles PUT /api/users/me
func (uc *UserController) UpdateUserProfile(c echo.Context) error {
	var req models.UpdateProfileRequest
	if err := bind(c, &req); err != nil {
		return uc.fail(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := uc.users.UpdateUserProfile(ctx, bearerToken(c), req)
	if err != nil {
		return uc.fail(c, err)
	}
	return ok(c, http.StatusOK, map[string]interface{}{"user": user})
}

// RegisterDeviceToken handles POST /api/users/me/fcm-token
func (uc *UserController) RegisterDeviceToken(c echo.Context) error {
	var req models.DeviceTokenRequest
	if err := bind(c, &req); err != nil {
		return uc.fail(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := uc.users.RegisterDeviceToken(ctx, bearerToken(c), req); err != nil {
		return uc.fail(c, err)
	}
	return ok(c, http.StatusOK, nil)
}
