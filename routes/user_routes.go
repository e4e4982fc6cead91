package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/homeservices_backend/controllers"
)

// RegisterUserRoutes sets up routes for the signed-in user's own profile
func RegisterUserRoutes(api *echo.Group, users *controllers.UserController) {
	me := api.Group("/users/me")
	me.GET("", users.GetUserProfile)
	me.PUT("", users.UpdateUserProfile)
	me.POST("/fcm-token", users.RegisterDeviceToken)
}
