package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/homeservices_backend/controllers"
)

// RegisterAdminRoutes sets up the admin console. Role checks happen in the services
// so the same rules hold for any transport.
func RegisterAdminRoutes(api *echo.Group, admin *controllers.AdminController, catalog *controllers.CatalogController) {
	adminGroup := api.Group("/admin")

	adminGroup.GET("/stats", admin.GetAdminStats)
	adminGroup.GET("/logs", admin.GetSystemLogs)

	adminGroup.PUT("/users/:id/role", admin.UpdateUserRole)

	adminGroup.GET("/technicians", admin.ListTechnicians)
	adminGroup.POST("/technicians/:id/approve", admin.ApproveTechnician)
	adminGroup.POST("/technicians/:id/reject", admin.RejectTechnician)

	adminGroup.GET("/bookings", admin.ListBookings)
	adminGroup.POST("/bookings/:id/assign", admin.AssignTechnician)

	adminGroup.POST("/services", catalog.CreateService)
	adminGroup.PUT("/services/:id", catalog.UpdateService)
	adminGroup.POST("/services/:id/image", catalog.UploadServiceImage)
}
