package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/homeservices_backend/controllers"
	"github.com/HSouheill/homeservices_backend/metrics"
	"github.com/HSouheill/homeservices_backend/middleware"
	"github.com/HSouheill/homeservices_backend/websocket"
)

// Controllers bundles every HTTP handler set the router needs
type Controllers struct {
	Bookings      *controllers.BookingController
	Payments      *controllers.PaymentController
	Invoices      *controllers.InvoiceController
	Reviews       *controllers.ReviewController
	Users         *controllers.UserController
	Technicians   *controllers.TechnicianController
	Notifications *controllers.NotificationController
	Admin         *controllers.AdminController
	Catalog       *controllers.CatalogController
	Diagnostics   *controllers.DiagnosticsController
	WebSocket     *websocket.Handler
}

// SetupRoutes configures all API routes by calling individual route registration functions
func SetupRoutes(e *echo.Echo, h Controllers, uploadDir string) {
	e.Match([]string{"GET", "HEAD"}, "/health", h.Diagnostics.Health)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	e.GET("/api/diagnostics/env", h.Diagnostics.Env)

	// token is checked inside the handshake, not by middleware
	e.GET("/api/ws", h.WebSocket.HandleWebSocket)

	RegisterFileRoutes(e, uploadDir)
	RegisterCatalogRoutes(e, h.Catalog)

	api := e.Group("/api")
	api.Use(middleware.RequireBearer())

	RegisterBookingRoutes(api, h.Bookings, h.Payments, h.Invoices)
	RegisterReviewRoutes(e, api, h.Reviews)
	RegisterUserRoutes(api, h.Users)
	RegisterTechnicianRoutes(api, h.Technicians)
	RegisterNotificationRoutes(api, h.Notifications)
	RegisterAdminRoutes(api, h.Admin, h.Catalog)
}
