package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/homeservices_backend/controllers"
)

// RegisterCatalogRoutes exposes the public service catalog
func RegisterCatalogRoutes(e *echo.Echo, catalog *controllers.CatalogController) {
	e.GET("/api/services", catalog.ListServices)
	e.GET("/api/services/:id", catalog.GetService)
}
