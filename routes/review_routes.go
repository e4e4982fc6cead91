package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/homeservices_backend/controllers"
)

func RegisterReviewRoutes(e *echo.Echo, api *echo.Group, reviews *controllers.ReviewController) {
	// Public: technician profiles show their reviews
	e.GET("/api/technicians/:id/reviews", reviews.GetTechnicianReviews)

	api.POST("/reviews", reviews.CreateReview)
}
