// controllers/review_controller.go
package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/HSouheill/homeservices_backend/models"
	"github.com/HSouheill/homeservices_backend/services"
)

type ReviewController struct {
	base
	reviews *services.ReviewService
}

func NewReviewController(reviews *services.ReviewService, log *logrus.Logger) *ReviewController {
	return &ReviewController{base: base{log: log}, reviews: reviews}
}

// CreateReview handles POST /api/reviews
func (rc *ReviewController) CreateReview(c echo.Context) error {
	var req models.ReviewRequest
	if err := bind(c, &req); err != nil {
		return rc.fail(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	review, err := rc.reviews.CreateReview(ctx, bearerToken(c), req)
	if err != nil {
		return rc.fail(c, err)
	}
	return ok(c, http.StatusCreated, map[string]interface{}{"review": review})
}

// GetTechnicianReviews handles GET /api/technicians/:id/reviews
func (rc *ReviewController) GetTechnicianReviews(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	reviews, err := rc.reviews.ListTechnicianReviews(ctx, c.Param("id"))
	if err != nil {
		return rc.fail(c, err)
	}
	return ok(c, http.StatusOK, map[string]interface{}{"reviews": reviews})
}
