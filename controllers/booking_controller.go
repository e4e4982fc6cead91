// controllers/booking_controller.go
package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/HSouheill/homeservices_backend/models"
	"github.com/HSouheill/homeservices_backend/services"
)

type BookingController struct {
	base
	bookings *services.BookingService
}

func NewBookingController(bookings *services.BookingService, log *logrus.Logger) *BookingController {
	return &BookingController{base: base{log: log}, bookings: bookings}
}

// CreateBooking handles POST /api/bookings
func (bc *BookingController) CreateBooking(c echo.Context) error {
	var req models.BookingRequest
	if err := bind(c, &req); err != nil {
		return bc.fail(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	booking, err := bc.bookings.CreateBooking(ctx, bearerToken(c), req)
	if err != nil {
		return bc.fail(c, err)
	}
	return ok(c, http.StatusCreated, map[string]interface{}{"booking": booking})
}

// GetMyBookings handles GET /api/bookings
func (bc *BookingController) GetMyBookings(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	bookings, err := bc.bookings.ListMyBookings(ctx, bearerToken(c))
	if err != nil {
		return bc.fail(c, err)
	}
	return ok(c, http.StatusOK, map[string]interface{}{"bookings": bookings})
}

// GetBooking handles GET /api/bookings/:id
func (bc *BookingController) GetBooking(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	booking, err := bc.bookings.GetBooking(ctx, bearerToken(c), c.Param("id"))
	if err != nil {
		return bc.fail(c, err)
	}
	return ok(c, http.StatusOK, map[string]interface{}{"booking": booking})
}

// CancelBooking handles POST /api/bookings/:id/cancel
func (bc *BookingController) CancelBooking(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	booking, err := bc.bookings.CancelBooking(ctx, bearerToken(c), c.Param("id"))
	if err != nil {
		return bc.fail(c, err)
	}
	return ok(c, http.StatusOK, map[string]interface{}{"booking": booking})
}
