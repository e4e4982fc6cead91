package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/HSouheill/homeservices_backend/models"
	"github.com/HSouheill/homeservices_backend/services"
)

type PaymentController struct {
	base
	payments *services.PaymentService
}

func NewPaymentController(payments *services.PaymentService, log *logrus.Logger) *PaymentController {
	return &PaymentController{base: base{log: log}, payments: payments}
}

// CreatePaymentOrder handles POST /api/payments/:bookingId/order
func (pc *PaymentController) CreatePaymentOrder(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	order, err := pc.payments.CreatePaymentOrder(ctx, bearerToken(c), c.Param("bookingId"))
	if err != nil {
		return pc.fail(c, err)
	}
	return ok(c, http.StatusOK, map[string]interface{}{"order": order})
}

// VerifyPayment handles POST /api/payments/:bookingId/verify
func (pc *PaymentController) VerifyPayment(c echo.Context) error {
	var req models.PaymentVerificationRequest
	if err := bind(c, &req); err != nil {
		return pc.fail(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	booking, err := pc.payments.VerifyPayment(ctx, bearerToken(c), c.Param("bookingId"), req)
	if err != nil {
		return pc.fail(c, err)
	}
	return ok(c, http.StatusOK, map[string]interface{}{
		"bookingId": booking.ID,
		"invoiceId": booking.InvoiceID,
	})
}

// UpdatePaymentStatusCash handles POST /api/payments/:bookingId/cash
func (pc *PaymentController) UpdatePaymentStatusCash(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	booking, err := pc.payments.ConfirmCashPayment(ctx, bearerToken(c), c.Param("bookingId"))
	if err != nil {
		return pc.fail(c, err)
	}
	return ok(c, http.StatusOK, map[string]interface{}{
		"bookingId": booking.ID,
		"invoiceId": booking.InvoiceID,
	})
}

// GetPaymentView handles GET /api/payments/:bookingId
func (pc *PaymentController) GetPaymentView(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	view, err := pc.payments.GetPaymentView(ctx, bearerToken(c), c.Param("bookingId"))
	if err != nil {
		return pc.fail(c, err)
	}
	return ok(c, http.StatusOK, map[string]interface{}{"payment": view})
}
