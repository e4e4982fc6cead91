package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/homeservices_backend/controllers"
)

// RegisterBookingRoutes covers the booking lifecycle, payments and invoices
func RegisterBookingRoutes(api *echo.Group, bookings *controllers.BookingController, payments *controllers.PaymentController, invoices *controllers.InvoiceController) {
	bookingGroup := api.Group("/bookings")
	bookingGroup.POST("", bookings.CreateBooking)
	bookingGroup.GET("", bookings.GetMyBookings)
	bookingGroup.GET("/:id", bookings.GetBooking)
	bookingGroup.POST("/:id/cancel", bookings.CancelBooking)

	paymentGroup := api.Group("/payments")
	paymentGroup.GET("/:bookingId", payments.GetPaymentView)
	paymentGroup.POST("/:bookingId/order", payments.CreatePaymentOrder)
	paymentGroup.POST("/:bookingId/verify", payments.VerifyPayment)
	paymentGroup.POST("/:bookingId/cash", payments.UpdatePaymentStatusCash)

	invoiceGroup := api.Group("/invoices")
	invoiceGroup.POST("/:bookingId", invoices.GenerateInvoice)
	invoiceGroup.GET("/:id", invoices.GetInvoice)
	invoiceGroup.GET("/:id/html", invoices.GetInvoiceHTML)
}
