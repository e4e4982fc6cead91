package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/HSouheill/homeservices_backend/services"
)

type InvoiceController struct {
	base
	invoices *services.InvoiceService
}

func NewInvoiceController(invoices *services.InvoiceService, log *logrus.Logger) *InvoiceController {
	return &InvoiceController{base: base{log: log}, invoices: invoices}
}

// GenerateInvoice handles POST /api/invoices/:bookingId
func (ic *InvoiceController) GenerateInvoice(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	invoiceID, err := ic.invoices.GenerateInvoice(ctx, c.Param("bookingId"))
	if err != nil {
		return ic.fail(c, err)
	}
	return ok(c, http.StatusOK, map[string]interface{}{"invoiceId": invoiceID})
}

// GetInvoice handles GET /api/invoices/:id
func (ic *InvoiceController) GetInvoice(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	invoice, err := ic.invoices.GetInvoice(ctx, c.Param("id"))
	if err != nil {
		return ic.fail(c, err)
	}
	return ok(c, http.StatusOK, map[string]interface{}{"invoice": invoice})
}

// GetInvoiceHTML handles GET /api/invoices/:id/html and serves the printable document
func (ic *InvoiceController) GetInvoiceHTML(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	invoice, err := ic.invoices.GetInvoice(ctx, c.Param("id"))
	if err != nil {
		return ic.fail(c, err)
	}
	return c.HTML(http.StatusOK, invoice.HTML)
}
