package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/HSouheill/homeservices_backend/models"
	"github.com/HSouheill/homeservices_backend/repositories"
)

// invoices never change, so the cache entry can live long
const invoiceCacheTTL = 24 * time.Hour

// InvoiceService renders, stores and serves invoices
type InvoiceService struct {
	bookings repositories.BookingRepository
	invoices repositories.InvoiceRepository
	renderer *InvoiceRenderer
	cache    Cache
	log      *logrus.Logger
	now      func() time.Time
}

func NewInvoiceService(bookings repositories.BookingRepository, invoices repositories.InvoiceRepository, renderer *InvoiceRenderer, cache Cache, log *logrus.Logger) *InvoiceService {
	return &InvoiceService{
		bookings: bookings,
		invoices: invoices,
		renderer: renderer,
		cache:    cache,
		log:      log,
		now:      time.Now,
	}
}

// GenerateInvoice renders and stores the invoice for a booking and links it.
// A booking that already has an invoice returns the existing id.
func (s *InvoiceService) GenerateInvoice(ctx context.Context, bookingID string) (string, error) {
	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", models.ErrBookingNotFound()
		}
		return "", models.ErrUpstream("Failed to load booking", err)
	}
	if booking.InvoiceID != "" {
		return booking.InvoiceID, nil
	}
	return s.generateFor(ctx, booking)
}

func (s *InvoiceService) generateFor(ctx context.Context, booking *models.Booking) (string, error) {
	now := s.now()
	html, _, err := s.renderer.Render(booking, now)
	if err != nil {
		return "", models.ErrUpstream("Failed to render invoice", err)
	}

	invoice := &models.Invoice{
		ID:        uuid.NewString(),
		BookingID: booking.ID,
		UserID:    booking.UserID,
		Number:    InvoiceNumber(booking.ID),
		HTML:      html,
		CreatedAt: now,
	}
	if err := s.invoices.Create(ctx, invoice); err != nil {
		if !errors.Is(err, repositories.ErrConflict) {
			return "", models.ErrUpstream("Failed to save invoice", err)
		}
		// another request won the race; link its invoice instead
		existing, findErr := s.invoices.FindByBooking(ctx, booking.ID)
		if findErr != nil {
			return "", models.ErrUpstream("Failed to load invoice", findErr)
		}
		invoice = existing
		now = existing.CreatedAt
	}

	err = s.bookings.Update(ctx, booking.ID, models.BookingPatch{
		InvoiceID:          models.StringPtr(invoice.ID),
		InvoiceGeneratedAt: &now,
		UpdatedAt:          now,
	})
	if err != nil {
		return "", models.ErrUpstream("Failed to link invoice", err)
	}

	s.log.WithFields(logrus.Fields{
		"bookingId": booking.ID,
		"invoiceId": invoice.ID,
	}).Info("invoice generated")
	return invoice.ID, nil
}

// GetInvoice returns a stored invoice; the html is identical on every call
func (s *InvoiceService) GetInvoice(ctx context.Context, invoiceID string) (*models.Invoice, error) {
	var cached models.Invoice
	if ok, err := s.cache.Get(ctx, invoiceKey(invoiceID), &cached); err == nil && ok {
		return &cached, nil
	} else if err != nil {
		s.log.WithError(err).Warn("invoice cache read failed")
	}

	invoice, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, models.ErrNotFound("Invoice not found")
		}
		return nil, models.ErrUpstream("Failed to load invoice", err)
	}

	if err := s.cache.Set(ctx, invoiceKey(invoiceID), invoice, invoiceCacheTTL); err != nil {
		s.log.WithError(err).Warn("invoice cache write failed")
	}
	return invoice, nil
}
