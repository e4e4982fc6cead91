package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/HSouheill/homeservices_backend/metrics"
	"github.com/HSouheill/homeservices_backend/models"
	"github.com/HSouheill/homeservices_backend/repositories"
	"github.com/HSouheill/homeservices_backend/utils"
)

const paymentViewTTL = 10 * time.Minute

// RequestValidator checks a tagged request struct
type RequestValidator interface {
	Validate(i interface{}) error
}

// PaymentService drives the settlement side of a booking
type PaymentService struct {
	auth      *Authenticator
	bookings  repositories.BookingRepository
	gateway   PaymentGateway
	invoices  *InvoiceService
	cache     Cache
	validator RequestValidator
	actions   ActionLogger
	notifier  Notifier
	log       *logrus.Logger
	now       func() time.Time
}

func NewPaymentService(
	auth *Authenticator,
	bookings repositories.BookingRepository,
	gateway PaymentGateway,
	invoices *InvoiceService,
	cache Cache,
	validator RequestValidator,
	actions ActionLogger,
	notifier Notifier,
	log *logrus.Logger,
) *PaymentService {
	return &PaymentService{
		auth:      auth,
		bookings:  bookings,
		gateway:   gateway,
		invoices:  invoices,
		cache:     cache,
		validator: validator,
		actions:   actions,
		notifier:  notifier,
		log:       log,
		now:       time.Now,
	}
}

// loadOwnedBooking verifies the caller and returns their booking
func (s *PaymentService) loadOwnedBooking(ctx context.Context, token, bookingID string) (*Identity, *models.Booking, error) {
	id, err := s.auth.Authenticate(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, models.ErrBookingNotFound()
		}
		return nil, nil, models.ErrUpstream("Failed to load booking", err)
	}
	if booking.UserID != id.UID {
		return nil, nil, models.ErrUnauthorized()
	}
	return id, booking, nil
}

// CreatePaymentOrder requests a gateway order for the booking amount. Nothing is written locally.
func (s *PaymentService) CreatePaymentOrder(ctx context.Context, token, bookingID string) (*models.PaymentOrder, error) {
	id, booking, err := s.loadOwnedBooking(ctx, token, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.PaymentStatus == models.PaymentStatusPaid {
		return nil, models.ErrConflict("Booking is already paid")
	}
	if booking.IsTerminal() {
		return nil, models.ErrConflict("Booking can no longer be paid")
	}

	order, err := s.gateway.CreateOrder(ctx, models.OrderRequest{
		Amount:   utils.ToMinorUnits(booking.Amount),
		Currency: "INR",
		Receipt:  "receipt_" + booking.ID,
		Notes: map[string]string{
			"bookingId": booking.ID,
			"userId":    id.UID,
		},
	})
	if err != nil {
		s.log.WithError(err).WithField("bookingId", booking.ID).Error("failed to create payment order")
		return nil, models.ErrUpstream("Failed to create payment order", err)
	}
	return order, nil
}

// VerifyPayment checks the checkout signature and settles the booking.
// Replaying an already applied payment succeeds without side effects.
func (s *PaymentService) VerifyPayment(ctx context.Context, token, bookingID string, req models.PaymentVerificationRequest) (*models.Booking, error) {
	id, booking, err := s.loadOwnedBooking(ctx, token, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(&req); err != nil {
		return nil, err
	}

	if !s.gateway.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
		metrics.RecordPaymentVerification("invalid_signature")
		s.log.WithField("bookingId", booking.ID).Warn("payment signature mismatch")
		return nil, models.ErrInvalidSignature()
	}

	if booking.PaymentStatus == models.PaymentStatusPaid && booking.PaymentDetails != nil {
		if booking.PaymentDetails.PaymentID == req.PaymentID {
			metrics.RecordPaymentVerification("replayed")
			return booking, nil
		}
		return nil, models.ErrConflict("Booking is already paid")
	}

	now := s.now()
	updated, err := s.bookings.UpdateIf(ctx, booking.ID,
		models.BookingCondition{
			Statuses: []string{
				models.BookingStatusPending,
				models.BookingStatusPendingVerification,
				models.BookingStatusConfirmed,
			},
			PaymentStatuses: []string{
				models.PaymentStatusUnpaid,
				models.PaymentStatusPendingVerification,
			},
		},
		models.BookingPatch{
			Status:        models.StringPtr(models.BookingStatusConfirmed),
			PaymentStatus: models.StringPtr(models.PaymentStatusPaid),
			PaymentMethod: models.StringPtr(models.PaymentMethodOnline),
			PaymentDetails: &models.PaymentDetails{
				OrderID:    req.OrderID,
				PaymentID:  req.PaymentID,
				Signature:  req.Signature,
				VerifiedAt: now,
			},
			UpdatedAt: now,
		},
	)
	if err != nil {
		metrics.RecordPaymentVerification("failed")
		return nil, s.settleError(err)
	}
	metrics.RecordPaymentVerification("verified")

	s.afterSettlement(ctx, id, updated, "online")
	return updated, nil
}

// ConfirmCashPayment records that the customer will pay in cash on site
func (s *PaymentService) ConfirmCashPayment(ctx context.Context, token, bookingID string) (*models.Booking, error) {
	id, booking, err := s.loadOwnedBooking(ctx, token, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.PaymentStatus == models.PaymentStatusPaid {
		return nil, models.ErrConflict("Booking is already paid")
	}

	now := s.now()
	updated, err := s.bookings.UpdateIf(ctx, booking.ID,
		models.BookingCondition{Statuses: []string{
			models.BookingStatusPending,
			models.BookingStatusPendingVerification,
		}},
		models.BookingPatch{
			Status:        models.StringPtr(models.BookingStatusConfirmed),
			PaymentStatus: models.StringPtr(models.PaymentStatusPendingVerification),
			PaymentMethod: models.StringPtr(models.PaymentMethodCash),
			UpdatedAt:     now,
		},
	)
	if err != nil {
		return nil, s.settleError(err)
	}

	s.afterSettlement(ctx, id, updated, "cash")
	return updated, nil
}

// GetPaymentView returns the checkout summary, served from cache when possible
func (s *PaymentService) GetPaymentView(ctx context.Context, token, bookingID string) (*models.PaymentView, error) {
	id, err := s.auth.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}

	var view models.PaymentView
	if ok, err := s.cache.Get(ctx, paymentViewKey(bookingID), &view); err == nil && ok {
		if view.UserID == id.UID {
			return &view, nil
		}
		return nil, models.ErrUnauthorized()
	}

	_, booking, err := s.loadOwnedBooking(ctx, token, bookingID)
	if err != nil {
		return nil, err
	}
	view = models.PaymentView{
		BookingID:     booking.ID,
		UserID:        booking.UserID,
		ServiceName:   booking.ServiceName,
		Package:       booking.Package,
		Amount:        booking.Amount,
		AmountPaise:   utils.ToMinorUnits(booking.Amount),
		Status:        booking.Status,
		PaymentStatus: booking.PaymentStatus,
		PaymentMethod: booking.PaymentMethod,
		InvoiceID:     booking.InvoiceID,
		KeyID:         s.gateway.KeyID(),
	}
	if err := s.cache.Set(ctx, paymentViewKey(bookingID), view, paymentViewTTL); err != nil {
		s.log.WithError(err).Warn("payment view cache write failed")
	}
	return &view, nil
}

func (s *PaymentService) settleError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return models.ErrBookingNotFound()
	case errors.Is(err, repositories.ErrConflict):
		return models.ErrConflict("Booking can no longer be paid")
	default:
		return models.ErrUpstream("Failed to update booking", err)
	}
}

// afterSettlement runs the follow-up steps of a committed payment. None of
// them can undo the payment; failures are logged.
func (s *PaymentService) afterSettlement(ctx context.Context, id *Identity, booking *models.Booking, method string) {
	entry := s.log.WithFields(logrus.Fields{"bookingId": booking.ID, "method": method})

	if booking.InvoiceID == "" {
		invoiceID, err := s.invoices.generateFor(ctx, booking)
		if err != nil {
			entry.WithError(err).Error("invoice generation failed after payment")
		} else {
			booking.InvoiceID = invoiceID
		}
	}

	if err := s.cache.Delete(ctx, paymentViewKey(booking.ID)); err != nil {
		entry.WithError(err).Warn("payment view cache invalidation failed")
	}

	s.actions.LogAction(models.ActionUpdate, models.ModulePayment,
		fmt.Sprintf("Payment confirmed (%s) for booking %s", method, booking.ID),
		&models.Actor{UserID: id.UID, UserName: id.Name},
		map[string]interface{}{"bookingId": booking.ID, "method": method, "amount": booking.Amount},
	)
	s.notifier.Notify(ctx, booking.UserID, "Booking confirmed",
		fmt.Sprintf("Your booking for %s is confirmed.", booking.ServiceName),
		"/bookings/"+booking.ID)
	entry.Info("payment settled")
}
