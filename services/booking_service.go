package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/HSouheill/homeservices_backend/models"
	"github.com/HSouheill/homeservices_backend/repositories"
)

// BookingService covers the customer side of the booking lifecycle
type BookingService struct {
	auth      *Authenticator
	bookings  repositories.BookingRepository
	validator RequestValidator
	actions   ActionLogger
	notifier  Notifier
	cache     Cache
	log       *logrus.Logger
	now       func() time.Time
}

func NewBookingService(auth *Authenticator, bookings repositories.BookingRepository, validator RequestValidator, actions ActionLogger, notifier Notifier, cache Cache, log *logrus.Logger) *BookingService {
	return &BookingService{
		auth:      auth,
		bookings:  bookings,
		validator: validator,
		actions:   actions,
		notifier:  notifier,
		cache:     cache,
		log:       log,
		now:       time.Now,
	}
}

// CreateBooking stores a new unpaid booking for the caller
func (s *BookingService) CreateBooking(ctx context.Context, token string, req models.BookingRequest) (*models.Booking, error) {
	user, err := s.auth.CurrentUser(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(&req); err != nil {
		return nil, err
	}

	now := s.now()
	booking := &models.Booking{
		ID:            uuid.NewString(),
		UserID:        user.ID,
		UserName:      displayName(user),
		ServiceID:     strings.TrimSpace(req.ServiceID),
		ServiceName:   strings.TrimSpace(req.ServiceName),
		Package:       req.Package,
		Date:          req.Date,
		Time:          req.Time,
		Address:       req.Address,
		Amount:        req.Amount,
		Status:        models.BookingStatusPending,
		PaymentStatus: models.PaymentStatusUnpaid,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, models.ErrUpstream("Failed to create booking", err)
	}

	s.actions.LogAction(models.ActionCreate, models.ModuleBooking,
		fmt.Sprintf("Booking created for %s", booking.ServiceName),
		models.ActorOf(user),
		map[string]interface{}{"bookingId": booking.ID, "amount": booking.Amount},
	)
	return booking, nil
}

// ListMyBookings returns the caller's bookings, newest first
func (s *BookingService) ListMyBookings(ctx context.Context, token string) ([]models.Booking, error) {
	id, err := s.auth.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	bookings, err := s.bookings.ListByUser(ctx, id.UID)
	if err != nil {
		return nil, models.ErrUpstream("Failed to load bookings", err)
	}
	return bookings, nil
}

// GetBooking returns a booking visible to the caller: its owner, its
// technician, or staff
func (s *BookingService) GetBooking(ctx context.Context, token, bookingID string) (*models.Booking, error) {
	user, err := s.auth.CurrentUser(ctx, token)
	if err != nil {
		return nil, err
	}
	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, models.ErrBookingNotFound()
		}
		return nil, models.ErrUpstream("Failed to load booking", err)
	}
	if booking.UserID != user.ID && booking.TechnicianID != user.ID && !user.HasRole(models.RoleAdmin, models.RoleManager) {
		return nil, models.ErrUnauthorized()
	}
	return booking, nil
}

// CancelBooking cancels a booking that has not been completed. Owners and
// admins may cancel.
func (s *BookingService) CancelBooking(ctx context.Context, token, bookingID string) (*models.Booking, error) {
	user, err := s.auth.CurrentUser(ctx, token)
	if err != nil {
		return nil, err
	}
	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, models.ErrBookingNotFound()
		}
		return nil, models.ErrUpstream("Failed to load booking", err)
	}
	if booking.UserID != user.ID && !user.HasRole(models.RoleAdmin) {
		return nil, models.ErrUnauthorized()
	}

	updated, err := s.bookings.UpdateIf(ctx, booking.ID,
		models.BookingCondition{Statuses: []string{
			models.BookingStatusPending,
			models.BookingStatusPendingVerification,
			models.BookingStatusConfirmed,
			models.BookingStatusAssigned,
		}},
		models.BookingPatch{
			Status:    models.StringPtr(models.BookingStatusCancelled),
			UpdatedAt: s.now(),
		},
	)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return nil, models.ErrBookingNotFound()
		case errors.Is(err, repositories.ErrConflict):
			return nil, models.ErrConflict("Booking cannot be cancelled")
		}
		return nil, models.ErrUpstream("Failed to cancel booking", err)
	}

	if err := s.cache.Delete(ctx, paymentViewKey(updated.ID)); err != nil {
		s.log.WithError(err).Warn("payment view cache invalidation failed")
	}
	s.actions.LogAction(models.ActionUpdate, models.ModuleBooking,
		fmt.Sprintf("Booking %s cancelled", updated.ID),
		models.ActorOf(user),
		map[string]interface{}{"bookingId": updated.ID, "previousStatus": booking.Status},
	)
	if updated.TechnicianID != "" {
		s.notifier.Notify(ctx, updated.TechnicianID, "Job cancelled",
			fmt.Sprintf("The %s job on %s was cancelled.", updated.ServiceName, updated.Date),
			"/technician/jobs")
	}
	return updated, nil
}

func displayName(u *models.User) string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	return u.Email
}
