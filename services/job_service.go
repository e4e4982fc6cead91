package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/HSouheill/homeservices_backend/models"
	"github.com/HSouheill/homeservices_backend/repositories"
)

// JobService is the technician side of the booking lifecycle
type JobService struct {
	auth        *Authenticator
	bookings    repositories.BookingRepository
	technicians repositories.TechnicianRepository
	actions     ActionLogger
	notifier    Notifier
	log         *logrus.Logger
	now         func() time.Time
}

func NewJobService(auth *Authenticator, bookings repositories.BookingRepository, technicians repositories.TechnicianRepository, actions ActionLogger, notifier Notifier, log *logrus.Logger) *JobService {
	return &JobService{
		auth:        auth,
		bookings:    bookings,
		technicians: technicians,
		actions:     actions,
		notifier:    notifier,
		log:         log,
		now:         time.Now,
	}
}

// requireApprovedTechnician returns the caller when they have an approved technician profile
func (s *JobService) requireApprovedTechnician(ctx context.Context, token string) (*models.User, error) {
	user, err := s.auth.RequireRole(ctx, token, models.RoleTechnician)
	if err != nil {
		return nil, err
	}
	tech, err := s.technicians.FindByID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, models.ErrUnauthorized()
		}
		return nil, models.ErrUpstream("Failed to load technician", err)
	}
	if tech.Status != models.TechnicianStatusApproved {
		return nil, models.ErrUnauthorized()
	}
	return user, nil
}

// ListAvailableJobs returns confirmed bookings nobody has claimed
func (s *JobService) ListAvailableJobs(ctx context.Context, token string) ([]models.Booking, error) {
	if _, err := s.requireApprovedTechnician(ctx, token); err != nil {
		return nil, err
	}
	jobs, err := s.bookings.ListUnassigned(ctx)
	if err != nil {
		return nil, models.ErrUpstream("Failed to load jobs", err)
	}
	return jobs, nil
}

// ListMyJobs returns bookings assigned to the caller
func (s *JobService) ListMyJobs(ctx context.Context, token string) ([]models.Booking, error) {
	user, err := s.requireApprovedTechnician(ctx, token)
	if err != nil {
		return nil, err
	}
	jobs, err := s.bookings.ListByTechnician(ctx, user.ID)
	if err != nil {
		return nil, models.ErrUpstream("Failed to load jobs", err)
	}
	return jobs, nil
}

// AcceptJob claims an unassigned confirmed booking. The claim is a single
// conditional write, so concurrent callers get exactly one winner.
func (s *JobService) AcceptJob(ctx context.Context, token, bookingID string) (*models.Booking, error) {
	user, err := s.requireApprovedTechnician(ctx, token)
	if err != nil {
		return nil, err
	}

	booking, err := s.bookings.UpdateIf(ctx, bookingID,
		models.BookingCondition{
			Statuses:     []string{models.BookingStatusConfirmed},
			TechnicianID: models.StringPtr(""),
		},
		models.BookingPatch{
			TechnicianID: models.StringPtr(user.ID),
			Status:       models.StringPtr(models.BookingStatusAssigned),
			UpdatedAt:    s.now(),
		},
	)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return nil, models.ErrBookingNotFound()
		case errors.Is(err, repositories.ErrConflict):
			return nil, s.claimConflict(ctx, bookingID)
		}
		return nil, models.ErrUpstream("Failed to accept job", err)
	}

	s.actions.LogAction(models.ActionAssign, models.ModuleBooking,
		fmt.Sprintf("Technician accepted booking %s", booking.ID),
		models.ActorOf(user),
		map[string]interface{}{"bookingId": booking.ID, "technicianId": user.ID},
	)
	s.notifier.Notify(ctx, booking.UserID, "Technician assigned",
		fmt.Sprintf("%s will handle your %s booking on %s.", displayName(user), booking.ServiceName, booking.Date),
		"/bookings/"+booking.ID)
	return booking, nil
}

// claimConflict explains why a claim lost
func (s *JobService) claimConflict(ctx context.Context, bookingID string) error {
	current, err := s.bookings.FindByID(ctx, bookingID)
	if err == nil && current.TechnicianID == "" {
		return models.ErrConflict("Job is not available")
	}
	return models.ErrConflict("Job already taken")
}

// CompleteJob marks the caller's assigned booking completed
func (s *JobService) CompleteJob(ctx context.Context, token, bookingID string) (*models.Booking, error) {
	user, err := s.requireApprovedTechnician(ctx, token)
	if err != nil {
		return nil, err
	}

	booking, err := s.bookings.UpdateIf(ctx, bookingID,
		models.BookingCondition{
			Statuses:     []string{models.BookingStatusAssigned},
			TechnicianID: models.StringPtr(user.ID),
		},
		models.BookingPatch{
			Status:    models.StringPtr(models.BookingStatusCompleted),
			UpdatedAt: s.now(),
		},
	)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return nil, models.ErrBookingNotFound()
		case errors.Is(err, repositories.ErrConflict):
			return nil, models.ErrConflict("Job cannot be completed")
		}
		return nil, models.ErrUpstream("Failed to complete job", err)
	}

	s.actions.LogAction(models.ActionUpdate, models.ModuleBooking,
		fmt.Sprintf("Booking %s completed", booking.ID),
		models.ActorOf(user),
		map[string]interface{}{"bookingId": booking.ID},
	)
	s.notifier.Notify(ctx, booking.UserID, "Service completed",
		fmt.Sprintf("Your %s service is complete. Tell us how it went!", booking.ServiceName),
		"/bookings/"+booking.ID+"/review")
	return booking, nil
}
