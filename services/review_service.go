package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/HSouheill/homeservices_backend/metrics"
	"github.com/HSouheill/homeservices_backend/models"
	"github.com/HSouheill/homeservices_backend/repositories"
)

const (
	maxRatingAttempts = 8
	ratingBackoffBase = 5 * time.Millisecond
)

// ReviewService appends reviews and keeps technician ratings current
type ReviewService struct {
	auth        *Authenticator
	bookings    repositories.BookingRepository
	reviews     repositories.ReviewRepository
	technicians repositories.TechnicianRepository
	validator   RequestValidator
	actions     ActionLogger
	notifier    Notifier
	log         *logrus.Logger
	now         func() time.Time
	backoff     func(attempt int) time.Duration
}

func NewReviewService(
	auth *Authenticator,
	bookings repositories.BookingRepository,
	reviews repositories.ReviewRepository,
	technicians repositories.TechnicianRepository,
	validator RequestValidator,
	actions ActionLogger,
	notifier Notifier,
	log *logrus.Logger,
) *ReviewService {
	return &ReviewService{
		auth:        auth,
		bookings:    bookings,
		reviews:     reviews,
		technicians: technicians,
		validator:   validator,
		actions:     actions,
		notifier:    notifier,
		log:         log,
		now:         time.Now,
		backoff:     ratingBackoff,
	}
}

// ratingBackoff waits between half and all of base<<attempt
func ratingBackoff(attempt int) time.Duration {
	ceiling := ratingBackoffBase << attempt
	half := ceiling / 2
	return half + time.Duration(rand.Int63n(int64(half)+1))
}

// CreateReview stores the caller's review of their booking and folds the
// rating into the technician's average
func (s *ReviewService) CreateReview(ctx context.Context, token string, req models.ReviewRequest) (*models.Review, error) {
	id, err := s.auth.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(&req); err != nil {
		return nil, err
	}

	booking, err := s.bookings.FindByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, models.ErrBookingNotFound()
		}
		return nil, models.ErrUpstream("Failed to load booking", err)
	}
	if booking.UserID != id.UID {
		return nil, models.ErrUnauthorized()
	}

	exists, err := s.reviews.ExistsForBooking(ctx, booking.ID)
	if err != nil {
		return nil, models.ErrUpstream("Failed to check reviews", err)
	}
	if exists {
		return nil, models.ErrConflict("Review already submitted")
	}

	// the booking is authoritative for who did the job
	if booking.TechnicianID == "" {
		return nil, models.ErrConflict("Booking has no technician to review")
	}
	if req.TechnicianID != booking.TechnicianID {
		return nil, models.ErrValidation("Technician does not match the booking")
	}

	review := &models.Review{
		ID:           uuid.NewString(),
		BookingID:    booking.ID,
		UserID:       id.UID,
		TechnicianID: booking.TechnicianID,
		Rating:       req.Rating,
		Comment:      strings.TrimSpace(req.Comment),
		CreatedAt:    s.now(),
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return nil, models.ErrConflict("Review already submitted")
		}
		return nil, models.ErrUpstream("Failed to save review", err)
	}

	if err := s.applyRating(ctx, booking.TechnicianID, review.Rating); err != nil {
		// the review is stored; a lost aggregate update is reported, not returned
		s.log.WithError(err).WithFields(logrus.Fields{
			"technicianId": booking.TechnicianID,
			"reviewId":     review.ID,
		}).Error("failed to update technician rating")
	}
	s.notifier.Notify(ctx, booking.TechnicianID, "New review",
		fmt.Sprintf("You received a %d-star review for %s.", review.Rating, booking.ServiceName),
		"/technician/reviews")

	s.actions.LogAction(models.ActionCreate, models.ModuleBooking,
		fmt.Sprintf("Review submitted for booking %s", booking.ID),
		&models.Actor{UserID: id.UID, UserName: id.Name},
		map[string]interface{}{"bookingId": booking.ID, "rating": review.Rating},
	)
	return review, nil
}

// applyRating folds rating into the technician's running average with an
// optimistic compare-and-swap on the profile version
func (s *ReviewService) applyRating(ctx context.Context, technicianID string, rating int) error {
	for attempt := 0; attempt < maxRatingAttempts; attempt++ {
		tech, err := s.technicians.FindByID(ctx, technicianID)
		if err != nil {
			return err
		}

		newRating, newTotal := NextRating(tech.Rating, tech.TotalReviews, rating)
		err = s.technicians.UpdateRating(ctx, tech.ID, tech.Version, newRating, newTotal, s.now())
		if err == nil {
			return nil
		}
		if !errors.Is(err, repositories.ErrConflict) {
			return err
		}
		metrics.RecordRatingRetry()
		if attempt == maxRatingAttempts-1 {
			break
		}

		timer := time.NewTimer(s.backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return fmt.Errorf("rating update for %s lost %d races", technicianID, maxRatingAttempts)
}

// NextRating returns the running average after adding one rating
func NextRating(current float64, total, rating int) (float64, int) {
	return (current*float64(total) + float64(rating)) / float64(total+1), total + 1
}

// ListTechnicianReviews returns the reviews of a technician, newest first
func (s *ReviewService) ListTechnicianReviews(ctx context.Context, technicianID string) ([]models.Review, error) {
	reviews, err := s.reviews.ListByTechnician(ctx, technicianID)
	if err != nil {
		return nil, models.ErrUpstream("Failed to load reviews", err)
	}
	return reviews, nil
}
