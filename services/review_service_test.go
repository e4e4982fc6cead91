package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HSouheill/homeservices_backend/models"
	"github.com/HSouheill/homeservices_backend/repositories"
)

func reviewFor(bookingID string, rating int) models.ReviewRequest {
	return models.ReviewRequest{
		BookingID:    bookingID,
		TechnicianID: "t1",
		Rating:       rating,
		Comment:      "Fixed the leak quickly",
	}
}

func seedRatedTechnician(t *testing.T, env *testEnv, rating float64, total int) {
	t.Helper()
	env.approvedTechnician(t, "t1")
	if total == 0 {
		return
	}
	tech, err := env.store.Technicians.FindByID(context.Background(), "t1")
	require.NoError(t, err)
	require.NoError(t, env.store.Technicians.UpdateRating(context.Background(), "t1", tech.Version, rating, total, tech.UpdatedAt))
}

func TestNextRating(t *testing.T) {
	rating, total := NextRating(4.0, 2, 5)
	assert.InDelta(t, 13.0/3.0, rating, 1e-9)
	assert.Equal(t, 3, total)

	rating, total = NextRating(0, 0, 3)
	assert.Equal(t, 3.0, rating)
	assert.Equal(t, 1, total)
}

func TestCreateReviewUpdatesTechnicianRating(t *testing.T) {
	env := newTestEnv(t)
	token := env.signIn(t, "u1", models.RoleUser)
	seedRatedTechnician(t, env, 4.0, 2)
	env.seedBooking(t, models.Booking{ID: "b1", UserID: "u1", Status: models.BookingStatusCompleted, TechnicianID: "t1"})

	review, err := env.reviews.CreateReview(context.Background(), token, reviewFor("b1", 5))
	require.NoError(t, err)
	assert.Equal(t, "t1", review.TechnicianID)

	tech, err := env.store.Technicians.FindByID(context.Background(), "t1")
	require.NoError(t, err)
	assert.InDelta(t, 4.333333, tech.Rating, 1e-6)
	assert.Equal(t, 3, tech.TotalReviews)
	assert.Len(t, env.notifier.to("t1"), 1)
}

func TestCreateReviewRejectsDuplicate(t *testing.T) {
	env := newTestEnv(t)
	token := env.signIn(t, "u1", models.RoleUser)
	seedRatedTechnician(t, env, 0, 0)
	env.seedBooking(t, models.Booking{ID: "b1", UserID: "u1", Status: models.BookingStatusCompleted, TechnicianID: "t1"})
	ctx := context.Background()

	_, err := env.reviews.CreateReview(ctx, token, reviewFor("b1", 4))
	require.NoError(t, err)

	_, err = env.reviews.CreateReview(ctx, token, reviewFor("b1", 1))
	requireKind(t, err, models.KindConflict)
	assert.Equal(t, "Review already submitted", models.MessageOf(err))

	tech, err := env.store.Technicians.FindByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 1, tech.TotalReviews, "the duplicate is not counted")
	assert.Equal(t, 4.0, tech.Rating)
}

func TestCreateReviewConcurrentRatingsAreAllCounted(t *testing.T) {
	env := newTestEnv(t)
	token := env.signIn(t, "u1", models.RoleUser)
	seedRatedTechnician(t, env, 0, 0)

	ratings := []int{5, 4, 5, 3, 5, 4}
	sum := 0
	for i, r := range ratings {
		env.seedBooking(t, models.Booking{
			ID:           fmt.Sprintf("b%d", i),
			UserID:       "u1",
			Status:       models.BookingStatusCompleted,
			TechnicianID: "t1",
		})
		sum += r
	}

	var wg sync.WaitGroup
	for i, r := range ratings {
		wg.Add(1)
		go func(bookingID string, rating int) {
			defer wg.Done()
			_, err := env.reviews.CreateReview(context.Background(), token, reviewFor(bookingID, rating))
			assert.NoError(t, err)
		}(fmt.Sprintf("b%d", i), r)
	}
	wg.Wait()

	tech, err := env.store.Technicians.FindByID(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, len(ratings), tech.TotalReviews)
	assert.InDelta(t, float64(sum)/float64(len(ratings)), tech.Rating, 1e-9)
}

func TestCreateReviewAccessAndValidation(t *testing.T) {
	env := newTestEnv(t)
	owner := env.signIn(t, "u1", models.RoleUser)
	other := env.signIn(t, "u2", models.RoleUser)
	seedRatedTechnician(t, env, 0, 0)
	env.seedBooking(t, models.Booking{ID: "b1", UserID: "u1", Status: models.BookingStatusCompleted, TechnicianID: "t1"})
	ctx := context.Background()

	_, err := env.reviews.CreateReview(ctx, "", reviewFor("b1", 5))
	requireKind(t, err, models.KindUnauthenticated)

	_, err = env.reviews.CreateReview(ctx, other, reviewFor("b1", 5))
	requireKind(t, err, models.KindUnauthorized)

	_, err = env.reviews.CreateReview(ctx, owner, reviewFor("missing", 5))
	requireKind(t, err, models.KindNotFound)

	short := reviewFor("b1", 5)
	short.Comment = "meh!"
	_, err = env.reviews.CreateReview(ctx, owner, short)
	requireKind(t, err, models.KindValidationFailed)

	short.Comment = "okay!"
	_, err = env.reviews.CreateReview(ctx, owner, short)
	require.NoError(t, err, "five characters is the minimum")

	reviews, err := env.reviews.ListTechnicianReviews(ctx, "t1")
	require.NoError(t, err)
	assert.Len(t, reviews, 1)
}

func TestCreateReviewIsAttributedToBookingTechnician(t *testing.T) {
	env := newTestEnv(t)
	owner := env.signIn(t, "u1", models.RoleUser)
	seedRatedTechnician(t, env, 0, 0)
	env.approvedTechnician(t, "t2")
	env.seedBooking(t, models.Booking{ID: "unassigned", UserID: "u1", Status: models.BookingStatusConfirmed})
	env.seedBooking(t, models.Booking{ID: "b1", UserID: "u1", Status: models.BookingStatusCompleted, TechnicianID: "t1"})
	ctx := context.Background()

	_, err := env.reviews.CreateReview(ctx, owner, reviewFor("unassigned", 1))
	requireKind(t, err, models.KindConflict)
	assert.Equal(t, "Booking has no technician to review", models.MessageOf(err))

	wrong := reviewFor("b1", 1)
	wrong.TechnicianID = "t2"
	_, err = env.reviews.CreateReview(ctx, owner, wrong)
	requireKind(t, err, models.KindValidationFailed)

	for _, id := range []string{"t1", "t2"} {
		reviews, err := env.reviews.ListTechnicianReviews(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, reviews, id)
		tech, err := env.store.Technicians.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Zero(t, tech.TotalReviews, id)
	}
	assert.Empty(t, env.notifier.to("t2"))
}

// contendedTechnicians loses the first conflicts rating writes
type contendedTechnicians struct {
	repositories.TechnicianRepository
	conflicts int
}

func (c *contendedTechnicians) UpdateRating(ctx context.Context, id string, version int64, rating float64, total int, now time.Time) error {
	if c.conflicts > 0 {
		c.conflicts--
		return repositories.ErrConflict
	}
	return c.TechnicianRepository.UpdateRating(ctx, id, version, rating, total, now)
}

func TestApplyRatingBacksOffBetweenConflicts(t *testing.T) {
	env := newTestEnv(t)
	seedRatedTechnician(t, env, 4.0, 2)
	techs := &contendedTechnicians{TechnicianRepository: env.store.Technicians, conflicts: 3}
	svc := NewReviewService(env.auth, env.store.Bookings, env.store.Reviews, techs, env.validator, env.actions, env.notifier, env.log)

	var waits []int
	svc.backoff = func(attempt int) time.Duration {
		waits = append(waits, attempt)
		return time.Millisecond
	}

	require.NoError(t, svc.applyRating(context.Background(), "t1", 5))
	assert.Equal(t, []int{0, 1, 2}, waits)

	tech, err := env.store.Technicians.FindByID(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, 3, tech.TotalReviews)
}

func TestApplyRatingGivesUpAfterMaxAttempts(t *testing.T) {
	env := newTestEnv(t)
	seedRatedTechnician(t, env, 0, 0)
	techs := &contendedTechnicians{TechnicianRepository: env.store.Technicians, conflicts: maxRatingAttempts}
	svc := NewReviewService(env.auth, env.store.Bookings, env.store.Reviews, techs, env.validator, env.actions, env.notifier, env.log)

	waits := 0
	svc.backoff = func(int) time.Duration {
		waits++
		return 0
	}
	assert.Error(t, svc.applyRating(context.Background(), "t1", 5))
	assert.Equal(t, maxRatingAttempts-1, waits, "no wait after the last attempt")
}

func TestApplyRatingStopsWhenContextEnds(t *testing.T) {
	env := newTestEnv(t)
	seedRatedTechnician(t, env, 0, 0)
	techs := &contendedTechnicians{TechnicianRepository: env.store.Technicians, conflicts: 1}
	svc := NewReviewService(env.auth, env.store.Bookings, env.store.Reviews, techs, env.validator, env.actions, env.notifier, env.log)
	svc.backoff = func(int) time.Duration { return time.Hour }

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, svc.applyRating(ctx, "t1", 5), context.DeadlineExceeded)
}

func TestRatingBackoffIsJitteredAndGrows(t *testing.T) {
	for attempt := 0; attempt < maxRatingAttempts; attempt++ {
		ceiling := ratingBackoffBase << attempt
		for i := 0; i < 20; i++ {
			d := ratingBackoff(attempt)
			assert.GreaterOrEqual(t, d, ceiling/2)
			assert.LessOrEqual(t, d, ceiling)
		}
	}
}
