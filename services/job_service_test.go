package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HSouheill/homeservices_backend/models"
)

func TestAcceptJobConcurrentClaimsHaveOneWinner(t *testing.T) {
	env := newTestEnv(t)
	env.signIn(t, "u1", models.RoleUser)
	env.seedBooking(t, models.Booking{ID: "b1", UserID: "u1", Status: models.BookingStatusConfirmed})

	const claimants = 10
	tokens := make([]string, claimants)
	for i := range tokens {
		tokens[i] = env.approvedTechnician(t, fmt.Sprintf("tech-%d", i))
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []string
		errs    []error
	)
	for i := range tokens {
		wg.Add(1)
		go func(token string) {
			defer wg.Done()
			booking, err := env.jobs.AcceptJob(context.Background(), token, "b1")
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			winners = append(winners, booking.TechnicianID)
		}(tokens[i])
	}
	wg.Wait()

	require.Len(t, winners, 1)
	require.Len(t, errs, claimants-1)
	for _, err := range errs {
		requireKind(t, err, models.KindConflict)
		assert.Equal(t, "Job already taken", models.MessageOf(err))
	}

	stored := env.booking(t, "b1")
	assert.Equal(t, winners[0], stored.TechnicianID)
	assert.Equal(t, models.BookingStatusAssigned, stored.Status)
	assert.Len(t, env.notifier.to("u1"), 1)
}

func TestAcceptJobRequiresApprovedTechnician(t *testing.T) {
	env := newTestEnv(t)
	env.seedBooking(t, models.Booking{ID: "b1", UserID: "u1", Status: models.BookingStatusConfirmed})
	ctx := context.Background()

	customer := env.signIn(t, "u1", models.RoleUser)
	_, err := env.jobs.AcceptJob(ctx, customer, "b1")
	requireKind(t, err, models.KindUnauthorized)

	// role without an approved application is not enough
	pending := env.signIn(t, "t-pending", models.RoleTechnician)
	_, err = env.jobs.AcceptJob(ctx, pending, "b1")
	requireKind(t, err, models.KindUnauthorized)

	assert.Empty(t, env.booking(t, "b1").TechnicianID)
}

func TestAcceptJobRejectsUnconfirmedBooking(t *testing.T) {
	env := newTestEnv(t)
	tech := env.approvedTechnician(t, "t1")
	env.seedBooking(t, models.Booking{ID: "b1", UserID: "u1"})

	_, err := env.jobs.AcceptJob(context.Background(), tech, "b1")
	requireKind(t, err, models.KindConflict)
	assert.Equal(t, "Job is not available", models.MessageOf(err))

	_, err = env.jobs.AcceptJob(context.Background(), tech, "missing")
	requireKind(t, err, models.KindNotFound)
}

func TestJobLists(t *testing.T) {
	env := newTestEnv(t)
	tech := env.approvedTechnician(t, "t1")
	env.seedBooking(t, models.Booking{ID: "open", UserID: "u1", Status: models.BookingStatusConfirmed})
	env.seedBooking(t, models.Booking{ID: "unpaid", UserID: "u1"})
	env.seedBooking(t, models.Booking{ID: "mine", UserID: "u1", Status: models.BookingStatusAssigned, TechnicianID: "t1"})
	env.seedBooking(t, models.Booking{ID: "theirs", UserID: "u1", Status: models.BookingStatusAssigned, TechnicianID: "t2"})
	ctx := context.Background()

	available, err := env.jobs.ListAvailableJobs(ctx, tech)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, "open", available[0].ID)

	mine, err := env.jobs.ListMyJobs(ctx, tech)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "mine", mine[0].ID)
}

func TestCompleteJob(t *testing.T) {
	env := newTestEnv(t)
	owner := env.approvedTechnician(t, "t1")
	other := env.approvedTechnician(t, "t2")
	env.seedBooking(t, models.Booking{ID: "b1", UserID: "u1", Status: models.BookingStatusAssigned, TechnicianID: "t1"})
	ctx := context.Background()

	_, err := env.jobs.CompleteJob(ctx, other, "b1")
	requireKind(t, err, models.KindConflict)

	booking, err := env.jobs.CompleteJob(ctx, owner, "b1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCompleted, booking.Status)

	_, err = env.jobs.CompleteJob(ctx, owner, "b1")
	requireKind(t, err, models.KindConflict)
}
