package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HSouheill/homeservices_backend/models"
	"github.com/HSouheill/homeservices_backend/repositories"
)

func TestBookingUpdateIf(t *testing.T) {
	repo := NewBookingRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &models.Booking{
		ID:            "b1",
		Status:        models.BookingStatusConfirmed,
		PaymentStatus: models.PaymentStatusPaid,
		CreatedAt:     time.Now(),
	}))

	unassigned := ""
	claim := models.BookingCondition{Statuses: []string{models.BookingStatusConfirmed}, TechnicianID: &unassigned}
	patch := models.BookingPatch{TechnicianID: models.StringPtr("t1"), Status: models.StringPtr(models.BookingStatusAssigned)}

	updated, err := repo.UpdateIf(ctx, "b1", claim, patch)
	require.NoError(t, err)
	assert.Equal(t, "t1", updated.TechnicianID)

	_, err = repo.UpdateIf(ctx, "b1", claim, models.BookingPatch{TechnicianID: models.StringPtr("t2")})
	assert.ErrorIs(t, err, repositories.ErrConflict)

	_, err = repo.UpdateIf(ctx, "b1",
		models.BookingCondition{PaymentStatuses: []string{models.PaymentStatusUnpaid}},
		models.BookingPatch{PaymentStatus: models.StringPtr(models.PaymentStatusPaid)})
	assert.ErrorIs(t, err, repositories.ErrConflict)

	_, err = repo.UpdateIf(ctx, "missing", claim, patch)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	stored, err := repo.FindByID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "t1", stored.TechnicianID)
	assert.Equal(t, models.BookingStatusAssigned, stored.Status)
}

func TestBookingCopiesAreIsolated(t *testing.T) {
	repo := NewBookingRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &models.Booking{
		ID:             "b1",
		PaymentDetails: &models.PaymentDetails{OrderID: "order_1"},
	}))

	first, err := repo.FindByID(ctx, "b1")
	require.NoError(t, err)
	first.PaymentDetails.OrderID = "tampered"

	second, err := repo.FindByID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "order_1", second.PaymentDetails.OrderID)
}

func TestInvoiceUniquePerBooking(t *testing.T) {
	repo := NewInvoiceRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &models.Invoice{ID: "i1", BookingID: "b1"}))
	assert.ErrorIs(t, repo.Create(ctx, &models.Invoice{ID: "i2", BookingID: "b1"}), repositories.ErrConflict)

	inv, err := repo.FindByBooking(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "i1", inv.ID)
	assert.Equal(t, 1, repo.Count())

	_, err = repo.FindByBooking(ctx, "b2")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
