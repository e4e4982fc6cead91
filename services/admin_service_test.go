package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HSouheill/homeservices_backend/models"
)

func at(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
}

func TestSummarize(t *testing.T) {
	now := at(2026, time.March, 15)
	data := models.AdminData{
		Bookings: []models.Booking{
			{ServiceName: "Cleaning", Status: models.BookingStatusPending, CreatedAt: now},
			{ServiceName: "Cleaning", Status: models.BookingStatusPendingVerification, CreatedAt: now},
			{ServiceName: "Cleaning", Status: models.BookingStatusConfirmed, PaymentStatus: models.PaymentStatusPaid, Amount: 0.1, CreatedAt: now},
			{ServiceName: "Plumbing", Status: models.BookingStatusAssigned, PaymentStatus: models.PaymentStatusPaid, Amount: 0.2, CreatedAt: now},
			{ServiceName: "Plumbing", Status: models.BookingStatusCompleted, PaymentStatus: models.PaymentStatusPaid, Amount: 1000, CreatedAt: now},
			{ServiceName: "AC repair", Status: models.BookingStatusCancelled, CreatedAt: now},
			{ServiceName: "Painting", Status: models.BookingStatusCompleted, CreatedAt: now},
			{ServiceName: "Electrical", Status: models.BookingStatusCompleted, CreatedAt: now},
			{ServiceName: "Carpentry", Status: models.BookingStatusCompleted, CreatedAt: now},
		},
		Technicians: []models.Technician{
			{Status: models.TechnicianStatusPending},
			{Status: models.TechnicianStatusPending},
			{Status: models.TechnicianStatusApproved},
		},
		Users: []models.User{{ID: "a"}, {ID: "b"}},
	}

	s := Summarize(data, now)
	assert.Equal(t, 9, s.TotalBookings)
	assert.Equal(t, 2, s.TotalUsers)
	assert.Equal(t, 2, s.PendingTechnicians)
	assert.Equal(t, models.StatusDistribution{Pending: 2, Confirmed: 2, Completed: 4, Cancelled: 1}, s.StatusDistribution)
	assert.Equal(t, 1000.30, s.TotalRevenue, "summed in paise, so no float drift")

	require.Len(t, s.TopServices, 5)
	assert.Equal(t, []models.ServiceCount{
		{ServiceName: "Cleaning", Count: 3},
		{ServiceName: "Plumbing", Count: 2},
		{ServiceName: "AC repair", Count: 1},
		{ServiceName: "Carpentry", Count: 1},
		{ServiceName: "Electrical", Count: 1},
	}, s.TopServices)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(models.AdminData{}, at(2026, time.January, 1))
	assert.Equal(t, 0, s.TotalBookings)
	assert.NotNil(t, s.TopServices)
	assert.Len(t, s.RevenueByMonth, 12)
}

func TestRevenueSeries(t *testing.T) {
	now := at(2026, time.March, 15)
	bookings := []models.Booking{
		{PaymentStatus: models.PaymentStatusPaid, Amount: 1180, CreatedAt: at(2026, time.March, 1)},
		{PaymentStatus: models.PaymentStatusPaid, Amount: 20, CreatedAt: at(2026, time.March, 31)},
		{PaymentStatus: models.PaymentStatusPaid, Amount: 500, CreatedAt: at(2025, time.April, 10)},
		{PaymentStatus: models.PaymentStatusPaid, Amount: 999, CreatedAt: at(2025, time.March, 10)},
		{PaymentStatus: models.PaymentStatusUnpaid, Amount: 700, CreatedAt: at(2026, time.March, 2)},
		{PaymentStatus: models.PaymentStatusPendingVerification, Amount: 300, CreatedAt: at(2026, time.February, 2)},
	}

	series := RevenueSeries(bookings, now)
	require.Len(t, series, 12)
	assert.Equal(t, models.MonthlyRevenue{Month: "Apr", Year: 2025, Revenue: 500}, series[0])
	assert.Equal(t, models.MonthlyRevenue{Month: "Feb", Year: 2026, Revenue: 0}, series[10])
	assert.Equal(t, models.MonthlyRevenue{Month: "Mar", Year: 2026, Revenue: 1200}, series[11])

	var total float64
	for _, p := range series {
		total += p.Revenue
	}
	assert.Equal(t, 1700.0, total, "March 2025 falls outside the window")
}

func TestGetAdminStatsRequiresStaff(t *testing.T) {
	env := newTestEnv(t)
	admin := env.signIn(t, "admin", models.RoleAdmin)
	manager := env.signIn(t, "manager", models.RoleManager)
	customer := env.signIn(t, "u1", models.RoleUser)
	env.seedBooking(t, models.Booking{ID: "b1", UserID: "u1", ServiceName: "Cleaning"})
	ctx := context.Background()

	stats, err := env.admin.GetAdminStats(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, stats.Data.Bookings, 1)
	assert.Len(t, stats.Data.Users, 3)
	assert.Equal(t, 1, stats.Summary.StatusDistribution.Pending)

	_, err = env.admin.GetAdminStats(ctx, manager)
	require.NoError(t, err)

	_, err = env.admin.GetAdminStats(ctx, customer)
	requireKind(t, err, models.KindUnauthorized)

	_, err = env.admin.ListBookings(ctx, customer)
	requireKind(t, err, models.KindUnauthorized)
}

func TestAssignTechnician(t *testing.T) {
	env := newTestEnv(t)
	admin := env.signIn(t, "admin", models.RoleAdmin)
	manager := env.signIn(t, "manager", models.RoleManager)
	env.approvedTechnician(t, "t1")
	env.signIn(t, "t2", models.RoleTechnician)
	require.NoError(t, env.store.Technicians.Create(context.Background(), &models.Technician{ID: "t2", UserID: "t2", Status: models.TechnicianStatusPending}))
	env.seedBooking(t, models.Booking{ID: "b1", UserID: "u1", Status: models.BookingStatusConfirmed})
	env.seedBooking(t, models.Booking{ID: "done", UserID: "u1", Status: models.BookingStatusCompleted})
	env.seedBooking(t, models.Booking{ID: "unpaid", UserID: "u1"})
	ctx := context.Background()

	_, err := env.admin.AssignTechnician(ctx, manager, "b1", models.AssignTechnicianRequest{TechnicianID: "t1"})
	requireKind(t, err, models.KindUnauthorized)

	_, err = env.admin.AssignTechnician(ctx, admin, "b1", models.AssignTechnicianRequest{})
	requireKind(t, err, models.KindValidationFailed)

	_, err = env.admin.AssignTechnician(ctx, admin, "b1", models.AssignTechnicianRequest{TechnicianID: "t2"})
	requireKind(t, err, models.KindValidationFailed)
	assert.Equal(t, "Technician is not approved", models.MessageOf(err))

	_, err = env.admin.AssignTechnician(ctx, admin, "b1", models.AssignTechnicianRequest{TechnicianID: "ghost"})
	requireKind(t, err, models.KindNotFound)

	_, err = env.admin.AssignTechnician(ctx, admin, "done", models.AssignTechnicianRequest{TechnicianID: "t1"})
	requireKind(t, err, models.KindConflict)

	booking, err := env.admin.AssignTechnician(ctx, admin, "b1", models.AssignTechnicianRequest{TechnicianID: "t1"})
	require.NoError(t, err)
	assert.Equal(t, "t1", booking.TechnicianID)
	assert.Equal(t, models.BookingStatusAssigned, booking.Status)
	assert.Equal(t, booking.TechnicianID, env.booking(t, "b1").TechnicianID)
	assert.Len(t, env.notifier.to("t1"), 1)

	// reassignment is allowed
	booking, err = env.admin.AssignTechnician(ctx, admin, "b1", models.AssignTechnicianRequest{TechnicianID: "t1"})
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusAssigned, booking.Status)
}

func TestAssignTechnicianLeavesUnpaidBookingPayable(t *testing.T) {
	env := newTestEnv(t)
	admin := env.signIn(t, "admin", models.RoleAdmin)
	owner := env.signIn(t, "u1", models.RoleUser)
	env.approvedTechnician(t, "t1")
	env.seedBooking(t, models.Booking{ID: "b1", UserID: "u1", Amount: 499})
	ctx := context.Background()

	_, err := env.admin.AssignTechnician(ctx, admin, "b1", models.AssignTechnicianRequest{TechnicianID: "t1"})
	requireKind(t, err, models.KindConflict)
	assert.Equal(t, "Booking is not ready for assignment", models.MessageOf(err))

	stored := env.booking(t, "b1")
	assert.Equal(t, models.BookingStatusPending, stored.Status)
	assert.Empty(t, stored.TechnicianID)
	assert.Empty(t, env.notifier.to("t1"))

	_, err = env.payments.VerifyPayment(ctx, owner, "b1", signedRequest("order_1", "pay_1"))
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, env.booking(t, "b1").PaymentStatus)

	_, err = env.admin.AssignTechnician(ctx, admin, "b1", models.AssignTechnicianRequest{TechnicianID: "t1"})
	require.NoError(t, err)
}

func TestAssignTechnicianDoesNotReviveCancelledBooking(t *testing.T) {
	env := newTestEnv(t)
	admin := env.signIn(t, "admin", models.RoleAdmin)
	env.approvedTechnician(t, "t1")
	env.seedBooking(t, models.Booking{ID: "b1", UserID: "u1", Status: models.BookingStatusCancelled})

	_, err := env.admin.AssignTechnician(context.Background(), admin, "b1", models.AssignTechnicianRequest{TechnicianID: "t1"})
	requireKind(t, err, models.KindConflict)
	assert.Equal(t, models.BookingStatusCancelled, env.booking(t, "b1").Status)
}
