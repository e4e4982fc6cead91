package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/HSouheill/homeservices_backend/models"
	"github.com/HSouheill/homeservices_backend/repositories"
	"github.com/HSouheill/homeservices_backend/utils"
)

const (
	topServicesLimit = 5
	revenueMonths    = 12
)

// AdminService is the dashboard read surface plus booking assignment
type AdminService struct {
	auth      *Authenticator
	store     *repositories.Store
	validator RequestValidator
	actions   ActionLogger
	notifier  Notifier
	log       *logrus.Logger
	now       func() time.Time
}

func NewAdminService(auth *Authenticator, store *repositories.Store, validator RequestValidator, actions ActionLogger, notifier Notifier, log *logrus.Logger) *AdminService {
	return &AdminService{
		auth:      auth,
		store:     store,
		validator: validator,
		actions:   actions,
		notifier:  notifier,
		log:       log,
		now:       time.Now,
	}
}

// GetAdminStats loads bookings, technicians and users concurrently and
// derives the dashboard summary
func (s *AdminService) GetAdminStats(ctx context.Context, token string) (*models.AdminStats, error) {
	if _, err := s.auth.RequireRole(ctx, token, models.RoleAdmin, models.RoleManager); err != nil {
		return nil, err
	}

	var data models.AdminData
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		data.Bookings, err = s.store.Bookings.ListAll(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		data.Technicians, err = s.store.Technicians.List(gctx, "")
		return err
	})
	g.Go(func() error {
		var err error
		data.Users, err = s.store.Users.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, models.ErrUpstream("Failed to load dashboard data", err)
	}

	return &models.AdminStats{
		Data:    data,
		Summary: Summarize(data, s.now()),
	}, nil
}

// Summarize derives the dashboard figures from the raw collections
func Summarize(data models.AdminData, now time.Time) models.AdminSummary {
	summary := models.AdminSummary{
		TotalBookings:  len(data.Bookings),
		TotalUsers:     len(data.Users),
		TopServices:    []models.ServiceCount{},
		RevenueByMonth: RevenueSeries(data.Bookings, now),
	}

	for _, t := range data.Technicians {
		if t.Status == models.TechnicianStatusPending {
			summary.PendingTechnicians++
		}
	}

	counts := map[string]int{}
	var revenuePaise int64
	for _, b := range data.Bookings {
		switch b.Status {
		case models.BookingStatusPending, models.BookingStatusPendingVerification:
			summary.StatusDistribution.Pending++
		case models.BookingStatusConfirmed, models.BookingStatusAssigned:
			summary.StatusDistribution.Confirmed++
		case models.BookingStatusCompleted:
			summary.StatusDistribution.Completed++
		case models.BookingStatusCancelled:
			summary.StatusDistribution.Cancelled++
		}
		counts[b.ServiceName]++
		if b.PaymentStatus == models.PaymentStatusPaid {
			revenuePaise += utils.ToMinorUnits(b.Amount)
		}
	}
	summary.TotalRevenue = utils.FromMinorUnits(revenuePaise)

	for name, count := range counts {
		summary.TopServices = append(summary.TopServices, models.ServiceCount{ServiceName: name, Count: count})
	}
	sort.Slice(summary.TopServices, func(i, j int) bool {
		a, b := summary.TopServices[i], summary.TopServices[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.ServiceName < b.ServiceName
	})
	if len(summary.TopServices) > topServicesLimit {
		summary.TopServices = summary.TopServices[:topServicesLimit]
	}
	return summary
}

// RevenueSeries buckets paid bookings by the (month, year) of their creation
// over the twelve months ending with now's month, oldest first
func RevenueSeries(bookings []models.Booking, now time.Time) []models.MonthlyRevenue {
	type monthKey struct {
		year  int
		month time.Month
	}
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(revenueMonths - 1), 0)

	index := make(map[monthKey]int, revenueMonths)
	totals := make([]int64, revenueMonths)
	series := make([]models.MonthlyRevenue, revenueMonths)
	for i := 0; i < revenueMonths; i++ {
		m := start.AddDate(0, i, 0)
		index[monthKey{m.Year(), m.Month()}] = i
		series[i] = models.MonthlyRevenue{Month: m.Month().String()[:3], Year: m.Year()}
	}

	for _, b := range bookings {
		if b.PaymentStatus != models.PaymentStatusPaid {
			continue
		}
		created := b.CreatedAt.In(now.Location())
		if i, ok := index[monthKey{created.Year(), created.Month()}]; ok {
			totals[i] += utils.ToMinorUnits(b.Amount)
		}
	}
	for i := range series {
		series[i].Revenue = utils.FromMinorUnits(totals[i])
	}
	return series
}

// ListBookings returns every booking; admin and manager only
func (s *AdminService) ListBookings(ctx context.Context, token string) ([]models.Booking, error) {
	if _, err := s.auth.RequireRole(ctx, token, models.RoleAdmin, models.RoleManager); err != nil {
		return nil, err
	}
	bookings, err := s.store.Bookings.ListAll(ctx)
	if err != nil {
		return nil, models.ErrUpstream("Failed to load bookings", err)
	}
	return bookings, nil
}

// AssignTechnician assigns an approved technician to a confirmed or
// already assigned booking. Among admins the last writer wins.
func (s *AdminService) AssignTechnician(ctx context.Context, token, bookingID string, req models.AssignTechnicianRequest) (*models.Booking, error) {
	admin, err := s.auth.RequireRole(ctx, token, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(&req); err != nil {
		return nil, err
	}

	tech, err := s.store.Technicians.FindByID(ctx, req.TechnicianID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, models.ErrNotFound("Technician not found")
		}
		return nil, models.ErrUpstream("Failed to load technician", err)
	}
	if tech.Status != models.TechnicianStatusApproved {
		return nil, models.ErrValidation("Technician is not approved")
	}

	// only settled bookings can be worked on; reassignment keeps last writer wins
	booking, err := s.store.Bookings.UpdateIf(ctx, bookingID,
		models.BookingCondition{Statuses: []string{
			models.BookingStatusConfirmed,
			models.BookingStatusAssigned,
		}},
		models.BookingPatch{
			TechnicianID: models.StringPtr(tech.ID),
			Status:       models.StringPtr(models.BookingStatusAssigned),
			UpdatedAt:    s.now(),
		},
	)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return nil, models.ErrBookingNotFound()
		case errors.Is(err, repositories.ErrConflict):
			return nil, models.ErrConflict("Booking is not ready for assignment")
		}
		return nil, models.ErrUpstream("Failed to assign technician", err)
	}

	s.actions.LogAction(models.ActionAssign, models.ModuleBooking,
		fmt.Sprintf("Booking %s assigned to %s", booking.ID, tech.FullName),
		models.ActorOf(admin),
		map[string]interface{}{"bookingId": booking.ID, "technicianId": tech.ID},
	)
	s.notifier.Notify(ctx, tech.UserID, "New job assigned",
		fmt.Sprintf("You have been assigned a %s job on %s at %s.", booking.ServiceName, booking.Date, booking.Time),
		"/technician/jobs")
	return booking, nil
}
