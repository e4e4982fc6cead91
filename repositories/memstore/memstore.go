// Package memstore implements the repository interfaces in process memory.
// It backs the test suites and STORE_DRIVER=memory development runs.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/HSouheill/homeservices_backend/models"
	"github.com/HSouheill/homeservices_backend/repositories"
)

// NewStore returns a Store whose repositories all live in memory
func NewStore() *repositories.Store {
	return &repositories.Store{
		Bookings:      NewBookingRepository(),
		Technicians:   NewTechnicianRepository(),
		Users:         NewUserRepository(),
		Invoices:      NewInvoiceRepository(),
		Reviews:       NewReviewRepository(),
		Notifications: NewNotificationRepository(),
		SystemLogs:    NewSystemLogRepository(),
		Services:      NewServiceRepository(),
	}
}

// ==================== Bookings ====================

type BookingRepository struct {
	mu       sync.Mutex
	bookings map[string]models.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{bookings: map[string]models.Booking{}}
}

func (r *BookingRepository) Create(_ context.Context, booking *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[booking.ID]; ok {
		return repositories.ErrConflict
	}
	r.bookings[booking.ID] = copyBooking(*booking)
	return nil
}

func (r *BookingRepository) FindByID(_ context.Context, id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := copyBooking(b)
	return &out, nil
}

func (r *BookingRepository) Update(_ context.Context, id string, patch models.BookingPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return repositories.ErrNotFound
	}
	patch.Apply(&b)
	r.bookings[id] = b
	return nil
}

func (r *BookingRepository) UpdateIf(_ context.Context, id string, cond models.BookingCondition, patch models.BookingPatch) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if !cond.Matches(&b) {
		return nil, repositories.ErrConflict
	}
	patch.Apply(&b)
	r.bookings[id] = b
	out := copyBooking(b)
	return &out, nil
}

func (r *BookingRepository) ListByUser(_ context.Context, userID string) ([]models.Booking, error) {
	return r.filter(func(b *models.Booking) bool { return b.UserID == userID }), nil
}

func (r *BookingRepository) ListByTechnician(_ context.Context, technicianID string) ([]models.Booking, error) {
	return r.filter(func(b *models.Booking) bool { return b.TechnicianID == technicianID }), nil
}

func (r *BookingRepository) ListUnassigned(_ context.Context) ([]models.Booking, error) {
	return r.filter(func(b *models.Booking) bool {
		return b.Status == models.BookingStatusConfirmed && b.TechnicianID == ""
	}), nil
}

func (r *BookingRepository) ListAll(_ context.Context) ([]models.Booking, error) {
	return r.filter(func(*models.Booking) bool { return true }), nil
}

func (r *BookingRepository) filter(keep func(*models.Booking) bool) []models.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Booking{}
	for _, b := range r.bookings {
		if keep(&b) {
			out = append(out, copyBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func copyBooking(b models.Booking) models.Booking {
	if b.PaymentDetails != nil {
		d := *b.PaymentDetails
		b.PaymentDetails = &d
	}
	if b.InvoiceGeneratedAt != nil {
		t := *b.InvoiceGeneratedAt
		b.InvoiceGeneratedAt = &t
	}
	return b
}

// ==================== Technicians ====================

type TechnicianRepository struct {
	mu          sync.Mutex
	technicians map[string]models.Technician
}

func NewTechnicianRepository() *TechnicianRepository {
	return &TechnicianRepository{technicians: map[string]models.Technician{}}
}

func (r *TechnicianRepository) Create(_ context.Context, technician *models.Technician) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.technicians[technician.ID]; ok {
		return repositories.ErrConflict
	}
	r.technicians[technician.ID] = *technician
	return nil
}

func (r *TechnicianRepository) FindByID(_ context.Context, id string) (*models.Technician, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.technicians[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &t, nil
}

func (r *TechnicianRepository) List(_ context.Context, status string) ([]models.Technician, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Technician{}
	for _, t := range r.technicians {
		if status == "" || t.Status == status {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *TechnicianRepository) SetStatus(_ context.Context, id, status string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.technicians[id]
	if !ok {
		return repositories.ErrNotFound
	}
	t.Status = status
	t.UpdatedAt = now
	r.technicians[id] = t
	return nil
}

func (r *TechnicianRepository) UpdateRating(_ context.Context, id string, expectedVersion int64, rating float64, totalReviews int, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.technicians[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if t.Version != expectedVersion {
		return repositories.ErrConflict
	}
	t.Rating = rating
	t.TotalReviews = totalReviews
	t.Version++
	t.UpdatedAt = now
	r.technicians[id] = t
	return nil
}

// ==================== Users ====================

type UserRepository struct {
	mu    sync.Mutex
	users map[string]models.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: map[string]models.User{}}
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) EnsureUser(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[user.ID]; ok {
		return &u, nil
	}
	r.users[user.ID] = *user
	u := *user
	return &u, nil
}

func (r *UserRepository) UpdateProfile(_ context.Context, id string, req models.UpdateProfileRequest, now time.Time) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	u.DisplayName = req.DisplayName
	if req.FirstName != "" {
		u.FirstName = req.FirstName
	}
	if req.LastName != "" {
		u.LastName = req.LastName
	}
	if req.Phone != "" {
		u.Phone = req.Phone
	}
	if req.PhotoURL != "" {
		u.PhotoURL = req.PhotoURL
	}
	u.UpdatedAt = now
	r.users[id] = u
	return &u, nil
}

func (r *UserRepository) UpdateRole(_ context.Context, id, role string, now time.Time) error {
	return r.mutate(id, func(u *models.User) {
		u.Role = role
		u.UpdatedAt = now
	})
}

func (r *UserRepository) SetFCMToken(_ context.Context, id, token string) error {
	return r.mutate(id, func(u *models.User) { u.FCMToken = token })
}

func (r *UserRepository) List(_ context.Context) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *UserRepository) mutate(id string, fn func(*models.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	fn(&u)
	r.users[id] = u
	return nil
}

// ==================== Invoices ====================

type InvoiceRepository struct {
	mu       sync.Mutex
	invoices map[string]models.Invoice
}

func NewInvoiceRepository() *InvoiceRepository {
	return &InvoiceRepository{invoices: map[string]models.Invoice{}}
}

func (r *InvoiceRepository) Create(_ context.Context, invoice *models.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.invoices[invoice.ID]; ok {
		return repositories.ErrConflict
	}
	for _, inv := range r.invoices {
		if inv.BookingID == invoice.BookingID {
			return repositories.ErrConflict
		}
	}
	r.invoices[invoice.ID] = *invoice
	return nil
}

func (r *InvoiceRepository) FindByBooking(_ context.Context, bookingID string) (*models.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invoices {
		if inv.BookingID == bookingID {
			out := inv
			return &out, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *InvoiceRepository) FindByID(_ context.Context, id string) (*models.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &inv, nil
}

// Count returns the number of stored invoices
func (r *InvoiceRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.invoices)
}

// ==================== Reviews ====================

type ReviewRepository struct {
	mu        sync.Mutex
	reviews   []models.Review
	byBooking map[string]bool
}

func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{byBooking: map[string]bool{}}
}

func (r *ReviewRepository) Create(_ context.Context, review *models.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byBooking[review.BookingID] {
		return repositories.ErrConflict
	}
	r.byBooking[review.BookingID] = true
	r.reviews = append(r.reviews, *review)
	return nil
}

func (r *ReviewRepository) ExistsForBooking(_ context.Context, bookingID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byBooking[bookingID], nil
}

func (r *ReviewRepository) ListByTechnician(_ context.Context, technicianID string) ([]models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Review{}
	for i := len(r.reviews) - 1; i >= 0; i-- {
		if r.reviews[i].TechnicianID == technicianID {
			out = append(out, r.reviews[i])
		}
	}
	return out, nil
}

// ==================== Notifications ====================

type NotificationRepository struct {
	mu            sync.Mutex
	notifications []models.Notification
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

func (r *NotificationRepository) Create(_ context.Context, notification *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, *notification)
	return nil
}

func (r *NotificationRepository) ListByUser(_ context.Context, userID string, limit int64) ([]models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Notification{}
	for i := len(r.notifications) - 1; i >= 0; i-- {
		if r.notifications[i].UserID != userID {
			continue
		}
		out = append(out, r.notifications[i])
		if limit > 0 && int64(len(out)) == limit {
			break
		}
	}
	return out, nil
}

func (r *NotificationRepository) MarkRead(_ context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notifications {
		if r.notifications[i].ID == id && r.notifications[i].UserID == userID {
			r.notifications[i].Read = true
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (r *NotificationRepository) MarkAllRead(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for i := range r.notifications {
		if r.notifications[i].UserID == userID && !r.notifications[i].Read {
			r.notifications[i].Read = true
			n++
		}
	}
	return n, nil
}

// ==================== System logs ====================

type SystemLogRepository struct {
	mu      sync.Mutex
	entries []models.SystemLog
}

func NewSystemLogRepository() *SystemLogRepository {
	return &SystemLogRepository{}
}

func (r *SystemLogRepository) Create(_ context.Context, entry *models.SystemLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *SystemLogRepository) ListRecent(_ context.Context, limit int64) ([]models.SystemLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.SystemLog, len(r.entries))
	copy(out, r.entries)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ==================== Services ====================

type ServiceRepository struct {
	mu       sync.Mutex
	services map[string]models.Service
}

func NewServiceRepository() *ServiceRepository {
	return &ServiceRepository{services: map[string]models.Service{}}
}

func (r *ServiceRepository) Create(_ context.Context, service *models.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.services[service.ID]; ok {
		return repositories.ErrConflict
	}
	r.services[service.ID] = *service
	return nil
}

func (r *ServiceRepository) FindByID(_ context.Context, id string) (*models.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.services[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &s, nil
}

func (r *ServiceRepository) List(_ context.Context, category string) ([]models.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Service{}
	for _, s := range r.services {
		if category == "" || s.Category == category {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (r *ServiceRepository) Replace(_ context.Context, service *models.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.services[service.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.services[service.ID] = *service
	return nil
}

func (r *ServiceRepository) SetImage(_ context.Context, id, imageURL string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.services[id]
	if !ok {
		return repositories.ErrNotFound
	}
	s.Image = imageURL
	s.UpdatedAt = now
	r.services[id] = s
	return nil
}
