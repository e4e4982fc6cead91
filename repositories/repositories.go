// Package repositories holds the document-store access layer. Every
// collection has an interface consumed by the services and a MongoDB
// implementation; memstore provides in-memory equivalents.
package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/HSouheill/homeservices_backend/models"
)

var (
	// ErrNotFound is returned when the referenced document does not exist
	ErrNotFound = errors.New("document not found")
	// ErrConflict is returned when a uniqueness constraint or a conditional
	// write precondition fails
	ErrConflict = errors.New("document conflict")
)

// Collection names
const (
	UsersCollection         = "users"
	TechniciansCollection   = "technicians"
	BookingsCollection      = "bookings"
	InvoicesCollection      = "invoices"
	ReviewsCollection       = "reviews"
	SystemLogsCollection    = "system_logs"
	NotificationsCollection = "notifications"
	ServicesCollection      = "services"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	// Update applies patch unconditionally; ErrNotFound if id is unknown.
	Update(ctx context.Context, id string, patch models.BookingPatch) error
	// UpdateIf applies patch only when the stored booking satisfies cond and
	// returns the updated booking. ErrConflict when cond does not hold.
	UpdateIf(ctx context.Context, id string, cond models.BookingCondition, patch models.BookingPatch) (*models.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]models.Booking, error)
	ListByTechnician(ctx context.Context, technicianID string) ([]models.Booking, error)
	ListUnassigned(ctx context.Context) ([]models.Booking, error)
	ListAll(ctx context.Context) ([]models.Booking, error)
}

type TechnicianRepository interface {
	// Create fails with ErrConflict when an application already exists for the id.
	Create(ctx context.Context, technician *models.Technician) error
	FindByID(ctx context.Context, id string) (*models.Technician, error)
	List(ctx context.Context, status string) ([]models.Technician, error)
	SetStatus(ctx context.Context, id, status string, now time.Time) error
	// UpdateRating writes the aggregate only if the stored version equals
	// expectedVersion, bumping the version. ErrConflict otherwise.
	UpdateRating(ctx context.Context, id string, expectedVersion int64, rating float64, totalReviews int, now time.Time) error
}

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	// EnsureUser inserts user if no document with its id exists and returns
	// the stored document.
	EnsureUser(ctx context.Context, user *models.User) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, req models.UpdateProfileRequest, now time.Time) (*models.User, error)
	UpdateRole(ctx context.Context, id, role string, now time.Time) error
	SetFCMToken(ctx context.Context, id, token string) error
	List(ctx context.Context) ([]models.User, error)
}

type InvoiceRepository interface {
	// Create fails with ErrConflict when the booking already has an invoice.
	Create(ctx context.Context, invoice *models.Invoice) error
	FindByID(ctx context.Context, id string) (*models.Invoice, error)
	FindByBooking(ctx context.Context, bookingID string) (*models.Invoice, error)
}

type ReviewRepository interface {
	// Create fails with ErrConflict when the booking already has a review.
	Create(ctx context.Context, review *models.Review) error
	ExistsForBooking(ctx context.Context, bookingID string) (bool, error)
	ListByTechnician(ctx context.Context, technicianID string) ([]models.Review, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByUser(ctx context.Context, userID string, limit int64) ([]models.Notification, error)
	// MarkRead fails with ErrNotFound unless id belongs to userID.
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

type SystemLogRepository interface {
	Create(ctx context.Context, entry *models.SystemLog) error
	ListRecent(ctx context.Context, limit int64) ([]models.SystemLog, error)
}

type ServiceRepository interface {
	Create(ctx context.Context, service *models.Service) error
	FindByID(ctx context.Context, id string) (*models.Service, error)
	List(ctx context.Context, category string) ([]models.Service, error)
	Replace(ctx context.Context, service *models.Service) error
	SetImage(ctx context.Context, id, imageURL string, now time.Time) error
}

// Store groups every repository so the application can be wired against
// either backend.
type Store struct {
	Bookings      BookingRepository
	Technicians   TechnicianRepository
	Users         UserRepository
	Invoices      InvoiceRepository
	Reviews       ReviewRepository
	Notifications NotificationRepository
	SystemLogs    SystemLogRepository
	Services      ServiceRepository
}

// NewMongoStore wires every repository against db
func NewMongoStore(db *mongo.Database) *Store {
	return &Store{
		Bookings:      NewBookingRepository(db),
		Technicians:   NewTechnicianRepository(db),
		Users:         NewUserRepository(db),
		Invoices:      NewInvoiceRepository(db),
		Reviews:       NewReviewRepository(db),
		Notifications: NewNotificationRepository(db),
		SystemLogs:    NewSystemLogRepository(db),
		Services:      NewServiceRepository(db),
	}
}
