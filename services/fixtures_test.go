package services

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/HSouheill/homeservices_backend/models"
	"github.com/HSouheill/homeservices_backend/repositories"
	"github.com/HSouheill/homeservices_backend/repositories/memstore"
	"github.com/HSouheill/homeservices_backend/utils"
)

const testGatewaySecret = "test_secret"

// fakeVerifier accepts tokens of the form registered with add
type fakeVerifier struct {
	mu         sync.Mutex
	identities map[string]*Identity
}

func newFakeVerifier() *fakeVerifier {
	return &fakeVerifier{identities: map[string]*Identity{}}
}

func (v *fakeVerifier) add(token string, id *Identity) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.identities[token] = id
}

func (v *fakeVerifier) Verify(_ context.Context, token string) (*Identity, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	id, ok := v.identities[token]
	if !ok {
		return nil, models.ErrUnauthenticated(nil)
	}
	return id, nil
}

// fakeGateway signs with testGatewaySecret and records order requests
type fakeGateway struct {
	mu       sync.Mutex
	orders   []models.OrderRequest
	orderErr error
}

func (g *fakeGateway) CreateOrder(_ context.Context, req models.OrderRequest) (*models.PaymentOrder, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.orderErr != nil {
		return nil, g.orderErr
	}
	g.orders = append(g.orders, req)
	return &models.PaymentOrder{
		ID:       "order_test",
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		KeyID:    g.KeyID(),
	}, nil
}

func (g *fakeGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return utils.VerifyPaymentSignature(orderID, paymentID, signature, testGatewaySecret)
}

func (g *fakeGateway) KeyID() string { return "rzp_test_key" }

func (g *fakeGateway) orderCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.orders)
}

type loggedAction struct {
	Action, Module, Description string
	Actor                       *models.Actor
}

type recordingActions struct {
	mu      sync.Mutex
	entries []loggedAction
}

func (r *recordingActions) LogAction(action, module, description string, actor *models.Actor, _ map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, loggedAction{Action: action, Module: module, Description: description, Actor: actor})
}

func (r *recordingActions) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

type sentNotification struct {
	UserID, Title, Message, Link string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (n *recordingNotifier) Notify(_ context.Context, userID, title, message, link string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{UserID: userID, Title: title, Message: message, Link: link})
}

func (n *recordingNotifier) to(userID string) []sentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []sentNotification
	for _, s := range n.sent {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out
}

// testEnv wires every service against an in-memory store
type testEnv struct {
	store     *repositories.Store
	verifier  *fakeVerifier
	auth      *Authenticator
	gateway   *fakeGateway
	cache     *MemoryCache
	actions   *recordingActions
	notifier  *recordingNotifier
	validator *utils.Validator
	log       *logrus.Logger

	payments    *PaymentService
	invoices    *InvoiceService
	bookings    *BookingService
	reviews     *ReviewService
	jobs        *JobService
	technicians *TechnicianService
	users       *UserService
	admin       *AdminService
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		store:     memstore.NewStore(),
		verifier:  newFakeVerifier(),
		gateway:   &fakeGateway{},
		cache:     NewMemoryCache(),
		actions:   &recordingActions{},
		notifier:  &recordingNotifier{},
		validator: utils.NewValidator(),
		log:       quietLogger(),
	}
	env.auth = NewAuthenticator(env.verifier, env.store.Users)
	env.invoices = NewInvoiceService(env.store.Bookings, env.store.Invoices, NewInvoiceRenderer("HomeServices", "Pune"), env.cache, env.log)
	env.payments = NewPaymentService(env.auth, env.store.Bookings, env.gateway, env.invoices, env.cache, env.validator, env.actions, env.notifier, env.log)
	env.bookings = NewBookingService(env.auth, env.store.Bookings, env.validator, env.actions, env.notifier, env.cache, env.log)
	env.reviews = NewReviewService(env.auth, env.store.Bookings, env.store.Reviews, env.store.Technicians, env.validator, env.actions, env.notifier, env.log)
	env.jobs = NewJobService(env.auth, env.store.Bookings, env.store.Technicians, env.actions, env.notifier, env.log)
	env.technicians = NewTechnicianService(env.auth, env.store.Technicians, env.store.Users, env.validator, env.actions, env.notifier, NewLogMailer(env.log), env.log)
	env.users = NewUserService(env.auth, env.store.Users, env.validator, env.actions)
	env.admin = NewAdminService(env.auth, env.store, env.validator, env.actions, env.notifier, env.log)
	return env
}

// signIn registers a token for uid and stores the user with role
func (e *testEnv) signIn(t *testing.T, uid, role string) string {
	t.Helper()
	token := "token-" + uid
	e.verifier.add(token, &Identity{UID: uid, Email: uid + "@example.com", Name: "User " + uid})
	now := time.Now()
	_, err := e.store.Users.EnsureUser(context.Background(), &models.User{
		ID:          uid,
		Email:       uid + "@example.com",
		DisplayName: "User " + uid,
		Role:        role,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	require.NoError(t, err)
	return token
}

// approvedTechnician signs in a technician with an approved application
func (e *testEnv) approvedTechnician(t *testing.T, uid string) string {
	t.Helper()
	token := e.signIn(t, uid, models.RoleTechnician)
	now := time.Now()
	require.NoError(t, e.store.Technicians.Create(context.Background(), &models.Technician{
		ID:        uid,
		UserID:    uid,
		FullName:  "Tech " + uid,
		Email:     uid + "@example.com",
		Status:    models.TechnicianStatusApproved,
		CreatedAt: now,
		UpdatedAt: now,
	}))
	return token
}

func (e *testEnv) seedBooking(t *testing.T, b models.Booking) *models.Booking {
	t.Helper()
	if b.Status == "" {
		b.Status = models.BookingStatusPending
	}
	if b.PaymentStatus == "" {
		b.PaymentStatus = models.PaymentStatusUnpaid
	}
	if b.ServiceName == "" {
		b.ServiceName = "Deep cleaning"
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
		b.UpdatedAt = b.CreatedAt
	}
	require.NoError(t, e.store.Bookings.Create(context.Background(), &b))
	return &b
}

func (e *testEnv) booking(t *testing.T, id string) *models.Booking {
	t.Helper()
	b, err := e.store.Bookings.FindByID(context.Background(), id)
	require.NoError(t, err)
	return b
}

func requireKind(t *testing.T, err error, kind models.ErrorKind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, models.KindOf(err), "error: %v", err)
}
