package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HSouheill/homeservices_backend/models"
	"github.com/HSouheill/homeservices_backend/repositories/memstore"
	"github.com/HSouheill/homeservices_backend/services"
	"github.com/HSouheill/homeservices_backend/utils"
)

type discardActions struct{}

func (discardActions) LogAction(string, string, string, *models.Actor, map[string]interface{}) {}

type discardNotifier struct{}

func (discardNotifier) Notify(context.Context, string, string, string, string) {}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestStatusFor(t *testing.T) {
	cases := map[models.ErrorKind]int{
		models.KindUnauthenticated:  http.StatusUnauthorized,
		models.KindUnauthorized:     http.StatusForbidden,
		models.KindNotFound:         http.StatusNotFound,
		models.KindValidationFailed: http.StatusBadRequest,
		models.KindInvalidSignature: http.StatusBadRequest,
		models.KindConflict:         http.StatusConflict,
		models.KindUpstreamFailure:  http.StatusBadGateway,
		models.ErrorKind("other"):   http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, statusFor(kind), string(kind))
	}
}

func TestFailHidesUpstreamCause(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	err := base{log: quietLogger()}.fail(c, models.ErrUpstream("Failed to load booking", errors.New("mongo: connection refused")))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Failed to load booking", body["error"])
	assert.Equal(t, "UpstreamFailure", body["kind"])
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestBindRejectsUnsupportedContentType(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("<xml/>"))
	req.Header.Set(echo.HeaderContentType, "application/xml")
	c := e.NewContext(req, httptest.NewRecorder())

	var dest models.BookingRequest
	err := bind(c, &dest)
	require.Error(t, err)
	assert.Equal(t, models.KindValidationFailed, models.KindOf(err))
	assert.Equal(t, "Unsupported content type", err.Error())

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c = e.NewContext(req, httptest.NewRecorder())
	err = bind(c, &dest)
	require.Error(t, err)
	assert.Equal(t, "Invalid request body", err.Error())
}

// bookingServer wires the booking endpoints against an in-memory store
func bookingServer(t *testing.T) (*echo.Echo, *services.JWTVerifier) {
	t.Helper()
	verifier, err := services.NewJWTVerifier("controller-test-secret")
	require.NoError(t, err)

	store := memstore.NewStore()
	auth := services.NewAuthenticator(verifier, store.Users)
	svc := services.NewBookingService(auth, store.Bookings, utils.NewValidator(), discardActions{}, discardNotifier{}, services.NewMemoryCache(), quietLogger())
	bc := NewBookingController(svc, quietLogger())

	e := echo.New()
	e.POST("/api/bookings", bc.CreateBooking)
	e.GET("/api/bookings", bc.GetMyBookings)
	e.GET("/api/bookings/:id", bc.GetBooking)
	e.POST("/api/bookings/:id/cancel", bc.CancelBooking)
	return e, verifier
}

func call(e *echo.Echo, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestBookingEndpoints(t *testing.T) {
	e, verifier := bookingServer(t)
	owner, err := verifier.Issue("u1", "u1@example.com", "Asha", 0)
	require.NoError(t, err)
	stranger, err := verifier.Issue("u2", "u2@example.com", "Ravi", 0)
	require.NoError(t, err)

	rec := call(e, http.MethodPost, "/api/bookings", owner,
		`{"serviceId":"svc-1","serviceName":"Deep cleaning","date":"2026-03-01","time":"10:00","address":"12 MG Road","amount":1180}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode(t, rec)["booking"].(map[string]interface{})
	id := created["id"].(string)
	assert.Equal(t, "pending", created["status"])
	assert.Equal(t, "Asha", created["userName"])

	rec = call(e, http.MethodPost, "/api/bookings", owner, `{"serviceId":"svc-1","serviceName":"x","date":"2026-02-30","time":"10:00","address":"12 MG Road"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid date", decode(t, rec)["error"])

	rec = call(e, http.MethodGet, "/api/bookings", owner, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["bookings"], 1)

	assert.Equal(t, http.StatusForbidden, call(e, http.MethodGet, "/api/bookings/"+id, stranger, "").Code)
	assert.Equal(t, http.StatusNotFound, call(e, http.MethodGet, "/api/bookings/nope", owner, "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(e, http.MethodGet, "/api/bookings", "garbage", "").Code)

	rec = call(e, http.MethodPost, "/api/bookings/"+id+"/cancel", owner, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cancelled", decode(t, rec)["booking"].(map[string]interface{})["status"])

	rec = call(e, http.MethodPost, "/api/bookings/"+id+"/cancel", owner, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Conflict", decode(t, rec)["kind"])
}
