package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/HSouheill/homeservices_backend/middleware"
	"github.com/HSouheill/homeservices_backend/models"
	"github.com/HSouheill/homeservices_backend/security"
)

const requestTimeout = 15 * time.Second

// statusFor maps an error kind to its HTTP status
func statusFor(kind models.ErrorKind) int {
	switch kind {
	case models.KindUnauthenticated:
		return http.StatusUnauthorized
	case models.KindUnauthorized:
		return http.StatusForbidden
	case models.KindNotFound:
		return http.StatusNotFound
	case models.KindValidationFailed, models.KindInvalidSignature:
		return http.StatusBadRequest
	case models.KindConflict:
		return http.StatusConflict
	case models.KindUpstreamFailure:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// base carries what every controller shares
type base struct {
	log *logrus.Logger
}

// fail converts any error into the uniform {success:false} result
func (b base) fail(c echo.Context, err error) error {
	kind := models.KindOf(err)
	if kind == models.KindUpstreamFailure {
		b.log.WithError(err).WithFields(logrus.Fields{
			"requestId": c.Response().Header().Get(echo.HeaderXRequestID),
			"route":     c.Path(),
		}).Error("action failed")
	}
	return c.JSON(statusFor(kind), map[string]interface{}{
		"success": false,
		"error":   models.MessageOf(err),
		"kind":    kind,
	})
}

// ok writes a success result with the given payload fields
func ok(c echo.Context, status int, payload map[string]interface{}) error {
	body := map[string]interface{}{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	return c.JSON(status, body)
}

// bind decodes the request body, reporting malformed JSON as a validation failure
func bind(c echo.Context, dest interface{}) error {
	req := c.Request()
	if req.ContentLength != 0 && !security.AllowedBodyType(req.Header.Get(echo.HeaderContentType)) {
		return models.ErrValidation("Unsupported content type")
	}
	if err := c.Bind(dest); err != nil {
		return models.ErrValidation("Invalid request body")
	}
	return nil
}

func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

func bearerToken(c echo.Context) string {
	return middleware.BearerToken(c)
}
