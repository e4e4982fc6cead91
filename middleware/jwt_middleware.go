// middleware/jwt_middleware.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// BearerToken returns the token from "Authorization: Bearer <token>", or ""
func BearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

// RequireBearer rejects requests without a bearer token before they reach a
// handler. The token itself is verified by the service the handler calls.
func RequireBearer() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if BearerToken(c) == "" {
				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"success": false,
					"error":   "Unauthenticated",
					"kind":    "Unauthenticated",
				})
			}
			return next(c)
		}
	}
}
