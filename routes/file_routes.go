package routes

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// RegisterFileRoutes serves uploaded images from uploadDir under /uploads
func RegisterFileRoutes(e *echo.Echo, uploadDir string) {
	e.GET("/uploads/*", ServeFile(uploadDir))
}

// ServeFile serves a single stored file, refusing traversal and directory listings
func ServeFile(root string) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := c.Param("*")
		if path == "" {
			return fileError(c, http.StatusNotFound, "File not found")
		}

		cleanPath := filepath.Clean("/" + path)
		if strings.Contains(cleanPath, "..") {
			return fileError(c, http.StatusForbidden, "Access denied")
		}
		fullPath := filepath.Join(root, cleanPath)

		info, err := os.Stat(fullPath)
		if err != nil {
			if os.IsNotExist(err) {
				return fileError(c, http.StatusNotFound, "File not found")
			}
			return fileError(c, http.StatusInternalServerError, "Error accessing file")
		}
		if info.IsDir() {
			return fileError(c, http.StatusForbidden, "Access denied")
		}

		c.Response().Header().Set("Cache-Control", "public, max-age=31536000")
		c.Response().Header().Set("Expires", time.Now().AddDate(1, 0, 0).Format(time.RFC1123))
		return c.File(fullPath)
	}
}

func fileError(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]interface{}{"success": false, "error": message})
}
