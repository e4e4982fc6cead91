package controllers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/HSouheill/homeservices_backend/config"
)

// DiagnosticsController exposes liveness and configuration presence
type DiagnosticsController struct {
	cfg     *config.Config
	started time.Time
}

func NewDiagnosticsController(cfg *config.Config) *DiagnosticsController {
	return &DiagnosticsController{cfg: cfg, started: time.Now()}
}

// Health handles GET /health
func (dc *DiagnosticsController) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(dc.started).Round(time.Second).String(),
	})
}

// Env handles GET /api/diagnostics/env. Values never leave the process.
func (dc *DiagnosticsController) Env(c echo.Context) error {
	return ok(c, http.StatusOK, map[string]interface{}{"env": dc.cfg.Diagnostics()})
}
