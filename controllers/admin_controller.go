// controllers/admin_controller.go
package controllers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/HSouheill/homeservices_backend/models"
	"github.com/HSouheill/homeservices_backend/services"
)

type AdminController struct {
	base
	admin       *services.AdminService
	technicians *services.TechnicianService
	users       *services.UserService
	logs        *services.SystemLogService
}

func NewAdminController(admin *services.AdminService, technicians *services.TechnicianService, users *services.UserService, logs *services.SystemLogService, log *logrus.Logger) *AdminController {
	return &AdminController{
		base:        base{log: log},
		admin:       admin,
		technicians: technicians,
		users:       users,
		logs:        logs,
	}
}

// GetAdminStats handles GET /api/admin/stats
func (ac *AdminController) GetAdminStats(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	stats, err := ac.admin.GetAdminStats(ctx, bearerToken(c))
	if err != nil {
		return ac.fail(c, err)
	}
	return ok(c, http.StatusOK, map[string]interface{}{
		"data":    stats.Data,
		"summary": stats.Summary,
	})
}

// GetSystemLogs handles GET /api/admin/logs
func (ac *AdminController) GetSystemLogs(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	logs, err := ac.logs.GetSystemLogs(ctx, bearerToken(c))
	if err != nil {
		return ac.fail(c, err)
	}
	return ok(c, http.StatusOK, map[string]interface{}{"logs": logs})
}

// UpdateUserRole handles PUT /api/admin/users/:id/role
func (ac *AdminController) UpdateUserRole(c echo.Context) error {
	var req models.UpdateRoleRequest
	if err := bind(c, &req); err != nil {
		return ac.fail(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := ac.users.UpdateUserRole(ctx, bearerToken(c), c.Param("id"), req)
	if err != nil {
		return ac.fail(c, err)
	}
	return ok(c, http.StatusOK, map[string]interface{}{"user": user})
}

// ListTechnicians handles GET /api/admin/technicians?status=
func (ac *AdminController) ListTechnicians(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	list, err := ac.technicians.ListTechnicians(ctx, bearerToken(c), c.QueryParam("status"))
	if err != nil {
		return ac.fail(c, err)
	}
	return ok(c, http.StatusOK, map[string]interface{}{"technicians": list})
}

// ApproveTechnician handles POST /api/admin/technicians/:id/approve
func (ac *AdminController) ApproveTechnician(c echo.Context) error {
	return ac.decide(c, ac.technicians.ApproveTechnician)
}

// RejectTechnician handles POST /api/admin/technicians/:id/reject
func (ac *AdminController) RejectTechnician(c echo.Context) error {
	return ac.decide(c, ac.technicians.RejectTechnician)
}

type decisionFunc func(ctx context.Context, token, id string, req models.TechnicianDecisionRequest) (*models.Technician, error)

func (ac *AdminController) decide(c echo.Context, fn decisionFunc) error {
	var req models.TechnicianDecisionRequest
	// the note is optional, so an empty body is fine
	if c.Request().ContentLength > 0 {
		if err := bind(c, &req); err != nil {
			return ac.fail(c, err)
		}
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	tech, err := fn(ctx, bearerToken(c), c.Param("id"), req)
	if err != nil {
		return ac.fail(c, err)
	}
	return ok(c, http.StatusOK, map[string]interface{}{"technician": tech})
}

// ListBookings handles GET /api/admin/bookings
func (ac *AdminController) ListBookings(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	bookings, err := ac.admin.ListBookings(ctx, bearerToken(c))
	if err != nil {
		return ac.fail(c, err)
	}
	return ok(c, http.StatusOK, map[string]interface{}{"bookings": bookings})
}

// AssignTechnician handles POST /api/admin/bookings/:id/assign
func (ac *AdminController) AssignTechnician(c echo.Context) error {
	var req models.AssignTechnicianRequest
	if err := bind(c, &req); err != nil {
		return ac.fail(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	booking, err := ac.admin.AssignTechnician(ctx, bearerToken(c), c.Param("id"), req)
	if err != nil {
		return ac.fail(c, err)
	}
	return ok(c, http.StatusOK, map[string]interface{}{"booking": booking})
}
