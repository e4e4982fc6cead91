package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/HSouheill/homeservices_backend/models"
	"github.com/HSouheill/homeservices_backend/services"
)

// TechnicianController serves onboarding and the job board
type TechnicianController struct {
	base
	technicians *services.TechnicianService
	jobs        *services.JobService
}

func NewTechnicianController(technicians *services.TechnicianService, jobs *services.JobService, log *logrus.Logger) *TechnicianController {
	return &TechnicianController{base: base{log: log}, technicians: technicians, jobs: jobs}
}

// SubmitApplication handles POST /api/technicians/apply
func (tc *TechnicianController) SubmitApplication(c echo.Context) error {
	var req models.TechnicianApplicationRequest
	if err := bind(c, &req); err != nil {
		return tc.fail(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	tech, err := tc.technicians.SubmitApplication(ctx, bearerToken(c), req)
	if err != nil {
		return tc.fail(c, err)
	}
	return ok(c, http.StatusCreated, map[string]interface{}{"technician": tech})
}

// GetMyApplication handles GET /api/technicians/me
func (tc *TechnicianController) GetMyApplication(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	tech, err := tc.technicians.GetMyApplication(ctx, bearerToken(c))
	if err != nil {
		return tc.fail(c, err)
	}
	return ok(c, http.StatusOK, map[string]interface{}{"technician": tech})
}

// GetAvailableJobs handles GET /api/jobs/available
func (tc *TechnicianController) GetAvailableJobs(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	jobs, err := tc.jobs.ListAvailableJobs(ctx, bearerToken(c))
	if err != nil {
		return tc.fail(c, err)
	}
	return ok(c, http.StatusOK, map[string]interface{}{"jobs": jobs})
}

// GetMyJobs handles GET /api/jobs/mine
func (tc *TechnicianController) GetMyJobs(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	jobs, err := tc.jobs.ListMyJobs(ctx, bearerToken(c))
	if err != nil {
		return tc.fail(c, err)
	}
	return ok(c, http.StatusOK, map[string]interface{}{"jobs": jobs})
}

// AcceptJob handles POST /api/jobs/:id/accept
func (tc *TechnicianController) AcceptJob(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	booking, err := tc.jobs.AcceptJob(ctx, bearerToken(c), c.Param("id"))
	if err != nil {
		return tc.fail(c, err)
	}
	return ok(c, http.StatusOK, map[string]interface{}{"booking": booking})
}

// CompleteJob handles POST /api/jobs/:id/complete
func (tc *TechnicianController) CompleteJob(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	booking, err := tc.jobs.CompleteJob(ctx, bearerToken(c), c.Param("id"))
	if err != nil {
		return tc.fail(c, err)
	}
	return ok(c, http.StatusOK, map[string]interface{}{"booking": booking})
}
