package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/homeservices_backend/controllers"
)

// RegisterTechnicianRoutes wires onboarding and the job board
func RegisterTechnicianRoutes(api *echo.Group, technicians *controllers.TechnicianController) {
	api.POST("/technicians/apply", technicians.SubmitApplication)
	api.GET("/technicians/me", technicians.GetMyApplication)

	jobs := api.Group("/jobs")
	jobs.GET("/available", technicians.GetAvailableJobs)
	jobs.GET("/mine", technicians.GetMyJobs)
	jobs.POST("/:id/accept", technicians.AcceptJob)
	jobs.POST("/:id/complete", technicians.CompleteJob)
}
