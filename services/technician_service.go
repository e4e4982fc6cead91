package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/HSouheill/homeservices_backend/models"
	"github.com/HSouheill/homeservices_backend/repositories"
)

// TechnicianService handles onboarding applications and their review by admins
type TechnicianService struct {
	auth        *Authenticator
	technicians repositories.TechnicianRepository
	users       repositories.UserRepository
	validator   RequestValidator
	actions     ActionLogger
	notifier    Notifier
	mailer      Mailer
	log         *logrus.Logger
	now         func() time.Time
}

func NewTechnicianService(
	auth *Authenticator,
	technicians repositories.TechnicianRepository,
	users repositories.UserRepository,
	validator RequestValidator,
	actions ActionLogger,
	notifier Notifier,
	mailer Mailer,
	log *logrus.Logger,
) *TechnicianService {
	return &TechnicianService{
		auth:        auth,
		technicians: technicians,
		users:       users,
		validator:   validator,
		actions:     actions,
		notifier:    notifier,
		mailer:      mailer,
		log:         log,
		now:         time.Now,
	}
}

// SubmitApplication files the caller's technician application; one per user
func (s *TechnicianService) SubmitApplication(ctx context.Context, token string, req models.TechnicianApplicationRequest) (*models.Technician, error) {
	user, err := s.auth.CurrentUser(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(&req); err != nil {
		return nil, err
	}

	now := s.now()
	tech := &models.Technician{
		ID:         user.ID,
		UserID:     user.ID,
		FullName:   strings.TrimSpace(req.FullName),
		Email:      strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:      req.Phone,
		Address:    req.Address,
		City:       req.City,
		State:      req.State,
		Zip:        req.Zip,
		Category:   req.Category,
		Experience: req.Experience,
		Bio:        req.Bio,
		Status:     models.TechnicianStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.technicians.Create(ctx, tech); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return nil, models.ErrConflict("Application already submitted")
		}
		return nil, models.ErrUpstream("Failed to submit application", err)
	}

	s.actions.LogAction(models.ActionCreate, models.ModuleTechnician,
		fmt.Sprintf("Technician application submitted by %s", tech.FullName),
		models.ActorOf(user),
		map[string]interface{}{"technicianId": tech.ID, "category": tech.Category},
	)
	return tech, nil
}

// GetMyApplication returns the caller's technician profile
func (s *TechnicianService) GetMyApplication(ctx context.Context, token string) (*models.Technician, error) {
	id, err := s.auth.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.find(ctx, id.UID)
}

// ListTechnicians returns technicians filtered by status; admin and manager only
func (s *TechnicianService) ListTechnicians(ctx context.Context, token, status string) ([]models.Technician, error) {
	if _, err := s.auth.RequireRole(ctx, token, models.RoleAdmin, models.RoleManager); err != nil {
		return nil, err
	}
	list, err := s.technicians.List(ctx, status)
	if err != nil {
		return nil, models.ErrUpstream("Failed to load technicians", err)
	}
	return list, nil
}

// ApproveTechnician approves a pending application and grants the technician role
func (s *TechnicianService) ApproveTechnician(ctx context.Context, token, technicianID string, req models.TechnicianDecisionRequest) (*models.Technician, error) {
	admin, err := s.auth.RequireRole(ctx, token, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	tech, err := s.find(ctx, technicianID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.technicians.SetStatus(ctx, tech.ID, models.TechnicianStatusApproved, now); err != nil {
		return nil, models.ErrUpstream("Failed to approve technician", err)
	}
	if err := s.users.UpdateRole(ctx, tech.UserID, models.RoleTechnician, now); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, models.ErrUpstream("Failed to update user role", err)
	}
	tech.Status = models.TechnicianStatusApproved
	tech.UpdatedAt = now

	s.actions.LogAction(models.ActionApprove, models.ModuleTechnician,
		fmt.Sprintf("Technician %s approved", tech.FullName),
		models.ActorOf(admin),
		map[string]interface{}{"technicianId": tech.ID},
	)
	s.announceDecision(ctx, tech, "approved", req.Note)
	return tech, nil
}

// RejectTechnician rejects an application
func (s *TechnicianService) RejectTechnician(ctx context.Context, token, technicianID string, req models.TechnicianDecisionRequest) (*models.Technician, error) {
	admin, err := s.auth.RequireRole(ctx, token, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	tech, err := s.find(ctx, technicianID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.technicians.SetStatus(ctx, tech.ID, models.TechnicianStatusRejected, now); err != nil {
		return nil, models.ErrUpstream("Failed to reject technician", err)
	}
	tech.Status = models.TechnicianStatusRejected
	tech.UpdatedAt = now

	s.actions.LogAction(models.ActionReject, models.ModuleTechnician,
		fmt.Sprintf("Technician %s rejected", tech.FullName),
		models.ActorOf(admin),
		map[string]interface{}{"technicianId": tech.ID, "note": req.Note},
	)
	s.announceDecision(ctx, tech, "rejected", req.Note)
	return tech, nil
}

func (s *TechnicianService) find(ctx context.Context, id string) (*models.Technician, error) {
	tech, err := s.technicians.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, models.ErrNotFound("Technician not found")
		}
		return nil, models.ErrUpstream("Failed to load technician", err)
	}
	return tech, nil
}

// announceDecision tells the applicant in-app and by email. The email goes
// out in the background so SMTP latency never holds the admin request.
func (s *TechnicianService) announceDecision(ctx context.Context, tech *models.Technician, decision, note string) {
	title := "Application " + decision
	message := fmt.Sprintf("Your technician application has been %s.", decision)
	if note != "" {
		message += " " + note
	}
	s.notifier.Notify(ctx, tech.UserID, title, message, "/technician")

	if tech.Email == "" {
		return
	}
	body := fmt.Sprintf("Hello %s,\n\n%s\n\nThank you for joining our marketplace.", tech.FullName, message)
	go func() {
		if err := s.mailer.Send(tech.Email, title, body); err != nil {
			s.log.WithError(err).WithField("technicianId", tech.ID).Warn("failed to send decision email")
		}
	}()
}
