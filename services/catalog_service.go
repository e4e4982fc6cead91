package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/HSouheill/homeservices_backend/models"
	"github.com/HSouheill/homeservices_backend/repositories"
)

const catalogCacheTTL = 5 * time.Minute

// ImageStore persists an uploaded image and returns its public URL
type ImageStore interface {
	SaveImage(ctx context.Context, folder, filename string, data []byte) (string, error)
}

// CatalogService manages the service catalog
type CatalogService struct {
	auth      *Authenticator
	services  repositories.ServiceRepository
	images    ImageStore
	cache     Cache
	validator RequestValidator
	actions   ActionLogger
	log       *logrus.Logger
	now       func() time.Time
}

func NewCatalogService(auth *Authenticator, services repositories.ServiceRepository, images ImageStore, cache Cache, validator RequestValidator, actions ActionLogger, log *logrus.Logger) *CatalogService {
	return &CatalogService{
		auth:      auth,
		services:  services,
		images:    images,
		cache:     cache,
		validator: validator,
		actions:   actions,
		log:       log,
		now:       time.Now,
	}
}

// ListServices returns the catalog, optionally filtered by category
func (s *CatalogService) ListServices(ctx context.Context, category string) ([]models.Service, error) {
	var cached []models.Service
	if ok, err := s.cache.Get(ctx, catalogKey(category), &cached); err == nil && ok {
		return cached, nil
	}

	list, err := s.services.List(ctx, category)
	if err != nil {
		return nil, models.ErrUpstream("Failed to load services", err)
	}
	if err := s.cache.Set(ctx, catalogKey(category), list, catalogCacheTTL); err != nil {
		s.log.WithError(err).Warn("catalog cache write failed")
	}
	return list, nil
}

func (s *CatalogService) GetService(ctx context.Context, id string) (*models.Service, error) {
	service, err := s.services.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, models.ErrNotFound("Service not found")
		}
		return nil, models.ErrUpstream("Failed to load service", err)
	}
	return service, nil
}

// CreateService adds a catalog entry; admin only
func (s *CatalogService) CreateService(ctx context.Context, token string, req models.ServiceRequest) (*models.Service, error) {
	admin, err := s.auth.RequireRole(ctx, token, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(&req); err != nil {
		return nil, err
	}

	now := s.now()
	service := &models.Service{ID: uuid.NewString(), CreatedAt: now}
	applyServiceRequest(service, req, now)
	if err := s.services.Create(ctx, service); err != nil {
		return nil, models.ErrUpstream("Failed to create service", err)
	}

	s.invalidateCatalog(ctx, service.Category)
	s.actions.LogAction(models.ActionCreate, models.ModuleService,
		fmt.Sprintf("Service %s created", service.Title),
		models.ActorOf(admin),
		map[string]interface{}{"serviceId": service.ID},
	)
	return service, nil
}

// UpdateService replaces the editable fields of a catalog entry; admin only
func (s *CatalogService) UpdateService(ctx context.Context, token, id string, req models.ServiceRequest) (*models.Service, error) {
	admin, err := s.auth.RequireRole(ctx, token, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(&req); err != nil {
		return nil, err
	}
	service, err := s.GetService(ctx, id)
	if err != nil {
		return nil, err
	}

	oldCategory := service.Category
	applyServiceRequest(service, req, s.now())
	if err := s.services.Replace(ctx, service); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, models.ErrNotFound("Service not found")
		}
		return nil, models.ErrUpstream("Failed to update service", err)
	}

	s.invalidateCatalog(ctx, oldCategory, service.Category)
	s.actions.LogAction(models.ActionUpdate, models.ModuleService,
		fmt.Sprintf("Service %s updated", service.Title),
		models.ActorOf(admin),
		map[string]interface{}{"serviceId": service.ID},
	)
	return service, nil
}

// UploadServiceImage stores a resized copy of the image and points the service at it
func (s *CatalogService) UploadServiceImage(ctx context.Context, token, id, filename string, data []byte) (string, error) {
	admin, err := s.auth.RequireRole(ctx, token, models.RoleAdmin)
	if err != nil {
		return "", err
	}
	service, err := s.GetService(ctx, id)
	if err != nil {
		return "", err
	}

	url, err := s.images.SaveImage(ctx, "services", filename, data)
	if err != nil {
		return "", models.ErrValidation(err.Error())
	}
	if err := s.services.SetImage(ctx, service.ID, url, s.now()); err != nil {
		return "", models.ErrUpstream("Failed to update service image", err)
	}

	s.invalidateCatalog(ctx, service.Category)
	s.actions.LogAction(models.ActionUpdate, models.ModuleService,
		fmt.Sprintf("Image uploaded for service %s", service.Title),
		models.ActorOf(admin),
		map[string]interface{}{"serviceId": service.ID, "image": url},
	)
	return url, nil
}

func (s *CatalogService) invalidateCatalog(ctx context.Context, categories ...string) {
	keys := []string{catalogKey("")}
	for _, c := range categories {
		if c != "" {
			keys = append(keys, catalogKey(c))
		}
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.log.WithError(err).Warn("catalog cache invalidation failed")
	}
}

func applyServiceRequest(service *models.Service, req models.ServiceRequest, now time.Time) {
	service.Title = strings.TrimSpace(req.Title)
	service.Category = strings.TrimSpace(req.Category)
	service.Price = req.Price
	service.Description = req.Description
	service.Features = req.Features
	service.Packages = req.Packages
	if req.Image != "" {
		service.Image = req.Image
	}
	service.UpdatedAt = now
}
