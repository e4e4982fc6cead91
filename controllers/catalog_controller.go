package controllers

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/HSouheill/homeservices_backend/models"
	"github.com/HSouheill/homeservices_backend/services"
)

// maxImageSize bounds multipart uploads
const maxImageSize = 10 << 20

type CatalogController struct {
	base
	catalog *services.CatalogService
}

func NewCatalogController(catalog *services.CatalogService, log *logrus.Logger) *CatalogController {
	return &CatalogController{base: base{log: log}, catalog: catalog}
}

// ListServices handles GET /api/services?category=
func (cc *CatalogController) ListServices(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	list, err := cc.catalog.ListServices(ctx, c.QueryParam("category"))
	if err != nil {
		return cc.fail(c, err)
	}
	return ok(c, http.StatusOK, map[string]interface{}{"services": list})
}

// GetService handles GET /api/services/:id
func (cc *CatalogController) GetService(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	service, err := cc.catalog.GetService(ctx, c.Param("id"))
	if err != nil {
		return cc.fail(c, err)
	}
	return ok(c, http.StatusOK, map[string]interface{}{"service": service})
}

// CreateService handles POST /api/admin/services
func (cc *CatalogController) CreateService(c echo.Context) error {
	var req models.ServiceRequest
	if err := bind(c, &req); err != nil {
		return cc.fail(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	service, err := cc.catalog.CreateService(ctx, bearerToken(c), req)
	if err != nil {
		return cc.fail(c, err)
	}
	return ok(c, http.StatusCreated, map[string]interface{}{"service": service})
}

// UpdateService handles PUT /api/admin/services/:id
func (cc *CatalogController) UpdateService(c echo.Context) error {
	var req models.ServiceRequest
	if err := bind(c, &req); err != nil {
		return cc.fail(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	service, err := cc.catalog.UpdateService(ctx, bearerToken(c), c.Param("id"), req)
	if err != nil {
		return cc.fail(c, err)
	}
	return ok(c, http.StatusOK, map[string]interface{}{"service": service})
}

// UploadServiceImage handles POST /api/admin/services/:id/image with a multipart "image" field
func (cc *CatalogController) UploadServiceImage(c echo.Context) error {
	file, err := c.FormFile("image")
	if err != nil {
		return cc.fail(c, models.ErrValidation("Image file is required"))
	}
	if file.Size > maxImageSize {
		return cc.fail(c, models.ErrValidation("Image exceeds 10MB"))
	}

	src, err := file.Open()
	if err != nil {
		return cc.fail(c, models.ErrValidation("Unable to read image"))
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxImageSize+1))
	if err != nil {
		return cc.fail(c, models.ErrValidation("Unable to read image"))
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	url, err := cc.catalog.UploadServiceImage(ctx, bearerToken(c), c.Param("id"), file.Filename, data)
	if err != nil {
		return cc.fail(c, err)
	}
	return ok(c, http.StatusOK, map[string]interface{}{"image": url})
}
