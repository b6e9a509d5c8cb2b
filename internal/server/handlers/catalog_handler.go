package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/gagesampsonn/barbershop/internal/domain/models"
)

// CatalogService is the price list surface used by the HTTP layer.
type CatalogService interface {
	ActiveServices(ctx context.Context) []models.Service
	AllServices(ctx context.Context) ([]models.Service, error)
	UpdateService(ctx context.Context, svc models.Service) (models.Service, error)
}

// CatalogHandler serves the price list.
type CatalogHandler struct {
	svc    CatalogService
	logger *zap.Logger
}

// NewCatalogHandler constructs the HTTP handler adapter.
func NewCatalogHandler(svc CatalogService, logger *zap.Logger) *CatalogHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogHandler{svc: svc, logger: logger}
}

// Active lists the services shown on the public site.
func (h *CatalogHandler) Active(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"services": h.svc.ActiveServices(c.Request.Context())})
}

// All lists every service for the admin editor.
func (h *CatalogHandler) All(c *gin.Context) {
	services, err := h.svc.AllServices(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": services})
}

type serviceRequest struct {
	Name         string           `json:"name" binding:"required,max=80"`
	Description  *string          `json:"description" binding:"omitempty,max=500"`
	Price        *decimal.Decimal `json:"price" binding:"required"`
	Icon         string           `json:"icon" binding:"required,oneof=scissors user userCheck"`
	AccentColor  string           `json:"accent_color" binding:"required,oneof=red blue"`
	DisplayOrder int              `json:"display_order" binding:"min=0"`
	IsActive     *bool            `json:"is_active" binding:"required"`
}

// Update edits a service in place.
func (h *CatalogHandler) Update(c *gin.Context) {
	var req serviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, bindingError(err))
		return
	}

	updated, err := h.svc.UpdateService(c.Request.Context(), models.Service{
		ID:           c.Param("id"),
		Name:         req.Name,
		Description:  req.Description,
		Price:        *req.Price,
		Icon:         models.ServiceIcon(req.Icon),
		AccentColor:  models.AccentColor(req.AccentColor),
		DisplayOrder: req.DisplayOrder,
		IsActive:     *req.IsActive,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
