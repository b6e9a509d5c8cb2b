package catalog

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/gagesampsonn/barbershop/internal/domain/apperrors"
	"github.com/gagesampsonn/barbershop/internal/domain/models"
)

// Repository is the persistence contract for the price list.
type Repository interface {
	ListServices(ctx context.Context, activeOnly bool) ([]models.Service, error)
	UpdateService(ctx context.Context, svc models.Service) (models.Service, error)
}

// Service serves the public price list and applies admin pricing edits.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService wires a catalog service; repo may be nil.
func NewService(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

// DefaultServices is shown whenever the stored catalog cannot be read.
func DefaultServices() []models.Service {
	describe := func(s string) *string { return &s }
	return []models.Service{
		{
			ID:           "default-haircut",
			Name:         "Haircut",
			Description:  describe("Classic cut, styled to finish."),
			Price:        decimal.NewFromInt(10),
			Icon:         models.IconScissors,
			AccentColor:  models.AccentRed,
			DisplayOrder: 1,
			IsActive:     true,
		},
		{
			ID:           "default-beard-trim",
			Name:         "Beard Trim",
			Description:  describe("Shape and line-up."),
			Price:        decimal.NewFromInt(8),
			Icon:         models.IconUser,
			AccentColor:  models.AccentBlue,
			DisplayOrder: 2,
			IsActive:     true,
		},
		{
			ID:           "default-senior-haircut",
			Name:         "Senior Haircut",
			Description:  describe("For customers 65 and over."),
			Price:        decimal.NewFromInt(9),
			Icon:         models.IconUserCheck,
			AccentColor:  models.AccentRed,
			DisplayOrder: 3,
			IsActive:     true,
		},
	}
}

// ActiveServices returns the active price list ordered for display. It never fails.
func (s *Service) ActiveServices(ctx context.Context) []models.Service {
	if s.repo == nil {
		return DefaultServices()
	}
	services, err := s.repo.ListServices(ctx, true)
	if err != nil {
		s.logger.Warn("load services, serving defaults", zap.Error(err))
		return DefaultServices()
	}
	if len(services) == 0 {
		return DefaultServices()
	}
	return services
}

// AllServices lists every service, inactive ones included.
func (s *Service) AllServices(ctx context.Context) ([]models.Service, error) {
	if s.repo == nil {
		return nil, apperrors.ErrUnavailable
	}
	services, err := s.repo.ListServices(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return services, nil
}

// UpdateService validates and stores an edited service.
func (s *Service) UpdateService(ctx context.Context, svc models.Service) (models.Service, error) {
	if s.repo == nil {
		return models.Service{}, apperrors.ErrUnavailable
	}
	if svc.ID == "" {
		return models.Service{}, apperrors.Validation("id is required")
	}
	if err := svc.Validate(); err != nil {
		return models.Service{}, err
	}
	updated, err := s.repo.UpdateService(ctx, svc)
	if err != nil {
		return models.Service{}, fmt.Errorf("update service %s: %w", svc.ID, err)
	}
	s.logger.Info("service updated", zap.String("id", updated.ID), zap.String("price", updated.Price.StringFixed(2)))
	return updated, nil
}
