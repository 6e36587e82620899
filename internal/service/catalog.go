package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ecanovas/tourbook/internal/domain"
	"github.com/ecanovas/tourbook/internal/repo"
)

// CatalogService manages providers and their bookable services. The
// catalog is read-mostly from the booking core's perspective; writes exist
// so operators can seed it.
type CatalogService struct {
	catalog repo.CatalogRepo
}

func NewCatalogService(catalog repo.CatalogRepo) *CatalogService {
	return &CatalogService{catalog: catalog}
}

// CreateProvider registers a new provider.
func (s *CatalogService) CreateProvider(ctx context.Context, p domain.Provider) (domain.Provider, error) {
	if p.Name == "" {
		return domain.Provider{}, fmt.Errorf("%w: provider name is required", domain.ErrValidation)
	}
	result, err := s.catalog.CreateProvider(ctx, p)
	if err != nil {
		return domain.Provider{}, fmt.Errorf("service.CatalogService.CreateProvider: %w", err)
	}
	return result, nil
}

// CreateService registers a bookable service under a provider.
func (s *CatalogService) CreateService(ctx context.Context, sv domain.Service) (domain.Service, error) {
	if sv.Name == "" {
		return domain.Service{}, fmt.Errorf("%w: service name is required", domain.ErrValidation)
	}
	if sv.ProviderID == uuid.Nil {
		return domain.Service{}, fmt.Errorf("%w: provider id is required", domain.ErrValidation)
	}
	if sv.Capacity < 1 {
		return domain.Service{}, fmt.Errorf("%w: capacity must be positive", domain.ErrValidation)
	}
	if sv.UnitPrice < 0 {
		return domain.Service{}, fmt.Errorf("%w: unit price must not be negative", domain.ErrValidation)
	}
	result, err := s.catalog.CreateService(ctx, sv)
	if err != nil {
		return domain.Service{}, fmt.Errorf("service.CatalogService.CreateService: %w", err)
	}
	return result, nil
}

// GetService returns a single catalog service by ID.
func (s *CatalogService) GetService(ctx context.Context, id uuid.UUID) (domain.Service, error) {
	result, err := s.catalog.GetService(ctx, id)
	if err != nil {
		return domain.Service{}, fmt.Errorf("service.CatalogService.GetService: %w", err)
	}
	return result, nil
}

// ListServices returns the full catalog. Always returns a non-nil slice.
func (s *CatalogService) ListServices(ctx context.Context) ([]domain.Service, error) {
	out, err := s.catalog.ListServices(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.CatalogService.ListServices: %w", err)
	}
	if out == nil {
		out = []domain.Service{}
	}
	return out, nil
}
