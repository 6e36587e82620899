package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ecanovas/tourbook/internal/domain"
	"github.com/ecanovas/tourbook/internal/repo"
)

// PlanService implements business logic for plans, their itineraries, and
// their galleries. It holds the catalog repo as well because gallery
// images attach to either plans or catalog services.
type PlanService struct {
	plans   repo.PlanRepo
	gallery repo.GalleryRepo
	catalog repo.CatalogRepo
}

// NewPlanService constructs a PlanService backed by the provided repos.
func NewPlanService(plans repo.PlanRepo, gallery repo.GalleryRepo, catalog repo.CatalogRepo) *PlanService {
	return &PlanService{plans: plans, gallery: gallery, catalog: catalog}
}

// Create validates and persists a plan together with its itinerary days.
//
// Day numbers must always be unique and within 1..duration_days. A DRAFT
// plan may carry a partial itinerary; a plan created directly as ACTIVE
// must carry the complete 1..duration_days set or the call fails with
// domain.ErrIncompleteItinerary.
func (s *PlanService) Create(ctx context.Context, p domain.Plan, days []domain.PlanDay) (domain.Plan, []domain.PlanDay, error) {
	if p.CreatorID == uuid.Nil {
		return domain.Plan{}, nil, fmt.Errorf("%w: creator id is required", domain.ErrValidation)
	}
	if p.Status == "" {
		p.Status = domain.PlanDraft
	}
	if err := domain.ValidatePlan(p); err != nil {
		return domain.Plan{}, nil, err
	}
	if err := domain.ValidateItinerary(p, days, p.Status == domain.PlanActive); err != nil {
		return domain.Plan{}, nil, err
	}

	// A zero duration is derived from the time span; a supplied one must
	// agree with it, counting overnight days by their wrapped length.
	for i := range days {
		span := days[i].SpanMinutes()
		if days[i].DurationMinutes == 0 {
			days[i].DurationMinutes = span
			continue
		}
		if days[i].DurationMinutes != span {
			return domain.Plan{}, nil, fmt.Errorf("%w: day %d: duration %d does not match the %d minute span",
				domain.ErrValidation, days[i].DayNumber, days[i].DurationMinutes, span)
		}
	}

	plan, created, err := s.plans.Create(ctx, p, days)
	if err != nil {
		return domain.Plan{}, nil, fmt.Errorf("service.PlanService.Create: %w", err)
	}
	return plan, created, nil
}

// GetByID returns a plan with its itinerary days.
func (s *PlanService) GetByID(ctx context.Context, id uuid.UUID) (domain.Plan, []domain.PlanDay, error) {
	plan, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return domain.Plan{}, nil, fmt.Errorf("service.PlanService.GetByID: %w", err)
	}
	days, err := s.plans.Days(ctx, id)
	if err != nil {
		return domain.Plan{}, nil, fmt.Errorf("service.PlanService.GetByID: days: %w", err)
	}
	if days == nil {
		days = []domain.PlanDay{}
	}
	return plan, days, nil
}

// ListPublished returns ACTIVE public plans.
// Always returns a non-nil slice so callers can safely range over it.
func (s *PlanService) ListPublished(ctx context.Context, p domain.PaginationParams) ([]domain.Plan, int64, error) {
	out, total, err := s.plans.ListPublished(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.PlanService.ListPublished: %w", err)
	}
	if out == nil {
		out = []domain.Plan{}
	}
	return out, total, nil
}

// Publish marks the plan ACTIVE and public after validating that its
// itinerary is complete: at least one day and the full 1..duration_days
// set. Fails with domain.ErrIncompleteItinerary otherwise.
func (s *PlanService) Publish(ctx context.Context, id uuid.UUID) (domain.Plan, error) {
	plan, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.Publish: %w", err)
	}
	days, err := s.plans.Days(ctx, id)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.Publish: days: %w", err)
	}
	if err := domain.ValidateItinerary(plan, days, true); err != nil {
		return domain.Plan{}, err
	}

	result, err := s.plans.Publish(ctx, id)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.Publish: %w", err)
	}
	return result, nil
}

// AttachImage stores an image reference in the owner's gallery after
// verifying the owner entity exists.
func (s *PlanService) AttachImage(ctx context.Context, owner domain.ImageOwner, url string) (domain.GalleryImage, error) {
	img := domain.GalleryImage{Owner: owner, URL: strings.TrimSpace(url)}
	if err := img.Validate(); err != nil {
		return domain.GalleryImage{}, err
	}

	switch owner.Kind {
	case domain.OwnerPlan:
		if _, err := s.plans.GetByID(ctx, owner.ID); err != nil {
			return domain.GalleryImage{}, fmt.Errorf("service.PlanService.AttachImage: %w", err)
		}
	case domain.OwnerService:
		if _, err := s.catalog.GetService(ctx, owner.ID); err != nil {
			return domain.GalleryImage{}, fmt.Errorf("service.PlanService.AttachImage: %w", err)
		}
	}

	result, err := s.gallery.Attach(ctx, img)
	if err != nil {
		return domain.GalleryImage{}, fmt.Errorf("service.PlanService.AttachImage: %w", err)
	}
	return result, nil
}

// Gallery returns the owner's gallery images in position order.
// Always returns a non-nil slice so callers can safely range over it.
func (s *PlanService) Gallery(ctx context.Context, owner domain.ImageOwner) ([]domain.GalleryImage, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	out, err := s.gallery.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("service.PlanService.Gallery: %w", err)
	}
	if out == nil {
		out = []domain.GalleryImage{}
	}
	return out, nil
}
