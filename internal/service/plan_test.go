package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecanovas/tourbook/internal/domain"
	"github.com/ecanovas/tourbook/internal/service"
)

func draftPlan() domain.Plan {
	return domain.Plan{
		CreatorID:    uuid.New(),
		Name:         "Volcano Circuit",
		Capacity:     10,
		DurationDays: 2,
		Difficulty:   domain.DifficultyHard,
		Status:       domain.PlanDraft,
	}
}

func planDay(t *testing.T, number int, from, to string) domain.PlanDay {
	t.Helper()
	start, err := domain.ParseTimeOfDay(from)
	require.NoError(t, err)
	end, err := domain.ParseTimeOfDay(to)
	require.NoError(t, err)
	return domain.PlanDay{DayNumber: number, Title: "Day", StartTime: start, EndTime: end}
}

// echoPlanRepo persists nothing and returns its inputs, for tests that
// exercise validation only.
func echoPlanRepo() *mockPlanRepo {
	return &mockPlanRepo{
		create: func(_ context.Context, p domain.Plan, days []domain.PlanDay) (domain.Plan, []domain.PlanDay, error) {
			p.ID = uuid.New()
			return p, days, nil
		},
	}
}

// ---- Create ----------------------------------------------------------------

func TestPlanService_Create_Draft(t *testing.T) {
	svc := service.NewPlanService(echoPlanRepo(), nil, nil)

	// A draft may carry a partial itinerary — only day 1 of 2.
	plan, days, err := svc.Create(context.Background(), draftPlan(),
		[]domain.PlanDay{planDay(t, 1, "09:00", "17:00")})

	require.NoError(t, err)
	assert.Equal(t, domain.PlanDraft, plan.Status)
	assert.Len(t, days, 1)
}

func TestPlanService_Create_DefaultsToDraft(t *testing.T) {
	svc := service.NewPlanService(echoPlanRepo(), nil, nil)

	p := draftPlan()
	p.Status = ""
	plan, _, err := svc.Create(context.Background(), p, nil)

	require.NoError(t, err)
	assert.Equal(t, domain.PlanDraft, plan.Status)
}

func TestPlanService_Create_MissingCreator(t *testing.T) {
	svc := service.NewPlanService(echoPlanRepo(), nil, nil)

	p := draftPlan()
	p.CreatorID = uuid.Nil
	_, _, err := svc.Create(context.Background(), p, nil)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPlanService_Create_ActiveNeedsCompleteItinerary(t *testing.T) {
	svc := service.NewPlanService(echoPlanRepo(), nil, nil)

	p := draftPlan()
	p.Status = domain.PlanActive

	// Only day 1 of 2: creating directly as ACTIVE requires the full set.
	_, _, err := svc.Create(context.Background(), p,
		[]domain.PlanDay{planDay(t, 1, "09:00", "17:00")})
	assert.ErrorIs(t, err, domain.ErrIncompleteItinerary)

	// Complete set succeeds.
	_, _, err = svc.Create(context.Background(), p, []domain.PlanDay{
		planDay(t, 1, "09:00", "17:00"),
		planDay(t, 2, "08:00", "16:00"),
	})
	assert.NoError(t, err)
}

func TestPlanService_Create_DuplicateDayNumbers(t *testing.T) {
	svc := service.NewPlanService(echoPlanRepo(), nil, nil)

	// Duplicates are rejected even for drafts.
	_, _, err := svc.Create(context.Background(), draftPlan(), []domain.PlanDay{
		planDay(t, 1, "09:00", "17:00"),
		planDay(t, 1, "08:00", "16:00"),
	})

	assert.ErrorIs(t, err, domain.ErrIncompleteItinerary)
}

func TestPlanService_Create_ComputesDayDuration(t *testing.T) {
	var persisted []domain.PlanDay
	r := &mockPlanRepo{
		create: func(_ context.Context, p domain.Plan, days []domain.PlanDay) (domain.Plan, []domain.PlanDay, error) {
			persisted = days
			return p, days, nil
		},
	}
	svc := service.NewPlanService(r, nil, nil)

	p := draftPlan()
	p.DurationDays = 1
	_, _, err := svc.Create(context.Background(), p,
		[]domain.PlanDay{planDay(t, 1, "22:00", "02:00")}) // overnight day

	require.NoError(t, err)
	require.Len(t, persisted, 1)
	assert.Equal(t, 240, persisted[0].DurationMinutes, "overnight span wraps past midnight")
}

func TestPlanService_Create_DayDurationMismatch(t *testing.T) {
	svc := service.NewPlanService(echoPlanRepo(), nil, nil)

	p := draftPlan()
	p.DurationDays = 1
	day := planDay(t, 1, "09:00", "17:00")
	day.DurationMinutes = 300 // the span is 480 minutes

	_, _, err := svc.Create(context.Background(), p, []domain.PlanDay{day})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPlanService_Create_DayDurationMatchesWrappedSpan(t *testing.T) {
	svc := service.NewPlanService(echoPlanRepo(), nil, nil)

	p := draftPlan()
	p.DurationDays = 1
	day := planDay(t, 1, "22:00", "02:00")
	day.DurationMinutes = 240 // (24h − 22:00) + 02:00

	_, _, err := svc.Create(context.Background(), p, []domain.PlanDay{day})

	assert.NoError(t, err)
}

// ---- Publish ---------------------------------------------------------------

func TestPlanService_Publish(t *testing.T) {
	p := draftPlan()
	p.ID = uuid.New()
	r := &mockPlanRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Plan, error) { return p, nil },
		days: func(_ context.Context, _ uuid.UUID) ([]domain.PlanDay, error) {
			return []domain.PlanDay{
				planDay(t, 1, "09:00", "17:00"),
				planDay(t, 2, "08:00", "16:00"),
			}, nil
		},
		publish: func(_ context.Context, _ uuid.UUID) (domain.Plan, error) {
			out := p
			out.Status = domain.PlanActive
			out.Public = true
			return out, nil
		},
	}
	svc := service.NewPlanService(r, nil, nil)

	got, err := svc.Publish(context.Background(), p.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.PlanActive, got.Status)
	assert.True(t, got.Public)
}

func TestPlanService_Publish_IncompleteItinerary(t *testing.T) {
	p := draftPlan()
	p.ID = uuid.New()
	r := &mockPlanRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Plan, error) { return p, nil },
		days: func(_ context.Context, _ uuid.UUID) ([]domain.PlanDay, error) {
			// Day 2 is missing.
			return []domain.PlanDay{planDay(t, 1, "09:00", "17:00")}, nil
		},
	}
	svc := service.NewPlanService(r, nil, nil)

	_, err := svc.Publish(context.Background(), p.ID)

	assert.ErrorIs(t, err, domain.ErrIncompleteItinerary)
}

func TestPlanService_Publish_NotFound(t *testing.T) {
	r := &mockPlanRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Plan, error) {
			return domain.Plan{}, domain.ErrNotFound
		},
	}
	svc := service.NewPlanService(r, nil, nil)

	_, err := svc.Publish(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- Gallery ---------------------------------------------------------------

func TestPlanService_AttachImage_Plan(t *testing.T) {
	p := draftPlan()
	p.ID = uuid.New()
	r := &mockPlanRepo{
		getByID: func(_ context.Context, id uuid.UUID) (domain.Plan, error) {
			assert.Equal(t, p.ID, id)
			return p, nil
		},
	}
	g := &mockGalleryRepo{
		attach: func(_ context.Context, img domain.GalleryImage) (domain.GalleryImage, error) {
			img.ID = uuid.New()
			img.Position = 0
			return img, nil
		},
	}
	svc := service.NewPlanService(r, g, nil)

	got, err := svc.AttachImage(context.Background(), domain.PlanOwner(p.ID), "https://img.example/1.jpg")

	require.NoError(t, err)
	assert.Equal(t, domain.OwnerPlan, got.Owner.Kind)
	assert.Equal(t, 0, got.Position)
}

func TestPlanService_AttachImage_ServiceOwner(t *testing.T) {
	svcID := uuid.New()
	c := &mockCatalogRepo{
		getService: func(_ context.Context, id uuid.UUID) (domain.Service, error) {
			assert.Equal(t, svcID, id)
			return domain.Service{ID: id}, nil
		},
	}
	g := &mockGalleryRepo{
		attach: func(_ context.Context, img domain.GalleryImage) (domain.GalleryImage, error) {
			img.ID = uuid.New()
			return img, nil
		},
	}
	svc := service.NewPlanService(nil, g, c)

	got, err := svc.AttachImage(context.Background(), domain.ServiceOwner(svcID), "https://img.example/2.jpg")

	require.NoError(t, err)
	assert.Equal(t, domain.OwnerService, got.Owner.Kind)
}

func TestPlanService_AttachImage_MissingOwner(t *testing.T) {
	r := &mockPlanRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Plan, error) {
			return domain.Plan{}, domain.ErrNotFound
		},
	}
	svc := service.NewPlanService(r, nil, nil)

	_, err := svc.AttachImage(context.Background(), domain.PlanOwner(uuid.New()), "https://img.example/3.jpg")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPlanService_AttachImage_EmptyURL(t *testing.T) {
	svc := service.NewPlanService(nil, nil, nil)

	_, err := svc.AttachImage(context.Background(), domain.PlanOwner(uuid.New()), "   ")

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPlanService_Gallery_Empty(t *testing.T) {
	g := &mockGalleryRepo{
		listByOwner: func(_ context.Context, _ domain.ImageOwner) ([]domain.GalleryImage, error) {
			return nil, nil
		},
	}
	svc := service.NewPlanService(nil, g, nil)

	got, err := svc.Gallery(context.Background(), domain.PlanOwner(uuid.New()))

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
