package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ecanovas/tourbook/internal/domain"
	"github.com/ecanovas/tourbook/internal/repo"
)

// EnrollmentService implements the plan enrollment lifecycle. Enrollments
// are an independent aggregate: they bind a user to a plan and never touch
// the reservation cart.
type EnrollmentService struct {
	enrollments repo.EnrollmentRepo
	plans       repo.PlanRepo
	opts        Options
}

// NewEnrollmentService constructs an EnrollmentService backed by the
// provided repos.
func NewEnrollmentService(enrollments repo.EnrollmentRepo, plans repo.PlanRepo, opts Options) *EnrollmentService {
	return &EnrollmentService{
		enrollments: enrollments,
		plans:       plans,
		opts:        opts.withDefaults(),
	}
}

// Enroll registers a user on a plan for a date range, in PENDING state.
// The plan must be ACTIVE and public. A single enrollment larger than the
// plan's whole capacity can never be confirmed, so it is rejected here
// with domain.ErrCapacityExceeded; the authoritative overlap check against
// other enrollments runs at confirmation time.
func (s *EnrollmentService) Enroll(ctx context.Context, userID, planID uuid.UUID, e domain.PlanEnrollment) (domain.PlanEnrollment, error) {
	if userID == uuid.Nil {
		return domain.PlanEnrollment{}, fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}

	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return domain.PlanEnrollment{}, fmt.Errorf("service.EnrollmentService.Enroll: %w", err)
	}
	if plan.Status != domain.PlanActive || !plan.Public {
		return domain.PlanEnrollment{}, fmt.Errorf("%w: plan is not open for enrollment", domain.ErrValidation)
	}

	if e.StartDate.IsZero() || e.EndDate.IsZero() {
		return domain.PlanEnrollment{}, fmt.Errorf("%w: start and end dates are required", domain.ErrValidation)
	}
	if e.EndDate.Before(e.StartDate) {
		return domain.PlanEnrollment{}, fmt.Errorf("%w: end date before start date", domain.ErrValidation)
	}
	if e.Participants < 1 {
		return domain.PlanEnrollment{}, fmt.Errorf("%w: participant count must be positive", domain.ErrValidation)
	}
	if e.Participants > plan.Capacity {
		return domain.PlanEnrollment{}, fmt.Errorf("%w: %d participants > plan capacity %d",
			domain.ErrCapacityExceeded, e.Participants, plan.Capacity)
	}

	e.PlanID = planID
	e.UserID = userID
	result, err := s.enrollments.Create(ctx, e)
	if err != nil {
		return domain.PlanEnrollment{}, fmt.Errorf("service.EnrollmentService.Enroll: %w", err)
	}
	return result, nil
}

// GetByID returns a single enrollment by ID.
func (s *EnrollmentService) GetByID(ctx context.Context, id uuid.UUID) (domain.PlanEnrollment, error) {
	result, err := s.enrollments.GetByID(ctx, id)
	if err != nil {
		return domain.PlanEnrollment{}, fmt.Errorf("service.EnrollmentService.GetByID: %w", err)
	}
	return result, nil
}

// ListByPlan returns all enrollments of a plan.
// Always returns a non-nil slice so callers can safely range over it.
func (s *EnrollmentService) ListByPlan(ctx context.Context, planID uuid.UUID) ([]domain.PlanEnrollment, error) {
	if _, err := s.plans.GetByID(ctx, planID); err != nil {
		return nil, fmt.Errorf("service.EnrollmentService.ListByPlan: %w", err)
	}
	out, err := s.enrollments.ListByPlan(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("service.EnrollmentService.ListByPlan: %w", err)
	}
	if out == nil {
		out = []domain.PlanEnrollment{}
	}
	return out, nil
}

// Transition moves an enrollment to the target status, optionally
// recording a payment.
//
// Confirmation runs the atomic per-plan capacity check and is the first
// moment a payment may be recorded; recording one earlier fails with
// domain.ErrPaymentBeforeConfirmation. IN_PROGRESS requires the plan start
// date to have arrived and COMPLETED requires the end date to have passed,
// both measured against the injected clock.
func (s *EnrollmentService) Transition(ctx context.Context, id uuid.UUID, target domain.EnrollmentStatus, pay *domain.Payment) (domain.PlanEnrollment, error) {
	if !target.Valid() {
		return domain.PlanEnrollment{}, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, target)
	}
	if pay != nil {
		if !pay.Method.Valid() {
			return domain.PlanEnrollment{}, fmt.Errorf("%w: unknown payment method %q", domain.ErrValidation, pay.Method)
		}
		if pay.Amount <= 0 {
			return domain.PlanEnrollment{}, fmt.Errorf("%w: payment amount must be positive", domain.ErrValidation)
		}
	}

	e, err := s.enrollments.GetByID(ctx, id)
	if err != nil {
		return domain.PlanEnrollment{}, fmt.Errorf("service.EnrollmentService.Transition: %w", err)
	}

	if pay != nil && target != domain.EnrollmentConfirmed && !e.Status.AtLeastConfirmed() {
		return domain.PlanEnrollment{}, fmt.Errorf("%w: enrollment is %s", domain.ErrPaymentBeforeConfirmation, e.Status)
	}
	if !e.Status.CanTransitionTo(target) {
		return domain.PlanEnrollment{}, fmt.Errorf("%w: %s → %s", domain.ErrInvalidTransition, e.Status, target)
	}

	now := s.opts.Now()
	switch target {
	case domain.EnrollmentConfirmed:
		result, err := withRetry(ctx, s.opts.TxRetryLimit, func(ctx context.Context) (domain.PlanEnrollment, error) {
			return s.enrollments.ConfirmChecked(ctx, id, pay)
		})
		if err != nil {
			return domain.PlanEnrollment{}, fmt.Errorf("service.EnrollmentService.Transition: %w", err)
		}
		return result, nil

	case domain.EnrollmentInProgress:
		today := dateOf(now)
		if e.StartDate.After(today) {
			return domain.PlanEnrollment{}, fmt.Errorf("%w: plan starts %s", domain.ErrInvalidTransition, e.StartDate.Format("2006-01-02"))
		}
	case domain.EnrollmentCompleted:
		today := dateOf(now)
		if !e.EndDate.Before(today) {
			return domain.PlanEnrollment{}, fmt.Errorf("%w: plan ends %s", domain.ErrInvalidTransition, e.EndDate.Format("2006-01-02"))
		}
	}

	result, err := withRetry(ctx, s.opts.TxRetryLimit, func(ctx context.Context) (domain.PlanEnrollment, error) {
		return s.enrollments.Transition(ctx, id, e.Status, target, pay)
	})
	if err != nil {
		return domain.PlanEnrollment{}, fmt.Errorf("service.EnrollmentService.Transition: %w", err)
	}
	return result, nil
}

// dateOf truncates a timestamp to its UTC calendar date.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
