package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecanovas/tourbook/internal/domain"
	"github.com/ecanovas/tourbook/internal/repo"
	"github.com/ecanovas/tourbook/testutil"
)

// newTestEnrollmentRepos opens a single transaction and returns the
// enrollment and plan repos backed by it.
func newTestEnrollmentRepos(t *testing.T) (repo.EnrollmentRepo, repo.PlanRepo) {
	t.Helper()
	pool := testutil.NewPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err, "begin transaction")

	t.Cleanup(func() {
		_ = tx.Rollback(context.Background())
	})

	return repo.NewEnrollmentRepo(tx), repo.NewPlanRepo(tx)
}

// mustEnroll inserts a pending enrollment on the plan for the given dates
// and party size.
func mustEnroll(t *testing.T, r repo.EnrollmentRepo, planID uuid.UUID, start, end string, participants int) domain.PlanEnrollment {
	t.Helper()
	s, err := time.Parse("2006-01-02", start)
	require.NoError(t, err)
	e, err := time.Parse("2006-01-02", end)
	require.NoError(t, err)

	got, err := r.Create(context.Background(), domain.PlanEnrollment{
		PlanID:       planID,
		UserID:       uuid.New(),
		StartDate:    s,
		EndDate:      e,
		Participants: participants,
	})
	require.NoError(t, err, "create enrollment")
	return got
}

func TestEnrollmentRepo_Create(t *testing.T) {
	er, pr := newTestEnrollmentRepos(t)

	plan, _ := mustCreatePlan(t, pr, planFixture())
	got := mustEnroll(t, er, plan.ID, "2026-09-10", "2026-09-11", 2)

	assert.NotEqual(t, uuid.Nil, got.ID, "ID should be DB-generated UUID")
	assert.Equal(t, plan.ID, got.PlanID)
	assert.Equal(t, domain.EnrollmentPending, got.Status)
	assert.Equal(t, 2, got.Participants)
	assert.Nil(t, got.AmountPaid, "no payment at enrollment time")
	assert.Nil(t, got.PaidWith)
	assert.False(t, got.EnrolledAt.IsZero(), "EnrolledAt should be set by DB")
}

func TestEnrollmentRepo_GetByID_NotFound(t *testing.T) {
	er, _ := newTestEnrollmentRepos(t)

	_, err := er.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEnrollmentRepo_ListByPlan(t *testing.T) {
	er, pr := newTestEnrollmentRepos(t)
	ctx := context.Background()

	plan, _ := mustCreatePlan(t, pr, planFixture())
	other, _ := mustCreatePlan(t, pr, planFixture())
	first := mustEnroll(t, er, plan.ID, "2026-09-10", "2026-09-11", 1)
	second := mustEnroll(t, er, plan.ID, "2026-09-12", "2026-09-13", 1)
	mustEnroll(t, er, other.ID, "2026-09-10", "2026-09-11", 1)

	got, err := er.ListByPlan(ctx, plan.ID)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID, "enrollments should be ordered by enrollment time")
	assert.Equal(t, second.ID, got[1].ID)
}

func TestEnrollmentRepo_ConfirmChecked(t *testing.T) {
	er, pr := newTestEnrollmentRepos(t)
	ctx := context.Background()

	plan, _ := mustCreatePlan(t, pr, planFixture()) // capacity 6
	e := mustEnroll(t, er, plan.ID, "2026-09-10", "2026-09-11", 2)

	got, err := er.ConfirmChecked(ctx, e.ID, &domain.Payment{Amount: 240, Method: domain.PayCard})

	require.NoError(t, err)
	assert.Equal(t, domain.EnrollmentConfirmed, got.Status)
	require.NotNil(t, got.AmountPaid)
	assert.InDelta(t, 240, *got.AmountPaid, 0.0001)
	require.NotNil(t, got.PaidWith)
	assert.Equal(t, domain.PayCard, *got.PaidWith)
}

func TestEnrollmentRepo_ConfirmChecked_CapacityExceeded(t *testing.T) {
	er, pr := newTestEnrollmentRepos(t)
	ctx := context.Background()

	plan, _ := mustCreatePlan(t, pr, planFixture()) // capacity 6
	mustEnroll(t, er, plan.ID, "2026-09-10", "2026-09-12", 4)
	e := mustEnroll(t, er, plan.ID, "2026-09-11", "2026-09-13", 3)

	_, err := er.ConfirmChecked(ctx, e.ID, nil)

	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
}

func TestEnrollmentRepo_ConfirmChecked_DisjointDates(t *testing.T) {
	er, pr := newTestEnrollmentRepos(t)
	ctx := context.Background()

	plan, _ := mustCreatePlan(t, pr, planFixture()) // capacity 6
	mustEnroll(t, er, plan.ID, "2026-09-10", "2026-09-12", 6)
	e := mustEnroll(t, er, plan.ID, "2026-09-13", "2026-09-15", 6)

	// The plan is full for the first range, but the second does not overlap.
	got, err := er.ConfirmChecked(ctx, e.ID, nil)

	require.NoError(t, err)
	assert.Equal(t, domain.EnrollmentConfirmed, got.Status)
}

func TestEnrollmentRepo_ConfirmChecked_NotPending(t *testing.T) {
	er, pr := newTestEnrollmentRepos(t)
	ctx := context.Background()

	plan, _ := mustCreatePlan(t, pr, planFixture())
	e := mustEnroll(t, er, plan.ID, "2026-09-10", "2026-09-11", 1)
	_, err := er.ConfirmChecked(ctx, e.ID, nil)
	require.NoError(t, err)

	_, err = er.ConfirmChecked(ctx, e.ID, nil)

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestEnrollmentRepo_Transition(t *testing.T) {
	er, pr := newTestEnrollmentRepos(t)
	ctx := context.Background()

	plan, _ := mustCreatePlan(t, pr, planFixture())
	e := mustEnroll(t, er, plan.ID, "2026-09-10", "2026-09-11", 1)

	got, err := er.Transition(ctx, e.ID, domain.EnrollmentPending, domain.EnrollmentCancelled, nil)

	require.NoError(t, err)
	assert.Equal(t, domain.EnrollmentCancelled, got.Status)
}

func TestEnrollmentRepo_Transition_KeepsPayment(t *testing.T) {
	er, pr := newTestEnrollmentRepos(t)
	ctx := context.Background()

	plan, _ := mustCreatePlan(t, pr, planFixture())
	e := mustEnroll(t, er, plan.ID, "2026-09-10", "2026-09-11", 1)
	_, err := er.ConfirmChecked(ctx, e.ID, &domain.Payment{Amount: 120, Method: domain.PayCash})
	require.NoError(t, err)

	// Transitioning without a payment leaves the recorded one in place.
	got, err := er.Transition(ctx, e.ID, domain.EnrollmentConfirmed, domain.EnrollmentCancelled, nil)

	require.NoError(t, err)
	require.NotNil(t, got.AmountPaid)
	assert.InDelta(t, 120, *got.AmountPaid, 0.0001)
}

func TestEnrollmentRepo_Transition_Guard(t *testing.T) {
	er, pr := newTestEnrollmentRepos(t)
	ctx := context.Background()

	plan, _ := mustCreatePlan(t, pr, planFixture())
	e := mustEnroll(t, er, plan.ID, "2026-09-10", "2026-09-11", 1)

	_, err := er.Transition(ctx, e.ID, domain.EnrollmentConfirmed, domain.EnrollmentCancelled, nil)

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestEnrollmentRepo_Transition_NotFound(t *testing.T) {
	er, _ := newTestEnrollmentRepos(t)

	_, err := er.Transition(context.Background(), uuid.New(), domain.EnrollmentPending, domain.EnrollmentCancelled, nil)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
