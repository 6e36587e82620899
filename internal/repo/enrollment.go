package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/ecanovas/tourbook/internal/domain"
)

// EnrollmentRepo defines the persistence operations for plan enrollments,
// including the capacity-checked confirmation that prevents overbooking a
// plan under concurrent requests.
type EnrollmentRepo interface {
	// Create inserts a new PENDING enrollment and returns the persisted
	// record.
	Create(ctx context.Context, e domain.PlanEnrollment) (domain.PlanEnrollment, error)

	// GetByID retrieves an enrollment by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (domain.PlanEnrollment, error)

	// ListByPlan returns all enrollments of a plan ordered by enrolled_at.
	ListByPlan(ctx context.Context, planID uuid.UUID) ([]domain.PlanEnrollment, error)

	// ConfirmChecked moves a PENDING enrollment to CONFIRMED only if the
	// plan's capacity admits it. In a single transaction it locks the plan
	// row, sums participants of all other non-cancelled enrollments with
	// overlapping date ranges, and confirms iff sum+participants <=
	// capacity, recording the payment when one is supplied.
	// Returns domain.ErrCapacityExceeded when the plan is full for the
	// range, domain.ErrInvalidTransition when the enrollment is no longer
	// PENDING, domain.ErrConflict on a serialization failure.
	ConfirmChecked(ctx context.Context, id uuid.UUID, pay *domain.Payment) (domain.PlanEnrollment, error)

	// Transition moves an enrollment from one status to another, guarded
	// by the from status, optionally recording a payment. Capacity is not
	// re-checked; use ConfirmChecked for PENDING → CONFIRMED.
	Transition(ctx context.Context, id uuid.UUID, from, to domain.EnrollmentStatus, pay *domain.Payment) (domain.PlanEnrollment, error)
}

// pgEnrollmentRepo is the Postgres implementation of EnrollmentRepo.
type pgEnrollmentRepo struct {
	db db
}

// NewEnrollmentRepo constructs an EnrollmentRepo backed by the provided db
// connection.
func NewEnrollmentRepo(db db) EnrollmentRepo {
	return &pgEnrollmentRepo{db: db}
}

const enrollmentCols = `id, plan_id, user_id, status, enrolled_at, start_date, end_date,
	participants, amount_paid, payment_method, special_requirements, comments, updated_at`

func (r *pgEnrollmentRepo) Create(ctx context.Context, e domain.PlanEnrollment) (domain.PlanEnrollment, error) {
	const q = `
		INSERT INTO plan_enrollments (plan_id, user_id, status, start_date, end_date,
			participants, special_requirements, comments)
		VALUES (@plan_id, @user_id, @status, @start_date, @end_date,
			@participants, @special_requirements, @comments)
		RETURNING ` + enrollmentCols

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"plan_id":              e.PlanID,
		"user_id":              e.UserID,
		"status":               domain.EnrollmentPending,
		"start_date":           e.StartDate,
		"end_date":             e.EndDate,
		"participants":         e.Participants,
		"special_requirements": e.SpecialRequirements,
		"comments":             e.Comments,
	})
	result, err := scanEnrollment(row)
	if err != nil {
		return domain.PlanEnrollment{}, fmt.Errorf("repo.EnrollmentRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgEnrollmentRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.PlanEnrollment, error) {
	const q = `SELECT ` + enrollmentCols + ` FROM plan_enrollments WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanEnrollment(row)
	if err != nil {
		return domain.PlanEnrollment{}, fmt.Errorf("repo.EnrollmentRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgEnrollmentRepo) ListByPlan(ctx context.Context, planID uuid.UUID) ([]domain.PlanEnrollment, error) {
	const q = `SELECT ` + enrollmentCols + `
		FROM plan_enrollments
		WHERE plan_id = @plan_id
		ORDER BY enrolled_at`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"plan_id": planID})
	if err != nil {
		return nil, fmt.Errorf("repo.EnrollmentRepo.ListByPlan: %w", err)
	}
	defer rows.Close()

	var out []domain.PlanEnrollment
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.EnrollmentRepo.ListByPlan: scan: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.EnrollmentRepo.ListByPlan: rows: %w", err)
	}

	return out, nil
}

func (r *pgEnrollmentRepo) ConfirmChecked(ctx context.Context, id uuid.UUID, pay *domain.Payment) (domain.PlanEnrollment, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.PlanEnrollment{}, fmt.Errorf("repo.EnrollmentRepo.ConfirmChecked: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := scanEnrollment(tx.QueryRow(ctx,
		`SELECT `+enrollmentCols+` FROM plan_enrollments WHERE id = @id`,
		pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.PlanEnrollment{}, fmt.Errorf("repo.EnrollmentRepo.ConfirmChecked: %w", err)
	}

	// Lock the plan row so concurrent confirmations for the same plan
	// serialize. The lock is held until commit, making the sum-then-update
	// below atomic with respect to other enrollments.
	var capacity int
	err = tx.QueryRow(ctx,
		`SELECT capacity FROM plans WHERE id = @id FOR UPDATE`,
		pgx.NamedArgs{"id": current.PlanID},
	).Scan(&capacity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.PlanEnrollment{}, fmt.Errorf("repo.EnrollmentRepo.ConfirmChecked: plan: %w", domain.ErrNotFound)
		}
		return domain.PlanEnrollment{}, fmt.Errorf("repo.EnrollmentRepo.ConfirmChecked: lock: %w", concurrencyErr(err))
	}

	var occupied int
	err = tx.QueryRow(ctx, `
		SELECT COALESCE(SUM(participants), 0)
		FROM plan_enrollments
		WHERE plan_id = @plan_id
		  AND id <> @id
		  AND status <> @cancelled
		  AND start_date <= @end_date
		  AND end_date >= @start_date`,
		pgx.NamedArgs{
			"plan_id":    current.PlanID,
			"id":         id,
			"cancelled":  domain.EnrollmentCancelled,
			"start_date": current.StartDate,
			"end_date":   current.EndDate,
		}).Scan(&occupied)
	if err != nil {
		return domain.PlanEnrollment{}, fmt.Errorf("repo.EnrollmentRepo.ConfirmChecked: sum: %w", concurrencyErr(err))
	}

	if occupied+current.Participants > capacity {
		return domain.PlanEnrollment{}, fmt.Errorf(
			"repo.EnrollmentRepo.ConfirmChecked: %w: %d enrolled + %d requested > capacity %d",
			domain.ErrCapacityExceeded, occupied, current.Participants, capacity)
	}

	result, err := updateEnrollmentStatus(ctx, tx, id, domain.EnrollmentPending, domain.EnrollmentConfirmed, pay)
	if err != nil {
		return domain.PlanEnrollment{}, fmt.Errorf("repo.EnrollmentRepo.ConfirmChecked: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.PlanEnrollment{}, fmt.Errorf("repo.EnrollmentRepo.ConfirmChecked: commit: %w", concurrencyErr(err))
	}
	return result, nil
}

func (r *pgEnrollmentRepo) Transition(ctx context.Context, id uuid.UUID, from, to domain.EnrollmentStatus, pay *domain.Payment) (domain.PlanEnrollment, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.PlanEnrollment{}, fmt.Errorf("repo.EnrollmentRepo.Transition: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := updateEnrollmentStatus(ctx, tx, id, from, to, pay)
	if err != nil {
		return domain.PlanEnrollment{}, fmt.Errorf("repo.EnrollmentRepo.Transition: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.PlanEnrollment{}, fmt.Errorf("repo.EnrollmentRepo.Transition: commit: %w", concurrencyErr(err))
	}
	return result, nil
}

// updateEnrollmentStatus performs the guarded status update, optionally
// recording a payment in the same statement.
func updateEnrollmentStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, from, to domain.EnrollmentStatus, pay *domain.Payment) (domain.PlanEnrollment, error) {
	const q = `
		UPDATE plan_enrollments
		SET status = @to,
		    amount_paid = COALESCE(@amount, amount_paid),
		    payment_method = COALESCE(@method, payment_method),
		    updated_at = now()
		WHERE id = @id AND status = @from
		RETURNING ` + enrollmentCols

	var (
		amount *float64
		method *domain.PaymentMethod
	)
	if pay != nil {
		amount = &pay.Amount
		method = &pay.Method
	}

	row := tx.QueryRow(ctx, q, pgx.NamedArgs{
		"id":     id,
		"from":   from,
		"to":     to,
		"amount": amount,
		"method": method,
	})
	result, err := scanEnrollment(row)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.PlanEnrollment{}, enrollmentGuardFailure(ctx, tx, id)
		}
		return domain.PlanEnrollment{}, concurrencyErr(err)
	}
	return result, nil
}

// enrollmentGuardFailure distinguishes a missing enrollment from one whose
// status changed under us after a guarded UPDATE matched no row.
func enrollmentGuardFailure(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	var status domain.EnrollmentStatus
	err := tx.QueryRow(ctx, `SELECT status FROM plan_enrollments WHERE id = @id`, pgx.NamedArgs{"id": id}).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return concurrencyErr(err)
	}
	return fmt.Errorf("%w: enrollment is %s", domain.ErrInvalidTransition, status)
}

// scanEnrollment maps a single database row into a domain.PlanEnrollment.
func scanEnrollment(s scanner) (domain.PlanEnrollment, error) {
	var (
		e       domain.PlanEnrollment
		id      pgtype.UUID
		planID  pgtype.UUID
		userID  pgtype.UUID
		start   pgtype.Date
		end     pgtype.Date
		amount  pgtype.Float8
		method  pgtype.Text
	)

	err := s.Scan(&id, &planID, &userID, &e.Status, &e.EnrolledAt, &start, &end,
		&e.Participants, &amount, &method, &e.SpecialRequirements, &e.Comments,
		&e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.PlanEnrollment{}, domain.ErrNotFound
		}
		return domain.PlanEnrollment{}, err
	}

	e.ID = uuid.UUID(id.Bytes)
	e.PlanID = uuid.UUID(planID.Bytes)
	e.UserID = uuid.UUID(userID.Bytes)
	e.StartDate = start.Time
	e.EndDate = end.Time
	if amount.Valid {
		a := amount.Float64
		e.AmountPaid = &a
	}
	if method.Valid {
		m := domain.PaymentMethod(method.String)
		e.PaidWith = &m
	}
	return e, nil
}
