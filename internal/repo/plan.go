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

// PlanRepo defines the persistence operations for plans and their
// itinerary days. Days are created together with the plan in one
// transaction and are immutable afterwards.
type PlanRepo interface {
	// Create inserts the plan and all its days atomically and returns the
	// persisted records.
	Create(ctx context.Context, p domain.Plan, days []domain.PlanDay) (domain.Plan, []domain.PlanDay, error)

	// GetByID retrieves a plan by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Plan, error)

	// Days returns the plan's itinerary days ordered by display order,
	// then day number.
	Days(ctx context.Context, planID uuid.UUID) ([]domain.PlanDay, error)

	// ListPublished returns ACTIVE public plans ordered by name, plus the
	// total row count for pagination.
	ListPublished(ctx context.Context, p domain.PaginationParams) ([]domain.Plan, int64, error)

	// Publish marks the plan ACTIVE and public.
	// Returns domain.ErrNotFound if the plan does not exist.
	Publish(ctx context.Context, id uuid.UUID) (domain.Plan, error)
}

// pgPlanRepo is the Postgres implementation of PlanRepo.
type pgPlanRepo struct {
	db db
}

// NewPlanRepo constructs a PlanRepo backed by the provided db connection.
func NewPlanRepo(db db) PlanRepo {
	return &pgPlanRepo{db: db}
}

const planCols = `id, creator_id, name, description, included_items, requirements,
	packing_list, capacity, duration_days, total_price, difficulty, public,
	status, cover_image, created_at, updated_at`

const planDayCols = `id, plan_id, day_number, display_order, title, description,
	start_time, end_time, duration_minutes, notes`

func (r *pgPlanRepo) Create(ctx context.Context, p domain.Plan, days []domain.PlanDay) (domain.Plan, []domain.PlanDay, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.Plan{}, nil, fmt.Errorf("repo.PlanRepo.Create: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const q = `
		INSERT INTO plans (creator_id, name, description, included_items, requirements,
			packing_list, capacity, duration_days, total_price, difficulty, public,
			status, cover_image)
		VALUES (@creator_id, @name, @description, @included_items, @requirements,
			@packing_list, @capacity, @duration_days, @total_price, @difficulty, @public,
			@status, @cover_image)
		RETURNING ` + planCols

	row := tx.QueryRow(ctx, q, pgx.NamedArgs{
		"creator_id":     p.CreatorID,
		"name":           p.Name,
		"description":    p.Description,
		"included_items": p.IncludedItems,
		"requirements":   p.Requirements,
		"packing_list":   p.PackingList,
		"capacity":       p.Capacity,
		"duration_days":  p.DurationDays,
		"total_price":    p.TotalPrice,
		"difficulty":     p.Difficulty,
		"public":         p.Public,
		"status":         p.Status,
		"cover_image":    p.CoverImage,
	})
	plan, err := scanPlan(row)
	if err != nil {
		return domain.Plan{}, nil, fmt.Errorf("repo.PlanRepo.Create: plan: %w", err)
	}

	const dayQ = `
		INSERT INTO plan_days (plan_id, day_number, display_order, title, description,
			start_time, end_time, duration_minutes, notes)
		VALUES (@plan_id, @day_number, @display_order, @title, @description,
			@start_time, @end_time, @duration_minutes, @notes)
		RETURNING ` + planDayCols

	out := make([]domain.PlanDay, 0, len(days))
	for _, d := range days {
		row := tx.QueryRow(ctx, dayQ, pgx.NamedArgs{
			"plan_id":          plan.ID,
			"day_number":       d.DayNumber,
			"display_order":    d.DisplayOrder,
			"title":            d.Title,
			"description":      d.Description,
			"start_time":       int(d.StartTime),
			"end_time":         int(d.EndTime),
			"duration_minutes": d.DurationMinutes,
			"notes":            d.Notes,
		})
		day, err := scanPlanDay(row)
		if err != nil {
			return domain.Plan{}, nil, fmt.Errorf("repo.PlanRepo.Create: day %d: %w", d.DayNumber, err)
		}
		out = append(out, day)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Plan{}, nil, fmt.Errorf("repo.PlanRepo.Create: commit: %w", err)
	}
	return plan, out, nil
}

func (r *pgPlanRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Plan, error) {
	const q = `SELECT ` + planCols + ` FROM plans WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanPlan(row)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("repo.PlanRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgPlanRepo) Days(ctx context.Context, planID uuid.UUID) ([]domain.PlanDay, error) {
	const q = `SELECT ` + planDayCols + `
		FROM plan_days
		WHERE plan_id = @plan_id
		ORDER BY display_order, day_number`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"plan_id": planID})
	if err != nil {
		return nil, fmt.Errorf("repo.PlanRepo.Days: %w", err)
	}
	defer rows.Close()

	var out []domain.PlanDay
	for rows.Next() {
		d, err := scanPlanDay(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.PlanRepo.Days: scan: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.PlanRepo.Days: rows: %w", err)
	}

	return out, nil
}

func (r *pgPlanRepo) ListPublished(ctx context.Context, p domain.PaginationParams) ([]domain.Plan, int64, error) {
	const q = `
		SELECT ` + planCols + `, count(*) OVER () AS total
		FROM plans
		WHERE status = @active AND public
		ORDER BY name
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{
		"active": domain.PlanActive,
		"limit":  p.Limit,
		"offset": p.Offset(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.PlanRepo.ListPublished: %w", err)
	}
	defer rows.Close()

	var (
		out   []domain.Plan
		total int64
	)
	for rows.Next() {
		var (
			plan      domain.Plan
			id, owner pgtype.UUID
		)
		err := rows.Scan(&id, &owner, &plan.Name, &plan.Description, &plan.IncludedItems,
			&plan.Requirements, &plan.PackingList, &plan.Capacity, &plan.DurationDays,
			&plan.TotalPrice, &plan.Difficulty, &plan.Public, &plan.Status,
			&plan.CoverImage, &plan.CreatedAt, &plan.UpdatedAt, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.PlanRepo.ListPublished: scan: %w", err)
		}
		plan.ID = uuid.UUID(id.Bytes)
		plan.CreatorID = uuid.UUID(owner.Bytes)
		out = append(out, plan)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.PlanRepo.ListPublished: rows: %w", err)
	}

	return out, total, nil
}

func (r *pgPlanRepo) Publish(ctx context.Context, id uuid.UUID) (domain.Plan, error) {
	const q = `
		UPDATE plans
		SET status = @active, public = true, updated_at = now()
		WHERE id = @id
		RETURNING ` + planCols

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "active": domain.PlanActive})
	result, err := scanPlan(row)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("repo.PlanRepo.Publish: %w", err)
	}
	return result, nil
}

// scanPlan maps a single database row into a domain.Plan.
func scanPlan(s scanner) (domain.Plan, error) {
	var (
		plan      domain.Plan
		id, owner pgtype.UUID
	)

	err := s.Scan(&id, &owner, &plan.Name, &plan.Description, &plan.IncludedItems,
		&plan.Requirements, &plan.PackingList, &plan.Capacity, &plan.DurationDays,
		&plan.TotalPrice, &plan.Difficulty, &plan.Public, &plan.Status,
		&plan.CoverImage, &plan.CreatedAt, &plan.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Plan{}, domain.ErrNotFound
		}
		return domain.Plan{}, err
	}

	plan.ID = uuid.UUID(id.Bytes)
	plan.CreatorID = uuid.UUID(owner.Bytes)
	return plan, nil
}

// scanPlanDay maps a single database row into a domain.PlanDay.
func scanPlanDay(s scanner) (domain.PlanDay, error) {
	var (
		d          domain.PlanDay
		id, planID pgtype.UUID
		startTime  int
		endTime    int
	)

	err := s.Scan(&id, &planID, &d.DayNumber, &d.DisplayOrder, &d.Title,
		&d.Description, &startTime, &endTime, &d.DurationMinutes, &d.Notes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.PlanDay{}, domain.ErrNotFound
		}
		return domain.PlanDay{}, err
	}

	d.ID = uuid.UUID(id.Bytes)
	d.PlanID = uuid.UUID(planID.Bytes)
	d.StartTime = domain.TimeOfDay(startTime)
	d.EndTime = domain.TimeOfDay(endTime)
	return d, nil
}
