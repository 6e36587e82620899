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

// BookingRepo defines the persistence operations for ServiceBookings,
// including the atomic capacity-checked insert that prevents overbooking
// under concurrent requests.
type BookingRepo interface {
	// CreateChecked inserts the booking only if the service's capacity
	// admits it. In a single transaction it locks the service row,
	// sums the quantity of all non-cancelled bookings overlapping the
	// requested window, inserts iff sum+quantity <= capacity, and
	// recomputes the parent reservation's total.
	// Returns domain.ErrCapacityExceeded when the service is full for the
	// window, domain.ErrNotFound when the service does not exist, and
	// domain.ErrConflict on a serialization failure.
	CreateChecked(ctx context.Context, b domain.ServiceBooking) (domain.ServiceBooking, error)

	// GetByID retrieves a booking by ID, scoped to the given reservation.
	GetByID(ctx context.Context, reservationID, bookingID uuid.UUID) (domain.ServiceBooking, error)

	// ListByReservation returns all bookings of a reservation ordered by
	// start date ascending.
	ListByReservation(ctx context.Context, reservationID uuid.UUID) ([]domain.ServiceBooking, error)

	// Cancel marks a single booking CANCELLED and recomputes the parent
	// reservation's total in the same transaction. The parent reservation
	// itself is left untouched.
	// Returns domain.ErrInvalidTransition if the booking is already in a
	// terminal state.
	Cancel(ctx context.Context, reservationID, bookingID uuid.UUID) (domain.ServiceBooking, error)

	// SumOverlapping returns the total quantity of non-cancelled bookings
	// of the service overlapping the window. Pure read, no locks — used by
	// the side-effect-free availability check.
	SumOverlapping(ctx context.Context, serviceID uuid.UUID, w domain.TimeWindow) (int, error)
}

// pgBookingRepo is the Postgres implementation of BookingRepo.
type pgBookingRepo struct {
	db db
}

// NewBookingRepo constructs a BookingRepo backed by the provided db
// connection.
func NewBookingRepo(db db) BookingRepo {
	return &pgBookingRepo{db: db}
}

const bookingCols = `id, reservation_id, service_id, provider_id, start_date, end_date,
	start_time, end_time, duration_minutes, quantity, unit_price, status,
	client_notes, provider_notes, created_at, updated_at`

// overlapPredicate matches bookings of @service_id whose combined
// date+time span intersects the requested window: inclusive on dates,
// half-open on the daily time span. A row or request whose end_time is not
// after its start_time wraps past midnight, occupying [start, 24:00) plus
// [00:00, end) on every covered date; two wrapped spans always collide.
const overlapPredicate = `
	service_id = @service_id
	AND status <> @cancelled
	AND start_date <= @req_end_date
	AND COALESCE(end_date, start_date) >= @req_start_date
	AND CASE
		WHEN end_time <= start_time AND @req_end_time <= @req_start_time THEN TRUE
		WHEN end_time <= start_time THEN @req_start_time < end_time OR @req_end_time > start_time
		WHEN @req_end_time <= @req_start_time THEN start_time < @req_end_time OR end_time > @req_start_time
		ELSE start_time < @req_end_time AND end_time > @req_start_time
	END`

func windowArgs(serviceID uuid.UUID, w domain.TimeWindow) pgx.NamedArgs {
	return pgx.NamedArgs{
		"service_id":     serviceID,
		"cancelled":      domain.StatusCancelled,
		"req_start_date": w.Dates.Start,
		"req_end_date":   w.Dates.EndDate(),
		"req_start_time": int(w.StartTime),
		"req_end_time":   int(w.EndTime),
	}
}

func (r *pgBookingRepo) CreateChecked(ctx context.Context, b domain.ServiceBooking) (domain.ServiceBooking, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.ServiceBooking{}, fmt.Errorf("repo.BookingRepo.CreateChecked: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock the service row so concurrent capacity checks for the same
	// service serialize. The lock is held until commit, making the
	// sum-then-insert below atomic with respect to other bookings.
	var capacity int
	err = tx.QueryRow(ctx,
		`SELECT capacity FROM services WHERE id = @id FOR UPDATE`,
		pgx.NamedArgs{"id": b.ServiceID},
	).Scan(&capacity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ServiceBooking{}, fmt.Errorf("repo.BookingRepo.CreateChecked: service: %w", domain.ErrNotFound)
		}
		return domain.ServiceBooking{}, fmt.Errorf("repo.BookingRepo.CreateChecked: lock: %w", concurrencyErr(err))
	}

	var occupied int
	err = tx.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM service_bookings WHERE `+overlapPredicate,
		windowArgs(b.ServiceID, b.Window),
	).Scan(&occupied)
	if err != nil {
		return domain.ServiceBooking{}, fmt.Errorf("repo.BookingRepo.CreateChecked: sum: %w", concurrencyErr(err))
	}

	if occupied+b.Quantity > capacity {
		return domain.ServiceBooking{}, fmt.Errorf(
			"repo.BookingRepo.CreateChecked: %w: %d occupied + %d requested > capacity %d",
			domain.ErrCapacityExceeded, occupied, b.Quantity, capacity)
	}

	const q = `
		INSERT INTO service_bookings (reservation_id, service_id, provider_id,
			start_date, end_date, start_time, end_time, duration_minutes,
			quantity, unit_price, status, client_notes, provider_notes)
		VALUES (@reservation_id, @service_id, @provider_id,
			@start_date, @end_date, @start_time, @end_time, @duration_minutes,
			@quantity, @unit_price, @status, @client_notes, @provider_notes)
		RETURNING ` + bookingCols

	row := tx.QueryRow(ctx, q, pgx.NamedArgs{
		"reservation_id":   b.ReservationID,
		"service_id":       b.ServiceID,
		"provider_id":      b.ProviderID,
		"start_date":       b.Window.Dates.Start,
		"end_date":         b.Window.Dates.End, // nil becomes NULL
		"start_time":       int(b.Window.StartTime),
		"end_time":         int(b.Window.EndTime),
		"duration_minutes": b.DurationMinutes,
		"quantity":         b.Quantity,
		"unit_price":       b.UnitPrice,
		"status":           b.Status,
		"client_notes":     b.ClientNotes,
		"provider_notes":   b.ProviderNotes,
	})
	result, err := scanBooking(row)
	if err != nil {
		return domain.ServiceBooking{}, fmt.Errorf("repo.BookingRepo.CreateChecked: insert: %w", concurrencyErr(err))
	}

	if err := recomputeReservationTotal(ctx, tx, b.ReservationID); err != nil {
		return domain.ServiceBooking{}, fmt.Errorf("repo.BookingRepo.CreateChecked: total: %w", concurrencyErr(err))
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.ServiceBooking{}, fmt.Errorf("repo.BookingRepo.CreateChecked: commit: %w", concurrencyErr(err))
	}
	return result, nil
}

func (r *pgBookingRepo) GetByID(ctx context.Context, reservationID, bookingID uuid.UUID) (domain.ServiceBooking, error) {
	const q = `SELECT ` + bookingCols + `
		FROM service_bookings
		WHERE id = @id AND reservation_id = @reservation_id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": bookingID, "reservation_id": reservationID})
	result, err := scanBooking(row)
	if err != nil {
		return domain.ServiceBooking{}, fmt.Errorf("repo.BookingRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgBookingRepo) ListByReservation(ctx context.Context, reservationID uuid.UUID) ([]domain.ServiceBooking, error) {
	const q = `SELECT ` + bookingCols + `
		FROM service_bookings
		WHERE reservation_id = @reservation_id
		ORDER BY start_date, start_time`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"reservation_id": reservationID})
	if err != nil {
		return nil, fmt.Errorf("repo.BookingRepo.ListByReservation: %w", err)
	}
	defer rows.Close()

	var out []domain.ServiceBooking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.BookingRepo.ListByReservation: scan: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.BookingRepo.ListByReservation: rows: %w", err)
	}

	return out, nil
}

func (r *pgBookingRepo) Cancel(ctx context.Context, reservationID, bookingID uuid.UUID) (domain.ServiceBooking, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.ServiceBooking{}, fmt.Errorf("repo.BookingRepo.Cancel: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const q = `
		UPDATE service_bookings
		SET status = @cancelled, updated_at = now()
		WHERE id = @id AND reservation_id = @reservation_id
		  AND status IN (@cart, @pending, @confirmed)
		RETURNING ` + bookingCols

	row := tx.QueryRow(ctx, q, pgx.NamedArgs{
		"id":             bookingID,
		"reservation_id": reservationID,
		"cancelled":      domain.StatusCancelled,
		"cart":           domain.StatusCart,
		"pending":        domain.StatusPending,
		"confirmed":      domain.StatusConfirmed,
	})
	result, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ServiceBooking{}, fmt.Errorf("repo.BookingRepo.Cancel: %w", bookingGuardFailure(ctx, tx, reservationID, bookingID))
		}
		return domain.ServiceBooking{}, fmt.Errorf("repo.BookingRepo.Cancel: %w", concurrencyErr(err))
	}

	if err := recomputeReservationTotal(ctx, tx, reservationID); err != nil {
		return domain.ServiceBooking{}, fmt.Errorf("repo.BookingRepo.Cancel: total: %w", concurrencyErr(err))
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.ServiceBooking{}, fmt.Errorf("repo.BookingRepo.Cancel: commit: %w", concurrencyErr(err))
	}
	return result, nil
}

func (r *pgBookingRepo) SumOverlapping(ctx context.Context, serviceID uuid.UUID, w domain.TimeWindow) (int, error) {
	var occupied int
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM service_bookings WHERE `+overlapPredicate,
		windowArgs(serviceID, w),
	).Scan(&occupied)
	if err != nil {
		return 0, fmt.Errorf("repo.BookingRepo.SumOverlapping: %w", err)
	}
	return occupied, nil
}

// bookingGuardFailure distinguishes a missing booking from one already in a
// terminal state after a guarded UPDATE matched no row.
func bookingGuardFailure(ctx context.Context, tx pgx.Tx, reservationID, bookingID uuid.UUID) error {
	var status domain.ReservationStatus
	err := tx.QueryRow(ctx,
		`SELECT status FROM service_bookings WHERE id = @id AND reservation_id = @reservation_id`,
		pgx.NamedArgs{"id": bookingID, "reservation_id": reservationID},
	).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return concurrencyErr(err)
	}
	return fmt.Errorf("%w: booking is %s", domain.ErrInvalidTransition, status)
}

// recomputeReservationTotal rewrites the parent reservation's total as the
// sum of its non-cancelled line items. Runs inside the caller's transaction
// so the total and the line-item change commit together.
func recomputeReservationTotal(ctx context.Context, tx pgx.Tx, reservationID uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		UPDATE reservations
		SET total_amount = (
			SELECT COALESCE(SUM(quantity * unit_price), 0)
			FROM service_bookings
			WHERE reservation_id = @reservation_id AND status <> @cancelled
		), updated_at = now()
		WHERE id = @reservation_id`,
		pgx.NamedArgs{"reservation_id": reservationID, "cancelled": domain.StatusCancelled})
	return err
}

// scanBooking maps a single database row into a domain.ServiceBooking.
func scanBooking(s scanner) (domain.ServiceBooking, error) {
	var (
		b         domain.ServiceBooking
		id        pgtype.UUID
		resID     pgtype.UUID
		svcID     pgtype.UUID
		provID    pgtype.UUID
		startDate pgtype.Date
		endDate   pgtype.Date
		startTime int
		endTime   int
	)

	err := s.Scan(&id, &resID, &svcID, &provID, &startDate, &endDate,
		&startTime, &endTime, &b.DurationMinutes, &b.Quantity, &b.UnitPrice,
		&b.Status, &b.ClientNotes, &b.ProviderNotes, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ServiceBooking{}, domain.ErrNotFound
		}
		return domain.ServiceBooking{}, err
	}

	b.ID = uuid.UUID(id.Bytes)
	b.ReservationID = uuid.UUID(resID.Bytes)
	b.ServiceID = uuid.UUID(svcID.Bytes)
	b.ProviderID = uuid.UUID(provID.Bytes)
	b.Window.Dates.Start = startDate.Time
	if endDate.Valid {
		ed := endDate.Time
		b.Window.Dates.End = &ed
	}
	b.Window.StartTime = domain.TimeOfDay(startTime)
	b.Window.EndTime = domain.TimeOfDay(endTime)

	return b, nil
}
