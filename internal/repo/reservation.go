// Package repo contains all database access logic for the Tourbook API.
// Each resource has its own file with an interface and a Postgres
// implementation. No business logic lives here — only SQL, type mapping,
// and the transactional read-check-write units the booking core requires.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/ecanovas/tourbook/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows
// integration tests to pass a transaction that is rolled back after each
// test, giving free per-test isolation without any manual cleanup.
// Begin on a pgx.Tx opens a savepoint, so the transactional repo methods
// work in both cases.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan
// helpers to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// concurrencyErr maps Postgres serialization and deadlock failures onto
// domain.ErrConflict so the service layer can retry them. Other errors
// pass through unchanged.
func concurrencyErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 40001 serialization_failure, 40P01 deadlock_detected
		if pgErr.Code == "40001" || pgErr.Code == "40P01" {
			return fmt.Errorf("%w: %s", domain.ErrConflict, pgErr.Code)
		}
	}
	return err
}

// isUniqueViolation reports whether err is a unique-constraint violation on
// the named constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == constraint
}

// ReservationRepo defines the persistence operations for Reservations.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the service to be unit-tested with a mock.
type ReservationRepo interface {
	// Create inserts a new CART reservation and returns the persisted
	// record (with DB-generated id and timestamps populated).
	Create(ctx context.Context, r domain.Reservation) (domain.Reservation, error)

	// GetByID retrieves a single reservation by its UUID primary key.
	// Returns domain.ErrNotFound if no reservation with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Reservation, error)

	// ListByUser returns the user's reservations ordered by created_at
	// descending, plus the total row count for pagination.
	ListByUser(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Reservation, int64, error)

	// Checkout atomically moves a CART reservation to PENDING, assigns the
	// given code, and moves all non-cancelled child bookings to PENDING in
	// the same transaction.
	// Returns domain.ErrCodeTaken if the code is already held by another
	// reservation, domain.ErrInvalidTransition if the reservation is no
	// longer in CART, domain.ErrNotFound if it does not exist.
	Checkout(ctx context.Context, id uuid.UUID, code string) (domain.Reservation, error)

	// Transition atomically moves a reservation from one status to another
	// and cascades the new status to all non-cancelled child bookings.
	// The from status acts as a guard against concurrent transitions:
	// if the row is no longer in that status the call fails with
	// domain.ErrInvalidTransition and nothing is written.
	Transition(ctx context.Context, id uuid.UUID, from, to domain.ReservationStatus) (domain.Reservation, error)
}

// pgReservationRepo is the Postgres implementation of ReservationRepo.
type pgReservationRepo struct {
	db db
}

// NewReservationRepo constructs a ReservationRepo backed by the provided
// db connection. In production pass *pgxpool.Pool; in tests pass a pgx.Tx
// for rollback isolation.
func NewReservationRepo(db db) ReservationRepo {
	return &pgReservationRepo{db: db}
}

const reservationCols = `id, user_id, code, status, notes, total_amount, created_at, updated_at`

func (r *pgReservationRepo) Create(ctx context.Context, res domain.Reservation) (domain.Reservation, error) {
	const q = `
		INSERT INTO reservations (user_id, status, notes)
		VALUES (@user_id, @status, @notes)
		RETURNING ` + reservationCols

	args := pgx.NamedArgs{
		"user_id": res.UserID,
		"status":  domain.StatusCart,
		"notes":   res.Notes,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanReservation(row)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgReservationRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Reservation, error) {
	const q = `SELECT ` + reservationCols + ` FROM reservations WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanReservation(row)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgReservationRepo) ListByUser(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Reservation, int64, error) {
	const q = `
		SELECT ` + reservationCols + `, count(*) OVER () AS total
		FROM reservations
		WHERE user_id = @user_id
		ORDER BY created_at DESC
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{
		"user_id": userID,
		"limit":   p.Limit,
		"offset":  p.Offset(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ReservationRepo.ListByUser: %w", err)
	}
	defer rows.Close()

	var (
		out   []domain.Reservation
		total int64
	)
	for rows.Next() {
		var (
			res  domain.Reservation
			id   pgtype.UUID
			uid  pgtype.UUID
			code pgtype.Text
		)
		err := rows.Scan(&id, &uid, &code, &res.Status, &res.Notes, &res.TotalAmount,
			&res.CreatedAt, &res.UpdatedAt, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.ReservationRepo.ListByUser: scan: %w", err)
		}
		res.ID = uuid.UUID(id.Bytes)
		res.UserID = uuid.UUID(uid.Bytes)
		if code.Valid {
			c := code.String
			res.Code = &c
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.ReservationRepo.ListByUser: rows: %w", err)
	}

	return out, total, nil
}

func (r *pgReservationRepo) Checkout(ctx context.Context, id uuid.UUID, code string) (domain.Reservation, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.Checkout: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const q = `
		UPDATE reservations
		SET status = @to, code = @code, updated_at = now()
		WHERE id = @id AND status = @from
		RETURNING ` + reservationCols

	row := tx.QueryRow(ctx, q, pgx.NamedArgs{
		"id":   id,
		"from": domain.StatusCart,
		"to":   domain.StatusPending,
		"code": code,
	})
	result, err := scanReservation(row)
	if err != nil {
		if isUniqueViolation(err, "reservations_code_key") {
			return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.Checkout: %w", domain.ErrCodeTaken)
		}
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.Checkout: %w", r.guardFailure(ctx, tx, id))
		}
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.Checkout: %w", concurrencyErr(err))
	}

	if err := cascadeBookingStatus(ctx, tx, id, domain.StatusPending); err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.Checkout: %w", concurrencyErr(err))
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.Checkout: commit: %w", concurrencyErr(err))
	}
	return result, nil
}

func (r *pgReservationRepo) Transition(ctx context.Context, id uuid.UUID, from, to domain.ReservationStatus) (domain.Reservation, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.Transition: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const q = `
		UPDATE reservations
		SET status = @to, updated_at = now()
		WHERE id = @id AND status = @from
		RETURNING ` + reservationCols

	row := tx.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "from": from, "to": to})
	result, err := scanReservation(row)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.Transition: %w", r.guardFailure(ctx, tx, id))
		}
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.Transition: %w", concurrencyErr(err))
	}

	if err := cascadeBookingStatus(ctx, tx, id, to); err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.Transition: %w", concurrencyErr(err))
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.Transition: commit: %w", concurrencyErr(err))
	}
	return result, nil
}

// guardFailure distinguishes "reservation does not exist" from "reservation
// exists but its status changed under us". The guarded UPDATE matched no
// row; a concurrent transition is reported as ErrInvalidTransition because
// the requested move is no longer legal from the row's actual state.
func (r *pgReservationRepo) guardFailure(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	var status domain.ReservationStatus
	err := tx.QueryRow(ctx, `SELECT status FROM reservations WHERE id = @id`, pgx.NamedArgs{"id": id}).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return concurrencyErr(err)
	}
	return fmt.Errorf("%w: reservation is %s", domain.ErrInvalidTransition, status)
}

// cascadeBookingStatus moves every non-cancelled child booking to the
// reservation's new status. Cancelled bookings stay cancelled.
func cascadeBookingStatus(ctx context.Context, tx pgx.Tx, reservationID uuid.UUID, to domain.ReservationStatus) error {
	_, err := tx.Exec(ctx, `
		UPDATE service_bookings
		SET status = @to, updated_at = now()
		WHERE reservation_id = @reservation_id AND status <> @cancelled`,
		pgx.NamedArgs{
			"reservation_id": reservationID,
			"to":             to,
			"cancelled":      domain.StatusCancelled,
		})
	return err
}

// scanReservation maps a single database row into a domain.Reservation.
// It handles the UUID and nullable code conversions.
func scanReservation(s scanner) (domain.Reservation, error) {
	var (
		res  domain.Reservation
		id   pgtype.UUID
		uid  pgtype.UUID
		code pgtype.Text
	)

	err := s.Scan(&id, &uid, &code, &res.Status, &res.Notes, &res.TotalAmount,
		&res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Reservation{}, domain.ErrNotFound
		}
		return domain.Reservation{}, err
	}

	res.ID = uuid.UUID(id.Bytes)
	res.UserID = uuid.UUID(uid.Bytes)
	if code.Valid {
		c := code.String
		res.Code = &c
	}
	return res, nil
}
