package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/ecanovas/tourbook/internal/domain"
)

// ExportRepo produces the flat denormalized export of reservations and
// their bookings. Kept separate from the entity repos because its single
// query spans four tables and returns a view, not an aggregate.
type ExportRepo interface {
	// Rows returns one row per booking with reservation fields repeated,
	// plus one row per bookingless reservation, ordered by reservation
	// creation time.
	Rows(ctx context.Context) ([]domain.ExportRow, error)
}

// pgExportRepo is the Postgres implementation of ExportRepo.
type pgExportRepo struct {
	db db
}

// NewExportRepo constructs an ExportRepo backed by the provided db
// connection.
func NewExportRepo(db db) ExportRepo {
	return &pgExportRepo{db: db}
}

func (r *pgExportRepo) Rows(ctx context.Context) ([]domain.ExportRow, error) {
	const q = `
		SELECT r.id, r.code, r.user_id, r.status, r.total_amount,
		       s.name, p.name, b.start_date, b.end_date,
		       b.start_time, b.end_time, b.quantity, b.unit_price, b.status
		FROM reservations r
		LEFT JOIN service_bookings b ON b.reservation_id = r.id
		LEFT JOIN services s ON s.id = b.service_id
		LEFT JOIN providers p ON p.id = b.provider_id
		ORDER BY r.created_at, b.start_date, b.start_time`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.ExportRepo.Rows: %w", err)
	}
	defer rows.Close()

	var out []domain.ExportRow
	for rows.Next() {
		var (
			row           domain.ExportRow
			resID, userID pgtype.UUID
			code          pgtype.Text
			svcName       pgtype.Text
			provName      pgtype.Text
			startDate     pgtype.Date
			endDate       pgtype.Date
			startTime     pgtype.Int4
			endTime       pgtype.Int4
			quantity      pgtype.Int4
			unitPrice     pgtype.Float8
			bStatus       pgtype.Text
		)
		err := rows.Scan(&resID, &code, &userID, &row.Status, &row.TotalAmount,
			&svcName, &provName, &startDate, &endDate,
			&startTime, &endTime, &quantity, &unitPrice, &bStatus)
		if err != nil {
			return nil, fmt.Errorf("repo.ExportRepo.Rows: scan: %w", err)
		}

		row.ReservationID = uuidString(resID)
		row.ReservationUser = uuidString(userID)
		if code.Valid {
			row.ReservationCode = code.String
		}
		row.ServiceName = svcName.String
		row.ProviderName = provName.String
		if startDate.Valid {
			row.StartDate = startDate.Time.Format("2006-01-02")
		}
		if endDate.Valid {
			row.EndDate = endDate.Time.Format("2006-01-02")
		}
		if startTime.Valid {
			row.StartTime = domain.TimeOfDay(startTime.Int32).String()
		}
		if endTime.Valid {
			row.EndTime = domain.TimeOfDay(endTime.Int32).String()
		}
		row.Quantity = int(quantity.Int32)
		row.UnitPrice = unitPrice.Float64
		row.BookingStatus = bStatus.String

		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ExportRepo.Rows: rows: %w", err)
	}

	return out, nil
}

// uuidString formats a pgtype.UUID for export output.
func uuidString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuid.UUID(u.Bytes).String()
}
