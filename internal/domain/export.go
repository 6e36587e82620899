package domain

// ExportRow is a single row in the full booking export.
// It is a flat, denormalized view: one row per service booking, with
// reservation fields repeated for every booking on that reservation.
// Reservations with no bookings yield one row with zero values for all
// booking fields.
type ExportRow struct {
	// Reservation fields — repeated for every booking on the reservation.
	ReservationID   string
	ReservationCode string // empty while the reservation is in CART
	ReservationUser string
	Status          string
	TotalAmount     float64

	// Booking fields — zero values when the reservation has no bookings.
	ServiceName   string
	ProviderName  string
	StartDate     string // "2006-01-02" formatted date
	EndDate       string // empty string for single-day bookings
	StartTime     string // "15:04"
	EndTime       string
	Quantity      int
	UnitPrice     float64
	BookingStatus string
}
