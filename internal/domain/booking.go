package domain

import (
	"time"

	"github.com/google/uuid"
)

// ServiceBooking is a single service line item owned by exactly one
// Reservation. It never outlives its parent: cancelling a reservation
// cancels all of its bookings atomically. The provider reference and unit
// price are denormalized from the catalog service at booking time so later
// catalog edits do not rewrite history.
type ServiceBooking struct {
	ID              uuid.UUID         `json:"id"`
	ReservationID   uuid.UUID         `json:"reservation_id"`
	ServiceID       uuid.UUID         `json:"service_id"`
	ProviderID      uuid.UUID         `json:"provider_id"`
	Window          TimeWindow        `json:"window"`
	DurationMinutes int               `json:"duration_minutes"`
	Quantity        int               `json:"quantity"` // party size
	UnitPrice       float64           `json:"unit_price"`
	Status          ReservationStatus `json:"status"`
	ClientNotes     string            `json:"client_notes,omitempty"`
	ProviderNotes   string            `json:"provider_notes,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// Active reports whether the booking still occupies capacity.
// Only cancelled bookings release their quantity.
func (b ServiceBooking) Active() bool {
	return b.Status != StatusCancelled
}

// LineTotal returns the booking's contribution to the reservation total.
func (b ServiceBooking) LineTotal() float64 {
	return float64(b.Quantity) * b.UnitPrice
}
