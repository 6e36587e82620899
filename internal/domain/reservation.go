// Package domain contains the core data types for the Tourbook API.
// This package has zero SQL and is imported by every other internal
// package (repo, service, handler).
package domain

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

// ReservationStatus is the lifecycle state shared by reservations and their
// child service bookings. Bookings carry the same status set and move in
// lockstep with their parent reservation.
type ReservationStatus string

const (
	StatusCart      ReservationStatus = "CART"
	StatusPending   ReservationStatus = "PENDING"
	StatusConfirmed ReservationStatus = "CONFIRMED"
	StatusCancelled ReservationStatus = "CANCELLED"
	StatusCompleted ReservationStatus = "COMPLETED"
)

// Valid reports whether s is one of the known reservation statuses.
func (s ReservationStatus) Valid() bool {
	switch s {
	case StatusCart, StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// reservationTransitions is the explicit transition table for the
// reservation state machine. Any move not listed here is rejected with
// ErrInvalidTransition. CANCELLED and COMPLETED are terminal.
var reservationTransitions = map[ReservationStatus][]ReservationStatus{
	StatusCart:      {StatusPending, StatusCancelled},
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// CanTransitionTo reports whether the state machine lists the move s → next.
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	for _, allowed := range reservationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Reservation is the cart/booking aggregate root. It owns one or more
// ServiceBooking line items and enforces the lifecycle state machine.
//
// Code is nil only while the reservation is in CART; checkout assigns a
// globally unique code which is immutable from then on. A reservation with
// a code is never hard-deleted — cancellation is a soft terminal state.
type Reservation struct {
	ID          uuid.UUID         `json:"id"`
	UserID      uuid.UUID         `json:"user_id"`
	Code        *string           `json:"code,omitempty"`
	Status      ReservationStatus `json:"status"`
	Notes       string            `json:"notes,omitempty"`
	TotalAmount float64           `json:"total_amount"` // sum of quantity*unit_price over non-cancelled bookings
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// reservationCodeRe matches two uppercase letters, four random digits, and
// a six-digit compact date (YYMMDD).
var reservationCodeRe = regexp.MustCompile(`^[A-Z]{2}[0-9]{4}[0-9]{6}$`)

// NewReservationCode builds a human-readable reservation code: two random
// uppercase letters, four random digits, and the compact current date.
// intn is the random source (injected so tests are deterministic); it must
// behave like math/rand/v2's IntN.
func NewReservationCode(intn func(n int) int, now time.Time) string {
	buf := []byte{
		byte('A' + intn(26)),
		byte('A' + intn(26)),
		byte('0' + intn(10)),
		byte('0' + intn(10)),
		byte('0' + intn(10)),
		byte('0' + intn(10)),
	}
	return string(buf) + now.Format("060102")
}

// ValidReservationCode reports whether code matches the generated format.
func ValidReservationCode(code string) bool {
	return reservationCodeRe.MatchString(code)
}
