package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ecanovas/tourbook/internal/domain"
	"github.com/ecanovas/tourbook/internal/repo"
)

// ReservationService implements the reservation aggregate's business
// logic: the cart lifecycle, capacity-checked booking inserts, checkout
// code assignment, and the cascading state machine.
type ReservationService struct {
	reservations repo.ReservationRepo
	bookings     repo.BookingRepo
	catalog      repo.CatalogRepo
	opts         Options
}

// NewReservationService constructs a ReservationService backed by the
// provided repos.
func NewReservationService(reservations repo.ReservationRepo, bookings repo.BookingRepo, catalog repo.CatalogRepo, opts Options) *ReservationService {
	return &ReservationService{
		reservations: reservations,
		bookings:     bookings,
		catalog:      catalog,
		opts:         opts.withDefaults(),
	}
}

// Create opens a new empty reservation in CART state for the user.
func (s *ReservationService) Create(ctx context.Context, userID uuid.UUID, notes string) (domain.Reservation, error) {
	if userID == uuid.Nil {
		return domain.Reservation{}, fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	result, err := s.reservations.Create(ctx, domain.Reservation{UserID: userID, Notes: notes})
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Create: %w", err)
	}
	return result, nil
}

// GetByID returns a single reservation by ID.
func (s *ReservationService) GetByID(ctx context.Context, id uuid.UUID) (domain.Reservation, error) {
	result, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.GetByID: %w", err)
	}
	return result, nil
}

// ListByUser returns the user's reservations, newest first.
// Always returns a non-nil slice so callers can safely range over it.
func (s *ReservationService) ListByUser(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Reservation, int64, error) {
	out, total, err := s.reservations.ListByUser(ctx, userID, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.ReservationService.ListByUser: %w", err)
	}
	if out == nil {
		out = []domain.Reservation{}
	}
	return out, total, nil
}

// Bookings returns all line items of a reservation.
// Always returns a non-nil slice so callers can safely range over it.
func (s *ReservationService) Bookings(ctx context.Context, reservationID uuid.UUID) ([]domain.ServiceBooking, error) {
	if _, err := s.reservations.GetByID(ctx, reservationID); err != nil {
		return nil, fmt.Errorf("service.ReservationService.Bookings: %w", err)
	}
	out, err := s.bookings.ListByReservation(ctx, reservationID)
	if err != nil {
		return nil, fmt.Errorf("service.ReservationService.Bookings: %w", err)
	}
	if out == nil {
		out = []domain.ServiceBooking{}
	}
	return out, nil
}

// AddBooking validates a requested service booking and inserts it with an
// atomic capacity check. The booking inherits the reservation's current
// status; provider and unit price are denormalized from the catalog at
// this moment.
// Returns domain.ErrCapacityExceeded when the service is full for the
// window and domain.ErrInvalidTransition when the reservation can no
// longer accept line items.
func (s *ReservationService) AddBooking(ctx context.Context, reservationID, serviceID uuid.UUID, w domain.TimeWindow, quantity int, clientNotes string) (domain.ServiceBooking, error) {
	res, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return domain.ServiceBooking{}, fmt.Errorf("service.ReservationService.AddBooking: %w", err)
	}
	if res.Status != domain.StatusCart && res.Status != domain.StatusPending {
		return domain.ServiceBooking{}, fmt.Errorf("%w: cannot add bookings to a %s reservation", domain.ErrInvalidTransition, res.Status)
	}

	svc, err := s.catalog.GetService(ctx, serviceID)
	if err != nil {
		return domain.ServiceBooking{}, fmt.Errorf("service.ReservationService.AddBooking: %w", err)
	}

	if err := w.Validate(); err != nil {
		return domain.ServiceBooking{}, err
	}
	if quantity < 1 {
		return domain.ServiceBooking{}, fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
	}

	booking := domain.ServiceBooking{
		ReservationID:   res.ID,
		ServiceID:       svc.ID,
		ProviderID:      svc.ProviderID,
		Window:          w,
		DurationMinutes: w.DurationMinutes(),
		Quantity:        quantity,
		UnitPrice:       svc.UnitPrice,
		Status:          res.Status,
		ClientNotes:     clientNotes,
	}

	result, err := withRetry(ctx, s.opts.TxRetryLimit, func(ctx context.Context) (domain.ServiceBooking, error) {
		return s.bookings.CreateChecked(ctx, booking)
	})
	if err != nil {
		return domain.ServiceBooking{}, fmt.Errorf("service.ReservationService.AddBooking: %w", err)
	}
	return result, nil
}

// CheckAvailability reports whether the service can absorb the requested
// quantity for the window. Pure read: two answers for the same instant can
// be stale the moment they are returned — only AddBooking's atomic check
// is authoritative.
func (s *ReservationService) CheckAvailability(ctx context.Context, serviceID uuid.UUID, w domain.TimeWindow, quantity int) error {
	svc, err := s.catalog.GetService(ctx, serviceID)
	if err != nil {
		return fmt.Errorf("service.ReservationService.CheckAvailability: %w", err)
	}
	if err := w.Validate(); err != nil {
		return err
	}
	if quantity < 1 {
		return fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
	}

	occupied, err := s.bookings.SumOverlapping(ctx, serviceID, w)
	if err != nil {
		return fmt.Errorf("service.ReservationService.CheckAvailability: %w", err)
	}
	if occupied+quantity > svc.Capacity {
		return fmt.Errorf("%w: %d occupied + %d requested > capacity %d",
			domain.ErrCapacityExceeded, occupied, quantity, svc.Capacity)
	}
	return nil
}

// Checkout moves a CART reservation to PENDING and assigns its unique
// code. Code collisions are retried with fresh random digits up to the
// configured ceiling; hitting the ceiling returns domain.ErrCodeExhausted,
// which callers should treat as fatal.
func (s *ReservationService) Checkout(ctx context.Context, reservationID uuid.UUID) (domain.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Checkout: %w", err)
	}
	if res.Status != domain.StatusCart {
		return domain.Reservation{}, fmt.Errorf("%w: reservation is %s", domain.ErrInvalidTransition, res.Status)
	}
	if err := s.requireActiveBookings(ctx, reservationID); err != nil {
		return domain.Reservation{}, err
	}

	for attempt := 0; attempt < s.opts.CodeRetryLimit; attempt++ {
		code := domain.NewReservationCode(s.opts.IntN, s.opts.Now())
		result, err := withRetry(ctx, s.opts.TxRetryLimit, func(ctx context.Context) (domain.Reservation, error) {
			return s.reservations.Checkout(ctx, reservationID, code)
		})
		if errors.Is(err, domain.ErrCodeTaken) {
			continue
		}
		if err != nil {
			return domain.Reservation{}, fmt.Errorf("service.ReservationService.Checkout: %w", err)
		}
		return result, nil
	}

	return domain.Reservation{}, fmt.Errorf("service.ReservationService.Checkout: %w after %d attempts",
		domain.ErrCodeExhausted, s.opts.CodeRetryLimit)
}

// Transition moves a reservation to the target status, cascading the new
// status to all non-cancelled bookings atomically. PENDING is reached only
// through Checkout, never through Transition.
//
// Confirmation requires at least one active booking. Completion, when the
// RequireElapsedOnComplete policy is on, requires every active booking's
// date range to have elapsed.
func (s *ReservationService) Transition(ctx context.Context, reservationID uuid.UUID, target domain.ReservationStatus) (domain.Reservation, error) {
	if !target.Valid() {
		return domain.Reservation{}, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, target)
	}
	if target == domain.StatusPending {
		return domain.Reservation{}, fmt.Errorf("%w: PENDING is assigned by checkout", domain.ErrInvalidTransition)
	}

	res, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Transition: %w", err)
	}
	if !res.Status.CanTransitionTo(target) {
		return domain.Reservation{}, fmt.Errorf("%w: %s → %s", domain.ErrInvalidTransition, res.Status, target)
	}

	switch target {
	case domain.StatusConfirmed:
		if err := s.requireActiveBookings(ctx, reservationID); err != nil {
			return domain.Reservation{}, err
		}
	case domain.StatusCompleted:
		if s.opts.RequireElapsedOnComplete {
			if err := s.requireElapsed(ctx, reservationID); err != nil {
				return domain.Reservation{}, err
			}
		}
	}

	result, err := withRetry(ctx, s.opts.TxRetryLimit, func(ctx context.Context) (domain.Reservation, error) {
		return s.reservations.Transition(ctx, reservationID, res.Status, target)
	})
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Transition: %w", err)
	}
	return result, nil
}

// CancelBooking cancels a single line item. The parent reservation is left
// untouched: cancelling a booking never cancels the reservation.
func (s *ReservationService) CancelBooking(ctx context.Context, reservationID, bookingID uuid.UUID) (domain.ServiceBooking, error) {
	result, err := withRetry(ctx, s.opts.TxRetryLimit, func(ctx context.Context) (domain.ServiceBooking, error) {
		return s.bookings.Cancel(ctx, reservationID, bookingID)
	})
	if err != nil {
		return domain.ServiceBooking{}, fmt.Errorf("service.ReservationService.CancelBooking: %w", err)
	}
	return result, nil
}

// requireActiveBookings fails with ErrInvalidTransition when the
// reservation holds no non-cancelled booking: an empty reservation can be
// neither checked out nor confirmed.
func (s *ReservationService) requireActiveBookings(ctx context.Context, reservationID uuid.UUID) error {
	bookings, err := s.bookings.ListByReservation(ctx, reservationID)
	if err != nil {
		return fmt.Errorf("service.ReservationService: list bookings: %w", err)
	}
	for _, b := range bookings {
		if b.Active() {
			return nil
		}
	}
	return fmt.Errorf("%w: reservation has no active bookings", domain.ErrInvalidTransition)
}

// requireElapsed fails with ErrInvalidTransition when any active booking's
// date range still lies in the future relative to the injected clock.
func (s *ReservationService) requireElapsed(ctx context.Context, reservationID uuid.UUID) error {
	bookings, err := s.bookings.ListByReservation(ctx, reservationID)
	if err != nil {
		return fmt.Errorf("service.ReservationService: list bookings: %w", err)
	}
	now := s.opts.Now()
	for _, b := range bookings {
		if b.Active() && !b.Window.Dates.ElapsedBy(now) {
			return fmt.Errorf("%w: booking %s has not elapsed", domain.ErrInvalidTransition, b.ID)
		}
	}
	return nil
}
