package domain

import (
	"time"

	"github.com/google/uuid"
)

// EnrollmentStatus is the lifecycle state of a plan enrollment.
type EnrollmentStatus string

const (
	EnrollmentPending    EnrollmentStatus = "PENDING"
	EnrollmentConfirmed  EnrollmentStatus = "CONFIRMED"
	EnrollmentInProgress EnrollmentStatus = "IN_PROGRESS"
	EnrollmentCompleted  EnrollmentStatus = "COMPLETED"
	EnrollmentCancelled  EnrollmentStatus = "CANCELLED"
)

// Valid reports whether s is a known enrollment status.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentPending, EnrollmentConfirmed, EnrollmentInProgress,
		EnrollmentCompleted, EnrollmentCancelled:
		return true
	}
	return false
}

// enrollmentTransitions is the explicit transition table for enrollments.
// CANCELLED is reachable only before the plan starts (PENDING or
// CONFIRMED); COMPLETED and CANCELLED are terminal.
var enrollmentTransitions = map[EnrollmentStatus][]EnrollmentStatus{
	EnrollmentPending:    {EnrollmentConfirmed, EnrollmentCancelled},
	EnrollmentConfirmed:  {EnrollmentInProgress, EnrollmentCancelled},
	EnrollmentInProgress: {EnrollmentCompleted},
}

// CanTransitionTo reports whether the state machine lists the move s → next.
func (s EnrollmentStatus) CanTransitionTo(next EnrollmentStatus) bool {
	for _, allowed := range enrollmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// AtLeastConfirmed reports whether s has reached CONFIRMED in the lifecycle.
// Payments may only be recorded at or after this point.
func (s EnrollmentStatus) AtLeastConfirmed() bool {
	switch s {
	case EnrollmentConfirmed, EnrollmentInProgress, EnrollmentCompleted:
		return true
	}
	return false
}

// PaymentMethod tags how an enrollment was paid. No gateway integration
// exists; the tag and amount are recorded for bookkeeping only.
type PaymentMethod string

const (
	PayCash     PaymentMethod = "CASH"
	PayTransfer PaymentMethod = "TRANSFER"
	PayCard     PaymentMethod = "CARD"
	PayWalletA  PaymentMethod = "WALLET_A"
	PayWalletB  PaymentMethod = "WALLET_B"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PayCash, PayTransfer, PayCard, PayWalletA, PayWalletB:
		return true
	}
	return false
}

// Payment records the amount paid for an enrollment and how it was paid.
type Payment struct {
	Amount float64       `json:"amount"`
	Method PaymentMethod `json:"method"`
}

// PlanEnrollment binds a user to a plan for a date range. It is an
// independent aggregate: enrollments never touch the reservation cart.
//
// AmountPaid and PaidWith are nil until the enrollment reaches CONFIRMED.
type PlanEnrollment struct {
	ID                  uuid.UUID        `json:"id"`
	PlanID              uuid.UUID        `json:"plan_id"`
	UserID              uuid.UUID        `json:"user_id"`
	Status              EnrollmentStatus `json:"status"`
	EnrolledAt          time.Time        `json:"enrolled_at"`
	StartDate           time.Time        `json:"start_date"`
	EndDate             time.Time        `json:"end_date"`
	Participants        int              `json:"participants"`
	AmountPaid          *float64         `json:"amount_paid,omitempty"`
	PaidWith            *PaymentMethod   `json:"paid_with,omitempty"`
	SpecialRequirements string           `json:"special_requirements,omitempty"`
	Comments            string           `json:"comments,omitempty"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

// Active reports whether the enrollment still occupies plan capacity.
func (e PlanEnrollment) Active() bool {
	return e.Status != EnrollmentCancelled
}

// Overlaps reports whether two enrollments share at least one calendar
// date. Both date ranges are inclusive.
func (e PlanEnrollment) Overlaps(o PlanEnrollment) bool {
	return !e.StartDate.After(o.EndDate) && !o.StartDate.After(e.EndDate)
}
