package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, end date before start date).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrCapacityExceeded is returned when a requested booking or enrollment
// would push the occupied quantity of a service or plan over its capacity
// for an overlapping window. The resource is genuinely full; retrying the
// same request will not help.
var ErrCapacityExceeded = errors.New("capacity exceeded")

// ErrInvalidTransition is returned when a lifecycle move is requested that
// the state machine does not list (e.g. COMPLETED → CANCELLED). The
// aggregate is left exactly as it was.
var ErrInvalidTransition = errors.New("invalid state transition")

// ErrIncompleteItinerary is returned when a plan fails itinerary validation:
// duplicate or out-of-range day numbers, or a publish attempt with gaps in
// the 1..duration_days sequence.
var ErrIncompleteItinerary = errors.New("incomplete itinerary")

// ErrPaymentBeforeConfirmation is returned when a payment is recorded on an
// enrollment that has not reached CONFIRMED.
var ErrPaymentBeforeConfirmation = errors.New("payment before confirmation")

// ErrCodeExhausted is returned when reservation code generation hits its
// retry ceiling without finding a free code. This indicates a pathological
// data state (near-total code-space exhaustion) and should be treated as
// fatal by callers, not retried.
var ErrCodeExhausted = errors.New("reservation code generation exhausted")

// ErrConflict is returned when a concurrent transaction invalidated a
// read-check-write unit (serialization failure, row lock race) and the
// local retry budget ran out. Distinct from ErrCapacityExceeded so callers
// can tell "truly full" from "try again".
var ErrConflict = errors.New("concurrent update conflict")

// ErrCodeTaken is an internal signal from the repo layer that a freshly
// generated reservation code collided with an existing one. The checkout
// loop retries with new random digits; this error never escapes the
// service layer.
var ErrCodeTaken = errors.New("reservation code already taken")
