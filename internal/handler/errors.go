package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ecanovas/tourbook/internal/domain"
)

// errorResponse is the JSON envelope for every non-2xx body.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondJSON writes data as a JSON body with the given status. A nil data
// writes only the status line.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		//nolint:errcheck — nothing useful to do once the header is written.
		json.NewEncoder(w).Encode(data)
	}
}

// respondError writes an errorResponse envelope.
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: errorDetail{Code: code, Message: message}})
}

// respondDomainError maps a service-layer error onto the HTTP error
// taxonomy. Unknown errors are logged and become an opaque 500.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, "not_found", unwrapMessage(err))
	case errors.Is(err, domain.ErrValidation):
		respondError(w, http.StatusUnprocessableEntity, "validation_error", unwrapMessage(err))
	case errors.Is(err, domain.ErrIncompleteItinerary):
		respondError(w, http.StatusUnprocessableEntity, "incomplete_itinerary", unwrapMessage(err))
	case errors.Is(err, domain.ErrInvalidTransition):
		respondError(w, http.StatusConflict, "invalid_transition", unwrapMessage(err))
	case errors.Is(err, domain.ErrCapacityExceeded):
		respondError(w, http.StatusConflict, "capacity_exceeded", unwrapMessage(err))
	case errors.Is(err, domain.ErrPaymentBeforeConfirmation):
		respondError(w, http.StatusConflict, "payment_before_confirmation", unwrapMessage(err))
	case errors.Is(err, domain.ErrConflict):
		respondError(w, http.StatusServiceUnavailable, "conflict", "the resource was modified concurrently, retry the request")
	case errors.Is(err, domain.ErrCodeExhausted):
		respondError(w, http.StatusServiceUnavailable, "code_generation_exhausted", "could not assign a reservation code, retry later")
	default:
		slog.ErrorContext(r.Context(), "internal error", "error", err, "path", r.URL.Path)
		respondError(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}

// requestError writes a 400 for a request rejected before reaching the
// service layer (malformed body, bad UUID, unparseable date).
func requestError(w http.ResponseWriter, message string) {
	respondError(w, http.StatusBadRequest, "bad_request", message)
}

// unwrapMessage strips "service.X.Y: " and "repo.X.Y: " call-site prefixes
// from a wrapped sentinel error, leaving the human-readable part.
// e.g. "service.PlanService.Create: validation error: name is required"
// → "validation error: name is required".
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for {
		i := strings.Index(msg, ": ")
		if i < 0 {
			return msg
		}
		head := msg[:i]
		if !strings.Contains(head, ".") || strings.Contains(head, " ") {
			return msg
		}
		msg = msg[i+2:]
	}
}
