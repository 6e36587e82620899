package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ecanovas/tourbook/internal/domain"
)

// CreateReservation handles POST /reservations.
// New reservations start in CART with no code.
func (s *Server) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID uuid.UUID `json:"user_id"`
		Notes  string    `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		requestError(w, "invalid request body")
		return
	}

	created, err := s.reservations.Create(r.Context(), req.UserID, req.Notes)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// GetReservation handles GET /reservations/{id}.
func (s *Server) GetReservation(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		requestError(w, err.Error())
		return
	}

	res, err := s.reservations.GetByID(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// ListReservations handles GET /reservations?user_id=&page=&limit=.
func (s *Server) ListReservations(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.URL.Query().Get("user_id"))
	if err != nil {
		requestError(w, "user_id query parameter is required and must be a UUID")
		return
	}

	params := queryPagination(r)
	reservations, total, err := s.reservations.ListByUser(r.Context(), userID, params)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, struct {
		Data       []domain.Reservation `json:"data"`
		Pagination pagination           `json:"pagination"`
	}{
		Data:       reservations,
		Pagination: pagination{Page: params.Page, Limit: params.Limit, Total: int(total)},
	})
}

// AddBooking handles POST /reservations/{id}/bookings.
func (s *Server) AddBooking(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		requestError(w, err.Error())
		return
	}

	var req struct {
		ServiceID   uuid.UUID `json:"service_id"`
		StartDate   string    `json:"start_date"`
		EndDate     string    `json:"end_date"`
		StartTime   string    `json:"start_time"`
		EndTime     string    `json:"end_time"`
		Quantity    int       `json:"quantity"`
		ClientNotes string    `json:"client_notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		requestError(w, "invalid request body")
		return
	}

	window, err := windowFromStrings(req.StartDate, req.EndDate, req.StartTime, req.EndTime)
	if err != nil {
		requestError(w, err.Error())
		return
	}

	booking, err := s.reservations.AddBooking(r.Context(), id, req.ServiceID, window, req.Quantity, req.ClientNotes)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, bookingToResponse(booking))
}

// ListBookings handles GET /reservations/{id}/bookings.
func (s *Server) ListBookings(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		requestError(w, err.Error())
		return
	}

	bookings, err := s.reservations.Bookings(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	data := make([]bookingResponse, len(bookings))
	for i, b := range bookings {
		data[i] = bookingToResponse(b)
	}
	respondJSON(w, http.StatusOK, data)
}

// CancelBooking handles DELETE /reservations/{id}/bookings/{bookingID}.
// The booking is cancelled, never hard-deleted; its capacity is released.
func (s *Server) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		requestError(w, err.Error())
		return
	}
	bookingID, err := parseUUIDParam(r, "bookingID")
	if err != nil {
		requestError(w, err.Error())
		return
	}

	booking, err := s.reservations.CancelBooking(r.Context(), id, bookingID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, bookingToResponse(booking))
}

// Checkout handles POST /reservations/{id}/checkout.
// Moves CART → PENDING and assigns the unique reservation code.
func (s *Server) Checkout(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		requestError(w, err.Error())
		return
	}

	res, err := s.reservations.Checkout(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// TransitionReservation handles POST /reservations/{id}/status.
func (s *Server) TransitionReservation(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		requestError(w, err.Error())
		return
	}

	var req struct {
		Status domain.ReservationStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		requestError(w, "invalid request body")
		return
	}

	res, err := s.reservations.Transition(r.Context(), id, req.Status)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// CheckAvailability handles GET /services/{id}/availability.
// Query params: start_date, end_date (optional), start_time, end_time,
// quantity. Responds 200 {"available":true} or 409 when the window is full.
func (s *Server) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		requestError(w, err.Error())
		return
	}

	q := r.URL.Query()
	window, err := windowFromStrings(q.Get("start_date"), q.Get("end_date"), q.Get("start_time"), q.Get("end_time"))
	if err != nil {
		requestError(w, err.Error())
		return
	}
	quantity := 1
	if v := q.Get("quantity"); v != "" {
		if quantity, err = parsePositiveInt("quantity", v); err != nil {
			requestError(w, err.Error())
			return
		}
	}

	if err := s.reservations.CheckAvailability(r.Context(), id, window, quantity); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"available": true})
}

// --- mapping helpers --------------------------------------------------------

// bookingResponse is the wire shape of a service booking. Dates are
// "2006-01-02" strings, times of day "15:04".
type bookingResponse struct {
	ID              uuid.UUID                `json:"id"`
	ReservationID   uuid.UUID                `json:"reservation_id"`
	ServiceID       uuid.UUID                `json:"service_id"`
	ProviderID      uuid.UUID                `json:"provider_id"`
	StartDate       string                   `json:"start_date"`
	EndDate         *string                  `json:"end_date,omitempty"`
	StartTime       string                   `json:"start_time"`
	EndTime         string                   `json:"end_time"`
	DurationMinutes int                      `json:"duration_minutes"`
	Quantity        int                      `json:"quantity"`
	UnitPrice       float64                  `json:"unit_price"`
	Status          domain.ReservationStatus `json:"status"`
	ClientNotes     string                   `json:"client_notes,omitempty"`
	ProviderNotes   string                   `json:"provider_notes,omitempty"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

func bookingToResponse(b domain.ServiceBooking) bookingResponse {
	resp := bookingResponse{
		ID:              b.ID,
		ReservationID:   b.ReservationID,
		ServiceID:       b.ServiceID,
		ProviderID:      b.ProviderID,
		StartDate:       b.Window.Dates.Start.Format(dateLayout),
		StartTime:       b.Window.StartTime.String(),
		EndTime:         b.Window.EndTime.String(),
		DurationMinutes: b.DurationMinutes,
		Quantity:        b.Quantity,
		UnitPrice:       b.UnitPrice,
		Status:          b.Status,
		ClientNotes:     b.ClientNotes,
		ProviderNotes:   b.ProviderNotes,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
	if b.Window.Dates.End != nil {
		ed := b.Window.Dates.End.Format(dateLayout)
		resp.EndDate = &ed
	}
	return resp
}
