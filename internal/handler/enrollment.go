package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ecanovas/tourbook/internal/domain"
)

// CreateEnrollment handles POST /plans/{id}/enrollments.
// Enrollments start in PENDING; the capacity check runs at confirmation.
func (s *Server) CreateEnrollment(w http.ResponseWriter, r *http.Request) {
	planID, err := parseUUIDParam(r, "id")
	if err != nil {
		requestError(w, err.Error())
		return
	}

	var req struct {
		UserID              uuid.UUID `json:"user_id"`
		StartDate           string    `json:"start_date"`
		EndDate             string    `json:"end_date"`
		Participants        int       `json:"participants"`
		SpecialRequirements string    `json:"special_requirements"`
		Comments            string    `json:"comments"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		requestError(w, "invalid request body")
		return
	}

	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		requestError(w, err.Error())
		return
	}
	end, err := parseDate("end_date", req.EndDate)
	if err != nil {
		requestError(w, err.Error())
		return
	}

	created, err := s.enrollments.Enroll(r.Context(), req.UserID, planID, domain.PlanEnrollment{
		StartDate:           start,
		EndDate:             end,
		Participants:        req.Participants,
		SpecialRequirements: req.SpecialRequirements,
		Comments:            req.Comments,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, enrollmentToResponse(created))
}

// ListEnrollments handles GET /plans/{id}/enrollments.
func (s *Server) ListEnrollments(w http.ResponseWriter, r *http.Request) {
	planID, err := parseUUIDParam(r, "id")
	if err != nil {
		requestError(w, err.Error())
		return
	}

	enrollments, err := s.enrollments.ListByPlan(r.Context(), planID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	data := make([]enrollmentResponse, len(enrollments))
	for i, e := range enrollments {
		data[i] = enrollmentToResponse(e)
	}
	respondJSON(w, http.StatusOK, data)
}

// GetEnrollment handles GET /enrollments/{id}.
func (s *Server) GetEnrollment(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		requestError(w, err.Error())
		return
	}

	e, err := s.enrollments.GetByID(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, enrollmentToResponse(e))
}

// TransitionEnrollment handles POST /enrollments/{id}/status.
// A payment may only accompany the move to CONFIRMED or a later state.
func (s *Server) TransitionEnrollment(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		requestError(w, err.Error())
		return
	}

	var req struct {
		Status  domain.EnrollmentStatus `json:"status"`
		Payment *domain.Payment         `json:"payment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		requestError(w, "invalid request body")
		return
	}

	e, err := s.enrollments.Transition(r.Context(), id, req.Status, req.Payment)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, enrollmentToResponse(e))
}

// --- mapping helpers --------------------------------------------------------

// enrollmentResponse is the wire shape of an enrollment with "2006-01-02"
// date strings.
type enrollmentResponse struct {
	ID                  uuid.UUID               `json:"id"`
	PlanID              uuid.UUID               `json:"plan_id"`
	UserID              uuid.UUID               `json:"user_id"`
	Status              domain.EnrollmentStatus `json:"status"`
	EnrolledAt          time.Time               `json:"enrolled_at"`
	StartDate           string                  `json:"start_date"`
	EndDate             string                  `json:"end_date"`
	Participants        int                     `json:"participants"`
	AmountPaid          *float64                `json:"amount_paid,omitempty"`
	PaidWith            *domain.PaymentMethod   `json:"paid_with,omitempty"`
	SpecialRequirements string                  `json:"special_requirements,omitempty"`
	Comments            string                  `json:"comments,omitempty"`
	UpdatedAt           time.Time               `json:"updated_at"`
}

func enrollmentToResponse(e domain.PlanEnrollment) enrollmentResponse {
	return enrollmentResponse{
		ID:                  e.ID,
		PlanID:              e.PlanID,
		UserID:              e.UserID,
		Status:              e.Status,
		EnrolledAt:          e.EnrolledAt,
		StartDate:           e.StartDate.Format(dateLayout),
		EndDate:             e.EndDate.Format(dateLayout),
		Participants:        e.Participants,
		AmountPaid:          e.AmountPaid,
		PaidWith:            e.PaidWith,
		SpecialRequirements: e.SpecialRequirements,
		Comments:            e.Comments,
		UpdatedAt:           e.UpdatedAt,
	}
}
