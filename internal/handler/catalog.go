package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/ecanovas/tourbook/internal/domain"
)

// CreateProvider handles POST /providers.
func (s *Server) CreateProvider(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		requestError(w, "invalid request body")
		return
	}

	created, err := s.catalog.CreateProvider(r.Context(), domain.Provider{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// CreateService handles POST /services.
func (s *Server) CreateService(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProviderID  uuid.UUID `json:"provider_id"`
		Name        string    `json:"name"`
		Description string    `json:"description"`
		Capacity    int       `json:"capacity"`
		UnitPrice   float64   `json:"unit_price"`
		Latitude    float64   `json:"latitude"`
		Longitude   float64   `json:"longitude"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		requestError(w, "invalid request body")
		return
	}

	created, err := s.catalog.CreateService(r.Context(), domain.Service{
		ProviderID:  req.ProviderID,
		Name:        req.Name,
		Description: req.Description,
		Capacity:    req.Capacity,
		UnitPrice:   req.UnitPrice,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// GetService handles GET /services/{id}.
func (s *Server) GetService(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		requestError(w, err.Error())
		return
	}

	svc, err := s.catalog.GetService(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, svc)
}

// ListServices handles GET /services.
func (s *Server) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := s.catalog.ListServices(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, services)
}
