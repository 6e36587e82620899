package domain

import (
	"time"

	"github.com/google/uuid"
)

// Provider is the business offering one or more catalog services.
// Providers are managed outside the booking core; the core only reads them.
type Provider struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Service is a bookable catalog entry: a tour, activity, or accommodation
// slot with a fixed capacity. Capacity is the maximum total party size the
// service can serve across all bookings overlapping any given window.
//
// Coordinates are stored for display only; the core performs no geospatial
// computation on them.
type Service struct {
	ID          uuid.UUID `json:"id"`
	ProviderID  uuid.UUID `json:"provider_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Capacity    int       `json:"capacity"`
	UnitPrice   float64   `json:"unit_price"`
	Latitude    float64   `json:"latitude,omitempty"`
	Longitude   float64   `json:"longitude,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
