// Package handler implements the HTTP handlers for the Tourbook API.
// All handlers are methods on Server. Methods are split into
// domain-specific files (health.go, reservation.go, etc.) but all share
// the same Server struct so they can access its dependencies.
package handler

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ecanovas/tourbook/internal/domain"
)

// ReservationServicer defines the business operations the reservation
// handlers depend on. Defining the interface here (in the consumer
// package) follows the Go convention: "accept interfaces, return concrete
// types". It lets handler tests inject a mock without touching the
// database or service layer.
type ReservationServicer interface {
	Create(ctx context.Context, userID uuid.UUID, notes string) (domain.Reservation, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Reservation, error)
	ListByUser(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Reservation, int64, error)
	Bookings(ctx context.Context, reservationID uuid.UUID) ([]domain.ServiceBooking, error)
	AddBooking(ctx context.Context, reservationID, serviceID uuid.UUID, w domain.TimeWindow, quantity int, clientNotes string) (domain.ServiceBooking, error)
	CheckAvailability(ctx context.Context, serviceID uuid.UUID, w domain.TimeWindow, quantity int) error
	Checkout(ctx context.Context, reservationID uuid.UUID) (domain.Reservation, error)
	Transition(ctx context.Context, reservationID uuid.UUID, target domain.ReservationStatus) (domain.Reservation, error)
	CancelBooking(ctx context.Context, reservationID, bookingID uuid.UUID) (domain.ServiceBooking, error)
}

// PlanServicer defines the business operations the plan handlers depend on.
type PlanServicer interface {
	Create(ctx context.Context, p domain.Plan, days []domain.PlanDay) (domain.Plan, []domain.PlanDay, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Plan, []domain.PlanDay, error)
	ListPublished(ctx context.Context, p domain.PaginationParams) ([]domain.Plan, int64, error)
	Publish(ctx context.Context, id uuid.UUID) (domain.Plan, error)
	AttachImage(ctx context.Context, owner domain.ImageOwner, url string) (domain.GalleryImage, error)
	Gallery(ctx context.Context, owner domain.ImageOwner) ([]domain.GalleryImage, error)
}

// EnrollmentServicer defines the business operations the enrollment
// handlers depend on.
type EnrollmentServicer interface {
	Enroll(ctx context.Context, userID, planID uuid.UUID, e domain.PlanEnrollment) (domain.PlanEnrollment, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.PlanEnrollment, error)
	ListByPlan(ctx context.Context, planID uuid.UUID) ([]domain.PlanEnrollment, error)
	Transition(ctx context.Context, id uuid.UUID, target domain.EnrollmentStatus, pay *domain.Payment) (domain.PlanEnrollment, error)
}

// CatalogServicer defines the catalog operations the handlers depend on.
type CatalogServicer interface {
	CreateProvider(ctx context.Context, p domain.Provider) (domain.Provider, error)
	CreateService(ctx context.Context, s domain.Service) (domain.Service, error)
	GetService(ctx context.Context, id uuid.UUID) (domain.Service, error)
	ListServices(ctx context.Context) ([]domain.Service, error)
}

// ExportServicer defines the export operation the handlers depend on.
type ExportServicer interface {
	Rows(ctx context.Context) ([]domain.ExportRow, error)
}

// Server holds the handler dependencies for all API endpoints.
// Methods are in domain-specific files but all operate on this struct.
type Server struct {
	reservations ReservationServicer
	plans        PlanServicer
	enrollments  EnrollmentServicer
	catalog      CatalogServicer
	export       ExportServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(reservations ReservationServicer, plans PlanServicer, enrollments EnrollmentServicer, catalog CatalogServicer, export ExportServicer) *Server {
	return &Server{
		reservations: reservations,
		plans:        plans,
		enrollments:  enrollments,
		catalog:      catalog,
		export:       export,
	}
}

// Routes returns the API router. Mount it at "/" in main.go.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)

	r.Post("/providers", s.CreateProvider)

	r.Route("/services", func(r chi.Router) {
		r.Post("/", s.CreateService)
		r.Get("/", s.ListServices)
		r.Get("/{id}", s.GetService)
		r.Get("/{id}/availability", s.CheckAvailability)
		r.Post("/{id}/images", s.AttachServiceImage)
		r.Get("/{id}/images", s.ServiceGallery)
	})

	r.Route("/reservations", func(r chi.Router) {
		r.Post("/", s.CreateReservation)
		r.Get("/", s.ListReservations)
		r.Get("/{id}", s.GetReservation)
		r.Post("/{id}/bookings", s.AddBooking)
		r.Get("/{id}/bookings", s.ListBookings)
		r.Delete("/{id}/bookings/{bookingID}", s.CancelBooking)
		r.Post("/{id}/checkout", s.Checkout)
		r.Post("/{id}/status", s.TransitionReservation)
	})

	r.Route("/plans", func(r chi.Router) {
		r.Post("/", s.CreatePlan)
		r.Get("/", s.ListPlans)
		r.Get("/{id}", s.GetPlan)
		r.Post("/{id}/publish", s.PublishPlan)
		r.Post("/{id}/images", s.AttachPlanImage)
		r.Get("/{id}/images", s.PlanGallery)
		r.Post("/{id}/enrollments", s.CreateEnrollment)
		r.Get("/{id}/enrollments", s.ListEnrollments)
	})

	r.Route("/enrollments", func(r chi.Router) {
		r.Get("/{id}", s.GetEnrollment)
		r.Post("/{id}/status", s.TransitionEnrollment)
	})

	r.Get("/export", s.GetExport)

	return r
}
