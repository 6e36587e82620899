package service_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/ecanovas/tourbook/internal/domain"
	"github.com/ecanovas/tourbook/internal/repo"
)

// Hand-written test doubles for the repo interfaces. Each method is a
// function field — set only the ones your test needs. This is idiomatic
// Go: no mock generation library required for simple cases.

type mockReservationRepo struct {
	create     func(ctx context.Context, r domain.Reservation) (domain.Reservation, error)
	getByID    func(ctx context.Context, id uuid.UUID) (domain.Reservation, error)
	listByUser func(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Reservation, int64, error)
	checkout   func(ctx context.Context, id uuid.UUID, code string) (domain.Reservation, error)
	transition func(ctx context.Context, id uuid.UUID, from, to domain.ReservationStatus) (domain.Reservation, error)
}

func (m *mockReservationRepo) Create(ctx context.Context, r domain.Reservation) (domain.Reservation, error) {
	return m.create(ctx, r)
}
func (m *mockReservationRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Reservation, error) {
	return m.getByID(ctx, id)
}
func (m *mockReservationRepo) ListByUser(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Reservation, int64, error) {
	return m.listByUser(ctx, userID, p)
}
func (m *mockReservationRepo) Checkout(ctx context.Context, id uuid.UUID, code string) (domain.Reservation, error) {
	return m.checkout(ctx, id, code)
}
func (m *mockReservationRepo) Transition(ctx context.Context, id uuid.UUID, from, to domain.ReservationStatus) (domain.Reservation, error) {
	return m.transition(ctx, id, from, to)
}

var _ repo.ReservationRepo = (*mockReservationRepo)(nil)

type mockBookingRepo struct {
	createChecked     func(ctx context.Context, b domain.ServiceBooking) (domain.ServiceBooking, error)
	getByID           func(ctx context.Context, reservationID, bookingID uuid.UUID) (domain.ServiceBooking, error)
	listByReservation func(ctx context.Context, reservationID uuid.UUID) ([]domain.ServiceBooking, error)
	cancel            func(ctx context.Context, reservationID, bookingID uuid.UUID) (domain.ServiceBooking, error)
	sumOverlapping    func(ctx context.Context, serviceID uuid.UUID, w domain.TimeWindow) (int, error)
}

func (m *mockBookingRepo) CreateChecked(ctx context.Context, b domain.ServiceBooking) (domain.ServiceBooking, error) {
	return m.createChecked(ctx, b)
}
func (m *mockBookingRepo) GetByID(ctx context.Context, reservationID, bookingID uuid.UUID) (domain.ServiceBooking, error) {
	return m.getByID(ctx, reservationID, bookingID)
}
func (m *mockBookingRepo) ListByReservation(ctx context.Context, reservationID uuid.UUID) ([]domain.ServiceBooking, error) {
	return m.listByReservation(ctx, reservationID)
}
func (m *mockBookingRepo) Cancel(ctx context.Context, reservationID, bookingID uuid.UUID) (domain.ServiceBooking, error) {
	return m.cancel(ctx, reservationID, bookingID)
}
func (m *mockBookingRepo) SumOverlapping(ctx context.Context, serviceID uuid.UUID, w domain.TimeWindow) (int, error) {
	return m.sumOverlapping(ctx, serviceID, w)
}

var _ repo.BookingRepo = (*mockBookingRepo)(nil)

type mockCatalogRepo struct {
	createProvider func(ctx context.Context, p domain.Provider) (domain.Provider, error)
	createService  func(ctx context.Context, s domain.Service) (domain.Service, error)
	getService     func(ctx context.Context, id uuid.UUID) (domain.Service, error)
	listServices   func(ctx context.Context) ([]domain.Service, error)
}

func (m *mockCatalogRepo) CreateProvider(ctx context.Context, p domain.Provider) (domain.Provider, error) {
	return m.createProvider(ctx, p)
}
func (m *mockCatalogRepo) CreateService(ctx context.Context, s domain.Service) (domain.Service, error) {
	return m.createService(ctx, s)
}
func (m *mockCatalogRepo) GetService(ctx context.Context, id uuid.UUID) (domain.Service, error) {
	return m.getService(ctx, id)
}
func (m *mockCatalogRepo) ListServices(ctx context.Context) ([]domain.Service, error) {
	return m.listServices(ctx)
}

var _ repo.CatalogRepo = (*mockCatalogRepo)(nil)

type mockPlanRepo struct {
	create        func(ctx context.Context, p domain.Plan, days []domain.PlanDay) (domain.Plan, []domain.PlanDay, error)
	getByID       func(ctx context.Context, id uuid.UUID) (domain.Plan, error)
	days          func(ctx context.Context, planID uuid.UUID) ([]domain.PlanDay, error)
	listPublished func(ctx context.Context, p domain.PaginationParams) ([]domain.Plan, int64, error)
	publish       func(ctx context.Context, id uuid.UUID) (domain.Plan, error)
}

func (m *mockPlanRepo) Create(ctx context.Context, p domain.Plan, days []domain.PlanDay) (domain.Plan, []domain.PlanDay, error) {
	return m.create(ctx, p, days)
}
func (m *mockPlanRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Plan, error) {
	return m.getByID(ctx, id)
}
func (m *mockPlanRepo) Days(ctx context.Context, planID uuid.UUID) ([]domain.PlanDay, error) {
	return m.days(ctx, planID)
}
func (m *mockPlanRepo) ListPublished(ctx context.Context, p domain.PaginationParams) ([]domain.Plan, int64, error) {
	return m.listPublished(ctx, p)
}
func (m *mockPlanRepo) Publish(ctx context.Context, id uuid.UUID) (domain.Plan, error) {
	return m.publish(ctx, id)
}

var _ repo.PlanRepo = (*mockPlanRepo)(nil)

type mockEnrollmentRepo struct {
	create         func(ctx context.Context, e domain.PlanEnrollment) (domain.PlanEnrollment, error)
	getByID        func(ctx context.Context, id uuid.UUID) (domain.PlanEnrollment, error)
	listByPlan     func(ctx context.Context, planID uuid.UUID) ([]domain.PlanEnrollment, error)
	confirmChecked func(ctx context.Context, id uuid.UUID, pay *domain.Payment) (domain.PlanEnrollment, error)
	transition     func(ctx context.Context, id uuid.UUID, from, to domain.EnrollmentStatus, pay *domain.Payment) (domain.PlanEnrollment, error)
}

func (m *mockEnrollmentRepo) Create(ctx context.Context, e domain.PlanEnrollment) (domain.PlanEnrollment, error) {
	return m.create(ctx, e)
}
func (m *mockEnrollmentRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.PlanEnrollment, error) {
	return m.getByID(ctx, id)
}
func (m *mockEnrollmentRepo) ListByPlan(ctx context.Context, planID uuid.UUID) ([]domain.PlanEnrollment, error) {
	return m.listByPlan(ctx, planID)
}
func (m *mockEnrollmentRepo) ConfirmChecked(ctx context.Context, id uuid.UUID, pay *domain.Payment) (domain.PlanEnrollment, error) {
	return m.confirmChecked(ctx, id, pay)
}
func (m *mockEnrollmentRepo) Transition(ctx context.Context, id uuid.UUID, from, to domain.EnrollmentStatus, pay *domain.Payment) (domain.PlanEnrollment, error) {
	return m.transition(ctx, id, from, to, pay)
}

var _ repo.EnrollmentRepo = (*mockEnrollmentRepo)(nil)

type mockGalleryRepo struct {
	attach      func(ctx context.Context, img domain.GalleryImage) (domain.GalleryImage, error)
	listByOwner func(ctx context.Context, owner domain.ImageOwner) ([]domain.GalleryImage, error)
}

func (m *mockGalleryRepo) Attach(ctx context.Context, img domain.GalleryImage) (domain.GalleryImage, error) {
	return m.attach(ctx, img)
}
func (m *mockGalleryRepo) ListByOwner(ctx context.Context, owner domain.ImageOwner) ([]domain.GalleryImage, error) {
	return m.listByOwner(ctx, owner)
}

var _ repo.GalleryRepo = (*mockGalleryRepo)(nil)

type mockExportRepo struct {
	rows func(ctx context.Context) ([]domain.ExportRow, error)
}

func (m *mockExportRepo) Rows(ctx context.Context) ([]domain.ExportRow, error) {
	return m.rows(ctx)
}

var _ repo.ExportRepo = (*mockExportRepo)(nil)
