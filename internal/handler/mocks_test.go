package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ecanovas/tourbook/internal/domain"
	"github.com/ecanovas/tourbook/internal/handler"
)

// Mock servicers for handler tests. Set only the method fields your test
// needs; unset methods panic, which fails the test loudly.

type mockReservationServicer struct {
	create            func(ctx context.Context, userID uuid.UUID, notes string) (domain.Reservation, error)
	getByID           func(ctx context.Context, id uuid.UUID) (domain.Reservation, error)
	listByUser        func(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Reservation, int64, error)
	bookings          func(ctx context.Context, reservationID uuid.UUID) ([]domain.ServiceBooking, error)
	addBooking        func(ctx context.Context, reservationID, serviceID uuid.UUID, w domain.TimeWindow, quantity int, clientNotes string) (domain.ServiceBooking, error)
	checkAvailability func(ctx context.Context, serviceID uuid.UUID, w domain.TimeWindow, quantity int) error
	checkout          func(ctx context.Context, reservationID uuid.UUID) (domain.Reservation, error)
	transition        func(ctx context.Context, reservationID uuid.UUID, target domain.ReservationStatus) (domain.Reservation, error)
	cancelBooking     func(ctx context.Context, reservationID, bookingID uuid.UUID) (domain.ServiceBooking, error)
}

func (m *mockReservationServicer) Create(ctx context.Context, userID uuid.UUID, notes string) (domain.Reservation, error) {
	return m.create(ctx, userID, notes)
}
func (m *mockReservationServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Reservation, error) {
	return m.getByID(ctx, id)
}
func (m *mockReservationServicer) ListByUser(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Reservation, int64, error) {
	return m.listByUser(ctx, userID, p)
}
func (m *mockReservationServicer) Bookings(ctx context.Context, reservationID uuid.UUID) ([]domain.ServiceBooking, error) {
	return m.bookings(ctx, reservationID)
}
func (m *mockReservationServicer) AddBooking(ctx context.Context, reservationID, serviceID uuid.UUID, w domain.TimeWindow, quantity int, clientNotes string) (domain.ServiceBooking, error) {
	return m.addBooking(ctx, reservationID, serviceID, w, quantity, clientNotes)
}
func (m *mockReservationServicer) CheckAvailability(ctx context.Context, serviceID uuid.UUID, w domain.TimeWindow, quantity int) error {
	return m.checkAvailability(ctx, serviceID, w, quantity)
}
func (m *mockReservationServicer) Checkout(ctx context.Context, reservationID uuid.UUID) (domain.Reservation, error) {
	return m.checkout(ctx, reservationID)
}
func (m *mockReservationServicer) Transition(ctx context.Context, reservationID uuid.UUID, target domain.ReservationStatus) (domain.Reservation, error) {
	return m.transition(ctx, reservationID, target)
}
func (m *mockReservationServicer) CancelBooking(ctx context.Context, reservationID, bookingID uuid.UUID) (domain.ServiceBooking, error) {
	return m.cancelBooking(ctx, reservationID, bookingID)
}

var _ handler.ReservationServicer = (*mockReservationServicer)(nil)

type mockPlanServicer struct {
	create        func(ctx context.Context, p domain.Plan, days []domain.PlanDay) (domain.Plan, []domain.PlanDay, error)
	getByID       func(ctx context.Context, id uuid.UUID) (domain.Plan, []domain.PlanDay, error)
	listPublished func(ctx context.Context, p domain.PaginationParams) ([]domain.Plan, int64, error)
	publish       func(ctx context.Context, id uuid.UUID) (domain.Plan, error)
	attachImage   func(ctx context.Context, owner domain.ImageOwner, url string) (domain.GalleryImage, error)
	gallery       func(ctx context.Context, owner domain.ImageOwner) ([]domain.GalleryImage, error)
}

func (m *mockPlanServicer) Create(ctx context.Context, p domain.Plan, days []domain.PlanDay) (domain.Plan, []domain.PlanDay, error) {
	return m.create(ctx, p, days)
}
func (m *mockPlanServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Plan, []domain.PlanDay, error) {
	return m.getByID(ctx, id)
}
func (m *mockPlanServicer) ListPublished(ctx context.Context, p domain.PaginationParams) ([]domain.Plan, int64, error) {
	return m.listPublished(ctx, p)
}
func (m *mockPlanServicer) Publish(ctx context.Context, id uuid.UUID) (domain.Plan, error) {
	return m.publish(ctx, id)
}
func (m *mockPlanServicer) AttachImage(ctx context.Context, owner domain.ImageOwner, url string) (domain.GalleryImage, error) {
	return m.attachImage(ctx, owner, url)
}
func (m *mockPlanServicer) Gallery(ctx context.Context, owner domain.ImageOwner) ([]domain.GalleryImage, error) {
	return m.gallery(ctx, owner)
}

var _ handler.PlanServicer = (*mockPlanServicer)(nil)

type mockEnrollmentServicer struct {
	enroll     func(ctx context.Context, userID, planID uuid.UUID, e domain.PlanEnrollment) (domain.PlanEnrollment, error)
	getByID    func(ctx context.Context, id uuid.UUID) (domain.PlanEnrollment, error)
	listByPlan func(ctx context.Context, planID uuid.UUID) ([]domain.PlanEnrollment, error)
	transition func(ctx context.Context, id uuid.UUID, target domain.EnrollmentStatus, pay *domain.Payment) (domain.PlanEnrollment, error)
}

func (m *mockEnrollmentServicer) Enroll(ctx context.Context, userID, planID uuid.UUID, e domain.PlanEnrollment) (domain.PlanEnrollment, error) {
	return m.enroll(ctx, userID, planID, e)
}
func (m *mockEnrollmentServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.PlanEnrollment, error) {
	return m.getByID(ctx, id)
}
func (m *mockEnrollmentServicer) ListByPlan(ctx context.Context, planID uuid.UUID) ([]domain.PlanEnrollment, error) {
	return m.listByPlan(ctx, planID)
}
func (m *mockEnrollmentServicer) Transition(ctx context.Context, id uuid.UUID, target domain.EnrollmentStatus, pay *domain.Payment) (domain.PlanEnrollment, error) {
	return m.transition(ctx, id, target, pay)
}

var _ handler.EnrollmentServicer = (*mockEnrollmentServicer)(nil)

type mockCatalogServicer struct {
	createProvider func(ctx context.Context, p domain.Provider) (domain.Provider, error)
	createService  func(ctx context.Context, s domain.Service) (domain.Service, error)
	getService     func(ctx context.Context, id uuid.UUID) (domain.Service, error)
	listServices   func(ctx context.Context) ([]domain.Service, error)
}

func (m *mockCatalogServicer) CreateProvider(ctx context.Context, p domain.Provider) (domain.Provider, error) {
	return m.createProvider(ctx, p)
}
func (m *mockCatalogServicer) CreateService(ctx context.Context, s domain.Service) (domain.Service, error) {
	return m.createService(ctx, s)
}
func (m *mockCatalogServicer) GetService(ctx context.Context, id uuid.UUID) (domain.Service, error) {
	return m.getService(ctx, id)
}
func (m *mockCatalogServicer) ListServices(ctx context.Context) ([]domain.Service, error) {
	return m.listServices(ctx)
}

var _ handler.CatalogServicer = (*mockCatalogServicer)(nil)

type mockExportServicer struct {
	rows func(ctx context.Context) ([]domain.ExportRow, error)
}

func (m *mockExportServicer) Rows(ctx context.Context) ([]domain.ExportRow, error) {
	return m.rows(ctx)
}

var _ handler.ExportServicer = (*mockExportServicer)(nil)

// ---- helpers ---------------------------------------------------------------

// serverMocks bundles one mock per servicer so tests can set just the one
// they exercise.
type serverMocks struct {
	reservations mockReservationServicer
	plans        mockPlanServicer
	enrollments  mockEnrollmentServicer
	catalog      mockCatalogServicer
	export       mockExportServicer
}

// newHTTPHandler wires a Server with the given mocks into the chi router,
// mirroring how main.go wires it in production.
func newHTTPHandler(m *serverMocks) http.Handler {
	srv := handler.NewServer(&m.reservations, &m.plans, &m.enrollments, &m.catalog, &m.export)
	return srv.Routes()
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}
