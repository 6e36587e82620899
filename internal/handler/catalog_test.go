package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecanovas/tourbook/internal/domain"
)

func serviceFixture() domain.Service {
	return domain.Service{
		ID:         uuid.New(),
		ProviderID: uuid.New(),
		Name:       "Kayak Tour",
		Capacity:   8,
		UnitPrice:  45,
	}
}

func TestCreateProvider_201(t *testing.T) {
	m := &serverMocks{}
	m.catalog.createProvider = func(_ context.Context, p domain.Provider) (domain.Provider, error) {
		assert.Equal(t, "Coastal Adventures", p.Name)
		p.ID = uuid.New()
		return p, nil
	}

	body := jsonBody(t, map[string]any{"name": "Coastal Adventures", "email": "hi@coastal.example"})
	req := httptest.NewRequest(http.MethodPost, "/providers", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	newHTTPHandler(m).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCreateService_201(t *testing.T) {
	fixture := serviceFixture()
	m := &serverMocks{}
	m.catalog.createService = func(_ context.Context, s domain.Service) (domain.Service, error) {
		assert.Equal(t, fixture.ProviderID, s.ProviderID)
		assert.Equal(t, 8, s.Capacity)
		return fixture, nil
	}

	body := jsonBody(t, map[string]any{
		"provider_id": fixture.ProviderID,
		"name":        "Kayak Tour",
		"capacity":    8,
		"unit_price":  45,
	})
	req := httptest.NewRequest(http.MethodPost, "/services", body)
	rec := httptest.NewRecorder()

	newHTTPHandler(m).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp domain.Service
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, fixture.ID, resp.ID)
}

func TestCreateService_422_ZeroCapacity(t *testing.T) {
	m := &serverMocks{}
	m.catalog.createService = func(_ context.Context, _ domain.Service) (domain.Service, error) {
		return domain.Service{}, fmt.Errorf("%w: capacity must be positive", domain.ErrValidation)
	}

	body := jsonBody(t, map[string]any{
		"provider_id": uuid.New(),
		"name":        "Kayak Tour",
		"capacity":    0,
	})
	req := httptest.NewRequest(http.MethodPost, "/services", body)
	rec := httptest.NewRecorder()

	newHTTPHandler(m).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGetService_200(t *testing.T) {
	fixture := serviceFixture()
	m := &serverMocks{}
	m.catalog.getService = func(_ context.Context, id uuid.UUID) (domain.Service, error) {
		assert.Equal(t, fixture.ID, id)
		return fixture, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/services/"+fixture.ID.String(), nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(m).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetService_404(t *testing.T) {
	m := &serverMocks{}
	m.catalog.getService = func(_ context.Context, _ uuid.UUID) (domain.Service, error) {
		return domain.Service{}, domain.ErrNotFound
	}

	req := httptest.NewRequest(http.MethodGet, "/services/"+uuid.New().String(), nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(m).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListServices_200(t *testing.T) {
	m := &serverMocks{}
	m.catalog.listServices = func(_ context.Context) ([]domain.Service, error) {
		return []domain.Service{serviceFixture(), serviceFixture()}, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/services", nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(m).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp []domain.Service
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp, 2)
}
