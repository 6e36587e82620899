package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/ecanovas/tourbook/internal/domain"
)

// CatalogRepo defines the persistence operations for providers and their
// catalog services. The booking core only reads from the catalog; the
// create operations exist for catalog administration callers and tests.
type CatalogRepo interface {
	CreateProvider(ctx context.Context, p domain.Provider) (domain.Provider, error)
	CreateService(ctx context.Context, s domain.Service) (domain.Service, error)

	// GetService retrieves a catalog service by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetService(ctx context.Context, id uuid.UUID) (domain.Service, error)

	// ListServices returns all catalog services ordered by name.
	ListServices(ctx context.Context) ([]domain.Service, error)
}

// pgCatalogRepo is the Postgres implementation of CatalogRepo.
type pgCatalogRepo struct {
	db db
}

// NewCatalogRepo constructs a CatalogRepo backed by the provided db
// connection.
func NewCatalogRepo(db db) CatalogRepo {
	return &pgCatalogRepo{db: db}
}

const serviceCols = `id, provider_id, name, description, capacity, unit_price, latitude, longitude, created_at`

func (r *pgCatalogRepo) CreateProvider(ctx context.Context, p domain.Provider) (domain.Provider, error) {
	const q = `
		INSERT INTO providers (name, email, phone)
		VALUES (@name, @email, @phone)
		RETURNING id, name, email, phone, created_at`

	var id pgtype.UUID
	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"name": p.Name, "email": p.Email, "phone": p.Phone})
	if err := row.Scan(&id, &p.Name, &p.Email, &p.Phone, &p.CreatedAt); err != nil {
		return domain.Provider{}, fmt.Errorf("repo.CatalogRepo.CreateProvider: %w", err)
	}
	p.ID = uuid.UUID(id.Bytes)
	return p, nil
}

func (r *pgCatalogRepo) CreateService(ctx context.Context, s domain.Service) (domain.Service, error) {
	const q = `
		INSERT INTO services (provider_id, name, description, capacity, unit_price, latitude, longitude)
		VALUES (@provider_id, @name, @description, @capacity, @unit_price, @latitude, @longitude)
		RETURNING ` + serviceCols

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"provider_id": s.ProviderID,
		"name":        s.Name,
		"description": s.Description,
		"capacity":    s.Capacity,
		"unit_price":  s.UnitPrice,
		"latitude":    s.Latitude,
		"longitude":   s.Longitude,
	})
	result, err := scanService(row)
	if err != nil {
		return domain.Service{}, fmt.Errorf("repo.CatalogRepo.CreateService: %w", err)
	}
	return result, nil
}

func (r *pgCatalogRepo) GetService(ctx context.Context, id uuid.UUID) (domain.Service, error) {
	const q = `SELECT ` + serviceCols + ` FROM services WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanService(row)
	if err != nil {
		return domain.Service{}, fmt.Errorf("repo.CatalogRepo.GetService: %w", err)
	}
	return result, nil
}

func (r *pgCatalogRepo) ListServices(ctx context.Context) ([]domain.Service, error) {
	const q = `SELECT ` + serviceCols + ` FROM services ORDER BY name`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.CatalogRepo.ListServices: %w", err)
	}
	defer rows.Close()

	var out []domain.Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.CatalogRepo.ListServices: scan: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.CatalogRepo.ListServices: rows: %w", err)
	}

	return out, nil
}

// scanService maps a single database row into a domain.Service.
func scanService(s scanner) (domain.Service, error) {
	var (
		svc    domain.Service
		id     pgtype.UUID
		provID pgtype.UUID
	)

	err := s.Scan(&id, &provID, &svc.Name, &svc.Description, &svc.Capacity,
		&svc.UnitPrice, &svc.Latitude, &svc.Longitude, &svc.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Service{}, domain.ErrNotFound
		}
		return domain.Service{}, err
	}

	svc.ID = uuid.UUID(id.Bytes)
	svc.ProviderID = uuid.UUID(provID.Bytes)
	return svc, nil
}
