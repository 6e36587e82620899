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

// GalleryRepo defines the persistence operations for gallery image
// references. The files themselves live outside the system; only typed
// owner references and URLs are stored.
type GalleryRepo interface {
	// Attach stores an image reference at the end of the owner's gallery.
	Attach(ctx context.Context, img domain.GalleryImage) (domain.GalleryImage, error)

	// ListByOwner returns the owner's gallery ordered by position.
	ListByOwner(ctx context.Context, owner domain.ImageOwner) ([]domain.GalleryImage, error)
}

// pgGalleryRepo is the Postgres implementation of GalleryRepo.
type pgGalleryRepo struct {
	db db
}

// NewGalleryRepo constructs a GalleryRepo backed by the provided db
// connection.
func NewGalleryRepo(db db) GalleryRepo {
	return &pgGalleryRepo{db: db}
}

func (r *pgGalleryRepo) Attach(ctx context.Context, img domain.GalleryImage) (domain.GalleryImage, error) {
	const q = `
		INSERT INTO gallery_images (owner_kind, owner_id, url, position)
		VALUES (@owner_kind, @owner_id, @url, (
			SELECT COALESCE(MAX(position) + 1, 0)
			FROM gallery_images
			WHERE owner_kind = @owner_kind AND owner_id = @owner_id
		))
		RETURNING id, owner_kind, owner_id, url, position`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"owner_kind": img.Owner.Kind,
		"owner_id":   img.Owner.ID,
		"url":        img.URL,
	})
	result, err := scanGalleryImage(row)
	if err != nil {
		return domain.GalleryImage{}, fmt.Errorf("repo.GalleryRepo.Attach: %w", err)
	}
	return result, nil
}

func (r *pgGalleryRepo) ListByOwner(ctx context.Context, owner domain.ImageOwner) ([]domain.GalleryImage, error) {
	const q = `
		SELECT id, owner_kind, owner_id, url, position
		FROM gallery_images
		WHERE owner_kind = @owner_kind AND owner_id = @owner_id
		ORDER BY position`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"owner_kind": owner.Kind, "owner_id": owner.ID})
	if err != nil {
		return nil, fmt.Errorf("repo.GalleryRepo.ListByOwner: %w", err)
	}
	defer rows.Close()

	var out []domain.GalleryImage
	for rows.Next() {
		img, err := scanGalleryImage(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.GalleryRepo.ListByOwner: scan: %w", err)
		}
		out = append(out, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.GalleryRepo.ListByOwner: rows: %w", err)
	}

	return out, nil
}

// scanGalleryImage maps a single database row into a domain.GalleryImage.
func scanGalleryImage(s scanner) (domain.GalleryImage, error) {
	var (
		img     domain.GalleryImage
		id      pgtype.UUID
		ownerID pgtype.UUID
	)

	err := s.Scan(&id, &img.Owner.Kind, &ownerID, &img.URL, &img.Position)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.GalleryImage{}, domain.ErrNotFound
		}
		return domain.GalleryImage{}, err
	}

	img.ID = uuid.UUID(id.Bytes)
	img.Owner.ID = uuid.UUID(ownerID.Bytes)
	return img, nil
}
