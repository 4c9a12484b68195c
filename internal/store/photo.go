// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"gadgetsite/internal/models"
)

// PhotoStore handles gallery photo rows.
type PhotoStore struct {
	db *sql.DB
}

// NewPhotoStore creates a new PhotoStore with the given database connection.
func NewPhotoStore(db *sql.DB) *PhotoStore {
	return &PhotoStore{db: db}
}

// photoSelect selects photo columns from alias p joined with the category
// name. Mutations use it over a CTE named p so every returned row carries
// the same shape.
const photoSelect = `SELECT p.id, p.title, p.description, p.image_url, p.category_id,
	p.created_at, c.name`

const photoJoin = ` LEFT JOIN categories c ON c.id = p.category_id`

func scanPhoto(scanner interface{ Scan(...any) error }) (*models.Photo, error) {
	var p models.Photo
	err := scanner.Scan(
		&p.ID, &p.Title, &p.Description, &p.ImageURL, &p.CategoryID,
		&p.CreatedAt, &p.CategoryName,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns photos newest first. A non-nil categoryID restricts the
// result to that category.
func (s *PhotoStore) List(ctx context.Context, categoryID *uuid.UUID) ([]models.Photo, error) {
	query := photoSelect + ` FROM photos p` + photoJoin
	var args []any
	if categoryID != nil {
		query += ` WHERE p.category_id = $1`
		args = append(args, *categoryID)
	}
	query += ` ORDER BY p.created_at DESC, p.id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	defer rows.Close()

	items := []models.Photo{}
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("scan photo: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// FindByID retrieves a single photo. Returns nil if not found.
func (s *PhotoStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Photo, error) {
	row := s.db.QueryRowContext(ctx, photoSelect+` FROM photos p`+photoJoin+` WHERE p.id = $1`, id)
	p, err := scanPhoto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find photo by id: %w", err)
	}
	return p, nil
}

// Create inserts a photo row pointing at an already uploaded image.
func (s *PhotoStore) Create(ctx context.Context, in models.PhotoInput, imageURL string) (*models.Photo, error) {
	row := s.db.QueryRowContext(ctx, `
		WITH p AS (
			INSERT INTO photos (title, description, image_url, category_id)
			VALUES ($1, $2, $3, $4)
			RETURNING *
		)
		`+photoSelect+` FROM p`+photoJoin,
		in.Title, in.Description, imageURL, in.CategoryID,
	)
	p, err := scanPhoto(row)
	if err != nil {
		return nil, fmt.Errorf("create photo: %w", err)
	}
	return p, nil
}

// Update writes only the fields set in the patch. Returns nil if the
// photo does not exist.
func (s *PhotoStore) Update(ctx context.Context, id uuid.UUID, p models.PhotoPatch) (*models.Photo, error) {
	var b setBuilder
	if p.Title != nil {
		b.add("title", *p.Title)
	}
	if p.Description != nil {
		b.add("description", nullIfEmpty(*p.Description))
	}
	if p.CategoryID != nil {
		b.add("category_id", *p.CategoryID)
	}
	if p.ImageURL != nil {
		b.add("image_url", *p.ImageURL)
	}
	if b.empty() {
		return s.FindByID(ctx, id)
	}

	set, args, idArg := b.build(id)
	row := s.db.QueryRowContext(ctx, `
		WITH p AS (
			UPDATE photos SET `+set+` WHERE id = `+idArg+`
			RETURNING *
		)
		`+photoSelect+` FROM p`+photoJoin, args...)
	updated, err := scanPhoto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update photo: %w", err)
	}
	return updated, nil
}

// Delete removes a photo and returns the deleted row so the caller can
// decide what to do with the stored image. Returns nil if not found.
func (s *PhotoStore) Delete(ctx context.Context, id uuid.UUID) (*models.Photo, error) {
	row := s.db.QueryRowContext(ctx, `
		WITH p AS (
			DELETE FROM photos WHERE id = $1
			RETURNING *
		)
		`+photoSelect+` FROM p`+photoJoin, id)
	p, err := scanPhoto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delete photo: %w", err)
	}
	return p, nil
}
