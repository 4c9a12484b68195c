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

// ServiceStore manages the business's service offerings.
type ServiceStore struct {
	db *sql.DB
}

// NewServiceStore returns a new ServiceStore.
func NewServiceStore(db *sql.DB) *ServiceStore {
	return &ServiceStore{db: db}
}

const serviceColumns = `id, title, description, image_url, sort_order, is_active, created_at, updated_at`

func scanService(scanner interface{ Scan(...any) error }) (*models.Service, error) {
	var s models.Service
	err := scanner.Scan(
		&s.ID, &s.Title, &s.Description, &s.ImageURL,
		&s.SortOrder, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns services by sort_order, oldest first within equal order.
func (s *ServiceStore) List(ctx context.Context, activeOnly bool) ([]models.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY sort_order, created_at, id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	items := []models.Service{}
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		items = append(items, *svc)
	}
	return items, rows.Err()
}

// FindByID retrieves a service by ID. Returns nil if not found.
func (s *ServiceStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+serviceColumns+` FROM services WHERE id = $1`, id)
	svc, err := scanService(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find service by id: %w", err)
	}
	return svc, nil
}

// Create inserts a service. imageURL may be nil.
func (s *ServiceStore) Create(ctx context.Context, in models.ServiceInput, imageURL *string) (*models.Service, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO services (title, description, image_url, sort_order, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+serviceColumns,
		in.Title, in.Description, imageURL, in.SortOrder, in.IsActive,
	)
	svc, err := scanService(row)
	if err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}
	return svc, nil
}

// Update writes only the fields set in the patch. Returns nil if the
// service does not exist.
func (s *ServiceStore) Update(ctx context.Context, id uuid.UUID, p models.ServicePatch) (*models.Service, error) {
	var b setBuilder
	if p.Title != nil {
		b.add("title", *p.Title)
	}
	if p.Description != nil {
		b.add("description", *p.Description)
	}
	if p.SortOrder != nil {
		b.add("sort_order", *p.SortOrder)
	}
	if p.IsActive != nil {
		b.add("is_active", *p.IsActive)
	}
	if p.ImageURL != nil {
		b.add("image_url", nullIfEmpty(*p.ImageURL))
	}
	if b.empty() {
		return s.FindByID(ctx, id)
	}
	b.raw("updated_at = NOW()")

	set, args, idArg := b.build(id)
	row := s.db.QueryRowContext(ctx,
		`UPDATE services SET `+set+` WHERE id = `+idArg+` RETURNING `+serviceColumns, args...)
	svc, err := scanService(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update service: %w", err)
	}
	return svc, nil
}

// Delete removes a service and returns the deleted row. Returns nil if not
// found.
func (s *ServiceStore) Delete(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	row := s.db.QueryRowContext(ctx, `DELETE FROM services WHERE id = $1 RETURNING `+serviceColumns, id)
	svc, err := scanService(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delete service: %w", err)
	}
	return svc, nil
}
