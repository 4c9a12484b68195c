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

// VideoStore handles gallery video rows.
type VideoStore struct {
	db *sql.DB
}

// NewVideoStore creates a new VideoStore with the given database connection.
func NewVideoStore(db *sql.DB) *VideoStore {
	return &VideoStore{db: db}
}

const videoSelect = `SELECT v.id, v.title, v.description, v.video_url, v.thumbnail_url,
	v.category_id, v.created_at, c.name`

const videoJoin = ` LEFT JOIN categories c ON c.id = v.category_id`

func scanVideo(scanner interface{ Scan(...any) error }) (*models.Video, error) {
	var v models.Video
	err := scanner.Scan(
		&v.ID, &v.Title, &v.Description, &v.VideoURL, &v.ThumbnailURL,
		&v.CategoryID, &v.CreatedAt, &v.CategoryName,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// List returns videos newest first, optionally restricted to a category.
func (s *VideoStore) List(ctx context.Context, categoryID *uuid.UUID) ([]models.Video, error) {
	query := videoSelect + ` FROM videos v` + videoJoin
	var args []any
	if categoryID != nil {
		query += ` WHERE v.category_id = $1`
		args = append(args, *categoryID)
	}
	query += ` ORDER BY v.created_at DESC, v.id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	items := []models.Video{}
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		items = append(items, *v)
	}
	return items, rows.Err()
}

// FindByID retrieves a single video. Returns nil if not found.
func (s *VideoStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	row := s.db.QueryRowContext(ctx, videoSelect+` FROM videos v`+videoJoin+` WHERE v.id = $1`, id)
	v, err := scanVideo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find video by id: %w", err)
	}
	return v, nil
}

// Create inserts a video row. thumbnailURL may be nil.
func (s *VideoStore) Create(ctx context.Context, in models.VideoInput, videoURL string, thumbnailURL *string) (*models.Video, error) {
	row := s.db.QueryRowContext(ctx, `
		WITH v AS (
			INSERT INTO videos (title, description, video_url, thumbnail_url, category_id)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING *
		)
		`+videoSelect+` FROM v`+videoJoin,
		in.Title, in.Description, videoURL, thumbnailURL, in.CategoryID,
	)
	v, err := scanVideo(row)
	if err != nil {
		return nil, fmt.Errorf("create video: %w", err)
	}
	return v, nil
}

// Update writes only the fields set in the patch. Returns nil if the
// video does not exist.
func (s *VideoStore) Update(ctx context.Context, id uuid.UUID, p models.VideoPatch) (*models.Video, error) {
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
	if p.VideoURL != nil {
		b.add("video_url", *p.VideoURL)
	}
	if p.ThumbnailURL != nil {
		b.add("thumbnail_url", nullIfEmpty(*p.ThumbnailURL))
	}
	if b.empty() {
		return s.FindByID(ctx, id)
	}

	set, args, idArg := b.build(id)
	row := s.db.QueryRowContext(ctx, `
		WITH v AS (
			UPDATE videos SET `+set+` WHERE id = `+idArg+`
			RETURNING *
		)
		`+videoSelect+` FROM v`+videoJoin, args...)
	updated, err := scanVideo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update video: %w", err)
	}
	return updated, nil
}

// Delete removes a video and returns the deleted row. Returns nil if not
// found.
func (s *VideoStore) Delete(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	row := s.db.QueryRowContext(ctx, `
		WITH v AS (
			DELETE FROM videos WHERE id = $1
			RETURNING *
		)
		`+videoSelect+` FROM v`+videoJoin, id)
	v, err := scanVideo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delete video: %w", err)
	}
	return v, nil
}
