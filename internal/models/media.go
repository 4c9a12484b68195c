// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Photo is a gallery image. ImageURL always points at an uploaded object.
type Photo struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	ImageURL    string     `json:"image_url"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`

	// Virtual field populated by store queries (LEFT JOIN categories).
	CategoryName *string `json:"category_name,omitempty"`
}

// PhotoInput carries the text fields of a new photo. The image URL comes
// from the upload step.
type PhotoInput struct {
	Title       string
	Description *string
	CategoryID  *uuid.UUID
}

// PhotoPatch lists the photo fields to change. Nil fields are left untouched.
// CategoryID distinguishes "clear" (Valid=false) from "unchanged" (nil).
type PhotoPatch struct {
	Title       *string
	Description *string
	CategoryID  *uuid.NullUUID
	ImageURL    *string
}

// IsEmpty returns true if the patch changes nothing.
func (p PhotoPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.CategoryID == nil && p.ImageURL == nil
}

// Video is a gallery video with an optional poster image.
type Video struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Description  *string    `json:"description,omitempty"`
	VideoURL     string     `json:"video_url"`
	ThumbnailURL *string    `json:"thumbnail_url,omitempty"`
	CategoryID   *uuid.UUID `json:"category_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`

	CategoryName *string `json:"category_name,omitempty"`
}

// VideoInput carries the text fields of a new video.
type VideoInput struct {
	Title       string
	Description *string
	CategoryID  *uuid.UUID
}

// VideoPatch lists the video fields to change. Nil fields are left untouched.
type VideoPatch struct {
	Title        *string
	Description  *string
	CategoryID   *uuid.NullUUID
	VideoURL     *string
	ThumbnailURL *string
}

// IsEmpty returns true if the patch changes nothing.
func (p VideoPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.CategoryID == nil &&
		p.VideoURL == nil && p.ThumbnailURL == nil
}
