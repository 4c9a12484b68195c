// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Service is an offering shown in the public services section. Inactive
// services stay editable in the admin workspace but are hidden publicly.
type Service struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    *string   `json:"image_url,omitempty"`
	SortOrder   int       `json:"sort_order"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ServiceInput carries the fields of a new service.
type ServiceInput struct {
	Title       string
	Description string
	SortOrder   int
	IsActive    bool
}

// ServicePatch lists the service fields to change. Nil fields are left
// untouched.
type ServicePatch struct {
	Title       *string
	Description *string
	SortOrder   *int
	IsActive    *bool
	ImageURL    *string
}

// IsEmpty returns true if the patch changes nothing.
func (p ServicePatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.SortOrder == nil &&
		p.IsActive == nil && p.ImageURL == nil
}
