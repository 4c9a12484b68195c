// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Category groups photos and videos on the public gallery. Photos and videos
// reference it through a nullable category_id (ON DELETE SET NULL).
type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CategoryInput carries the fields of a new category.
type CategoryInput struct {
	Name        string
	Description *string
	IsActive    bool
	SortOrder   int
}

// CategoryPatch lists the category fields to change. Nil fields are left
// untouched.
type CategoryPatch struct {
	Name        *string
	Description *string
	IsActive    *bool
	SortOrder   *int
}

// IsEmpty returns true if the patch changes nothing.
func (p CategoryPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.IsActive == nil && p.SortOrder == nil
}
