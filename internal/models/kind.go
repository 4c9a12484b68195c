// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Kind names a table-backed asset type managed by the admin workspace.
type Kind string

const (
	KindPhoto    Kind = "photo"
	KindVideo    Kind = "video"
	KindService  Kind = "service"
	KindCategory Kind = "category"
)

// Kinds lists every asset kind in workspace panel order.
var Kinds = []Kind{KindPhoto, KindVideo, KindService, KindCategory}

// BlobPrefix returns the object-storage prefix uploads of this kind are
// stored under. Categories have no media and return "".
func (k Kind) BlobPrefix() string {
	switch k {
	case KindPhoto:
		return "photos"
	case KindVideo:
		return "videos"
	case KindService:
		return "services"
	default:
		return ""
	}
}

// Valid returns true for the four known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindPhoto, KindVideo, KindService, KindCategory:
		return true
	}
	return false
}

// Label returns a human-readable singular label for notifications.
func (k Kind) Label() string {
	switch k {
	case KindPhoto:
		return "Photo"
	case KindVideo:
		return "Video"
	case KindService:
		return "Service"
	case KindCategory:
		return "Category"
	default:
		return string(k)
	}
}
