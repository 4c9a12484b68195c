package handlers

import (
	"strings"
	"unicode/utf8"
)

// Validation limits for workspace form fields.
const (
	maxTitleLen       = 200
	maxNameLen        = 100
	maxDescriptionLen = 5_000
)

// validateTitled checks the text fields of a photo, video or service and
// returns the first error found. Emptiness is left to the asset services.
func validateTitled(title, description string) string {
	if utf8.RuneCountInString(strings.TrimSpace(title)) > maxTitleLen {
		return "Title is too long (max 200 characters)."
	}
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return "Description is too long (max 5,000 characters)."
	}
	return ""
}

// validateCategory checks the text fields of a category.
func validateCategory(name, description string) string {
	if utf8.RuneCountInString(strings.TrimSpace(name)) > maxNameLen {
		return "Name is too long (max 100 characters)."
	}
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return "Description is too long (max 5,000 characters)."
	}
	return ""
}
