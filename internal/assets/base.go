package assets

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"gadgetsite/internal/models"
)

// Deps are the collaborators shared by every asset service.
type Deps struct {
	Blobs BlobStore
	// Cache may be nil, in which case lists are always loaded from the
	// table store.
	Cache    ListCache
	Notifier *Notifier
	Limits   Limits
	// CleanupOnDelete removes a deleted row's blobs on a best-effort basis.
	// By default blobs are kept.
	CleanupOnDelete bool
	// Now defaults to time.Now and drives blob key timestamps.
	Now func() time.Time
}

type base struct {
	kind            models.Kind
	blobs           BlobStore
	cache           ListCache
	notifier        *Notifier
	limits          Limits
	cleanupOnDelete bool
	now             func() time.Time
	loads           singleflight.Group
}

func newBase(kind models.Kind, d Deps) *base {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	return &base{
		kind:            kind,
		blobs:           d.Blobs,
		cache:           d.Cache,
		notifier:        d.Notifier,
		limits:          d.Limits,
		cleanupOnDelete: d.CleanupOnDelete,
		now:             now,
	}
}

func (b *base) publish(ctx context.Context, id uuid.UUID, action Action) {
	b.notifier.Publish(ctx, Event{Kind: b.kind, ID: id, Action: action})
}

// requireBlobs guards file uploads when no blob store is configured.
func (b *base) requireBlobs(field string) error {
	if b.blobs == nil {
		return invalid(field, "File uploads are not available: object storage is not configured.")
	}
	return nil
}

// requiredText trims s and fails with a validation error when empty.
func requiredText(field, label, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", invalid(field, label+" is required.")
	}
	return s, nil
}

// optionalText trims an optional text field; blank becomes nil.
func optionalText(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

// patchText trims a patch field while keeping "" so the store can clear
// the column.
func patchText(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
