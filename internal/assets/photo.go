package assets

import (
	"context"

	"github.com/google/uuid"

	"gadgetsite/internal/models"
	"gadgetsite/internal/storage"
)

// PhotoTable is the table store for photos, see store.PhotoStore.
type PhotoTable interface {
	List(ctx context.Context, categoryID *uuid.UUID) ([]models.Photo, error)
	Create(ctx context.Context, in models.PhotoInput, imageURL string) (*models.Photo, error)
	Update(ctx context.Context, id uuid.UUID, p models.PhotoPatch) (*models.Photo, error)
	Delete(ctx context.Context, id uuid.UUID) (*models.Photo, error)
}

// PhotoService manages gallery photos.
type PhotoService struct {
	*base
	table PhotoTable
}

// NewPhotoService creates a PhotoService.
func NewPhotoService(table PhotoTable, d Deps) *PhotoService {
	return &PhotoService{base: newBase(models.KindPhoto, d), table: table}
}

// List returns photos newest first, restricted to f.CategoryID when set.
func (s *PhotoService) List(ctx context.Context, f Filter) ([]models.Photo, error) {
	return cachedList(ctx, s.base, models.KindPhoto, Filter{CategoryID: f.CategoryID}.key(),
		func(ctx context.Context) ([]models.Photo, error) {
			return s.table.List(ctx, f.CategoryID)
		})
}

// Create uploads file and inserts a photo pointing at it. A file is
// required.
func (s *PhotoService) Create(ctx context.Context, in models.PhotoInput, file *File) (*models.Photo, error) {
	title, err := requiredText("title", "Title", in.Title)
	if err != nil {
		return nil, err
	}
	in.Title = title
	in.Description = optionalText(in.Description)

	if file == nil {
		return nil, invalid("file", "Please select an image to upload.")
	}
	if err := s.requireBlobs("file"); err != nil {
		return nil, err
	}
	up, err := checkFile("file", file, classImage, s.limits)
	if err != nil {
		return nil, err
	}

	key, url, err := s.put(ctx, storage.PrefixPhotos, up)
	if err != nil {
		return nil, err
	}

	photo, err := s.table.Create(ctx, in, url)
	if err != nil {
		orphaned("create photo", err, key)
		return nil, &WriteError{Op: "create photo", Err: err}
	}

	s.publish(ctx, photo.ID, ActionCreate)
	return photo, nil
}

// Update applies the provided fields. The image URL changes only when a
// new file is uploaded.
func (s *PhotoService) Update(ctx context.Context, id uuid.UUID, p models.PhotoPatch, file *File) (*models.Photo, error) {
	p.ImageURL = nil
	if p.Title != nil {
		title, err := requiredText("title", "Title", *p.Title)
		if err != nil {
			return nil, err
		}
		p.Title = &title
	}
	p.Description = patchText(p.Description)

	var up *upload
	if file != nil {
		if err := s.requireBlobs("file"); err != nil {
			return nil, err
		}
		var err error
		if up, err = checkFile("file", file, classImage, s.limits); err != nil {
			return nil, err
		}
	}

	var key string
	if up != nil {
		var url string
		var err error
		if key, url, err = s.put(ctx, storage.PrefixPhotos, up); err != nil {
			return nil, err
		}
		p.ImageURL = &url
	}

	photo, err := s.table.Update(ctx, id, p)
	if err != nil {
		orphaned("update photo", err, key)
		return nil, &WriteError{Op: "update photo", Err: err}
	}
	if photo == nil {
		orphaned("update photo", ErrNotFound, key)
		return nil, ErrNotFound
	}

	s.publish(ctx, photo.ID, ActionUpdate)
	return photo, nil
}

// Delete removes the photo row. The stored image is kept unless blob
// cleanup is enabled.
func (s *PhotoService) Delete(ctx context.Context, id uuid.UUID) error {
	photo, err := s.table.Delete(ctx, id)
	if err != nil {
		return &WriteError{Op: "delete photo", Err: err}
	}
	if photo == nil {
		return ErrNotFound
	}

	s.cleanup(ctx, photo.ImageURL)
	s.publish(ctx, id, ActionDelete)
	return nil
}
