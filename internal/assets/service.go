package assets

import (
	"context"

	"github.com/google/uuid"

	"gadgetsite/internal/models"
	"gadgetsite/internal/storage"
)

// ServiceTable is the table store for service offerings, see
// store.ServiceStore.
type ServiceTable interface {
	List(ctx context.Context, activeOnly bool) ([]models.Service, error)
	Create(ctx context.Context, in models.ServiceInput, imageURL *string) (*models.Service, error)
	Update(ctx context.Context, id uuid.UUID, p models.ServicePatch) (*models.Service, error)
	Delete(ctx context.Context, id uuid.UUID) (*models.Service, error)
}

// ServiceService manages the business's service offerings.
type ServiceService struct {
	*base
	table ServiceTable
}

// NewServiceService creates a ServiceService.
func NewServiceService(table ServiceTable, d Deps) *ServiceService {
	return &ServiceService{base: newBase(models.KindService, d), table: table}
}

// List returns services by sort order. Inactive services are left out
// when f.ActiveOnly is set.
func (s *ServiceService) List(ctx context.Context, f Filter) ([]models.Service, error) {
	return cachedList(ctx, s.base, models.KindService, Filter{ActiveOnly: f.ActiveOnly}.key(),
		func(ctx context.Context) ([]models.Service, error) {
			return s.table.List(ctx, f.ActiveOnly)
		})
}

// Create inserts a service, uploading its image first when one is given.
func (s *ServiceService) Create(ctx context.Context, in models.ServiceInput, file *File) (*models.Service, error) {
	title, err := requiredText("title", "Title", in.Title)
	if err != nil {
		return nil, err
	}
	in.Title = title

	var up *upload
	if file != nil {
		if err := s.requireBlobs("file"); err != nil {
			return nil, err
		}
		if up, err = checkFile("file", file, classImage, s.limits); err != nil {
			return nil, err
		}
	}

	var key string
	var imageURL *string
	if up != nil {
		k, url, err := s.put(ctx, storage.PrefixServices, up)
		if err != nil {
			return nil, err
		}
		key, imageURL = k, &url
	}

	svc, err := s.table.Create(ctx, in, imageURL)
	if err != nil {
		orphaned("create service", err, key)
		return nil, &WriteError{Op: "create service", Err: err}
	}

	s.publish(ctx, svc.ID, ActionCreate)
	return svc, nil
}

// Update applies the provided fields. The image URL changes only when a
// new file is uploaded.
func (s *ServiceService) Update(ctx context.Context, id uuid.UUID, p models.ServicePatch, file *File) (*models.Service, error) {
	p.ImageURL = nil
	if p.Title != nil {
		title, err := requiredText("title", "Title", *p.Title)
		if err != nil {
			return nil, err
		}
		p.Title = &title
	}

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
		k, url, err := s.put(ctx, storage.PrefixServices, up)
		if err != nil {
			return nil, err
		}
		key, p.ImageURL = k, &url
	}

	svc, err := s.table.Update(ctx, id, p)
	if err != nil {
		orphaned("update service", err, key)
		return nil, &WriteError{Op: "update service", Err: err}
	}
	if svc == nil {
		orphaned("update service", ErrNotFound, key)
		return nil, ErrNotFound
	}

	s.publish(ctx, svc.ID, ActionUpdate)
	return svc, nil
}

// SetActive shows or hides a service on the public site.
func (s *ServiceService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*models.Service, error) {
	return s.Update(ctx, id, models.ServicePatch{IsActive: &active}, nil)
}

// Delete removes the service row. Its image is kept unless blob cleanup
// is enabled.
func (s *ServiceService) Delete(ctx context.Context, id uuid.UUID) error {
	svc, err := s.table.Delete(ctx, id)
	if err != nil {
		return &WriteError{Op: "delete service", Err: err}
	}
	if svc == nil {
		return ErrNotFound
	}

	if svc.ImageURL != nil {
		s.cleanup(ctx, *svc.ImageURL)
	}
	s.publish(ctx, id, ActionDelete)
	return nil
}
