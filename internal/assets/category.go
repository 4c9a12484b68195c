package assets

import (
	"context"

	"github.com/google/uuid"

	"gadgetsite/internal/models"
)

// CategoryTable is the table store for categories, see store.CategoryStore.
type CategoryTable interface {
	List(ctx context.Context, activeOnly bool) ([]models.Category, error)
	Create(ctx context.Context, in models.CategoryInput) (*models.Category, error)
	Update(ctx context.Context, id uuid.UUID, p models.CategoryPatch) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// CategoryService manages gallery categories. Categories carry no media.
type CategoryService struct {
	*base
	table CategoryTable
}

// NewCategoryService creates a CategoryService.
func NewCategoryService(table CategoryTable, d Deps) *CategoryService {
	return &CategoryService{base: newBase(models.KindCategory, d), table: table}
}

// List returns categories by sort order then name.
func (s *CategoryService) List(ctx context.Context, f Filter) ([]models.Category, error) {
	return cachedList(ctx, s.base, models.KindCategory, Filter{ActiveOnly: f.ActiveOnly}.key(),
		func(ctx context.Context) ([]models.Category, error) {
			return s.table.List(ctx, f.ActiveOnly)
		})
}

// Create inserts a category.
func (s *CategoryService) Create(ctx context.Context, in models.CategoryInput) (*models.Category, error) {
	name, err := requiredText("name", "Name", in.Name)
	if err != nil {
		return nil, err
	}
	in.Name = name
	in.Description = optionalText(in.Description)

	c, err := s.table.Create(ctx, in)
	if err != nil {
		return nil, &WriteError{Op: "create category", Err: err}
	}

	s.publish(ctx, c.ID, ActionCreate)
	return c, nil
}

// Update applies the provided fields.
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, p models.CategoryPatch) (*models.Category, error) {
	if p.Name != nil {
		name, err := requiredText("name", "Name", *p.Name)
		if err != nil {
			return nil, err
		}
		p.Name = &name
	}
	p.Description = patchText(p.Description)

	c, err := s.table.Update(ctx, id, p)
	if err != nil {
		return nil, &WriteError{Op: "update category", Err: err}
	}
	if c == nil {
		return nil, ErrNotFound
	}

	s.publish(ctx, c.ID, ActionUpdate)
	return c, nil
}

// Delete removes a category. Photos and videos in it become uncategorized.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	ok, err := s.table.Delete(ctx, id)
	if err != nil {
		return &WriteError{Op: "delete category", Err: err}
	}
	if !ok {
		return ErrNotFound
	}

	s.publish(ctx, id, ActionDelete)
	return nil
}
