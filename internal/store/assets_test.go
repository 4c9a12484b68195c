package store

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"gadgetsite/internal/models"
)

func TestCategoryStoreListOrder(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	ctx := context.Background()

	b, err := s.Create(ctx, models.CategoryInput{Name: "zz-test B", IsActive: true, SortOrder: 900})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	a, err := s.Create(ctx, models.CategoryInput{Name: "zz-test A", IsActive: true, SortOrder: 900})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	hidden, err := s.Create(ctx, models.CategoryInput{Name: "zz-test hidden", IsActive: false, SortOrder: 899})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { cleanRows(t, db, "categories", a.ID, b.ID, hidden.ID) })

	all, err := s.List(ctx, false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	pos := map[uuid.UUID]int{}
	for i, c := range all {
		pos[c.ID] = i
	}
	if !(pos[hidden.ID] < pos[a.ID] && pos[a.ID] < pos[b.ID]) {
		t.Errorf("expected order hidden(899) < A < B by sort_order then name, got %v", pos)
	}

	active, err := s.List(ctx, true)
	if err != nil {
		t.Fatalf("List(active): %v", err)
	}
	for _, c := range active {
		if c.ID == hidden.ID {
			t.Error("inactive category returned by active-only list")
		}
	}
}

func TestCategoryStoreUpdateAndDelete(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	ctx := context.Background()

	c, err := s.Create(ctx, models.CategoryInput{Name: "zz-test edit", Description: strPtr("before"), IsActive: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { cleanRows(t, db, "categories", c.ID) })

	updated, err := s.Update(ctx, c.ID, models.CategoryPatch{IsActive: boolPtr(false)})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.IsActive {
		t.Error("expected is_active=false after update")
	}
	if updated.Name != "zz-test edit" || updated.Description == nil || *updated.Description != "before" {
		t.Errorf("unpatched fields changed: %+v", updated)
	}

	missing, err := s.Update(ctx, uuid.New(), models.CategoryPatch{Name: strPtr("x")})
	if err != nil {
		t.Fatalf("Update (missing): %v", err)
	}
	if missing != nil {
		t.Error("expected nil when updating unknown category")
	}

	ok, err := s.Delete(ctx, c.ID)
	if err != nil || !ok {
		t.Fatalf("Delete: ok=%v err=%v", ok, err)
	}
	ok, err = s.Delete(ctx, c.ID)
	if err != nil || ok {
		t.Errorf("second Delete: ok=%v err=%v, want false, nil", ok, err)
	}
}

func TestPhotoStoreLifecycle(t *testing.T) {
	db := testDB(t)
	photos := NewPhotoStore(db)
	cats := NewCategoryStore(db)
	ctx := context.Background()

	cat, err := cats.Create(ctx, models.CategoryInput{Name: "zz-test Laser", IsActive: true})
	if err != nil {
		t.Fatalf("Create category: %v", err)
	}
	t.Cleanup(func() { cleanRows(t, db, "categories", cat.ID) })

	first, err := photos.Create(ctx, models.PhotoInput{Title: "first", CategoryID: &cat.ID}, "/media/photos/1.jpg")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	second, err := photos.Create(ctx, models.PhotoInput{Title: "second"}, "/media/photos/2.jpg")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { cleanRows(t, db, "photos", first.ID, second.ID) })

	if first.CategoryName == nil || *first.CategoryName != "zz-test Laser" {
		t.Errorf("expected joined category name, got %v", first.CategoryName)
	}

	// Newest first.
	all, err := photos.List(ctx, nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	pos := map[uuid.UUID]int{}
	for i, p := range all {
		pos[p.ID] = i
	}
	if pos[second.ID] > pos[first.ID] {
		t.Error("expected newer photo before older one")
	}

	filtered, err := photos.List(ctx, &cat.ID)
	if err != nil {
		t.Fatalf("List(category): %v", err)
	}
	if len(filtered) != 1 || filtered[0].ID != first.ID {
		t.Errorf("category filter returned %d rows", len(filtered))
	}

	// Partial update keeps the image URL.
	updated, err := photos.Update(ctx, first.ID, models.PhotoPatch{Title: strPtr("renamed")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "renamed" || updated.ImageURL != "/media/photos/1.jpg" {
		t.Errorf("unexpected row after update: %+v", updated)
	}

	// Clearing the category.
	cleared, err := photos.Update(ctx, first.ID, models.PhotoPatch{CategoryID: &uuid.NullUUID{}})
	if err != nil {
		t.Fatalf("Update (clear category): %v", err)
	}
	if cleared.CategoryID != nil || cleared.CategoryName != nil {
		t.Error("expected category cleared")
	}

	deleted, err := photos.Delete(ctx, second.ID)
	if err != nil || deleted == nil {
		t.Fatalf("Delete: row=%v err=%v", deleted, err)
	}
	if deleted.ImageURL != "/media/photos/2.jpg" {
		t.Errorf("deleted row image = %q", deleted.ImageURL)
	}
	again, err := photos.Delete(ctx, second.ID)
	if err != nil || again != nil {
		t.Errorf("second Delete: row=%v err=%v, want nil, nil", again, err)
	}
}

func TestCategoryDeleteKeepsMedia(t *testing.T) {
	db := testDB(t)
	videos := NewVideoStore(db)
	cats := NewCategoryStore(db)
	ctx := context.Background()

	cat, err := cats.Create(ctx, models.CategoryInput{Name: "zz-test Roll-Up", IsActive: true})
	if err != nil {
		t.Fatalf("Create category: %v", err)
	}
	thumb := "/media/videos/thumbs/1.jpg"
	v, err := videos.Create(ctx, models.VideoInput{Title: "clip", CategoryID: &cat.ID}, "/media/videos/1.mp4", &thumb)
	if err != nil {
		t.Fatalf("Create video: %v", err)
	}
	t.Cleanup(func() {
		cleanRows(t, db, "videos", v.ID)
		cleanRows(t, db, "categories", cat.ID)
	})

	if _, err := cats.Delete(ctx, cat.ID); err != nil {
		t.Fatalf("Delete category: %v", err)
	}

	got, err := videos.FindByID(ctx, v.ID)
	if err != nil || got == nil {
		t.Fatalf("FindByID: row=%v err=%v", got, err)
	}
	if got.CategoryID != nil {
		t.Error("expected category_id set to NULL after category delete")
	}
	if got.ThumbnailURL == nil || *got.ThumbnailURL != thumb {
		t.Errorf("thumbnail = %v, want %q", got.ThumbnailURL, thumb)
	}

	updated, err := videos.Update(ctx, v.ID, models.VideoPatch{Description: strPtr("nouvelle vidéo")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.VideoURL != "/media/videos/1.mp4" {
		t.Errorf("video URL changed on text-only update: %q", updated.VideoURL)
	}
}

func TestServiceStoreOrderAndToggle(t *testing.T) {
	db := testDB(t)
	s := NewServiceStore(db)
	ctx := context.Background()

	later, err := s.Create(ctx, models.ServiceInput{Title: "zz-test later", SortOrder: 950, IsActive: true}, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	earlier, err := s.Create(ctx, models.ServiceInput{Title: "zz-test earlier", SortOrder: 949, IsActive: true}, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { cleanRows(t, db, "services", later.ID, earlier.ID) })

	list, err := s.List(ctx, false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	pos := map[uuid.UUID]int{}
	for i, svc := range list {
		pos[svc.ID] = i
	}
	if pos[earlier.ID] > pos[later.ID] {
		t.Error("expected lower sort_order first")
	}

	off, err := s.Update(ctx, later.ID, models.ServicePatch{IsActive: boolPtr(false), SortOrder: intPtr(951)})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if off.IsActive || off.SortOrder != 951 || off.Title != "zz-test later" {
		t.Errorf("unexpected row after toggle: %+v", off)
	}

	active, err := s.List(ctx, true)
	if err != nil {
		t.Fatalf("List(active): %v", err)
	}
	for _, svc := range active {
		if svc.ID == later.ID {
			t.Error("inactive service returned by active-only list")
		}
	}
}
