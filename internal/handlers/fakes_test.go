package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"gadgetsite/internal/assets"
	"gadgetsite/internal/auth"
	"gadgetsite/internal/middleware"
	"gadgetsite/internal/models"
	"gadgetsite/internal/render"
	"gadgetsite/internal/session"
	"gadgetsite/internal/store"
)

// recorder tracks calls made to a fake repository.
type recorder struct {
	mu        sync.Mutex
	filters   []assets.Filter
	mutations int
	err       error // returned by mutations
	listErr   error
	lastFile  []byte
	lastThumb []byte
	lastID    uuid.UUID
}

func (r *recorder) list(f assets.Filter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filters = append(r.filters, f)
	return r.listErr
}

// mutate records a mutation and the bytes of any uploaded files.
func (r *recorder) mutate(id uuid.UUID, file, thumb *assets.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mutations++
	r.lastID = id
	r.lastFile, r.lastThumb = readFile(file), readFile(thumb)
	return r.err
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mutations
}

func readFile(f *assets.File) []byte {
	if f == nil {
		return nil
	}
	b, _ := io.ReadAll(f.Body)
	return b
}

type fakePhotos struct {
	recorder
	items   []models.Photo
	input   models.PhotoInput
	patch   models.PhotoPatch
	deleted uuid.UUID
}

func (f *fakePhotos) List(ctx context.Context, filter assets.Filter) ([]models.Photo, error) {
	if err := f.list(filter); err != nil {
		return nil, err
	}
	return f.items, nil
}

func (f *fakePhotos) Create(ctx context.Context, in models.PhotoInput, file *assets.File) (*models.Photo, error) {
	f.input = in
	if err := f.mutate(uuid.Nil, file, nil); err != nil {
		return nil, err
	}
	return &models.Photo{ID: uuid.New(), Title: in.Title}, nil
}

func (f *fakePhotos) Update(ctx context.Context, id uuid.UUID, p models.PhotoPatch, file *assets.File) (*models.Photo, error) {
	f.patch = p
	if err := f.mutate(id, file, nil); err != nil {
		return nil, err
	}
	return &models.Photo{ID: id}, nil
}

func (f *fakePhotos) Delete(ctx context.Context, id uuid.UUID) error {
	f.deleted = id
	return f.mutate(id, nil, nil)
}

type fakeVideos struct {
	recorder
	items []models.Video
	input models.VideoInput
	patch models.VideoPatch
}

func (f *fakeVideos) List(ctx context.Context, filter assets.Filter) ([]models.Video, error) {
	if err := f.list(filter); err != nil {
		return nil, err
	}
	return f.items, nil
}

func (f *fakeVideos) Create(ctx context.Context, in models.VideoInput, file, thumb *assets.File) (*models.Video, error) {
	f.input = in
	if err := f.mutate(uuid.Nil, file, thumb); err != nil {
		return nil, err
	}
	return &models.Video{ID: uuid.New(), Title: in.Title}, nil
}

func (f *fakeVideos) Update(ctx context.Context, id uuid.UUID, p models.VideoPatch, file, thumb *assets.File) (*models.Video, error) {
	f.patch = p
	if err := f.mutate(id, file, thumb); err != nil {
		return nil, err
	}
	return &models.Video{ID: id}, nil
}

func (f *fakeVideos) Delete(ctx context.Context, id uuid.UUID) error {
	return f.mutate(id, nil, nil)
}

type fakeServices struct {
	recorder
	items  []models.Service
	input  models.ServiceInput
	patch  models.ServicePatch
	active *bool
}

func (f *fakeServices) List(ctx context.Context, filter assets.Filter) ([]models.Service, error) {
	if err := f.list(filter); err != nil {
		return nil, err
	}
	return f.items, nil
}

func (f *fakeServices) Create(ctx context.Context, in models.ServiceInput, file *assets.File) (*models.Service, error) {
	f.input = in
	if err := f.mutate(uuid.Nil, file, nil); err != nil {
		return nil, err
	}
	return &models.Service{ID: uuid.New(), Title: in.Title}, nil
}

func (f *fakeServices) Update(ctx context.Context, id uuid.UUID, p models.ServicePatch, file *assets.File) (*models.Service, error) {
	f.patch = p
	if err := f.mutate(id, file, nil); err != nil {
		return nil, err
	}
	return &models.Service{ID: id}, nil
}

func (f *fakeServices) SetActive(ctx context.Context, id uuid.UUID, active bool) (*models.Service, error) {
	f.active = &active
	if err := f.mutate(id, nil, nil); err != nil {
		return nil, err
	}
	return &models.Service{ID: id, IsActive: active}, nil
}

func (f *fakeServices) Delete(ctx context.Context, id uuid.UUID) error {
	return f.mutate(id, nil, nil)
}

type fakeCategories struct {
	recorder
	items []models.Category
	input models.CategoryInput
	patch models.CategoryPatch
}

func (f *fakeCategories) List(ctx context.Context, filter assets.Filter) ([]models.Category, error) {
	if err := f.list(filter); err != nil {
		return nil, err
	}
	return f.items, nil
}

func (f *fakeCategories) Create(ctx context.Context, in models.CategoryInput) (*models.Category, error) {
	f.input = in
	if err := f.mutate(uuid.Nil, nil, nil); err != nil {
		return nil, err
	}
	return &models.Category{ID: uuid.New(), Name: in.Name}, nil
}

func (f *fakeCategories) Update(ctx context.Context, id uuid.UUID, p models.CategoryPatch) (*models.Category, error) {
	f.patch = p
	if err := f.mutate(id, nil, nil); err != nil {
		return nil, err
	}
	return &models.Category{ID: id}, nil
}

func (f *fakeCategories) Delete(ctx context.Context, id uuid.UUID) error {
	return f.mutate(id, nil, nil)
}

// fakeEnroller keeps one pending secret and accepts a single valid code.
type fakeEnroller struct {
	enabled   bool
	validCode string
	err       error
}

func (f *fakeEnroller) CurrentEnrolment(ctx context.Context, userID uuid.UUID, email string) (*auth.Enrolment, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.enabled {
		return nil, nil
	}
	return &auth.Enrolment{Secret: "JBSWY3DPEHPK3PXP", URL: "otpauth://totp/x", QRCode: []byte("\x89PNG")}, nil
}

func (f *fakeEnroller) ConfirmEnrolment(ctx context.Context, userID uuid.UUID, code string) error {
	if code != f.validCode {
		return auth.ErrInvalidCode
	}
	f.enabled = true
	return nil
}

// adminFixture bundles an Admin with its fakes.
type adminFixture struct {
	admin      *Admin
	photos     *fakePhotos
	videos     *fakeVideos
	services   *fakeServices
	categories *fakeCategories
	enroller   *fakeEnroller
	activity   *fakeActivity
}

func (fx *adminFixture) mutations() int {
	return fx.photos.count() + fx.videos.count() + fx.services.count() + fx.categories.count()
}

func newRenderer(t *testing.T) *render.Renderer {
	t.Helper()
	rn, err := render.New("Univers des Gadgets")
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	return rn
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	fx := &adminFixture{
		photos:     &fakePhotos{},
		videos:     &fakeVideos{},
		services:   &fakeServices{},
		categories: &fakeCategories{},
		enroller:   &fakeEnroller{validCode: "123456"},
		activity:   &fakeActivity{},
	}
	fx.admin = NewAdmin(newRenderer(t), fx.photos, fx.videos, fx.services, fx.categories, fx.enroller, fx.activity)
	return fx
}

// adminRouter mounts the admin routes behind the gate like the real router.
func adminRouter(a *Admin) http.Handler {
	r := chi.NewRouter()
	r.Route("/admin", func(r chi.Router) {
		r.Use(a.Gate)
		r.Get("/", a.Workspace)
		r.Get("/security", a.Security)
		r.Post("/security", a.SecurityConfirm)

		r.Post("/photos", a.PhotoCreate)
		r.Post("/photos/{id}", a.PhotoUpdate)
		r.Post("/photos/{id}/delete", a.PhotoDelete)
		r.Post("/videos", a.VideoCreate)
		r.Post("/videos/{id}", a.VideoUpdate)
		r.Post("/videos/{id}/delete", a.VideoDelete)
		r.Post("/services", a.ServiceCreate)
		r.Post("/services/{id}", a.ServiceUpdate)
		r.Post("/services/{id}/toggle", a.ServiceToggle)
		r.Post("/services/{id}/delete", a.ServiceDelete)
		r.Post("/categories", a.CategoryCreate)
		r.Post("/categories/{id}", a.CategoryUpdate)
		r.Post("/categories/{id}/delete", a.CategoryDelete)
	})
	return r
}

func privileged() auth.Status {
	return auth.Status{State: auth.Privileged, Session: &session.Data{
		UserID: uuid.New(), Email: "admin@universdegadgets.cm", DisplayName: "Admin", SecondFactorDone: true,
	}}
}

func authenticated() auth.Status {
	return auth.Status{State: auth.Authenticated, Session: &session.Data{
		UserID: uuid.New(), Email: "visitor@b.cm", DisplayName: "Visitor", SecondFactorDone: true,
	}}
}

// as returns req carrying st, as LoadPrincipal does.
func as(req *http.Request, st auth.Status) *http.Request {
	return req.WithContext(middleware.WithStatus(req.Context(), st))
}

// serve runs req through h and returns the recorder.
func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// formFile is one file part of a multipart request.
type formFile struct {
	field, name string
	data        []byte
}

// multipartRequest builds a POST with text fields and file parts.
func multipartRequest(t *testing.T, target string, fields map[string]string, files ...formFile) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(f.field, f.name)
		if err != nil {
			t.Fatal(err)
		}
		part.Write(f.data)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// fakeActivity serves canned invalidation entries.
type fakeActivity struct {
	entries []store.CacheLogEntry
	err     error
	limit   int
}

func (f *fakeActivity) RecentEntries(ctx context.Context, limit int) ([]store.CacheLogEntry, error) {
	f.limit = limit
	return f.entries, f.err
}
