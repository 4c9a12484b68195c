package assets

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"gadgetsite/internal/models"
)

var errRemote = errors.New("remote unavailable")

// fakeBlobs is an in-memory BlobStore that records every call.
type fakeBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	puts    []string
	removed []string
	failPut func(key string) bool
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{objects: map[string][]byte{}, types: map[string]string{}}
}

func (b *fakeBlobs) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.puts = append(b.puts, key)
	if b.failPut != nil && b.failPut(key) {
		return errRemote
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	b.objects[key] = data
	b.types[key] = contentType
	return nil
}

func (b *fakeBlobs) PublicURL(key string) string { return "https://cdn.test/" + key }

func (b *fakeBlobs) Remove(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removed = append(b.removed, key)
	delete(b.objects, key)
	return nil
}

func (b *fakeBlobs) KeyFromURL(rawURL string) (string, bool) {
	key, ok := strings.CutPrefix(rawURL, "https://cdn.test/")
	return key, ok && key != ""
}

// fakeCache is an in-memory ListCache.
type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
	hits int
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string][]byte{}} }

func (c *fakeCache) Get(ctx context.Context, kind, filter string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.data[kind+":"+filter]
	if ok {
		c.hits++
	}
	return d, ok
}

func (c *fakeCache) Set(ctx context.Context, kind, filter string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[kind+":"+filter] = data
}

func (c *fakeCache) InvalidateKind(ctx context.Context, kind string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.data {
		if strings.HasPrefix(k, kind+":") {
			delete(c.data, k)
		}
	}
	return nil
}

// calls counts table store calls by operation.
type calls struct {
	list, create, update, delete int
}

func (c calls) writes() int { return c.create + c.update + c.delete }

// fakePhotos is an in-memory PhotoTable ordered like the real store.
type fakePhotos struct {
	rows  []models.Photo
	calls calls
	fail  error
	clock time.Time
}

func (t *fakePhotos) List(ctx context.Context, categoryID *uuid.UUID) ([]models.Photo, error) {
	t.calls.list++
	if t.fail != nil {
		return nil, t.fail
	}
	out := []models.Photo{}
	for _, p := range t.rows {
		if categoryID == nil || (p.CategoryID != nil && *p.CategoryID == *categoryID) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (t *fakePhotos) Create(ctx context.Context, in models.PhotoInput, imageURL string) (*models.Photo, error) {
	t.calls.create++
	if t.fail != nil {
		return nil, t.fail
	}
	t.clock = t.clock.Add(time.Second)
	p := models.Photo{
		ID: uuid.New(), Title: in.Title, Description: in.Description,
		ImageURL: imageURL, CategoryID: in.CategoryID, CreatedAt: t.clock,
	}
	t.rows = append(t.rows, p)
	return &p, nil
}

func (t *fakePhotos) Update(ctx context.Context, id uuid.UUID, patch models.PhotoPatch) (*models.Photo, error) {
	t.calls.update++
	if t.fail != nil {
		return nil, t.fail
	}
	for i := range t.rows {
		p := &t.rows[i]
		if p.ID != id {
			continue
		}
		if patch.Title != nil {
			p.Title = *patch.Title
		}
		if patch.Description != nil {
			p.Description = patch.Description
			if *patch.Description == "" {
				p.Description = nil
			}
		}
		if patch.CategoryID != nil {
			p.CategoryID = nil
			if patch.CategoryID.Valid {
				id := patch.CategoryID.UUID
				p.CategoryID = &id
			}
		}
		if patch.ImageURL != nil {
			p.ImageURL = *patch.ImageURL
		}
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (t *fakePhotos) Delete(ctx context.Context, id uuid.UUID) (*models.Photo, error) {
	t.calls.delete++
	if t.fail != nil {
		return nil, t.fail
	}
	for i, p := range t.rows {
		if p.ID == id {
			t.rows = append(t.rows[:i], t.rows[i+1:]...)
			return &p, nil
		}
	}
	return nil, nil
}

// fakeVideos is an in-memory VideoTable.
type fakeVideos struct {
	rows  []models.Video
	calls calls
	fail  error
}

func (t *fakeVideos) List(ctx context.Context, categoryID *uuid.UUID) ([]models.Video, error) {
	t.calls.list++
	out := []models.Video{}
	for _, v := range t.rows {
		if categoryID == nil || (v.CategoryID != nil && *v.CategoryID == *categoryID) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (t *fakeVideos) Create(ctx context.Context, in models.VideoInput, videoURL string, thumbnailURL *string) (*models.Video, error) {
	t.calls.create++
	if t.fail != nil {
		return nil, t.fail
	}
	v := models.Video{
		ID: uuid.New(), Title: in.Title, Description: in.Description,
		VideoURL: videoURL, ThumbnailURL: thumbnailURL, CategoryID: in.CategoryID,
	}
	t.rows = append(t.rows, v)
	return &v, nil
}

func (t *fakeVideos) Update(ctx context.Context, id uuid.UUID, patch models.VideoPatch) (*models.Video, error) {
	t.calls.update++
	if t.fail != nil {
		return nil, t.fail
	}
	for i := range t.rows {
		v := &t.rows[i]
		if v.ID != id {
			continue
		}
		if patch.Title != nil {
			v.Title = *patch.Title
		}
		if patch.VideoURL != nil {
			v.VideoURL = *patch.VideoURL
		}
		if patch.ThumbnailURL != nil {
			v.ThumbnailURL = patch.ThumbnailURL
		}
		cp := *v
		return &cp, nil
	}
	return nil, nil
}

func (t *fakeVideos) Delete(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	t.calls.delete++
	for i, v := range t.rows {
		if v.ID == id {
			t.rows = append(t.rows[:i], t.rows[i+1:]...)
			return &v, nil
		}
	}
	return nil, nil
}

// fakeServices is an in-memory ServiceTable.
type fakeServices struct {
	rows  []models.Service
	calls calls
}

func (t *fakeServices) List(ctx context.Context, activeOnly bool) ([]models.Service, error) {
	t.calls.list++
	out := []models.Service{}
	for _, s := range t.rows {
		if !activeOnly || s.IsActive {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (t *fakeServices) Create(ctx context.Context, in models.ServiceInput, imageURL *string) (*models.Service, error) {
	t.calls.create++
	s := models.Service{
		ID: uuid.New(), Title: in.Title, Description: in.Description,
		ImageURL: imageURL, SortOrder: in.SortOrder, IsActive: in.IsActive,
	}
	t.rows = append(t.rows, s)
	return &s, nil
}

func (t *fakeServices) Update(ctx context.Context, id uuid.UUID, patch models.ServicePatch) (*models.Service, error) {
	t.calls.update++
	for i := range t.rows {
		s := &t.rows[i]
		if s.ID != id {
			continue
		}
		if patch.Title != nil {
			s.Title = *patch.Title
		}
		if patch.IsActive != nil {
			s.IsActive = *patch.IsActive
		}
		if patch.SortOrder != nil {
			s.SortOrder = *patch.SortOrder
		}
		if patch.ImageURL != nil {
			s.ImageURL = patch.ImageURL
		}
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (t *fakeServices) Delete(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	t.calls.delete++
	for i, s := range t.rows {
		if s.ID == id {
			t.rows = append(t.rows[:i], t.rows[i+1:]...)
			return &s, nil
		}
	}
	return nil, nil
}

// fakeCategories is an in-memory CategoryTable.
type fakeCategories struct {
	rows  []models.Category
	calls calls
}

func (t *fakeCategories) List(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	t.calls.list++
	out := []models.Category{}
	for _, c := range t.rows {
		if !activeOnly || c.IsActive {
			out = append(out, c)
		}
	}
	return out, nil
}

func (t *fakeCategories) Create(ctx context.Context, in models.CategoryInput) (*models.Category, error) {
	t.calls.create++
	c := models.Category{ID: uuid.New(), Name: in.Name, Description: in.Description, IsActive: in.IsActive, SortOrder: in.SortOrder}
	t.rows = append(t.rows, c)
	return &c, nil
}

func (t *fakeCategories) Update(ctx context.Context, id uuid.UUID, patch models.CategoryPatch) (*models.Category, error) {
	t.calls.update++
	for i := range t.rows {
		c := &t.rows[i]
		if c.ID != id {
			continue
		}
		if patch.Name != nil {
			c.Name = *patch.Name
		}
		if patch.IsActive != nil {
			c.IsActive = *patch.IsActive
		}
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (t *fakeCategories) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	t.calls.delete++
	for i, c := range t.rows {
		if c.ID == id {
			t.rows = append(t.rows[:i], t.rows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// pngFile returns a File holding a real PNG of the given size.
func pngFile(name string, w, h int) *File {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return &File{Name: name, Size: int64(buf.Len()), Body: bytes.NewReader(buf.Bytes())}
}

// mp4File returns a File whose header sniffs as video/mp4.
func mp4File(name string) *File {
	data := []byte{
		0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p',
		'm', 'p', '4', '2', 0x00, 0x00, 0x00, 0x00,
		'm', 'p', '4', '1', 'i', 's', 'o', 'm',
	}
	data = append(data, make([]byte, 256)...)
	return &File{Name: name, Size: int64(len(data)), Body: bytes.NewReader(data)}
}

func textFile(name string) *File {
	data := []byte("just some text, not an image")
	return &File{Name: name, Size: int64(len(data)), Body: bytes.NewReader(data)}
}

func strPtr(s string) *string { return &s }

var fixedNow = time.UnixMilli(1718000000123)

func testDeps(blobs *fakeBlobs, cache *fakeCache, n *Notifier) Deps {
	d := Deps{
		Blobs:    blobs,
		Notifier: n,
		Limits:   Limits{Image: 5 << 20, Video: 50 << 20},
		Now:      func() time.Time { return fixedNow },
	}
	if cache != nil {
		d.Cache = cache
	}
	return d
}
