// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the site. Handlers are
// grouped by concern (admin, public, auth, provisioning) and receive
// their dependencies through the handler struct.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"gadgetsite/internal/assets"
	"gadgetsite/internal/auth"
	"gadgetsite/internal/middleware"
	"gadgetsite/internal/models"
	"gadgetsite/internal/render"
	"gadgetsite/internal/store"
)

// retrySeconds is how long the waiting page asks the browser to wait
// before trying an inconclusive session again.
const retrySeconds = 5

// Lister reads an ordered list of one asset kind.
type Lister[T any] interface {
	List(ctx context.Context, f assets.Filter) ([]T, error)
}

// PhotoAssets is the photo repository, see *assets.PhotoService.
type PhotoAssets interface {
	Lister[models.Photo]
	Create(ctx context.Context, in models.PhotoInput, file *assets.File) (*models.Photo, error)
	Update(ctx context.Context, id uuid.UUID, p models.PhotoPatch, file *assets.File) (*models.Photo, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// VideoAssets is the video repository, see *assets.VideoService.
type VideoAssets interface {
	Lister[models.Video]
	Create(ctx context.Context, in models.VideoInput, file, thumb *assets.File) (*models.Video, error)
	Update(ctx context.Context, id uuid.UUID, p models.VideoPatch, file, thumb *assets.File) (*models.Video, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ServiceAssets is the offering repository, see *assets.ServiceService.
type ServiceAssets interface {
	Lister[models.Service]
	Create(ctx context.Context, in models.ServiceInput, file *assets.File) (*models.Service, error)
	Update(ctx context.Context, id uuid.UUID, p models.ServicePatch, file *assets.File) (*models.Service, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*models.Service, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CategoryAssets is the category repository, see *assets.CategoryService.
type CategoryAssets interface {
	Lister[models.Category]
	Create(ctx context.Context, in models.CategoryInput) (*models.Category, error)
	Update(ctx context.Context, id uuid.UUID, p models.CategoryPatch) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Enroller manages the optional TOTP second factor, see *auth.Provider.
type Enroller interface {
	CurrentEnrolment(ctx context.Context, userID uuid.UUID, email string) (*auth.Enrolment, error)
	ConfirmEnrolment(ctx context.Context, userID uuid.UUID, code string) error
}

// Activity lists recent cache invalidations, see *store.CacheLogStore.
type Activity interface {
	RecentEntries(ctx context.Context, limit int) ([]store.CacheLogEntry, error)
}

// Admin groups the admin workspace handlers and their dependencies.
type Admin struct {
	renderer   *render.Renderer
	photos     PhotoAssets
	videos     VideoAssets
	services   ServiceAssets
	categories CategoryAssets
	enroller   Enroller
	activity   Activity
}

// NewAdmin creates a new Admin handler group.
func NewAdmin(renderer *render.Renderer, photos PhotoAssets, videos VideoAssets, services ServiceAssets, categories CategoryAssets, enroller Enroller, activity Activity) *Admin {
	return &Admin{
		renderer:   renderer,
		photos:     photos,
		videos:     videos,
		services:   services,
		categories: categories,
		enroller:   enroller,
		activity:   activity,
	}
}

// Gate admits privileged principals only. Every other state gets a
// terminal response and next is never called, so no mutation reaches the
// asset repositories.
func (a *Admin) Gate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st := middleware.StatusFromCtx(r.Context())
		switch st.State {
		case auth.Privileged:
			next.ServeHTTP(w, r)
		case auth.Loading:
			retry := "/admin"
			if r.Method == http.MethodGet {
				retry = r.URL.RequestURI()
			}
			w.Header().Set("Retry-After", strconv.Itoa(retrySeconds))
			a.renderer.PageStatus(w, r, http.StatusServiceUnavailable, "waiting", &render.PageData{
				Title:   "Vérification",
				Refresh: retrySeconds,
				Data:    map[string]any{"Retry": retry},
			})
		case auth.Authenticated:
			a.renderer.PageStatus(w, r, http.StatusForbidden, "denied", &render.PageData{
				Title: "Accès refusé",
			})
		default:
			http.Redirect(w, r, "/auth", http.StatusSeeOther)
		}
	})
}

// kindPaths maps each kind to its route segment under /admin.
var kindPaths = map[models.Kind]string{
	models.KindPhoto:    "photos",
	models.KindVideo:    "videos",
	models.KindService:  "services",
	models.KindCategory: "categories",
}

// actionPath returns the form action creating (id nil) or updating a record.
func actionPath(kind models.Kind, id *uuid.UUID) string {
	if id == nil {
		return "/admin/" + kindPaths[kind]
	}
	return "/admin/" + kindPaths[kind] + "/" + id.String()
}

// doneMessages are the flash texts keyed by the done query parameter.
var doneMessages = map[string]string{
	"created":     "%s ajouté(e).",
	"updated":     "%s mis(e) à jour.",
	"deleted":     "%s supprimé(e).",
	"activated":   "%s activé(e).",
	"deactivated": "%s désactivé(e).",
}

// doneFlash turns "photo-created" into a flash message. Unknown values
// yield no message.
func doneFlash(done string) string {
	for _, k := range models.Kinds {
		prefix := string(k) + "-"
		if len(done) <= len(prefix) || done[:len(prefix)] != prefix {
			continue
		}
		if format, ok := doneMessages[done[len(prefix):]]; ok {
			return fmt.Sprintf(format, k.Label())
		}
	}
	return ""
}

// panel is one independently loaded workspace list.
type panel[T any] struct {
	Items []T
	Err   string
}

func loadPanel[T any](ctx context.Context, l Lister[T], kind models.Kind) panel[T] {
	items, err := l.List(ctx, assets.Filter{})
	if err != nil {
		logError(ctx, "workspace panel failed", err, "kind", kind)
		return panel[T]{Err: fmt.Sprintf("Impossible de charger la liste (%s).", kind.Label())}
	}
	return panel[T]{Items: items}
}

// tab is one entry of the workspace tab bar.
type tab struct {
	Kind  models.Kind
	Label string
}

var tabs = []tab{
	{models.KindPhoto, "Photos"},
	{models.KindVideo, "Vidéos"},
	{models.KindService, "Services"},
	{models.KindCategory, "Catégories"},
}

// workspaceView is the state of one workspace render.
type workspaceView struct {
	active models.Kind
	edit   *uuid.UUID
	// Submitted fields of a failed mutation, keyed by kind.
	forms   map[models.Kind]map[string]string
	actions map[models.Kind]string
	notice  *render.Notice
	flash   string
}

// Workspace renders the four management panels. Query parameters:
// panel selects the active tab, edit=<id> prefills that panel's form and
// done=<kind>-<verb> shows the outcome of the previous mutation.
func (a *Admin) Workspace(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	v := &workspaceView{
		active: panelKind(q.Get("panel")),
		flash:  doneFlash(q.Get("done")),
	}
	if id, err := uuid.Parse(q.Get("edit")); err == nil {
		v.edit = &id
	}
	a.renderWorkspace(w, r, http.StatusOK, v)
}

func panelKind(s string) models.Kind {
	if k := models.Kind(s); k.Valid() {
		return k
	}
	return models.KindPhoto
}

// renderWorkspace loads every panel concurrently and renders the page. A
// failing panel carries its own error and never hides the others.
func (a *Admin) renderWorkspace(w http.ResponseWriter, r *http.Request, code int, v *workspaceView) {
	ctx := r.Context()

	var (
		wg         sync.WaitGroup
		photos     panel[models.Photo]
		videos     panel[models.Video]
		services   panel[models.Service]
		categories panel[models.Category]
	)
	wg.Add(4)
	go func() { defer wg.Done(); photos = loadPanel(ctx, a.photos, models.KindPhoto) }()
	go func() { defer wg.Done(); videos = loadPanel(ctx, a.videos, models.KindVideo) }()
	go func() { defer wg.Done(); services = loadPanel(ctx, a.services, models.KindService) }()
	go func() { defer wg.Done(); categories = loadPanel(ctx, a.categories, models.KindCategory) }()
	wg.Wait()

	forms := map[string]map[string]string{
		string(models.KindPhoto):    {},
		string(models.KindVideo):    {},
		string(models.KindService):  {"is_active": "true", "sort_order": "0"},
		string(models.KindCategory): {"is_active": "true", "sort_order": "0"},
	}
	actions := make(map[string]string, len(models.Kinds))
	for _, k := range models.Kinds {
		actions[string(k)] = actionPath(k, nil)
	}

	if v.edit != nil && v.forms[v.active] == nil {
		if f := editForm(v.active, *v.edit, photos.Items, videos.Items, services.Items, categories.Items); f != nil {
			forms[string(v.active)] = f
			actions[string(v.active)] = actionPath(v.active, v.edit)
		} else if v.notice == nil {
			v.notice = &render.Notice{Title: "Introuvable", Message: "L'élément à modifier n'existe plus."}
		}
	}
	for k, f := range v.forms {
		forms[string(k)] = f
	}
	for k, action := range v.actions {
		actions[string(k)] = action
	}

	a.renderer.PageStatus(w, r, code, "workspace", &render.PageData{
		Title:  "Espace admin",
		Notice: v.notice,
		Flash:  v.flash,
		Data: map[string]any{
			"Active":          v.active,
			"Tabs":            tabs,
			"Forms":           forms,
			"Actions":         actions,
			"CategoryOptions": categories.Items,
			"Photos":          photos,
			"Videos":          videos,
			"Services":        services,
			"Categories":      categories,
		},
	})
}

// editForm finds id in the loaded list of kind and returns its fields as
// form values, or nil when it is not there.
func editForm(kind models.Kind, id uuid.UUID, photos []models.Photo, videos []models.Video, services []models.Service, categories []models.Category) map[string]string {
	switch kind {
	case models.KindPhoto:
		for _, p := range photos {
			if p.ID == id {
				return map[string]string{
					"id": p.ID.String(), "title": p.Title,
					"description": deref(p.Description), "category_id": uuidString(p.CategoryID),
				}
			}
		}
	case models.KindVideo:
		for _, v := range videos {
			if v.ID == id {
				return map[string]string{
					"id": v.ID.String(), "title": v.Title,
					"description": deref(v.Description), "category_id": uuidString(v.CategoryID),
				}
			}
		}
	case models.KindService:
		for _, s := range services {
			if s.ID == id {
				return map[string]string{
					"id": s.ID.String(), "title": s.Title, "description": s.Description,
					"sort_order": strconv.Itoa(s.SortOrder), "is_active": strconv.FormatBool(s.IsActive),
				}
			}
		}
	case models.KindCategory:
		for _, c := range categories {
			if c.ID == id {
				return map[string]string{
					"id": c.ID.String(), "name": c.Name, "description": deref(c.Description),
					"sort_order": strconv.Itoa(c.SortOrder), "is_active": strconv.FormatBool(c.IsActive),
				}
			}
		}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func uuidString(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}
