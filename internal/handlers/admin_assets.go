// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"gadgetsite/internal/assets"
	"gadgetsite/internal/models"
	"gadgetsite/internal/render"
)

// maxFormMemory is how much of a multipart body is held in memory before
// parts spill to temporary files.
const maxFormMemory = 32 << 20

// assetForm is a parsed workspace mutation form.
type assetForm struct {
	kind   models.Kind
	id     *uuid.UUID
	values map[string]string
	files  []multipart.File
}

// readForm parses the request body and collects the named text fields.
// On failure it has already written the response.
func (a *Admin) readForm(w http.ResponseWriter, r *http.Request, kind models.Kind, withID bool, fields ...string) (*assetForm, bool) {
	f := &assetForm{kind: kind, values: make(map[string]string, len(fields)+1)}
	if withID {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			http.NotFound(w, r)
			return nil, false
		}
		f.id = &id
		f.values["id"] = id.String()
	}

	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(maxFormMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return nil, false
		}
		http.Error(w, "Bad request", http.StatusBadRequest)
		return nil, false
	}

	for _, name := range fields {
		f.values[name] = r.PostFormValue(name)
	}
	return f, true
}

// file returns the uploaded file of a field, or nil when none was sent.
func (f *assetForm) file(r *http.Request, field string) (*assets.File, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	mf, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if header.Size == 0 {
		mf.Close()
		return nil, nil
	}
	f.files = append(f.files, mf)
	return &assets.File{
		Name:        header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Body:        mf,
	}, nil
}

// close releases open uploads and any temporary files of the form.
func (f *assetForm) close(r *http.Request) {
	for _, mf := range f.files {
		mf.Close()
	}
	if r.MultipartForm != nil {
		r.MultipartForm.RemoveAll()
	}
}

func (f *assetForm) text(name string) *string {
	s := f.values[name]
	return &s
}

func (f *assetForm) checked(name string) bool {
	return f.values[name] == "true" || f.values[name] == "on"
}

// category parses the category select. An empty value means no category.
func (f *assetForm) category() (uuid.NullUUID, error) {
	raw := strings.TrimSpace(f.values["category_id"])
	if raw == "" {
		return uuid.NullUUID{}, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.NullUUID{}, &assets.ValidationError{Field: "category_id", Message: "Unknown category."}
	}
	return uuid.NullUUID{UUID: id, Valid: true}, nil
}

func (f *assetForm) sortOrder() (int, error) {
	raw := strings.TrimSpace(f.values["sort_order"])
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &assets.ValidationError{Field: "sort_order", Message: "Order must be a whole number."}
	}
	return n, nil
}

// fail re-renders the workspace with a notification. The submitted text
// fields and the form target are kept so nothing typed is lost.
func (a *Admin) fail(w http.ResponseWriter, r *http.Request, f *assetForm, err error) {
	code, notice := failure(r, f.kind, err)
	if code == http.StatusNotFound {
		f.id = nil
		delete(f.values, "id")
	}
	values := f.values
	if values["is_active"] == "on" {
		values["is_active"] = "true"
	}
	a.renderWorkspace(w, r, code, &workspaceView{
		active:  f.kind,
		forms:   map[models.Kind]map[string]string{f.kind: values},
		actions: map[models.Kind]string{f.kind: actionPath(f.kind, f.id)},
		notice:  notice,
	})
}

// failure maps an asset error to a status code and a notification.
func failure(r *http.Request, kind models.Kind, err error) (int, *render.Notice) {
	var (
		verr *assets.ValidationError
		uerr *assets.UploadError
		werr *assets.WriteError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, &render.Notice{Title: "Invalid input", Message: verr.Message}
	case errors.Is(err, assets.ErrNotFound):
		return http.StatusNotFound, &render.Notice{
			Title: "Not found", Message: kind.Label() + " no longer exists.",
		}
	case errors.As(err, &uerr):
		logError(r.Context(), "upload failed", err, "kind", kind)
		return http.StatusBadGateway, &render.Notice{Title: "Upload failed", Message: "The file could not be stored. Nothing was saved."}
	case errors.As(err, &werr):
		logError(r.Context(), "save failed", err, "kind", kind)
		return http.StatusBadGateway, &render.Notice{Title: "Save failed", Message: werr.Err.Error()}
	default:
		logError(r.Context(), "mutation failed", err, "kind", kind)
		return http.StatusInternalServerError, &render.Notice{Title: "Error", Message: "An unexpected error occurred."}
	}
}

// done redirects back to the panel of kind after a successful mutation.
func done(w http.ResponseWriter, r *http.Request, kind models.Kind, verb string) {
	http.Redirect(w, r, "/admin?panel="+string(kind)+"&done="+string(kind)+"-"+verb+"#"+string(kind), http.StatusSeeOther)
}

func invalid(field, msg string) error {
	return &assets.ValidationError{Field: field, Message: msg}
}

// --- Photos ---

// PhotoCreate handles POST /admin/photos.
func (a *Admin) PhotoCreate(w http.ResponseWriter, r *http.Request) {
	a.photoSave(w, r, false)
}

// PhotoUpdate handles POST /admin/photos/{id}.
func (a *Admin) PhotoUpdate(w http.ResponseWriter, r *http.Request) {
	a.photoSave(w, r, true)
}

func (a *Admin) photoSave(w http.ResponseWriter, r *http.Request, update bool) {
	f, ok := a.readForm(w, r, models.KindPhoto, update, "title", "description", "category_id")
	if !ok {
		return
	}
	defer f.close(r)

	if msg := validateTitled(f.values["title"], f.values["description"]); msg != "" {
		a.fail(w, r, f, invalid("title", msg))
		return
	}
	cat, err := f.category()
	if err != nil {
		a.fail(w, r, f, err)
		return
	}
	file, err := f.file(r, "file")
	if err != nil {
		a.fail(w, r, f, invalid("file", "The uploaded file could not be read."))
		return
	}

	if !update {
		in := models.PhotoInput{Title: f.values["title"], Description: f.text("description")}
		if cat.Valid {
			in.CategoryID = &cat.UUID
		}
		if _, err := a.photos.Create(r.Context(), in, file); err != nil {
			a.fail(w, r, f, err)
			return
		}
		done(w, r, models.KindPhoto, "created")
		return
	}

	p := models.PhotoPatch{Title: f.text("title"), Description: f.text("description"), CategoryID: &cat}
	if _, err := a.photos.Update(r.Context(), *f.id, p, file); err != nil {
		a.fail(w, r, f, err)
		return
	}
	done(w, r, models.KindPhoto, "updated")
}

// PhotoDelete handles POST /admin/photos/{id}/delete.
func (a *Admin) PhotoDelete(w http.ResponseWriter, r *http.Request) {
	a.remove(w, r, models.KindPhoto, a.photos.Delete)
}

// --- Videos ---

// VideoCreate handles POST /admin/videos.
func (a *Admin) VideoCreate(w http.ResponseWriter, r *http.Request) {
	a.videoSave(w, r, false)
}

// VideoUpdate handles POST /admin/videos/{id}.
func (a *Admin) VideoUpdate(w http.ResponseWriter, r *http.Request) {
	a.videoSave(w, r, true)
}

func (a *Admin) videoSave(w http.ResponseWriter, r *http.Request, update bool) {
	f, ok := a.readForm(w, r, models.KindVideo, update, "title", "description", "category_id")
	if !ok {
		return
	}
	defer f.close(r)

	if msg := validateTitled(f.values["title"], f.values["description"]); msg != "" {
		a.fail(w, r, f, invalid("title", msg))
		return
	}
	cat, err := f.category()
	if err != nil {
		a.fail(w, r, f, err)
		return
	}
	file, err := f.file(r, "file")
	if err != nil {
		a.fail(w, r, f, invalid("file", "The uploaded file could not be read."))
		return
	}
	thumb, err := f.file(r, "thumbnail")
	if err != nil {
		a.fail(w, r, f, invalid("thumbnail", "The uploaded thumbnail could not be read."))
		return
	}

	if !update {
		in := models.VideoInput{Title: f.values["title"], Description: f.text("description")}
		if cat.Valid {
			in.CategoryID = &cat.UUID
		}
		if _, err := a.videos.Create(r.Context(), in, file, thumb); err != nil {
			a.fail(w, r, f, err)
			return
		}
		done(w, r, models.KindVideo, "created")
		return
	}

	p := models.VideoPatch{Title: f.text("title"), Description: f.text("description"), CategoryID: &cat}
	if _, err := a.videos.Update(r.Context(), *f.id, p, file, thumb); err != nil {
		a.fail(w, r, f, err)
		return
	}
	done(w, r, models.KindVideo, "updated")
}

// VideoDelete handles POST /admin/videos/{id}/delete.
func (a *Admin) VideoDelete(w http.ResponseWriter, r *http.Request) {
	a.remove(w, r, models.KindVideo, a.videos.Delete)
}

// --- Services ---

// ServiceCreate handles POST /admin/services.
func (a *Admin) ServiceCreate(w http.ResponseWriter, r *http.Request) {
	a.serviceSave(w, r, false)
}

// ServiceUpdate handles POST /admin/services/{id}.
func (a *Admin) ServiceUpdate(w http.ResponseWriter, r *http.Request) {
	a.serviceSave(w, r, true)
}

func (a *Admin) serviceSave(w http.ResponseWriter, r *http.Request, update bool) {
	f, ok := a.readForm(w, r, models.KindService, update, "title", "description", "sort_order", "is_active")
	if !ok {
		return
	}
	defer f.close(r)

	if msg := validateTitled(f.values["title"], f.values["description"]); msg != "" {
		a.fail(w, r, f, invalid("title", msg))
		return
	}
	order, err := f.sortOrder()
	if err != nil {
		a.fail(w, r, f, err)
		return
	}
	active := f.checked("is_active")
	file, err := f.file(r, "file")
	if err != nil {
		a.fail(w, r, f, invalid("file", "The uploaded file could not be read."))
		return
	}

	if !update {
		in := models.ServiceInput{
			Title:       f.values["title"],
			Description: strings.TrimSpace(f.values["description"]),
			SortOrder:   order,
			IsActive:    active,
		}
		if _, err := a.services.Create(r.Context(), in, file); err != nil {
			a.fail(w, r, f, err)
			return
		}
		done(w, r, models.KindService, "created")
		return
	}

	p := models.ServicePatch{
		Title:       f.text("title"),
		Description: f.text("description"),
		SortOrder:   &order,
		IsActive:    &active,
	}
	if _, err := a.services.Update(r.Context(), *f.id, p, file); err != nil {
		a.fail(w, r, f, err)
		return
	}
	done(w, r, models.KindService, "updated")
}

// ServiceToggle handles POST /admin/services/{id}/toggle. The form sends
// the wanted state in the active field.
func (a *Admin) ServiceToggle(w http.ResponseWriter, r *http.Request) {
	f, ok := a.readForm(w, r, models.KindService, true, "active")
	if !ok {
		return
	}
	defer f.close(r)

	active := f.checked("active")
	if _, err := a.services.SetActive(r.Context(), *f.id, active); err != nil {
		a.fail(w, r, &assetForm{kind: models.KindService, values: map[string]string{"is_active": "true", "sort_order": "0"}}, err)
		return
	}
	verb := "deactivated"
	if active {
		verb = "activated"
	}
	done(w, r, models.KindService, verb)
}

// ServiceDelete handles POST /admin/services/{id}/delete.
func (a *Admin) ServiceDelete(w http.ResponseWriter, r *http.Request) {
	a.remove(w, r, models.KindService, a.services.Delete)
}

// --- Categories ---

// CategoryCreate handles POST /admin/categories.
func (a *Admin) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	a.categorySave(w, r, false)
}

// CategoryUpdate handles POST /admin/categories/{id}.
func (a *Admin) CategoryUpdate(w http.ResponseWriter, r *http.Request) {
	a.categorySave(w, r, true)
}

func (a *Admin) categorySave(w http.ResponseWriter, r *http.Request, update bool) {
	f, ok := a.readForm(w, r, models.KindCategory, update, "name", "description", "sort_order", "is_active")
	if !ok {
		return
	}
	defer f.close(r)

	if msg := validateCategory(f.values["name"], f.values["description"]); msg != "" {
		a.fail(w, r, f, invalid("name", msg))
		return
	}
	order, err := f.sortOrder()
	if err != nil {
		a.fail(w, r, f, err)
		return
	}
	active := f.checked("is_active")

	if !update {
		in := models.CategoryInput{
			Name:        f.values["name"],
			Description: f.text("description"),
			SortOrder:   order,
			IsActive:    active,
		}
		if _, err := a.categories.Create(r.Context(), in); err != nil {
			a.fail(w, r, f, err)
			return
		}
		done(w, r, models.KindCategory, "created")
		return
	}

	p := models.CategoryPatch{
		Name:        f.text("name"),
		Description: f.text("description"),
		SortOrder:   &order,
		IsActive:    &active,
	}
	if _, err := a.categories.Update(r.Context(), *f.id, p); err != nil {
		a.fail(w, r, f, err)
		return
	}
	done(w, r, models.KindCategory, "updated")
}

// CategoryDelete handles POST /admin/categories/{id}/delete. Photos and
// videos of the category keep existing without one.
func (a *Admin) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	a.remove(w, r, models.KindCategory, a.categories.Delete)
}

// remove deletes the record named by the id URL parameter.
func (a *Admin) remove(w http.ResponseWriter, r *http.Request, kind models.Kind, del func(ctx context.Context, id uuid.UUID) error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := del(r.Context(), id); err != nil {
		a.fail(w, r, &assetForm{kind: kind, values: map[string]string{}}, err)
		return
	}
	done(w, r, kind, "deleted")
}
