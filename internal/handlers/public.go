// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"gadgetsite/internal/assets"
	"gadgetsite/internal/contact"
	"gadgetsite/internal/models"
	"gadgetsite/internal/render"
)

// contactQRSize is the edge length in pixels of the WhatsApp QR code.
const contactQRSize = 320

// fieldLabels names contact form fields in notifications.
var fieldLabels = map[string]string{
	"name":        "Nom",
	"phone":       "Téléphone",
	"email":       "Email",
	"service":     "Type de service",
	"description": "Description",
}

// Public groups handlers for the public site and its read-only JSON API.
// Nothing here mutates an asset.
type Public struct {
	renderer   *render.Renderer
	photos     Lister[models.Photo]
	videos     Lister[models.Video]
	services   Lister[models.Service]
	categories Lister[models.Category]
	contact    *contact.Channels
	mapURL     string
}

// NewPublic creates a new Public handler group. mapURL may be empty to
// hide the map section.
func NewPublic(renderer *render.Renderer, photos Lister[models.Photo], videos Lister[models.Video], services Lister[models.Service], categories Lister[models.Category], channels *contact.Channels, mapURL string) *Public {
	return &Public{
		renderer:   renderer,
		photos:     photos,
		videos:     videos,
		services:   services,
		categories: categories,
		contact:    channels,
		mapURL:     mapURL,
	}
}

// Home renders the landing page. ?category=<id> narrows the gallery;
// "all", an empty value or an unknown id shows everything.
func (p *Public) Home(w http.ResponseWriter, r *http.Request) {
	p.renderHome(w, r, http.StatusOK, contact.Request{}, nil)
}

// galleryFilter parses the category query parameter.
func galleryFilter(raw string) (assets.Filter, string) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return assets.Filter{}, "all"
	}
	return assets.Filter{CategoryID: &id}, id.String()
}

// renderHome loads each section independently; a failing section shows
// its own message and the rest of the page still renders.
func (p *Public) renderHome(w http.ResponseWriter, r *http.Request, code int, form contact.Request, notice *render.Notice) {
	ctx := r.Context()
	filter, filterKey := galleryFilter(r.URL.Query().Get("category"))

	var (
		wg                   sync.WaitGroup
		services             []models.Service
		categories           []models.Category
		photos               []models.Photo
		videos               []models.Video
		servicesErr, catErr  error
		photosErr, videosErr error
	)
	wg.Add(4)
	go func() {
		defer wg.Done()
		services, servicesErr = p.services.List(ctx, assets.Filter{ActiveOnly: true})
	}()
	go func() {
		defer wg.Done()
		categories, catErr = p.categories.List(ctx, assets.Filter{ActiveOnly: true})
	}()
	go func() {
		defer wg.Done()
		photos, photosErr = p.photos.List(ctx, filter)
	}()
	go func() {
		defer wg.Done()
		videos, videosErr = p.videos.List(ctx, filter)
	}()
	wg.Wait()

	data := map[string]any{
		"Services":       services,
		"Categories":     categories,
		"Photos":         photos,
		"Videos":         videos,
		"Filter":         filterKey,
		"Form":           form,
		"ServiceOptions": serviceOptions(services),
		"ChatURL":        p.contact.ChatURL(),
		"MapURL":         p.mapURL,
	}
	if servicesErr != nil {
		logError(ctx, "load services failed", servicesErr)
		data["ServicesError"] = "Les services sont momentanément indisponibles."
	}
	if catErr != nil {
		logError(ctx, "load categories failed", catErr)
	}
	if err := errors.Join(photosErr, videosErr); err != nil {
		logError(ctx, "load gallery failed", err)
		data["GalleryError"] = "La galerie est momentanément indisponible."
	}

	p.renderer.PageStatus(w, r, code, "home", &render.PageData{
		Title:  "Accueil",
		Notice: notice,
		Data:   data,
	})
}

// serviceOptions lists the service titles offered in the contact form.
func serviceOptions(services []models.Service) []string {
	if len(services) == 0 {
		return contact.DefaultServices
	}
	opts := make([]string, 0, len(services))
	for _, s := range services {
		opts = append(opts, s.Title)
	}
	return opts
}

// Contact validates the request form and redirects the browser to the
// prefilled WhatsApp or e-mail link. Nothing is sent from the server.
func (p *Public) Contact(w http.ResponseWriter, r *http.Request) {
	req := contact.Request{
		Name:        r.PostFormValue("name"),
		Phone:       r.PostFormValue("phone"),
		Email:       r.PostFormValue("email"),
		Service:     r.PostFormValue("service"),
		Description: r.PostFormValue("description"),
	}.Trimmed()

	var (
		link string
		err  error
	)
	if r.PostFormValue("channel") == "email" {
		link, err = p.contact.MailtoURL(req)
	} else {
		link, err = p.contact.WhatsAppURL(req)
	}

	var fe *contact.FieldError
	if errors.As(err, &fe) {
		p.renderHome(w, r, http.StatusUnprocessableEntity, req, &render.Notice{
			Title:   "Champs manquants",
			Message: fieldMessage(fe),
		})
		return
	}
	if err != nil {
		logError(r.Context(), "build contact link failed", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, link, http.StatusSeeOther)
}

func fieldMessage(fe *contact.FieldError) string {
	labels := func(fields []string) string {
		out := make([]string, len(fields))
		for i, f := range fields {
			out[i] = fieldLabels[f]
		}
		return strings.Join(out, ", ")
	}
	var parts []string
	if len(fe.Missing) > 0 {
		parts = append(parts, "Veuillez remplir : "+labels(fe.Missing)+".")
	}
	if len(fe.TooLong) > 0 {
		parts = append(parts, "Trop long : "+labels(fe.TooLong)+".")
	}
	return strings.Join(parts, " ")
}

// ContactQR serves a QR code opening the WhatsApp chat.
func (p *Public) ContactQR(w http.ResponseWriter, r *http.Request) {
	png, err := p.contact.QRCode(contactQRSize)
	if err != nil {
		logError(r.Context(), "contact qr failed", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write(png)
}

// --- JSON read API ---

// APICategories serves the active categories.
func (p *Public) APICategories(w http.ResponseWriter, r *http.Request) {
	serveList(w, r, p.categories, assets.Filter{ActiveOnly: true})
}

// APIServices serves the active services.
func (p *Public) APIServices(w http.ResponseWriter, r *http.Request) {
	serveList(w, r, p.services, assets.Filter{ActiveOnly: true})
}

// APIPhotos serves photos, optionally narrowed by ?category=<id>.
func (p *Public) APIPhotos(w http.ResponseWriter, r *http.Request) {
	filter, ok := apiFilter(w, r)
	if !ok {
		return
	}
	serveList(w, r, p.photos, filter)
}

// APIVideos serves videos, optionally narrowed by ?category=<id>.
func (p *Public) APIVideos(w http.ResponseWriter, r *http.Request) {
	filter, ok := apiFilter(w, r)
	if !ok {
		return
	}
	serveList(w, r, p.videos, filter)
}

// apiFilter parses ?category= strictly: a value that is neither empty,
// "all" nor a UUID is a client error.
func apiFilter(w http.ResponseWriter, r *http.Request) (assets.Filter, bool) {
	raw := r.URL.Query().Get("category")
	if raw == "" || raw == "all" {
		return assets.Filter{}, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("invalid category %q", raw)})
		return assets.Filter{}, false
	}
	return assets.Filter{CategoryID: &id}, true
}

func serveList[T any](w http.ResponseWriter, r *http.Request, l Lister[T], f assets.Filter) {
	items, err := l.List(r.Context(), f)
	if err != nil {
		logError(r.Context(), "api list failed", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "temporarily unavailable"})
		return
	}
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, items)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
