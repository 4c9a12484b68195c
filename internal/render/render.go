// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the public site,
// the auth pages and the admin workspace. Every page is paired with the
// shared base layout.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"gadgetsite/internal/auth"
	"gadgetsite/internal/markdown"
	"gadgetsite/internal/middleware"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageData holds all data passed to templates.
type PageData struct {
	Title     string         // Page title for <title> tag
	SiteName  string         // Business name shown in the header
	Status    auth.Status    // Resolved principal of the request
	CSRFToken string         // CSRF token for forms
	Notice    *Notice        // Failure notification, if any
	Flash     string         // One-time success message
	Refresh   int            // Seconds before the browser reloads, 0 for never
	Data      map[string]any // Page-specific data
}

// Notice is a failure notification with a title and a message.
type Notice struct {
	Title   string
	Message string
}

// Renderer parses templates once and executes them per request.
type Renderer struct {
	templates map[string]*template.Template
	siteName  string
}

var funcMap = template.FuncMap{
	// deref safely dereferences a string pointer.
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	// uuidEq reports whether ptr is set and equal to val.
	"uuidEq": func(ptr *uuid.UUID, val uuid.UUID) bool {
		return ptr != nil && *ptr == val
	},
	"markdown": markdown.HTML,
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("02/01/2006 15:04")
	},
	"isVideo": func(url string) bool {
		lower := strings.ToLower(url)
		for _, ext := range []string{".mp4", ".webm", ".mov", ".avi"} {
			if strings.HasSuffix(lower, ext) {
				return true
			}
		}
		return false
	},
}

// New parses every embedded page template together with base.html.
func New(siteName string) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		siteName:  siteName,
	}

	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == "base.html" || !strings.HasSuffix(name, ".html") {
			continue
		}
		tmpl, err := template.New("base.html").Funcs(funcMap).ParseFS(
			templateFS, "templates/base.html", "templates/"+name,
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.templates[strings.TrimSuffix(name, ".html")] = tmpl
	}
	return r, nil
}

// Has reports whether a page template exists.
func (rn *Renderer) Has(name string) bool {
	_, ok := rn.templates[name]
	return ok
}

// Page renders a page with status 200.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	rn.PageStatus(w, r, http.StatusOK, name, data)
}

// PageStatus renders a page with the given status code. The page is
// rendered into a buffer first so a template error still yields a clean 500.
func (rn *Renderer) PageStatus(w http.ResponseWriter, r *http.Request, code int, name string, data *PageData) {
	tmpl, ok := rn.templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("template %q not found", name), http.StatusInternalServerError)
		return
	}

	if data == nil {
		data = &PageData{}
	}
	data.SiteName = rn.siteName
	data.CSRFToken = middleware.CSRFTokenFromCtx(r.Context())
	data.Status = middleware.StatusFromCtx(r.Context())
	if data.Data == nil {
		data.Data = map[string]any{}
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		slog.Error("template execution failed", "template", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	buf.WriteTo(w)
}
