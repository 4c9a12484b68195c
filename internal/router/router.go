// Package router sets up all HTTP routes and middleware chains for the
// site. It organizes routes into public, auth, admin and service groups
// with appropriate middleware stacks.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"gadgetsite/internal/handlers"
	"gadgetsite/internal/middleware"
)

// formBodyLimit caps bodies of the non-upload forms.
const formBodyLimit = 1 << 20

// Deps carries everything the router mounts.
type Deps struct {
	Principals middleware.Resolver
	Admin      *handlers.Admin
	Auth       *handlers.Auth
	Public     *handlers.Public
	Provision  *handlers.Provision

	// Static is served under /static. Media, when set, serves locally
	// stored uploads under MediaPath.
	Static    fs.FS
	Media     http.Handler
	MediaPath string

	// AuthLimiter throttles sign-in, sign-up and code checks; ContactLimiter
	// throttles the contact form. Either may be nil.
	AuthLimiter    *middleware.RateLimiter
	ContactLimiter *middleware.RateLimiter

	ServiceKey     string
	SecureCookies  bool
	MaxUploadBytes int64
	MediaOrigins   []string
	FrameOrigins   []string
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders(d.MediaOrigins, d.FrameOrigins))

	// Health check: no session, no CSRF.
	r.Get("/health", healthHandler)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(d.Static))))
	if d.Media != nil && d.MediaPath != "" {
		r.Handle(d.MediaPath+"/*", http.StripPrefix(d.MediaPath+"/", d.Media))
	}

	// Read-only JSON API.
	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", d.Public.APICategories)
		r.Get("/services", d.Public.APIServices)
		r.Get("/photos", d.Public.APIPhotos)
		r.Get("/videos", d.Public.APIVideos)
	})

	// Service-to-service provisioning, authorized by bearer key only.
	r.With(middleware.RequireServiceKey(d.ServiceKey), middleware.MaxBody(formBodyLimit)).
		Post("/internal/provision-admins", d.Provision.ServeHTTP)

	csrf := middleware.NewCSRF(d.SecureCookies)
	principal := middleware.LoadPrincipal(d.Principals)

	// Public pages and auth forms.
	r.Group(func(r chi.Router) {
		r.Use(middleware.MaxBody(formBodyLimit))
		r.Use(principal)
		r.Use(csrf)

		r.Get("/", d.Public.Home)
		r.Get("/contact/qr.png", d.Public.ContactQR)
		r.With(limit(d.ContactLimiter)).Post("/contact", d.Public.Contact)

		r.Route("/auth", func(r chi.Router) {
			r.Get("/", d.Auth.Page)
			r.Post("/sign-out", d.Auth.SignOut)
			r.Group(func(r chi.Router) {
				r.Use(limit(d.AuthLimiter))
				r.Post("/sign-in", d.Auth.SignIn)
				r.Post("/sign-up", d.Auth.SignUp)
				r.Post("/verify", d.Auth.Verify)
			})
		})
	})

	// Admin workspace: the body cap runs before CSRF parses uploads, and
	// the gate runs before any handler can reach a repository.
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.MaxBody(d.MaxUploadBytes))
		r.Use(principal)
		r.Use(d.Admin.Gate)
		r.Use(csrf)

		r.Get("/", d.Admin.Workspace)
		r.Get("/security", d.Admin.Security)
		r.Post("/security", d.Admin.SecurityConfirm)

		r.Route("/photos", func(r chi.Router) {
			r.Post("/", d.Admin.PhotoCreate)
			r.Post("/{id}", d.Admin.PhotoUpdate)
			r.Post("/{id}/delete", d.Admin.PhotoDelete)
		})
		r.Route("/videos", func(r chi.Router) {
			r.Post("/", d.Admin.VideoCreate)
			r.Post("/{id}", d.Admin.VideoUpdate)
			r.Post("/{id}/delete", d.Admin.VideoDelete)
		})
		r.Route("/services", func(r chi.Router) {
			r.Post("/", d.Admin.ServiceCreate)
			r.Post("/{id}", d.Admin.ServiceUpdate)
			r.Post("/{id}/toggle", d.Admin.ServiceToggle)
			r.Post("/{id}/delete", d.Admin.ServiceDelete)
		})
		r.Route("/categories", func(r chi.Router) {
			r.Post("/", d.Admin.CategoryCreate)
			r.Post("/{id}", d.Admin.CategoryUpdate)
			r.Post("/{id}/delete", d.Admin.CategoryDelete)
		})
	})

	return r
}

// limit returns rl's middleware, or a pass-through when rl is nil.
func limit(rl *middleware.RateLimiter) func(http.Handler) http.Handler {
	if rl == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return rl.Middleware
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
