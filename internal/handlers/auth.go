package handlers

import (
	"context"
	"errors"
	"net/http"

	"gadgetsite/internal/auth"
	"gadgetsite/internal/middleware"
	"gadgetsite/internal/models"
	"gadgetsite/internal/render"
	"gadgetsite/internal/store"
)

// Authenticator drives the sign-in flows, see *auth.Provider.
type Authenticator interface {
	SignIn(ctx context.Context, w http.ResponseWriter, email, password string) (bool, error)
	VerifySecondFactor(ctx context.Context, r *http.Request, code string) error
	SignUp(ctx context.Context, email, password, displayName string) (*models.User, error)
	SignOut(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	renderer *render.Renderer
	provider Authenticator
}

// NewAuth creates a new Auth handler group.
func NewAuth(renderer *render.Renderer, provider Authenticator) *Auth {
	return &Auth{renderer: renderer, provider: provider}
}

// Page renders the sign-in form, the sign-up form (?mode=sign-up) or the
// second-factor form when a session is waiting for its code.
func (a *Auth) Page(w http.ResponseWriter, r *http.Request) {
	st := middleware.StatusFromCtx(r.Context())
	if st.SignedIn() {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	mode := "sign-in"
	switch {
	case st.PendingSecondFactor():
		mode = "code"
	case r.URL.Query().Get("mode") == "sign-up":
		mode = "sign-up"
	}
	var flash string
	if r.URL.Query().Get("done") == "sign-up" {
		flash = "Compte créé. Vous pouvez vous connecter."
	}
	a.render(w, r, http.StatusOK, mode, nil, flash, nil)
}

// SignIn processes the sign-in form.
func (a *Auth) SignIn(w http.ResponseWriter, r *http.Request) {
	email := r.PostFormValue("email")
	needsCode, err := a.provider.SignIn(r.Context(), w, email, r.PostFormValue("password"))
	if err != nil {
		code, notice := http.StatusUnauthorized, &render.Notice{
			Title: "Échec de la connexion", Message: "Email ou mot de passe incorrect.",
		}
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			logError(r.Context(), "sign in failed", err)
			code, notice = http.StatusServiceUnavailable, &render.Notice{
				Title: "Service indisponible", Message: "La connexion est impossible pour le moment. Réessayez.",
			}
		}
		a.render(w, r, code, "sign-in", notice, "", map[string]any{"Email": email})
		return
	}

	if needsCode {
		http.Redirect(w, r, "/auth", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// SignUp creates a principal without any role. The new account still has
// to sign in, and it reaches the workspace only once an admin role is
// granted.
func (a *Auth) SignUp(w http.ResponseWriter, r *http.Request) {
	email := r.PostFormValue("email")
	name := r.PostFormValue("display_name")
	_, err := a.provider.SignUp(r.Context(), email, r.PostFormValue("password"), name)
	if err == nil {
		http.Redirect(w, r, "/auth?done=sign-up", http.StatusSeeOther)
		return
	}

	var (
		inputErr *auth.InputError
		code     int
		notice   *render.Notice
	)
	switch {
	case errors.As(err, &inputErr):
		code, notice = http.StatusUnprocessableEntity, &render.Notice{Title: "Champ invalide", Message: inputErr.Message}
	case errors.Is(err, store.ErrEmailTaken):
		code, notice = http.StatusConflict, &render.Notice{Title: "Inscription impossible", Message: "Un compte existe déjà pour cet email."}
	default:
		logError(r.Context(), "sign up failed", err)
		code, notice = http.StatusInternalServerError, &render.Notice{Title: "Erreur", Message: "L'inscription a échoué. Réessayez."}
	}
	a.render(w, r, code, "sign-up", notice, "", map[string]any{"Email": email, "DisplayName": name})
}

// Verify checks the TOTP code of a pending session.
func (a *Auth) Verify(w http.ResponseWriter, r *http.Request) {
	err := a.provider.VerifySecondFactor(r.Context(), r, r.PostFormValue("code"))
	switch {
	case err == nil:
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
	case errors.Is(err, auth.ErrNoSession):
		http.Redirect(w, r, "/auth", http.StatusSeeOther)
	case errors.Is(err, auth.ErrInvalidCode), errors.Is(err, auth.ErrNotEnrolled):
		a.render(w, r, http.StatusUnprocessableEntity, "code", &render.Notice{
			Title: "Code invalide", Message: "Le code saisi ne correspond pas. Réessayez.",
		}, "", nil)
	default:
		logError(r.Context(), "verify code failed", err)
		a.render(w, r, http.StatusServiceUnavailable, "code", &render.Notice{
			Title: "Service indisponible", Message: "La vérification est impossible pour le moment.",
		}, "", nil)
	}
}

// SignOut ends the session and returns to the home page.
func (a *Auth) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := a.provider.SignOut(r.Context(), w, r); err != nil {
		logError(r.Context(), "sign out failed", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *Auth) render(w http.ResponseWriter, r *http.Request, code int, mode string, notice *render.Notice, flash string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	data["Mode"] = mode
	title := "Connexion"
	if mode == "sign-up" {
		title = "Inscription"
	}
	a.renderer.PageStatus(w, r, code, "auth", &render.PageData{
		Title:  title,
		Notice: notice,
		Flash:  flash,
		Data:   data,
	})
}
