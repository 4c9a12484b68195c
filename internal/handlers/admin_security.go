package handlers

import (
	"encoding/base64"
	"errors"
	"net/http"

	"gadgetsite/internal/auth"
	"gadgetsite/internal/middleware"
	"gadgetsite/internal/render"
)

// activityLimit is how many invalidations the security page lists.
const activityLimit = 20

// Security renders the TOTP enrolment page of the signed-in admin.
func (a *Admin) Security(w http.ResponseWriter, r *http.Request) {
	a.renderSecurity(w, r, http.StatusOK, nil)
}

// SecurityConfirm enables the second factor once the submitted code
// matches the pending secret.
func (a *Admin) SecurityConfirm(w http.ResponseWriter, r *http.Request) {
	sess := middleware.StatusFromCtx(r.Context()).Session
	err := a.enroller.ConfirmEnrolment(r.Context(), sess.UserID, r.PostFormValue("code"))
	switch {
	case err == nil:
		a.renderSecurity(w, r, http.StatusOK, nil)
	case errors.Is(err, auth.ErrInvalidCode), errors.Is(err, auth.ErrNotEnrolled):
		a.renderSecurity(w, r, http.StatusUnprocessableEntity, &render.Notice{
			Title: "Code invalide", Message: "Le code saisi ne correspond pas. Réessayez.",
		})
	default:
		logError(r.Context(), "confirm enrolment failed", err)
		a.renderSecurity(w, r, http.StatusInternalServerError, &render.Notice{
			Title: "Erreur", Message: "L'activation a échoué. Réessayez plus tard.",
		})
	}
}

func (a *Admin) renderSecurity(w http.ResponseWriter, r *http.Request, code int, notice *render.Notice) {
	sess := middleware.StatusFromCtx(r.Context()).Session
	en, err := a.enroller.CurrentEnrolment(r.Context(), sess.UserID, sess.Email)
	if err != nil {
		logError(r.Context(), "load enrolment failed", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	data := map[string]any{"Enabled": en == nil}
	if en != nil {
		data["QRCode"] = base64.StdEncoding.EncodeToString(en.QRCode)
		data["Secret"] = en.Secret
	}
	if a.activity != nil {
		entries, err := a.activity.RecentEntries(r.Context(), activityLimit)
		if err != nil {
			logError(r.Context(), "load recent activity failed", err)
			data["ActivityErr"] = "Historique indisponible."
		}
		data["Activity"] = entries
	}
	a.renderer.PageStatus(w, r, code, "security", &render.PageData{
		Title:  "Sécurité",
		Notice: notice,
		Data:   data,
	})
}
