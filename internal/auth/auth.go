// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package auth resolves the caller of a request into one of four states
// and implements sign-in, sign-up, sign-out and the optional TOTP second
// factor on top of the session and user stores.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"gadgetsite/internal/models"
	"gadgetsite/internal/session"
)

// MinPasswordLength mirrors the sign-up form.
const MinPasswordLength = 6

var (
	// ErrInvalidCredentials is returned for an unknown email or wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidCode is returned when a TOTP code does not validate.
	ErrInvalidCode = errors.New("invalid code")
	// ErrNoSession is returned when an operation needs a session and there is none.
	ErrNoSession = errors.New("no session")
	// ErrNotEnrolled is returned when a TOTP code is checked for a user
	// without a secret.
	ErrNotEnrolled = errors.New("second factor not enrolled")
)

// State is the resolved authorization state of a request.
type State int

const (
	// Loading means the session or role lookup was inconclusive.
	Loading State = iota
	// Anonymous means there is no usable session.
	Anonymous
	// Authenticated means a signed-in principal without an elevated role.
	Authenticated
	// Privileged means a signed-in principal holding the admin role.
	Privileged
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	case Privileged:
		return "privileged"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Status is the outcome of Resolve. Session is set whenever a session
// exists, including one still waiting for its second factor.
type Status struct {
	State   State
	Session *session.Data
}

// SignedIn reports whether the principal has a complete session.
func (s Status) SignedIn() bool {
	return s.State == Authenticated || s.State == Privileged
}

// PendingSecondFactor reports whether a session exists that still needs
// a TOTP code.
func (s Status) PendingSecondFactor() bool {
	return s.Session != nil && !s.Session.SecondFactorDone
}

// Sessions is the session store used by the Provider, see *session.Store.
type Sessions interface {
	Create(ctx context.Context, w http.ResponseWriter, data *session.Data) (string, error)
	Get(ctx context.Context, r *http.Request) (*session.Data, error)
	Update(ctx context.Context, r *http.Request, data *session.Data) error
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// Users is the principal store used by the Provider, see *store.UserStore.
type Users interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Create(ctx context.Context, email, password, displayName string) (*models.User, error)
	Roles(ctx context.Context, userID uuid.UUID) ([]models.Role, error)
	SetTOTPSecret(ctx context.Context, userID uuid.UUID, secret string) error
	EnableTOTP(ctx context.Context, userID uuid.UUID) error
	CheckPassword(user *models.User, password string) bool
}

// Provider resolves request principals and drives the auth flows. It is
// built once at startup and passed to middleware and handlers.
type Provider struct {
	sessions Sessions
	users    Users
	issuer   string
}

// NewProvider creates a Provider. issuer labels TOTP enrolments.
func NewProvider(sessions Sessions, users Users, issuer string) *Provider {
	return &Provider{sessions: sessions, users: users, issuer: issuer}
}

// Resolve determines the state of the principal behind r. Store failures
// yield Loading rather than Anonymous so that callers never redirect a
// signed-in admin to the sign-in page on a transient outage.
func (p *Provider) Resolve(ctx context.Context, r *http.Request) Status {
	sess, err := p.sessions.Get(ctx, r)
	if err != nil {
		slog.Warn("session lookup failed", "error", err)
		return Status{State: Loading}
	}
	if sess == nil {
		return Status{State: Anonymous}
	}
	if !sess.SecondFactorDone {
		return Status{State: Anonymous, Session: sess}
	}

	roles, err := p.users.Roles(ctx, sess.UserID)
	if err != nil {
		slog.Warn("role lookup failed", "user_id", sess.UserID, "error", err)
		return Status{State: Loading, Session: sess}
	}
	if models.IsPrivileged(roles) {
		return Status{State: Privileged, Session: sess}
	}
	return Status{State: Authenticated, Session: sess}
}

// SignIn checks credentials and starts a session. It reports whether the
// session still needs a TOTP code before it counts as signed in.
func (p *Provider) SignIn(ctx context.Context, w http.ResponseWriter, email, password string) (bool, error) {
	user, err := p.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return false, fmt.Errorf("sign in: %w", err)
	}
	if user == nil || !p.users.CheckPassword(user, password) {
		return false, ErrInvalidCredentials
	}

	needsCode := user.NeedsSecondFactor()
	_, err = p.sessions.Create(ctx, w, &session.Data{
		UserID:           user.ID,
		Email:            user.Email,
		DisplayName:      user.DisplayName,
		SecondFactorDone: !needsCode,
	})
	if err != nil {
		return false, fmt.Errorf("sign in: %w", err)
	}
	return needsCode, nil
}

// VerifySecondFactor completes a pending session with a TOTP code.
func (p *Provider) VerifySecondFactor(ctx context.Context, r *http.Request, code string) error {
	sess, err := p.sessions.Get(ctx, r)
	if err != nil {
		return fmt.Errorf("verify code: %w", err)
	}
	if sess == nil {
		return ErrNoSession
	}

	user, err := p.users.FindByID(ctx, sess.UserID)
	if err != nil {
		return fmt.Errorf("verify code: %w", err)
	}
	if user == nil {
		return ErrNoSession
	}
	if err := validateCode(user, code); err != nil {
		return err
	}

	sess.SecondFactorDone = true
	if err := p.sessions.Update(ctx, r, sess); err != nil {
		return fmt.Errorf("verify code: %w", err)
	}
	return nil
}

// SignUp creates a principal with no elevated role. The caller is not
// signed in.
func (p *Provider) SignUp(ctx context.Context, email, password, displayName string) (*models.User, error) {
	email = normalizeEmail(email)
	displayName = strings.TrimSpace(displayName)
	if err := ValidateCredentials(email, password); err != nil {
		return nil, err
	}
	if displayName == "" {
		return nil, &InputError{Field: "display_name", Message: "Name is required."}
	}

	user, err := p.users.Create(ctx, email, password, displayName)
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}
	return user, nil
}

// SignOut ends the session. Destroying an absent session is not an error.
func (p *Provider) SignOut(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return p.sessions.Destroy(ctx, w, r)
}

// InputError reports an invalid sign-up or sign-in field.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string { return e.Field + ": " + e.Message }

// ValidateCredentials checks the shape of an email and password pair.
func ValidateCredentials(email, password string) error {
	if email == "" {
		return &InputError{Field: "email", Message: "Email is required."}
	}
	at := strings.LastIndex(email, "@")
	if at < 1 || at == len(email)-1 || strings.ContainsAny(email, " \t\r\n") {
		return &InputError{Field: "email", Message: "Email address is not valid."}
	}
	if len(password) < MinPasswordLength {
		return &InputError{
			Field:   "password",
			Message: fmt.Sprintf("Password must be at least %d characters.", MinPasswordLength),
		}
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
