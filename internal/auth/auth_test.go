// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"

	"gadgetsite/internal/models"
	"gadgetsite/internal/session"
	"gadgetsite/internal/store"
)

// fakeSessions keeps sessions in memory keyed by cookie value.
type fakeSessions struct {
	data   map[string]*session.Data
	getErr error
	next   int
}

func newFakeSessions() *fakeSessions { return &fakeSessions{data: map[string]*session.Data{}} }

func (f *fakeSessions) Create(ctx context.Context, w http.ResponseWriter, data *session.Data) (string, error) {
	f.next++
	id := "sess-" + string(rune('a'+f.next))
	cp := *data
	f.data[id] = &cp
	http.SetCookie(w, &http.Cookie{Name: session.CookieName, Value: id, Path: "/"})
	return id, nil
}

func (f *fakeSessions) Get(ctx context.Context, r *http.Request) (*session.Data, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	c, err := r.Cookie(session.CookieName)
	if err != nil {
		return nil, nil
	}
	d, ok := f.data[c.Value]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (f *fakeSessions) Update(ctx context.Context, r *http.Request, data *session.Data) error {
	c, err := r.Cookie(session.CookieName)
	if err != nil {
		return errors.New("no cookie")
	}
	cp := *data
	f.data[c.Value] = &cp
	return nil
}

func (f *fakeSessions) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if c, err := r.Cookie(session.CookieName); err == nil {
		delete(f.data, c.Value)
	}
	return nil
}

// fakeUsers stores plain-text passwords; hashing is covered by store tests.
type fakeUsers struct {
	byID      map[uuid.UUID]*models.User
	passwords map[uuid.UUID]string
	roles     map[uuid.UUID][]models.Role
	rolesErr  error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		byID:      map[uuid.UUID]*models.User{},
		passwords: map[uuid.UUID]string{},
		roles:     map[uuid.UUID][]models.Role{},
	}
}

func (f *fakeUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return f.byID[id], nil
}

func (f *fakeUsers) Create(ctx context.Context, email, password, displayName string) (*models.User, error) {
	if u, _ := f.FindByEmail(ctx, email); u != nil {
		return nil, store.ErrEmailTaken
	}
	u := &models.User{ID: uuid.New(), Email: email, DisplayName: displayName}
	f.byID[u.ID] = u
	f.passwords[u.ID] = password
	return u, nil
}

func (f *fakeUsers) Roles(ctx context.Context, userID uuid.UUID) ([]models.Role, error) {
	if f.rolesErr != nil {
		return nil, f.rolesErr
	}
	return f.roles[userID], nil
}

func (f *fakeUsers) SetTOTPSecret(ctx context.Context, userID uuid.UUID, secret string) error {
	f.byID[userID].TOTPSecret = &secret
	f.byID[userID].TOTPEnabled = false
	return nil
}

func (f *fakeUsers) EnableTOTP(ctx context.Context, userID uuid.UUID) error {
	f.byID[userID].TOTPEnabled = true
	return nil
}

func (f *fakeUsers) CheckPassword(user *models.User, password string) bool {
	return f.passwords[user.ID] == password
}

// signIn signs in and returns a request carrying the new session cookie.
func signIn(t *testing.T, p *Provider, email, password string) (*http.Request, bool) {
	t.Helper()
	rec := httptest.NewRecorder()
	needsCode, err := p.SignIn(context.Background(), rec, email, password)
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req, needsCode
}

func setup(t *testing.T) (*Provider, *fakeSessions, *fakeUsers) {
	t.Helper()
	sessions := newFakeSessions()
	users := newFakeUsers()
	return NewProvider(sessions, users, "Univers des Gadgets"), sessions, users
}

func TestResolveAnonymousWithoutSession(t *testing.T) {
	p, _, _ := setup(t)
	st := p.Resolve(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	if st.State != Anonymous {
		t.Errorf("State = %v, want anonymous", st.State)
	}
	if st.Session != nil {
		t.Error("Session should be nil")
	}
}

func TestResolveAuthenticatedAndPrivileged(t *testing.T) {
	p, _, users := setup(t)
	ctx := context.Background()
	u, err := p.SignUp(ctx, "Someone@Example.com ", "secret1", "Someone")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if u.Email != "someone@example.com" {
		t.Errorf("email = %q, want normalized", u.Email)
	}

	req, needsCode := signIn(t, p, "someone@example.com", "secret1")
	if needsCode {
		t.Error("no second factor expected")
	}
	if st := p.Resolve(ctx, req); st.State != Authenticated {
		t.Errorf("State = %v, want authenticated", st.State)
	}

	users.roles[u.ID] = []models.Role{models.RoleAdmin}
	st := p.Resolve(ctx, req)
	if st.State != Privileged {
		t.Errorf("State = %v, want privileged", st.State)
	}
	if !st.SignedIn() || st.Session.UserID != u.ID {
		t.Errorf("unexpected status %+v", st)
	}
}

func TestResolveLoadingOnStoreFailure(t *testing.T) {
	p, sessions, users := setup(t)
	ctx := context.Background()
	if _, err := p.SignUp(ctx, "a@b.cm", "secret1", "A"); err != nil {
		t.Fatal(err)
	}
	req, _ := signIn(t, p, "a@b.cm", "secret1")

	users.rolesErr = errors.New("connection reset")
	if st := p.Resolve(ctx, req); st.State != Loading {
		t.Errorf("role failure: State = %v, want loading", st.State)
	}

	users.rolesErr = nil
	sessions.getErr = errors.New("valkey down")
	if st := p.Resolve(ctx, req); st.State != Loading {
		t.Errorf("session failure: State = %v, want loading", st.State)
	}
}

func TestSignInInvalidCredentials(t *testing.T) {
	p, _, _ := setup(t)
	ctx := context.Background()
	if _, err := p.SignUp(ctx, "a@b.cm", "secret1", "A"); err != nil {
		t.Fatal(err)
	}

	for _, tc := range []struct{ email, password string }{
		{"a@b.cm", "wrong-password"},
		{"nobody@b.cm", "secret1"},
	} {
		rec := httptest.NewRecorder()
		_, err := p.SignIn(ctx, rec, tc.email, tc.password)
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("SignIn(%q) err = %v, want ErrInvalidCredentials", tc.email, err)
		}
		if len(rec.Result().Cookies()) != 0 {
			t.Error("no cookie should be set on failure")
		}
	}
}

func TestSignUpValidation(t *testing.T) {
	p, _, _ := setup(t)
	ctx := context.Background()

	tests := []struct {
		name, email, password, displayName, field string
	}{
		{"missing email", "", "secret1", "A", "email"},
		{"bad email", "not-an-email", "secret1", "A", "email"},
		{"short password", "a@b.cm", "12345", "A", "password"},
		{"missing name", "a@b.cm", "secret1", "  ", "display_name"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := p.SignUp(ctx, tc.email, tc.password, tc.displayName)
			var ierr *InputError
			if !errors.As(err, &ierr) {
				t.Fatalf("err = %v, want *InputError", err)
			}
			if ierr.Field != tc.field {
				t.Errorf("Field = %q, want %q", ierr.Field, tc.field)
			}
		})
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	p, _, _ := setup(t)
	ctx := context.Background()
	if _, err := p.SignUp(ctx, "a@b.cm", "secret1", "A"); err != nil {
		t.Fatal(err)
	}
	_, err := p.SignUp(ctx, "A@B.cm", "secret2", "B")
	if !errors.Is(err, store.ErrEmailTaken) {
		t.Errorf("err = %v, want ErrEmailTaken", err)
	}
}

func TestSignUpGrantsNoRole(t *testing.T) {
	p, _, users := setup(t)
	u, err := p.SignUp(context.Background(), "a@b.cm", "secret1", "A")
	if err != nil {
		t.Fatal(err)
	}
	if len(users.roles[u.ID]) != 0 {
		t.Errorf("roles = %v, want none", users.roles[u.ID])
	}
}

func TestSignOut(t *testing.T) {
	p, _, _ := setup(t)
	ctx := context.Background()
	if _, err := p.SignUp(ctx, "a@b.cm", "secret1", "A"); err != nil {
		t.Fatal(err)
	}
	req, _ := signIn(t, p, "a@b.cm", "secret1")

	if err := p.SignOut(ctx, httptest.NewRecorder(), req); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if st := p.Resolve(ctx, req); st.State != Anonymous {
		t.Errorf("State = %v, want anonymous", st.State)
	}
}

func TestSecondFactorFlow(t *testing.T) {
	p, _, users := setup(t)
	ctx := context.Background()
	u, err := p.SignUp(ctx, "admin@b.cm", "secret1", "Admin")
	if err != nil {
		t.Fatal(err)
	}
	users.roles[u.ID] = []models.Role{models.RoleAdmin}

	en, err := p.BeginEnrolment(ctx, u.ID, u.Email)
	if err != nil {
		t.Fatalf("BeginEnrolment: %v", err)
	}
	if en.Secret == "" || !strings.HasPrefix(en.URL, "otpauth://totp/") {
		t.Errorf("unexpected enrolment %+v", en)
	}
	if len(en.QRCode) < 8 || string(en.QRCode[1:4]) != "PNG" {
		t.Error("QRCode is not a PNG")
	}

	if err := p.ConfirmEnrolment(ctx, u.ID, "000000x"); !errors.Is(err, ErrInvalidCode) {
		t.Errorf("bad code err = %v, want ErrInvalidCode", err)
	}
	code, err := totp.GenerateCode(en.Secret, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if err := p.ConfirmEnrolment(ctx, u.ID, code); err != nil {
		t.Fatalf("ConfirmEnrolment: %v", err)
	}
	if !users.byID[u.ID].TOTPEnabled {
		t.Fatal("TOTP should be enabled")
	}

	req, needsCode := signIn(t, p, "admin@b.cm", "secret1")
	if !needsCode {
		t.Fatal("second factor should be required")
	}
	st := p.Resolve(ctx, req)
	if st.State != Anonymous || !st.PendingSecondFactor() {
		t.Errorf("pending session: status = %+v", st)
	}

	if err := p.VerifySecondFactor(ctx, req, "nope"); !errors.Is(err, ErrInvalidCode) {
		t.Errorf("err = %v, want ErrInvalidCode", err)
	}
	if err := p.VerifySecondFactor(ctx, req, code); err != nil {
		t.Fatalf("VerifySecondFactor: %v", err)
	}
	if st := p.Resolve(ctx, req); st.State != Privileged {
		t.Errorf("State = %v, want privileged", st.State)
	}
}

func TestCurrentEnrolmentReusesPendingSecret(t *testing.T) {
	p, _, _ := setup(t)
	ctx := context.Background()
	u, err := p.SignUp(ctx, "admin@b.cm", "secret1", "Admin")
	if err != nil {
		t.Fatal(err)
	}

	first, err := p.CurrentEnrolment(ctx, u.ID, u.Email)
	if err != nil {
		t.Fatalf("CurrentEnrolment: %v", err)
	}
	second, err := p.CurrentEnrolment(ctx, u.ID, u.Email)
	if err != nil {
		t.Fatalf("CurrentEnrolment: %v", err)
	}
	if first.Secret != second.Secret {
		t.Errorf("secret changed between visits: %q then %q", first.Secret, second.Secret)
	}

	code, err := totp.GenerateCode(second.Secret, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if err := p.ConfirmEnrolment(ctx, u.ID, code); err != nil {
		t.Fatalf("ConfirmEnrolment: %v", err)
	}
	en, err := p.CurrentEnrolment(ctx, u.ID, u.Email)
	if err != nil || en != nil {
		t.Errorf("enabled user: enrolment = %+v, err = %v; want nil, nil", en, err)
	}
}

func TestVerifySecondFactorWithoutSession(t *testing.T) {
	p, _, _ := setup(t)
	err := p.VerifySecondFactor(context.Background(), httptest.NewRequest(http.MethodPost, "/", nil), "123456")
	if !errors.Is(err, ErrNoSession) {
		t.Errorf("err = %v, want ErrNoSession", err)
	}
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{
		Loading: "loading", Anonymous: "anonymous", Authenticated: "authenticated", Privileged: "privileged",
	} {
		if got := s.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(s), got, want)
		}
	}
}
