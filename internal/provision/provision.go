// Package provision creates privileged principals in bulk. It backs the
// service-key protected provisioning endpoint.
package provision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"gadgetsite/internal/auth"
	"gadgetsite/internal/models"
	"gadgetsite/internal/store"
)

// Account is one principal to create.
type Account struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Result reports the outcome for one account. Error is set when the
// principal could not be created; RoleError when it was created but the
// admin role could not be granted.
type Result struct {
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	RoleError string `json:"roleError,omitempty"`
}

// Users is the subset of *store.UserStore the provisioner needs.
type Users interface {
	Create(ctx context.Context, email, password, displayName string) (*models.User, error)
	AddRole(ctx context.Context, userID uuid.UUID, role models.Role) error
}

// Provisioner creates admin principals.
type Provisioner struct {
	users    Users
	defaults []Account
}

// New creates a Provisioner. defaults is used when a call names no accounts.
func New(users Users, defaults []Account) *Provisioner {
	return &Provisioner{users: users, defaults: defaults}
}

// Run creates each account and grants it the admin role. Failures are
// collected per account and never abort the batch. An existing email is
// reported as a failure and its roles are left untouched.
func (p *Provisioner) Run(ctx context.Context, accounts []Account) []Result {
	if len(accounts) == 0 {
		accounts = p.defaults
	}

	results := make([]Result, 0, len(accounts))
	for _, a := range accounts {
		email := strings.ToLower(strings.TrimSpace(a.Email))
		name := strings.TrimSpace(a.Name)
		if name == "" {
			name = email
		}

		if err := auth.ValidateCredentials(email, a.Password); err != nil {
			results = append(results, Result{Email: a.Email, Error: err.Error()})
			continue
		}

		user, err := p.users.Create(ctx, email, a.Password, name)
		if err != nil {
			msg := err.Error()
			if !errors.Is(err, store.ErrEmailTaken) {
				slog.Error("provision create failed", "email", email, "error", err)
				msg = "could not create account"
			}
			results = append(results, Result{Email: email, Error: msg})
			continue
		}

		res := Result{Email: email, Name: name, Success: true}
		if err := p.users.AddRole(ctx, user.ID, models.RoleAdmin); err != nil {
			slog.Error("provision role grant failed", "email", email, "error", err)
			res.Success = false
			res.RoleError = err.Error()
		}
		results = append(results, res)
	}
	return results
}

// ParseAccounts decodes a JSON array of accounts, as found in the
// PROVISION_ACCOUNTS setting. An empty string yields no accounts.
func ParseAccounts(raw string) ([]Account, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var accounts []Account
	if err := json.Unmarshal([]byte(raw), &accounts); err != nil {
		return nil, fmt.Errorf("parse provision accounts: %w", err)
	}
	return accounts, nil
}
