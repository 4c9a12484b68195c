// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"gadgetsite/internal/auth"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const statusKey contextKey = "auth-status"

// Resolver resolves the principal behind a request, see *auth.Provider.
type Resolver interface {
	Resolve(ctx context.Context, r *http.Request) auth.Status
}

// LoadPrincipal resolves the request's principal and stores the Status in
// the request context. It never blocks a request; gates decide.
func LoadPrincipal(p Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			st := p.Resolve(r.Context(), r)
			next.ServeHTTP(w, r.WithContext(WithStatus(r.Context(), st)))
		})
	}
}

// WithStatus returns ctx carrying st.
func WithStatus(ctx context.Context, st auth.Status) context.Context {
	return context.WithValue(ctx, statusKey, st)
}

// StatusFromCtx returns the Status stored by LoadPrincipal. Without one
// the request is treated as Anonymous.
func StatusFromCtx(ctx context.Context) auth.Status {
	st, ok := ctx.Value(statusKey).(auth.Status)
	if !ok {
		return auth.Status{State: auth.Anonymous}
	}
	return st
}

// RequireServiceKey admits only requests carrying "Authorization: Bearer
// <key>". An empty key disables the route entirely (404).
func RequireServiceKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				http.NotFound(w, r)
				return
			}
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(key)) != 1 {
				w.Header().Set("WWW-Authenticate", `Bearer realm="provision"`)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
