// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"strings"
)

// SecureHeaders returns middleware adding security headers to every
// response. mediaOrigins are extra origins (the object storage public
// URL) allowed for images and video; frameOrigins are allowed in frames
// (the map embed).
func SecureHeaders(mediaOrigins, frameOrigins []string) func(http.Handler) http.Handler {
	csp := contentSecurityPolicy(mediaOrigins, frameOrigins)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "SAMEORIGIN")
			h.Set("X-XSS-Protection", "0")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Permissions-Policy", "interest-cohort=()")
			h.Set("Content-Security-Policy", csp)
			next.ServeHTTP(w, r)
		})
	}
}

func contentSecurityPolicy(mediaOrigins, frameOrigins []string) string {
	media := strings.TrimSpace("'self' data: " + strings.Join(mediaOrigins, " "))
	frames := "'none'"
	if len(frameOrigins) > 0 {
		frames = strings.Join(frameOrigins, " ")
	}
	return strings.Join([]string{
		"default-src 'self'",
		"img-src " + media,
		"media-src " + media,
		"frame-src " + frames,
		"style-src 'self' 'unsafe-inline'",
		"form-action 'self' https://wa.me mailto:",
		"frame-ancestors 'self'",
	}, "; ")
}
