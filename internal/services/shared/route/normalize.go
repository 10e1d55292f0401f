// Package route normalizes request paths before routing.
package route

import (
	"net/http"
	"strings"
)

// RedirectTrailingSlash redirects GET and HEAD requests whose path ends in
// "/" to the path without it. It returns true when a redirect was written.
func RedirectTrailingSlash(w http.ResponseWriter, r *http.Request) bool {
	if w == nil || r == nil || r.URL == nil {
		return false
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return false
	}

	originalPath := r.URL.Path
	canonical := strings.TrimRight(originalPath, "/")
	if canonical == "" {
		canonical = "/"
	}
	if canonical == originalPath {
		return false
	}
	if r.URL.RawQuery != "" {
		canonical += "?" + r.URL.RawQuery
	}

	http.Redirect(w, r, canonical, http.StatusMovedPermanently)
	return true
}

// CanonicalPaths applies RedirectTrailingSlash to every request outside the
// exempt prefixes.
func CanonicalPaths(exemptPrefixes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if next == nil {
			next = http.NotFoundHandler()
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r != nil && r.URL != nil {
				for _, prefix := range exemptPrefixes {
					if prefix != "" && strings.HasPrefix(r.URL.Path, prefix) {
						next.ServeHTTP(w, r)
						return
					}
				}
			}
			if RedirectTrailingSlash(w, r) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
