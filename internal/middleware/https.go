// Package middleware holds small, composable HTTP wrappers.
package middleware

import (
	"net/http"
	"strings"
)

// ForceHTTPS returns a middleware that issues a 308 Permanent Redirect to
// the HTTPS version of the same URL when enabled is true, the request is
// plain HTTP, and the host is not a loopback name.  A TLS-terminating proxy
// is honoured through X-Forwarded-Proto.  Paths listed in exempt are
// always served as-is, for health checks and scrapers that dial an IP.
func ForceHTTPS(enabled bool, exempt ...string) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		if !enabled {
			return h
		}
		skip := make(map[string]bool, len(exempt))
		for _, p := range exempt {
			skip[p] = true
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Already HTTPS, dev host, or exempt path → continue.
			if skip[r.URL.Path] || r.TLS != nil ||
				strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") ||
				isLocal(stripPort(r.Host)) {
				h.ServeHTTP(w, r)
				return
			}

			target := "https://" + r.Host + r.URL.RequestURI()
			http.Redirect(w, r, target, http.StatusPermanentRedirect)
		})
	}
}

func isLocal(host string) bool {
	return host == "localhost" || host == "127.0.0.1" || host == "[::1]" || host == ""
}

// stripPort removes the :port suffix from Host when present.  Bracketed
// IPv6 literals keep their brackets.
func stripPort(h string) string {
	if strings.HasPrefix(h, "[") {
		if i := strings.IndexByte(h, ']'); i != -1 {
			return h[:i+1]
		}
		return h
	}
	if i := strings.IndexByte(h, ':'); i != -1 {
		return h[:i]
	}
	return h
}
