package middleware

import (
	"net"
	"net/http"
	"strings"
)

// HSTS instructs browsers to use HTTPS for a year, subdomains included.
func HSTS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		next.ServeHTTP(w, r)
	})
}

// SecureCookies rewrites outgoing Set-Cookie headers so every cookie carries
// Secure, HttpOnly and a SameSite attribute, whatever the handler set.
func SecureCookies(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(&secureCookieWriter{ResponseWriter: w}, r)
	})
}

type secureCookieWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

// Write forces WriteHeader through the wrapper so headers are rewritten
// before the implicit 200.
func (w *secureCookieWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func (w *secureCookieWriter) WriteHeader(statusCode int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true

	h := w.ResponseWriter.Header()
	if cookies := h["Set-Cookie"]; len(cookies) > 0 {
		h.Del("Set-Cookie")
		for _, c := range cookies {
			h.Add("Set-Cookie", hardenCookie(c))
		}
	}

	w.ResponseWriter.WriteHeader(statusCode)
}

// hardenCookie appends the Secure, HttpOnly and SameSite=Strict attributes
// a cookie is missing, preserving any it already has.
func hardenCookie(cookie string) string {
	parts := strings.Split(cookie, ";")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	missing := map[string]string{
		"secure":   "Secure",
		"httponly": "HttpOnly",
		"samesite": "SameSite=Strict",
	}
	for _, p := range parts {
		key := strings.ToLower(p)
		if idx := strings.IndexByte(key, '='); idx != -1 {
			key = key[:idx]
		}
		delete(missing, key)
	}

	for _, attr := range []string{"secure", "httponly", "samesite"} {
		if v, ok := missing[attr]; ok {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, "; ")
}

// IsHostAllowed checks a request host against the configured allow-list,
// ignoring ports and case. An empty list allows everything. Guards the
// HTTP-to-HTTPS redirect against host-header poisoning.
func IsHostAllowed(host string, allowedHosts []string) bool {
	if len(allowedHosts) == 0 {
		return true
	}

	normalized := normalizeHost(host)
	for _, allowed := range allowedHosts {
		if normalized == normalizeHost(allowed) {
			return true
		}
	}
	return false
}

func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if bare, _, err := net.SplitHostPort(host); err == nil {
		return bare
	}
	return host
}
