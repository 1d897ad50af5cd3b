package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHSTS(t *testing.T) {
	handler := HSTS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if got := rr.Header().Get("Strict-Transport-Security"); !strings.Contains(got, "max-age=31536000") {
		t.Errorf("HSTS header = %q, want max-age=31536000", got)
	}
}

func TestSecureCookies_AddsFlags(t *testing.T) {
	handler := SecureCookies(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "token", Value: "abc", Path: "/"})
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	cookies := rr.Header()["Set-Cookie"]
	if len(cookies) != 1 {
		t.Fatalf("Set-Cookie count = %d, want 1", len(cookies))
	}
	cookie := cookies[0]
	for _, attr := range []string{"Secure", "HttpOnly", "SameSite=Strict"} {
		if !strings.Contains(cookie, attr) {
			t.Errorf("cookie %q missing %s", cookie, attr)
		}
	}
}

func TestSecureCookies_DoesNotDuplicateFlags(t *testing.T) {
	handler := SecureCookies(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Set-Cookie", "token=abc; Path=/; HttpOnly; Secure; SameSite=Strict")
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	cookie := rr.Header().Get("Set-Cookie")
	if strings.Count(cookie, "Secure") != 1 {
		t.Errorf("cookie %q has duplicated Secure attribute", cookie)
	}
}

func TestIsHostAllowed(t *testing.T) {
	tests := []struct {
		name         string
		host         string
		allowedHosts []string
		want         bool
	}{
		{"empty allow-list accepts anything", "anything.com", nil, true},
		{"exact match", "example.com", []string{"example.com"}, true},
		{"match ignoring request port", "example.com:443", []string{"example.com"}, true},
		{"mismatch", "evil.com", []string{"example.com"}, false},
		{"case insensitive", "Example.COM", []string{"example.com"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsHostAllowed(tt.host, tt.allowedHosts); got != tt.want {
				t.Errorf("IsHostAllowed(%q, %v) = %v, want %v", tt.host, tt.allowedHosts, got, tt.want)
			}
		})
	}
}
