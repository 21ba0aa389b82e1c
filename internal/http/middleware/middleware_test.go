package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	rl "github.com/rogerio-castellano/finance-tracker/internal/http/rate_limiter"
	applog "github.com/rogerio-castellano/finance-tracker/internal/log"
)

type fakeParser map[string]int

func (f fakeParser) Parse(token string) (int, error) {
	if id, ok := f[token]; ok {
		return id, nil
	}
	return 0, errors.New("bad token")
}

func TestAuthenticate(t *testing.T) {
	var seen int
	h := Authenticate(fakeParser{"good": 7})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetUserID(r)
	}))

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"missing", "", http.StatusUnauthorized, "Authentication required"},
		{"not bearer", "Basic abc", http.StatusUnauthorized, "Authentication required"},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, "Authentication required"},
		{"invalid", "Bearer nope", http.StatusForbidden, "Invalid or expired token"},
		{"valid", "Bearer good", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = 0
			req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			if w.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, w.Code)
			}
			if tt.body != "" && !strings.Contains(w.Body.String(), tt.body) {
				t.Errorf("expected body to contain %q, got %s", tt.body, w.Body.String())
			}
			if tt.status == http.StatusOK && seen != 7 {
				t.Errorf("expected user id 7 in context, got %d", seen)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(rl.NewRegistry(0.001, 1))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	first := httptest.NewRecorder()
	h.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	second := httptest.NewRecorder()
	h.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))

	if first.Code != http.StatusOK {
		t.Errorf("expected first request to pass, got %d", first.Code)
	}
	if second.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", second.Code)
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := applog.New(applog.Config{Output: &buf})

	h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if applog.FromContext(r.Context()).Component() != applog.ComponentHTTP {
			t.Error("expected request logger in context")
		}
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/health", nil))

	out := buf.String()
	if !strings.Contains(out, "status_code=418") || !strings.Contains(out, "path=/api/health") {
		t.Errorf("unexpected log line %q", out)
	}
}
