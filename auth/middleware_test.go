package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func identityEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := IdentityFromContext(r.Context())
		if id == nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(id.Principal))
	})
}

func newTestMiddleware() *Middleware {
	store := NewMemoryAPIKeyStore()
	store.AddKey("k1", "admin-key", "ops-bot", "cache-admin")
	store.AddKey("k2", "viewer-key", "viewer-bot", "viewer")
	return NewMiddleware(NewCompositeAuthenticator(
		NewJWTAuthenticator(JWTConfig{Secret: testSecret}),
		NewAPIKeyAuthenticator("", store),
	), nil)
}

func TestMiddleware_Optional(t *testing.T) {
	m := newTestMiddleware()
	h := m.Optional(identityEcho())

	tests := []struct {
		name string
		key  string
		want string
	}{
		{"no credentials", "", "anonymous"},
		{"bad key", "wrong", "anonymous"},
		{"good key", "viewer-key", "viewer-bot"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
			if tt.key != "" {
				req.Header.Set(DefaultAPIKeyHeader, tt.key)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK || rec.Body.String() != tt.want {
				t.Errorf("got %d %q, want 200 %q", rec.Code, rec.Body.String(), tt.want)
			}
		})
	}
}

func TestMiddleware_RequireRole(t *testing.T) {
	m := newTestMiddleware()
	h := m.RequireRole("cache-admin")(identityEcho())
	token, _ := SignToken(testSecret, "alice", []string{"cache-admin"}, time.Hour)
	expired, _ := SignToken(testSecret, "alice", []string{"cache-admin"}, -time.Hour)

	tests := []struct {
		name    string
		header  string
		value   string
		want    int
		wantMsg string
	}{
		{"missing", "", "", http.StatusUnauthorized, "unauthorized"},
		{"bad key", DefaultAPIKeyHeader, "nope", http.StatusUnauthorized, "unauthorized"},
		{"expired jwt", "Authorization", "Bearer " + expired, http.StatusUnauthorized, "token expired"},
		{"wrong role", DefaultAPIKeyHeader, "viewer-key", http.StatusForbidden, "forbidden"},
		{"admin key", DefaultAPIKeyHeader, "admin-key", http.StatusOK, ""},
		{"admin jwt", "Authorization", "Bearer " + token, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodDelete, "/admin/cache", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.wantMsg == "" {
				return
			}
			var body map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body["error"] != tt.wantMsg {
				t.Errorf("error = %q, want %q", body["error"], tt.wantMsg)
			}
		})
	}
}

func TestMiddleware_NoAuthenticator(t *testing.T) {
	h := NewMiddleware(nil, nil).Required(identityEcho())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if rec.Header().Get("WWW-Authenticate") == "" {
		t.Error("WWW-Authenticate not set")
	}
}
