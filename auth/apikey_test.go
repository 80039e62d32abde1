package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func keyRequest(header, key string) *AuthRequest {
	h := http.Header{}
	if key != "" {
		h.Set(header, key)
	}
	return &AuthRequest{Headers: h}
}

func TestHashAPIKey(t *testing.T) {
	a, b := HashAPIKey("secret"), HashAPIKey("secret")
	if a != b {
		t.Error("hash not deterministic")
	}
	if len(a) != 64 {
		t.Errorf("len = %d, want 64", len(a))
	}
	if a == HashAPIKey("other") {
		t.Error("different keys hash equal")
	}
}

func TestAPIKeyAuthenticator(t *testing.T) {
	store := NewMemoryAPIKeyStore()
	store.AddKey("k1", "good-key", "ops-bot", "cache-admin")
	store.Add(&APIKeyInfo{
		ID:        "k2",
		KeyHash:   HashAPIKey("old-key"),
		Principal: "retired",
		ExpiresAt: time.Now().Add(-time.Minute),
	})
	a := NewAPIKeyAuthenticator("", store)

	tests := []struct {
		name    string
		key     string
		wantOK  bool
		wantErr error
	}{
		{"valid", "good-key", true, nil},
		{"unknown", "bad-key", false, ErrInvalidCredentials},
		{"expired", "old-key", false, ErrTokenExpired},
		{"blank", "   ", false, ErrMissingCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := a.Authenticate(context.Background(), keyRequest(DefaultAPIKeyHeader, tt.key))
			if err != nil {
				t.Fatal(err)
			}
			if res.Authenticated != tt.wantOK {
				t.Fatalf("Authenticated = %v, want %v", res.Authenticated, tt.wantOK)
			}
			if tt.wantErr != nil && !errors.Is(res.Error, tt.wantErr) {
				t.Errorf("Error = %v, want %v", res.Error, tt.wantErr)
			}
		})
	}

	res, _ := a.Authenticate(context.Background(), keyRequest(DefaultAPIKeyHeader, "good-key"))
	id := res.Identity
	if id.Principal != "ops-bot" || !id.HasRole("cache-admin") || id.Method != AuthMethodAPIKey {
		t.Errorf("identity = %+v", id)
	}
	if id.Claims["key_id"] != "k1" {
		t.Errorf("key_id = %v", id.Claims["key_id"])
	}
}

func TestAPIKeyAuthenticator_Supports(t *testing.T) {
	a := NewAPIKeyAuthenticator("X-Ops-Key", NewMemoryAPIKeyStore())
	if a.Supports(context.Background(), keyRequest("X-Ops-Key", "")) {
		t.Error("Supports() = true without header")
	}
	if !a.Supports(context.Background(), keyRequest("X-Ops-Key", "k")) {
		t.Error("Supports() = false with custom header")
	}
	if a.Supports(context.Background(), keyRequest(DefaultAPIKeyHeader, "k")) {
		t.Error("Supports() = true for default header when custom configured")
	}
}
