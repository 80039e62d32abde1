package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"maps"
	"strings"
	"sync"
	"time"
)

// DefaultAPIKeyHeader carries API keys unless configured otherwise.
const DefaultAPIKeyHeader = "X-API-Key"

// APIKeyInfo describes a registered key. Only the key's hash is kept.
type APIKeyInfo struct {
	ID        string
	KeyHash   string
	Principal string
	Roles     []string
	ExpiresAt time.Time
	Metadata  map[string]any
}

// APIKeyStore looks keys up by hash.
type APIKeyStore interface {
	// Lookup returns the key for keyHash, or nil if unknown.
	Lookup(ctx context.Context, keyHash string) (*APIKeyInfo, error)
}

// APIKeyAuthenticator validates keys sent in a header.
type APIKeyAuthenticator struct {
	header string
	store  APIKeyStore
}

// NewAPIKeyAuthenticator creates an authenticator reading header
// (DefaultAPIKeyHeader if empty).
func NewAPIKeyAuthenticator(header string, store APIKeyStore) *APIKeyAuthenticator {
	if header == "" {
		header = DefaultAPIKeyHeader
	}
	return &APIKeyAuthenticator{header: header, store: store}
}

// Name returns "api_key".
func (a *APIKeyAuthenticator) Name() string { return "api_key" }

// Supports reports whether the key header is present.
func (a *APIKeyAuthenticator) Supports(_ context.Context, req *AuthRequest) bool {
	return req.GetHeader(a.header) != ""
}

// Authenticate hashes the presented key and looks it up.
func (a *APIKeyAuthenticator) Authenticate(ctx context.Context, req *AuthRequest) (*AuthResult, error) {
	key := strings.TrimSpace(req.GetHeader(a.header))
	if key == "" {
		return AuthFailure(ErrMissingCredentials, a.Name()), nil
	}

	info, err := a.store.Lookup(ctx, HashAPIKey(key))
	if err != nil {
		return nil, err
	}
	if info == nil {
		return AuthFailure(ErrInvalidCredentials, a.Name()), nil
	}
	if !info.ExpiresAt.IsZero() && time.Now().After(info.ExpiresAt) {
		return AuthFailure(ErrTokenExpired, a.Name()), nil
	}

	claims := make(map[string]any, len(info.Metadata)+1)
	maps.Copy(claims, info.Metadata)
	claims["key_id"] = info.ID

	return AuthSuccess(&Identity{
		Principal: info.Principal,
		Roles:     info.Roles,
		Method:    AuthMethodAPIKey,
		Claims:    claims,
		ExpiresAt: info.ExpiresAt,
	}), nil
}

// HashAPIKey returns the hex SHA-256 of key, the form stores index by.
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// MemoryAPIKeyStore is an in-memory APIKeyStore.
type MemoryAPIKeyStore struct {
	mu   sync.RWMutex
	keys map[string]*APIKeyInfo
}

// NewMemoryAPIKeyStore creates an empty store.
func NewMemoryAPIKeyStore() *MemoryAPIKeyStore {
	return &MemoryAPIKeyStore{keys: make(map[string]*APIKeyInfo)}
}

// Lookup returns the key registered under keyHash.
func (s *MemoryAPIKeyStore) Lookup(_ context.Context, keyHash string) (*APIKeyInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keys[keyHash], nil
}

// Add registers info under info.KeyHash.
func (s *MemoryAPIKeyStore) Add(info *APIKeyInfo) {
	s.mu.Lock()
	s.keys[info.KeyHash] = info
	s.mu.Unlock()
}

// AddKey registers a plaintext key for principal with roles.
func (s *MemoryAPIKeyStore) AddKey(id, key, principal string, roles ...string) {
	s.Add(&APIKeyInfo{
		ID:        id,
		KeyHash:   HashAPIKey(key),
		Principal: principal,
		Roles:     roles,
	})
}

var (
	_ Authenticator = (*APIKeyAuthenticator)(nil)
	_ APIKeyStore   = (*MemoryAPIKeyStore)(nil)
)
