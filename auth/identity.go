package auth

import (
	"slices"
	"time"
)

// AuthMethod records how an identity was established.
type AuthMethod string

const (
	AuthMethodJWT       AuthMethod = "jwt"
	AuthMethodAPIKey    AuthMethod = "api_key"
	AuthMethodAnonymous AuthMethod = "anonymous"
)

// Identity is an authenticated caller.
type Identity struct {
	// Principal uniquely names the caller (user id, service name).
	Principal string

	// Roles granted to the caller.
	Roles []string

	// Method is how the caller authenticated.
	Method AuthMethod

	// Claims holds raw token claims or key metadata.
	Claims map[string]any

	// ExpiresAt is when the credential stops being valid (zero = never).
	ExpiresAt time.Time
}

// HasRole reports whether the identity carries role.
func (id *Identity) HasRole(role string) bool {
	return slices.Contains(id.Roles, role)
}

// IsExpired reports whether ExpiresAt has passed.
func (id *Identity) IsExpired() bool {
	return !id.ExpiresAt.IsZero() && time.Now().After(id.ExpiresAt)
}

// IsAnonymous reports whether the identity names no real principal.
func (id *Identity) IsAnonymous() bool {
	return id.Method == AuthMethodAnonymous || id.Principal == ""
}

// AnonymousIdentity returns the identity attached to unauthenticated requests.
func AnonymousIdentity() *Identity {
	return &Identity{
		Principal: "anonymous",
		Method:    AuthMethodAnonymous,
		Claims:    make(map[string]any),
	}
}
