package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jonwraymond/opsdash/observe"
)

// Middleware attaches identities to requests.
type Middleware struct {
	auth   Authenticator
	logger observe.Logger
}

// NewMiddleware creates a Middleware. A nil logger discards output.
func NewMiddleware(auth Authenticator, logger observe.Logger) *Middleware {
	if logger == nil {
		logger = observe.NewNopLogger()
	}
	return &Middleware{auth: auth, logger: logger}
}

// Optional attaches the caller's identity when credentials are valid and
// the anonymous identity otherwise. It never rejects a request.
func (m *Middleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := m.authenticate(r)
		if err != nil {
			id = AnonymousIdentity()
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// Required rejects requests without valid credentials with 401.
func (m *Middleware) Required(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := m.authenticate(r)
		if err != nil {
			m.logger.Warn(r.Context(), "authentication failed",
				observe.F("url.path", r.URL.Path),
				observe.F("error", err.Error()))
			writeError(w, http.StatusUnauthorized, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// RequireRole is Required plus a role check answered with 403.
func (m *Middleware) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return m.Required(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := IdentityFromContext(r.Context())
			if !id.HasRole(role) {
				m.logger.Warn(r.Context(), "authorization denied",
					observe.F("principal", id.Principal),
					observe.F("role", role))
				writeError(w, http.StatusForbidden, ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

func (m *Middleware) authenticate(r *http.Request) (*Identity, error) {
	if m.auth == nil {
		return nil, ErrNoAuthenticator
	}
	req := NewAuthRequest(r)
	if !m.auth.Supports(r.Context(), req) {
		return nil, ErrMissingCredentials
	}
	result, err := m.auth.Authenticate(r.Context(), req)
	if err != nil {
		m.logger.Error(r.Context(), "authenticator error", observe.F("error", err.Error()))
		return nil, err
	}
	if !result.Authenticated {
		if result.Error == nil {
			return nil, ErrInvalidCredentials
		}
		return nil, result.Error
	}
	if result.Identity.IsExpired() {
		return nil, ErrTokenExpired
	}
	return result.Identity, nil
}

func writeError(w http.ResponseWriter, status int, err error) {
	msg := "unauthorized"
	switch {
	case errors.Is(err, ErrForbidden):
		msg = "forbidden"
	case errors.Is(err, ErrTokenExpired):
		msg = "token expired"
	}
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="opsdash"`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
