package cache

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/jonwraymond/opsdash/observe"
)

// CacheHeader reports how a response was served: HIT, MISS or BYPASS.
const CacheHeader = "X-Cache"

// JSONHandler computes the JSON payload for a request.
// Returning a *StatusError selects the response status; any other error
// yields 500. Errors are never cached.
type JSONHandler func(r *http.Request) (any, error)

// HTTPMiddleware adapts an Interceptor to net/http.
type HTTPMiddleware struct {
	interceptor *Interceptor
	logger      observe.Logger
}

// NewHTTPMiddleware creates an HTTPMiddleware. A nil logger discards output.
func NewHTTPMiddleware(i *Interceptor, logger observe.Logger) *HTTPMiddleware {
	if logger == nil {
		logger = observe.NewNopLogger()
	}
	return &HTTPMiddleware{interceptor: i, logger: logger}
}

// RequestFromHTTP builds the cache request descriptor for r. The path keeps
// the client's percent-encoding, so "/a%2Fb" and "/a/b" are distinct keys.
func RequestFromHTTP(r *http.Request) Request {
	return Request{
		Method:   r.Method,
		Path:     r.URL.EscapedPath(),
		RawQuery: r.URL.RawQuery,
		Route:    r.Pattern,
	}
}

// Handler wraps h so its payload is served from, and captured into, the cache.
func (m *HTTPMiddleware) Handler(h JSONHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next := func(ctx context.Context, _ Request) (any, error) {
			return h(r.WithContext(ctx))
		}

		res, err := m.interceptor.Do(r.Context(), RequestFromHTTP(r), next)
		w.Header().Set(CacheHeader, res.Outcome.String())
		if err != nil {
			m.writeError(w, r, err)
			return
		}

		body := res.Body
		if body == nil {
			// The interceptor could not encode the payload; try once more
			// the way the route would have been served without a cache.
			body, err = json.Marshal(res.Value)
			if err != nil {
				m.writeError(w, r, err)
				return
			}
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	})
}

func (m *HTTPMiddleware) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, msg := statusOf(err)
	if code >= http.StatusInternalServerError {
		m.logger.Error(r.Context(), "handler failed",
			observe.F("path", r.URL.Path),
			observe.F("error", err.Error()),
		)
	}
	WriteJSON(w, code, map[string]string{"error": msg})
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
