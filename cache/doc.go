// Package cache provides the in-memory response cache for dashboard reads.
//
// A Store holds one Entry per key. An Interceptor sits in front of a
// HandlerFunc: GET requests are served from the Store while younger than
// the policy's validity window, otherwise the handler runs and its encoded
// payload is captured. Other methods bypass the cache entirely.
//
// A Sweeper removes entries older than the retention window on a fixed
// schedule, and AdminHandler exposes stats and clearing over HTTP.
// HTTPMiddleware adapts the Interceptor to net/http and sets the X-Cache
// header on every response.
package cache
