// Package dashboard serves the operations dashboard API.
//
// Container location, history, damage reports, customs inspections, yard
// tasks and truck appointments are held in an in-memory Repository. Every
// GET route is wrapped by the response cache; writes are served directly
// and do not invalidate cached reads. Operators clear stale entries through
// the cache admin surface.
package dashboard
