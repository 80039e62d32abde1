// Package auth authenticates operators calling the dashboard's admin routes.
//
// An Authenticator turns request headers into an Identity. API keys and
// HMAC-signed JWTs are supported and can be combined with a
// CompositeAuthenticator. Middleware attaches the Identity to the request
// context, where the response cache can use it to scope keys per caller.
package auth
