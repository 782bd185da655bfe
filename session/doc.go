// Package session is the per-request token engine: it resolves an inbound
// token from the Authorization header or the session cookie, exposes the
// verified claims through accessors, and writes the session cookie on Save and
// Destroy.
//
// # Token source
//
// An "Authorization: Bearer <token>" header wins. Otherwise the cookie named
// after the engine is used, but only when its value is longer than 64
// characters; shorter values cannot be a signed token and are ignored.
//
// # Failure model
//
// A missing signing key is the only hard failure: [New] answers the request
// with 403 and returns [bossanova.ErrSigningKeyMissing], and the caller must
// stop handling the request. Every token problem (absent, malformed, badly
// signed, expired) is reported as "no claims" through a false ok value.
//
// # What this package must NOT do
//
//   - Share an Engine between requests; an Engine is not safe for concurrent use.
//   - Log token values or key material.
package session
