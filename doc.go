// Package bossanova holds the process-wide configuration shared by the session
// token engine and the response translation pass.
//
// # Subsystems
//
//   - [github.com/MrEthical07/bossanova/jwt] signs and verifies compact HS512
//     tokens.
//   - [github.com/MrEthical07/bossanova/session] is the per-request token
//     engine: it resolves the inbound token from the Authorization header or
//     the session cookie and emits the cookie on save/destroy.
//   - [github.com/MrEthical07/bossanova/translate] rewrites ^^[phrase]^^
//     markers in textual responses using per-locale dictionaries.
//   - [github.com/MrEthical07/bossanova/cache] provides the Redis and
//     in-memory dictionary caches.
//   - [github.com/MrEthical07/bossanova/middleware] wires both into net/http.
//   - [github.com/MrEthical07/bossanova/audit] records session lifecycle events
//     through a bounded asynchronous dispatcher.
//   - [github.com/MrEthical07/bossanova/metrics] counts token, session and
//     dictionary activity, with Prometheus and OpenTelemetry exporters.
//
// # Architecture boundaries
//
// The two subsystems never interact. This package only carries
// configuration and sentinel errors; it must not import any subpackage.
package bossanova
