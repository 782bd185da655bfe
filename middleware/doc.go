// Package middleware adapts the session and translate packages to net/http
// handler chains.
//
//   - [Session] builds the per-request session engine and halts the request
//     when no signing key is configured.
//   - [RequireSession] and [RequireClaim] reject requests without a valid
//     session token.
//   - [Translate] runs the translation pass over textual responses.
//   - [RequestID] tags each request with an ID and a request-scoped logger.
//
// Handlers read what the middleware stored with [EngineFromContext],
// [LocaleFromContext] and [LoggerFromContext].
package middleware
