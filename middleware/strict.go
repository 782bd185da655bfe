package middleware

import (
	"fmt"
	"net/http"
)

// RequireClaim rejects requests without a verified session token whose claim
// name holds one of values. An empty name only requires the session; no
// values only requires the claim to be present. Claim values are compared in
// their fmt %v form.
func RequireClaim(name string, values ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			engine, ok := EngineFromContext(r.Context())
			if !ok || !engine.Authenticated() {
				unauthorized(w, r)
				return
			}

			if name != "" && !claimMatches(engine.Claims(), name, values) {
				LoggerFromContext(r.Context()).WithField("claim", name).Debug("session: claim requirement not met")
				unauthorized(w, r)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func claimMatches(claims map[string]any, name string, values []string) bool {
	v, ok := claims[name]
	if !ok {
		return false
	}
	if len(values) == 0 {
		return true
	}

	got := fmt.Sprint(v)
	for _, want := range values {
		if got == want {
			return true
		}
	}
	return false
}
