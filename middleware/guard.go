package middleware

import (
	"context"
	"net/http"

	"github.com/MrEthical07/bossanova"
	"github.com/MrEthical07/bossanova/internal/render"
	"github.com/MrEthical07/bossanova/session"
)

type engineContextKey struct{}

// EngineFromContext returns the session engine stored by Session.
func EngineFromContext(ctx context.Context) (*session.Engine, bool) {
	e, ok := ctx.Value(engineContextKey{}).(*session.Engine)
	return e, ok && e != nil
}

// Session builds a session.Engine for every request and stores it in the
// request context. When the engine cannot be built the 403 response written
// by session.New is final and next is not called.
func Session(cfg bossanova.TokenConfig, opts ...session.Option) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			engine, err := session.New(w, r, cfg, opts...)
			if err != nil {
				LoggerFromContext(r.Context()).WithError(err).Error("session: request halted")
				return
			}

			ctx := context.WithValue(r.Context(), engineContextKey{}, engine)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession rejects requests without a verified session token. It must
// run after Session.
func RequireSession() func(http.Handler) http.Handler {
	return RequireClaim("")
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	render.Error(w, r, http.StatusUnauthorized, "Unauthorized")
}
