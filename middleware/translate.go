package middleware

import (
	"context"
	"net/http"

	"github.com/MrEthical07/bossanova/translate"
)

type localeContextKey struct{}

// LocaleFromContext returns the locale chosen by Translate.
func LocaleFromContext(ctx context.Context) (string, bool) {
	locale, ok := ctx.Value(localeContextKey{}).(string)
	return locale, ok
}

// Translate buffers each response and runs t over it in the locale returned
// by localeFn. Only textual responses are rewritten. A nil localeFn or an
// empty locale strips the markers without translating.
func Translate(t *translate.Translator, localeFn func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if t == nil {
				next.ServeHTTP(w, r)
				return
			}

			var locale string
			if localeFn != nil {
				locale = localeFn(r)
			}
			ctx := context.WithValue(r.Context(), localeContextKey{}, locale)

			f := t.Start(ctx, w, locale)
			defer func() {
				if err := f.Close(); err != nil {
					LoggerFromContext(ctx).WithError(err).Warn("translate: write response")
				}
			}()

			next.ServeHTTP(f, r.WithContext(ctx))
		})
	}
}
