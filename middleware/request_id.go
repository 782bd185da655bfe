package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// RequestIDHeader carries the request ID in and out.
const RequestIDHeader = "X-Request-ID"

type loggerContextKey struct{}

// LoggerFromContext returns the request-scoped logger stored by RequestID, or
// the standard logger.
func LoggerFromContext(ctx context.Context) *log.Entry {
	if entry, ok := ctx.Value(loggerContextKey{}).(*log.Entry); ok {
		return entry
	}
	return log.NewEntry(log.StandardLogger())
}

// RequestID reuses an inbound UUID request ID or generates one, echoes it in
// the response header and stores a logger tagged with it in the context.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if _, err := uuid.Parse(id); err != nil {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)

			entry := log.WithFields(log.Fields{
				"request_id": id,
				"method":     r.Method,
				"path":       r.URL.Path,
			})
			ctx := context.WithValue(r.Context(), loggerContextKey{}, entry)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
