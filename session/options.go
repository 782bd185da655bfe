package session

import (
	"net/http"
	"time"

	"github.com/MrEthical07/bossanova/audit"
	"github.com/MrEthical07/bossanova/metrics"
)

// Option overrides one engine setting for a single construction. Options take
// precedence over the process-wide bossanova.TokenConfig.
type Option func(*options)

type options struct {
	cookieName string
	signingKey []byte
	sameSite   http.SameSite
	cookieTTL  time.Duration
	metrics    *metrics.Metrics
	audit      audit.Sink
	now        func() time.Time
}

// WithCookieName sets the cookie carrying the token.
func WithCookieName(name string) Option {
	return func(o *options) { o.cookieName = name }
}

// WithSigningKey sets the HMAC key.
func WithSigningKey(key []byte) Option {
	return func(o *options) { o.signingKey = key }
}

// WithSameSite sets the SameSite attribute of emitted cookies.
func WithSameSite(mode http.SameSite) Option {
	return func(o *options) { o.sameSite = mode }
}

// WithCookieTTL sets the lifetime used by Save when no expiry is given.
func WithCookieTTL(ttl time.Duration) Option {
	return func(o *options) { o.cookieTTL = ttl }
}

// WithMetrics records token and session counters into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithAudit emits session lifecycle events to sink.
func WithAudit(sink audit.Sink) Option {
	return func(o *options) { o.audit = sink }
}

// WithClock replaces time.Now for expiry checks and cookie lifetimes.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}
