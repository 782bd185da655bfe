package session

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/MrEthical07/bossanova"
	"github.com/MrEthical07/bossanova/audit"
	"github.com/MrEthical07/bossanova/internal/render"
	"github.com/MrEthical07/bossanova/jwt"
	"github.com/MrEthical07/bossanova/metrics"
	log "github.com/sirupsen/logrus"
)

// Engine is the token engine for one request/response cycle.
type Engine struct {
	w          http.ResponseWriter
	r          *http.Request
	cookieName string
	sameSite   http.SameSite
	cookieTTL  time.Duration
	manager    *jwt.Manager
	metrics    *metrics.Metrics
	audit      audit.Sink
	now        func() time.Time

	claims        jwt.Claims
	authenticated bool
}

// New builds the engine for r. Cookie name, key and SameSite resolve in the
// order opts, cfg, hard defaults.
//
// When no signing key can be resolved New writes a 403 response to w and
// returns bossanova.ErrSigningKeyMissing; the caller must not write anything
// else to w. Otherwise the inbound token, if any, is verified and its claims
// loaded into the engine.
func New(w http.ResponseWriter, r *http.Request, cfg bossanova.TokenConfig, opts ...Option) (*Engine, error) {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	e := &Engine{
		w:          w,
		r:          r,
		cookieName: resolveCookieName(o.cookieName, cfg.CookieName),
		sameSite:   resolveSameSite(o.sameSite, cfg.SameSite),
		cookieTTL:  resolveTTL(o.cookieTTL, cfg.CookieTTL),
		metrics:    o.metrics,
		audit:      o.audit,
		now:        o.now,
		claims:     jwt.Claims{},
	}
	if e.now == nil {
		e.now = time.Now
	}

	key := o.signingKey
	if len(key) == 0 {
		key = cfg.SigningKey()
	}
	if err := e.SetSigningKey(key); err != nil {
		e.metrics.Inc(metrics.SigningKeyMissing)
		e.emit(audit.EventSigningKeyMissing, false, err)
		log.WithField("cookie", e.cookieName).Error("session: no signing key configured, halting request")
		if w != nil {
			render.Forbidden(w, r, bossanova.SigningKeyMissingMessage)
		}
		return nil, err
	}

	if claims, ok := e.GetToken(); ok {
		e.claims = claims
		e.authenticated = true
	}

	return e, nil
}

func resolveCookieName(explicit, configured string) string {
	switch {
	case explicit != "":
		return explicit
	case configured != "":
		return configured
	default:
		return bossanova.DefaultCookieName
	}
}

func resolveSameSite(explicit http.SameSite, configured string) http.SameSite {
	if explicit != 0 && explicit != http.SameSiteDefaultMode {
		return explicit
	}
	mode, err := bossanova.ParseSameSite(configured)
	if err != nil {
		log.WithField("samesite", configured).Warn("session: unknown samesite policy, using Lax")
		return http.SameSiteLaxMode
	}
	return mode
}

func resolveTTL(explicit, configured time.Duration) time.Duration {
	switch {
	case explicit > 0:
		return explicit
	case configured > 0:
		return configured
	default:
		return bossanova.DefaultCookieTTL
	}
}

// SetSigningKey replaces the key used for every later sign and verify call.
func (e *Engine) SetSigningKey(key []byte) error {
	manager, err := jwt.NewManager(jwt.Config{SigningKey: key, Now: e.now})
	if err != nil {
		if errors.Is(err, jwt.ErrKeyMissing) {
			return bossanova.ErrSigningKeyMissing
		}
		return err
	}
	e.manager = manager
	return nil
}

// CookieName returns the resolved cookie name.
func (e *Engine) CookieName() string { return e.cookieName }

// SameSite returns the resolved SameSite policy.
func (e *Engine) SameSite() http.SameSite { return e.sameSite }

// Authenticated reports whether a valid inbound token was found at
// construction.
func (e *Engine) Authenticated() bool { return e.authenticated }

// Claims returns a copy of the engine's current claims.
func (e *Engine) Claims() jwt.Claims { return e.claims.Clone() }

// Get returns one claim of the engine's current claims.
func (e *Engine) Get(name string) (any, bool) { return e.claims.Get(name) }

// Set merges values into the engine's claims. They are signed on the next Save.
func (e *Engine) Set(values map[string]any) *Engine {
	e.claims.Merge(values)
	return e
}

// CreateToken signs claims with the engine key.
func (e *Engine) CreateToken(claims jwt.Claims) (string, error) {
	token, err := e.manager.CreateToken(claims)
	if err != nil {
		return "", err
	}
	e.metrics.Inc(metrics.TokenIssued)
	return token, nil
}

// Save signs the current claims and sets the session cookie. A zero expiresAt
// means now plus the cookie TTL (7 days unless configured).
func (e *Engine) Save(expiresAt time.Time) (string, error) {
	if expiresAt.IsZero() {
		expiresAt = e.now().Add(e.cookieTTL)
	}

	token, err := e.CreateToken(e.claims)
	if err != nil {
		return "", err
	}

	e.setCookie(token, expiresAt)
	e.metrics.Inc(metrics.SessionSaved)
	e.emit(audit.EventSessionSaved, true, nil)
	return token, nil
}

// Destroy expires the session cookie and drops the loaded claims.
func (e *Engine) Destroy() {
	e.setCookie("", time.Unix(0, 0))
	e.emit(audit.EventSessionDestroyed, true, nil)
	e.claims = jwt.Claims{}
	e.authenticated = false
	e.metrics.Inc(metrics.SessionDestroyed)
}

func (e *Engine) setCookie(value string, expires time.Time) {
	if e.w == nil {
		return
	}
	cookie := &http.Cookie{
		Name:     e.cookieName,
		Value:    value,
		Path:     "/",
		Domain:   "",
		Expires:  expires,
		Secure:   true,
		HttpOnly: false,
		SameSite: e.sameSite,
	}
	if value == "" {
		cookie.MaxAge = -1
	}
	http.SetCookie(e.w, cookie)
}

// ExtractToken verifies token and returns its claims; ok is false for any
// malformed, badly signed or expired token.
func (e *Engine) ExtractToken(token string) (jwt.Claims, bool) {
	claims, err := e.manager.ExtractToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			e.metrics.Inc(metrics.TokenExpired)
		} else {
			e.metrics.Inc(metrics.TokenRejected)
		}
		e.emit(audit.EventTokenRejected, false, err)
		log.WithField("cookie", e.cookieName).WithError(err).Debug("session: token rejected")
		return nil, false
	}
	e.metrics.Inc(metrics.TokenVerified)
	return claims, true
}

// GetToken verifies the inbound token and returns its claims.
func (e *Engine) GetToken() (jwt.Claims, bool) {
	token, ok := e.RawToken()
	if !ok {
		return nil, false
	}
	return e.ExtractToken(token)
}

// RawToken returns the inbound token text without verifying it. Its content
// must not be trusted.
func (e *Engine) RawToken() (string, bool) {
	return postedToken(e.r, e.cookieName)
}

func (e *Engine) emit(eventType string, success bool, err error) {
	if e.audit == nil {
		return
	}

	event := audit.Event{
		Timestamp: e.now().UTC(),
		EventType: eventType,
		Cookie:    e.cookieName,
		IP:        clientIP(e.r),
		Success:   success,
	}
	if subject, ok := e.claims.String("uid"); ok {
		event.Subject = subject
	}
	if err != nil {
		event.Error = err.Error()
	}

	ctx := context.Background()
	if e.r != nil {
		ctx = e.r.Context()
	}
	e.audit.Emit(ctx, event)
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
