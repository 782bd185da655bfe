package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
)

var (
	// ErrKeyMissing is returned by NewManager when no signing key is given.
	ErrKeyMissing = errors.New("signing key missing")
	// ErrTokenMalformed covers wrong segment counts and undecodable segments.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrSignatureInvalid is returned when the recomputed HMAC does not match.
	ErrSignatureInvalid = errors.New("token signature invalid")
	// ErrTokenExpired is returned when a correctly signed token is past its exp.
	ErrTokenExpired = errors.New("token expired")
)

// Algorithm is the only signing algorithm issued and accepted.
const Algorithm = "HS512"

// Config configures a Manager.
type Config struct {
	// SigningKey is the HMAC secret. Required.
	SigningKey []byte
	// Now overrides the clock used for exp checks.
	Now func() time.Time
}

// Manager issues and verifies HS512 tokens with a single symmetric key.
//
// A Manager is immutable after construction and safe for concurrent use.
type Manager struct {
	key    []byte
	now    func() time.Time
	parser *gjwt.Parser
}

// NewManager validates cfg and returns a Manager holding a private copy of
// the key.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.SigningKey) == 0 {
		return nil, ErrKeyMissing
	}
	key := make([]byte, len(cfg.SigningKey))
	copy(key, cfg.SigningKey)

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Manager{
		key: key,
		now: now,
		// exp is checked by hand: a zero exp means "never", and no other
		// registered claim is validated. Numbers decode as json.Number so
		// integers above 2^53 survive the round trip.
		parser: gjwt.NewParser(
			gjwt.WithValidMethods([]string{Algorithm}),
			gjwt.WithJSONNumber(),
			gjwt.WithoutClaimsValidation(),
			gjwt.WithPaddingAllowed(),
			gjwt.WithStrictDecoding(),
		),
	}, nil
}

// CreateToken signs claims. The header is always {"alg":"HS512","typ":"JWT"}
// and the output is deterministic for identical claims and key.
func (m *Manager) CreateToken(claims Claims) (string, error) {
	token := gjwt.NewWithClaims(gjwt.SigningMethodHS512, claims.mapClaims())
	signed, err := token.SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ExtractToken verifies tokenStr and returns its claims.
//
// The returned error wraps one of ErrTokenMalformed, ErrSignatureInvalid or
// ErrTokenExpired.
func (m *Manager) ExtractToken(tokenStr string) (Claims, error) {
	if strings.Count(tokenStr, ".") != 2 {
		return nil, ErrTokenMalformed
	}

	token, err := m.parser.Parse(tokenStr, func(*gjwt.Token) (any, error) {
		return m.key, nil
	})
	if err != nil {
		if errors.Is(err, gjwt.ErrTokenSignatureInvalid) {
			return nil, fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	mapClaims, ok := token.Claims.(gjwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}

	exp, err := mapClaims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
	if exp != nil && exp.Unix() != 0 && exp.Unix() < m.now().Unix() {
		return nil, ErrTokenExpired
	}

	return Claims(mapClaims), nil
}

// Verify reports whether tokenStr is well formed, correctly signed and not
// expired.
func (m *Manager) Verify(tokenStr string) bool {
	_, err := m.ExtractToken(tokenStr)
	return err == nil
}
