package jwt

import (
	"encoding/json"
	"maps"
	"math"

	gjwt "github.com/golang-jwt/jwt/v5"
)

// ClaimExpiresAt is the claim holding the unix expiry timestamp.
const ClaimExpiresAt = "exp"

// Claims is the token payload: claim name to JSON-compatible value.
//
// Numbers decoded from a token are float64, as produced by encoding/json.
type Claims map[string]any

// Get returns the claim value and whether it is present.
func (c Claims) Get(name string) (any, bool) {
	v, ok := c[name]
	return v, ok
}

// String returns a string claim; ok is false when absent or not a string.
func (c Claims) String(name string) (string, bool) {
	s, ok := c[name].(string)
	return s, ok
}

// Int64 returns an integral claim. Accepts every numeric form a claim can take
// before or after a JSON round trip.
func (c Claims) Int64(name string) (int64, bool) {
	switch v := c[name].(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint32:
		return int64(v), true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return int64(v), true
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, true
		}
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return int64(f), true
	default:
		return 0, false
	}
}

// Set assigns a claim and returns c for chaining.
func (c Claims) Set(name string, value any) Claims {
	c[name] = value
	return c
}

// Merge copies every entry of other into c.
func (c Claims) Merge(other map[string]any) {
	maps.Copy(c, other)
}

// Clone returns a shallow copy; a nil receiver yields an empty map.
func (c Claims) Clone() Claims {
	out := make(Claims, len(c))
	maps.Copy(out, c)
	return out
}

func (c Claims) mapClaims() gjwt.MapClaims {
	if c == nil {
		return gjwt.MapClaims{}
	}
	return gjwt.MapClaims(c)
}
