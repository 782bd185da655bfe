package bossanova

import "errors"

var (
	// ErrSigningKeyMissing is returned when no token signing key can be resolved
	// from options, configuration or environment. It is a deployment error: the
	// request that hits it must not be processed further.
	ErrSigningKeyMissing = errors.New("signing key missing")
	// ErrInvalidSameSite is returned for an unknown SameSite policy name.
	ErrInvalidSameSite = errors.New("invalid samesite policy")
)

// SigningKeyMissingMessage is the user-facing text emitted with the 403
// response when ErrSigningKeyMissing is hit.
const SigningKeyMissingMessage = "JWT bossanova key must be defined in your configuration"
