// Package jwt signs and verifies compact HS512 tokens carrying an arbitrary
// JSON claims map, using golang-jwt for segment encoding and HMAC.
//
// Validation is limited to the signature and the optional "exp" claim: a
// token without "exp", or with "exp" set to zero, never expires by this check.
package jwt
