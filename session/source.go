package session

import (
	"net/http"
	"strings"
)

// minCookieTokenLen filters cookie values that cannot hold a signed token.
const minCookieTokenLen = 64

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := strings.TrimSpace(value[len(bearer):])
	if token == "" {
		return "", false
	}

	return token, true
}

// postedToken returns the raw inbound token without verifying it.
func postedToken(r *http.Request, cookieName string) (string, bool) {
	if r == nil {
		return "", false
	}

	if token, ok := bearerToken(r.Header.Get("Authorization")); ok {
		return token, true
	}

	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return "", false
	}
	if len(cookie.Value) <= minCookieTokenLen {
		return "", false
	}

	return cookie.Value, true
}
