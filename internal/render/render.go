// Package render writes the small error bodies shared by the HTTP-facing
// packages, picking JSON for ajax callers and plain text for browsers.
package render

import (
	"encoding/json"
	"net/http"
	"strings"
)

// ErrorBody is the JSON shape sent to ajax callers.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// IsAjax reports whether r was issued by a script rather than a page load.
func IsAjax(r *http.Request) bool {
	if r == nil {
		return false
	}
	return strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest")
}

// Marked wraps msg in translation markers so a translation pass further down
// the response chain can localize it.
func Marked(msg string) string {
	return "^^[" + msg + "]^^"
}

// Error writes status with msg, as {"error":"1","message":...} for ajax
// callers and as plain text otherwise.
func Error(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h := w.Header()
	h.Del("Content-Length")
	h.Set("X-Content-Type-Options", "nosniff")

	if IsAjax(r) {
		h.Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(ErrorBody{Error: "1", Message: Marked(msg)})
		return
	}

	h.Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(Marked(msg)))
}

// Forbidden is Error with http.StatusForbidden.
func Forbidden(w http.ResponseWriter, r *http.Request, msg string) {
	Error(w, r, http.StatusForbidden, msg)
}
