package translate

import (
	"bytes"
	"context"
	"mime"
	"net/http"
	"strings"
)

// IsTextual reports whether a response of the given Content-Type is rewritten.
// text/* and the common script and markup types qualify; everything else,
// including unparsable values, is passed through.
func IsTextual(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	major, minor, ok := strings.Cut(mediaType, "/")
	if !ok {
		return false
	}
	if major == "text" {
		return true
	}
	if major != "application" {
		return false
	}

	switch minor {
	case "json", "javascript", "ecmascript", "xml":
		return true
	}
	return strings.HasSuffix(minor, "+json") || strings.HasSuffix(minor, "+xml")
}

// ResponseFilter buffers a response and translates it on Close. It
// implements http.ResponseWriter and is not safe for concurrent use.
type ResponseFilter struct {
	w      http.ResponseWriter
	t      *Translator
	ctx    context.Context
	locale string

	buf         bytes.Buffer
	status      int
	wroteHeader bool
	closed      bool
}

// Start wraps w so that everything written to the returned filter is
// translated into locale once Close is called. Textual bodies are rewritten;
// other bodies reach w unchanged.
func (t *Translator) Start(ctx context.Context, w http.ResponseWriter, locale string) *ResponseFilter {
	return &ResponseFilter{
		w:      w,
		t:      t,
		ctx:    ctx,
		locale: locale,
		status: http.StatusOK,
	}
}

// Locale returns the locale the filter translates into.
func (f *ResponseFilter) Locale() string { return f.locale }

// Header returns the header map of the wrapped writer.
func (f *ResponseFilter) Header() http.Header { return f.w.Header() }

// WriteHeader records the status; it is sent on Close.
func (f *ResponseFilter) WriteHeader(status int) {
	if f.wroteHeader || f.closed {
		return
	}
	f.status = status
	f.wroteHeader = true
}

// Write buffers b.
func (f *ResponseFilter) Write(b []byte) (int, error) {
	if f.closed {
		return 0, ErrFilterClosed
	}
	if !f.wroteHeader {
		f.WriteHeader(http.StatusOK)
	}
	return f.buf.Write(b)
}

// Close translates the buffered body when it is textual and sends the status
// and body to the wrapped writer. Later calls do nothing.
func (f *ResponseFilter) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true

	body := f.buf.Bytes()
	if len(body) > 0 && f.translatable(body) {
		body = []byte(f.t.Run(f.ctx, string(body), f.locale, false))
		f.w.Header().Del("Content-Length")
	}

	f.w.WriteHeader(f.status)
	if len(body) == 0 {
		return nil
	}
	_, err := f.w.Write(body)
	return err
}

func (f *ResponseFilter) translatable(body []byte) bool {
	h := f.w.Header()
	if enc := h.Get("Content-Encoding"); enc != "" && !strings.EqualFold(enc, "identity") {
		return false
	}
	contentType := h.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}
	return IsTextual(contentType)
}
