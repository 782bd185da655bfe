package translate

import (
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

// ParseLocale validates a locale name such as "en_GB" or "pt-BR" and returns
// its language tag. The name itself, not the tag, selects the dictionary file.
func ParseLocale(locale string) (language.Tag, error) {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return language.Und, fmt.Errorf("%w: empty", ErrInvalidLocale)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return language.Und, fmt.Errorf("%w: %q: %v", ErrInvalidLocale, locale, err)
	}
	return tag, nil
}

// LocaleMatcher picks the locale of a request among a fixed set of
// dictionary names.
type LocaleMatcher struct {
	fallback   string
	cookieName string
	locales    []string
	byTag      map[language.Tag]string
	matcher    language.Matcher
}

// NewLocaleMatcher builds a matcher over locales. fallback is returned when
// nothing in the request matches; it is added to the supported set when
// missing. Invalid locale names are rejected.
func NewLocaleMatcher(fallback string, locales []string, cookieName string) (*LocaleMatcher, error) {
	if _, err := ParseLocale(fallback); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(locales)+1)
	names = append(names, fallback)
	for _, locale := range locales {
		locale = strings.TrimSpace(locale)
		if locale != "" && locale != fallback {
			names = append(names, locale)
		}
	}

	m := &LocaleMatcher{
		fallback:   fallback,
		cookieName: cookieName,
		byTag:      make(map[language.Tag]string, len(names)),
	}
	tags := make([]language.Tag, 0, len(names))
	for _, name := range names {
		tag, err := ParseLocale(name)
		if err != nil {
			return nil, err
		}
		if _, dup := m.byTag[tag]; dup {
			continue
		}
		m.byTag[tag] = name
		m.locales = append(m.locales, name)
		tags = append(tags, tag)
	}
	m.matcher = language.NewMatcher(tags)

	return m, nil
}

// Locales returns the supported locale names, fallback first.
func (m *LocaleMatcher) Locales() []string {
	out := make([]string, len(m.locales))
	copy(out, m.locales)
	return out
}

// Fallback returns the locale used when a request matches nothing.
func (m *LocaleMatcher) Fallback() string { return m.fallback }

// Match returns the locale for r: an exact supported value of the locale
// cookie wins, then the best Accept-Language match, then the fallback.
func (m *LocaleMatcher) Match(r *http.Request) string {
	if r == nil {
		return m.fallback
	}

	if m.cookieName != "" {
		if cookie, err := r.Cookie(m.cookieName); err == nil {
			if name, ok := m.lookup(cookie.Value); ok {
				return name
			}
		}
	}

	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			_, index, confidence := m.matcher.Match(tags...)
			if confidence != language.No && index >= 0 && index < len(m.locales) {
				return m.locales[index]
			}
		}
	}

	return m.fallback
}

func (m *LocaleMatcher) lookup(value string) (string, bool) {
	tag, err := ParseLocale(value)
	if err != nil {
		return "", false
	}
	name, ok := m.byTag[tag]
	return name, ok
}
