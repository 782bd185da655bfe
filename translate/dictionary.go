package translate

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Dictionary maps Hash(phrase) to the translated phrase for one locale.
type Dictionary map[string]string

// Lookup returns the translation of phrase, or phrase itself when the
// dictionary has no entry for it.
func (d Dictionary) Lookup(phrase string) (string, bool) {
	if translated, ok := d[Hash(phrase)]; ok {
		return translated, true
	}
	return phrase, false
}

// ParseDictionary reads "phrase|translation" lines from r. The translation
// column is optional; an empty or missing one maps the phrase to itself.
// Columns after the second are ignored, as are lines with a blank phrase.
func ParseDictionary(r io.Reader) (Dictionary, error) {
	dict := Dictionary{}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		phrase, translation, _ := strings.Cut(sc.Text(), "|")
		phrase = strings.TrimSpace(phrase)
		if phrase == "" {
			continue
		}

		translation, _, _ = strings.Cut(translation, "|")
		translation = strings.TrimSpace(translation)
		if translation == "" {
			translation = phrase
		}

		dict[Hash(phrase)] = translation
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}

	return dict, nil
}

// cacheRecord is the shared cache value: the JSON array [locale, dictionary].
type cacheRecord struct {
	Locale     string
	Dictionary Dictionary
}

func (c cacheRecord) MarshalJSON() ([]byte, error) {
	dict := c.Dictionary
	if dict == nil {
		dict = Dictionary{}
	}
	return json.Marshal([]any{c.Locale, dict})
}

func (c *cacheRecord) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	if len(parts) != 2 {
		return fmt.Errorf("cache record: expected 2 elements, got %d", len(parts))
	}

	if err := json.Unmarshal(parts[0], &c.Locale); err != nil {
		return fmt.Errorf("cache record locale: %w", err)
	}

	// Writers that encode an empty mapping as a list produce "[]".
	if bytes.Equal(bytes.TrimSpace(parts[1]), []byte("[]")) {
		c.Dictionary = Dictionary{}
		return nil
	}
	if err := json.Unmarshal(parts[1], &c.Dictionary); err != nil {
		return fmt.Errorf("cache record dictionary: %w", err)
	}
	return nil
}
