package translate

import (
	"strings"
	"unicode/utf8"
)

const (
	// StartMarker opens a translatable phrase.
	StartMarker = "^^["
	// EndMarker closes a translatable phrase.
	EndMarker = "]^^"
)

type scanState uint8

const (
	stateCopying scanState = iota
	stateCapturing
)

// Replace rewrites every ^^[phrase]^^ in buffer with its translation from
// dict, or with the bare phrase when dict has none. An unterminated phrase is
// emitted verbatim without its start marker. A start marker met while
// capturing is part of the phrase.
func Replace(buffer string, dict Dictionary) string {
	return scan(buffer, dict.Lookup)
}

// scan is the Copying/Capturing automaton behind Replace. Markers are ASCII,
// so matching them at byte offsets never splits a multi-byte rune; runes are
// copied as their original bytes so invalid UTF-8 passes through unchanged.
func scan(buffer string, lookup func(string) (string, bool)) string {
	if !strings.Contains(buffer, StartMarker) {
		return buffer
	}

	var out, phrase strings.Builder
	out.Grow(len(buffer))

	state := stateCopying
	for i := 0; i < len(buffer); {
		rest := buffer[i:]

		switch state {
		case stateCopying:
			if strings.HasPrefix(rest, StartMarker) {
				state = stateCapturing
				phrase.Reset()
				i += len(StartMarker)
				continue
			}
		case stateCapturing:
			if strings.HasPrefix(rest, EndMarker) {
				translated, _ := lookup(phrase.String())
				out.WriteString(translated)
				state = stateCopying
				i += len(EndMarker)
				continue
			}
		}

		_, size := utf8.DecodeRuneInString(rest)
		if state == stateCapturing {
			phrase.WriteString(rest[:size])
		} else {
			out.WriteString(rest[:size])
		}
		i += size
	}

	if state == stateCapturing {
		out.WriteString(phrase.String())
	}

	return out.String()
}
