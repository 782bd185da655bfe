// Package translate rewrites response bodies by replacing marked phrases with
// their translation for the active locale.
//
// A phrase is marked as ^^[phrase]^^. Dictionaries are loaded per locale from
// "<locale>.csv" files holding one "phrase|translation" entry per line, keyed
// by Hash of the trimmed phrase, and can be shared between processes through a
// CacheStore. Phrases without a translation are emitted verbatim with the
// markers removed.
package translate
