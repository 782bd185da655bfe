package translate

import "errors"

var (
	// ErrDictionaryNotFound is returned when no dictionary source exists for a
	// locale.
	ErrDictionaryNotFound = errors.New("dictionary not found")
	// ErrInvalidLocale is returned for a locale name that cannot select a
	// dictionary file, or that is not a language tag where one is required.
	ErrInvalidLocale = errors.New("invalid locale")
	// ErrCacheMiss is returned by a CacheStore when the key is absent.
	ErrCacheMiss = errors.New("cache miss")
	// ErrFilterClosed is returned by ResponseFilter.Write after Close.
	ErrFilterClosed = errors.New("response filter closed")
)
