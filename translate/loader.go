package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/MrEthical07/bossanova/metrics"
	log "github.com/sirupsen/logrus"
)

// DefaultCacheKey is the cache key under which the dictionary record is shared.
const DefaultCacheKey = "dictionary"

// CacheStore is a shared key-value store for dictionary records. Get returns
// ErrCacheMiss when key is absent.
type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Loader resolves a locale name to its Dictionary, reading "<locale>.csv" from
// a source file system behind an optional CacheStore.
//
// The cache holds a single record for all locales; a record for another
// locale than the one requested counts as a miss and is overwritten by the
// fresh load.
type Loader struct {
	source   fs.FS
	cache    CacheStore
	cacheKey string
	metrics  *metrics.Metrics
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithCache shares loaded dictionaries through store under key. An empty key
// means DefaultCacheKey; a nil store disables caching.
func WithCache(store CacheStore, key string) LoaderOption {
	return func(l *Loader) {
		l.cache = store
		if key != "" {
			l.cacheKey = key
		}
	}
}

// WithLoaderMetrics records cache and load counters into m.
func WithLoaderMetrics(m *metrics.Metrics) LoaderOption {
	return func(l *Loader) { l.metrics = m }
}

// NewLoader returns a loader reading dictionary files from source, typically
// os.DirFS of the locale directory.
func NewLoader(source fs.FS, opts ...LoaderOption) *Loader {
	l := &Loader{
		source:   source,
		cacheKey: DefaultCacheKey,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// LoadDictionary returns the dictionary of locale. Unless clearCache is set
// the cache is consulted first. A missing source file yields
// ErrDictionaryNotFound. Cache failures are logged and never fail the load.
func (l *Loader) LoadDictionary(ctx context.Context, locale string, clearCache bool) (Dictionary, error) {
	if err := checkLocaleName(locale); err != nil {
		return nil, err
	}

	if !clearCache {
		if dict, ok := l.fromCache(ctx, locale); ok {
			l.metrics.Inc(metrics.DictionaryCacheHit)
			return dict, nil
		}
		if l.cache != nil {
			l.metrics.Inc(metrics.DictionaryCacheMiss)
		}
	}

	dict, err := l.readSource(locale)
	if err != nil {
		if errors.Is(err, ErrDictionaryNotFound) {
			l.metrics.Inc(metrics.DictionaryMissing)
		}
		return nil, err
	}
	l.metrics.Inc(metrics.DictionaryLoaded)

	l.toCache(ctx, locale, dict)
	return dict, nil
}

func (l *Loader) readSource(locale string) (Dictionary, error) {
	if l.source == nil {
		return nil, fmt.Errorf("%w: %s: no source configured", ErrDictionaryNotFound, locale)
	}

	name := locale + ".csv"

	f, err := l.source.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDictionaryNotFound, locale)
		}
		return nil, fmt.Errorf("open dictionary %s: %w", name, err)
	}
	defer f.Close()

	dict, err := ParseDictionary(f)
	if err != nil {
		return nil, fmt.Errorf("dictionary %s: %w", name, err)
	}
	return dict, nil
}

func (l *Loader) fromCache(ctx context.Context, locale string) (Dictionary, bool) {
	if l.cache == nil {
		return nil, false
	}

	data, err := l.cache.Get(ctx, l.cacheKey)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			log.WithField("key", l.cacheKey).WithError(err).Warn("translate: dictionary cache read failed")
		}
		return nil, false
	}

	var record cacheRecord
	if err := json.Unmarshal(data, &record); err != nil {
		log.WithField("key", l.cacheKey).WithError(err).Warn("translate: discarding undecodable dictionary cache record")
		return nil, false
	}
	if record.Locale != locale || len(record.Dictionary) == 0 {
		return nil, false
	}

	return record.Dictionary, true
}

func (l *Loader) toCache(ctx context.Context, locale string, dict Dictionary) {
	if l.cache == nil {
		return
	}

	data, err := json.Marshal(cacheRecord{Locale: locale, Dictionary: dict})
	if err != nil {
		log.WithField("locale", locale).WithError(err).Warn("translate: encode dictionary cache record")
		return
	}
	if err := l.cache.Set(ctx, l.cacheKey, data); err != nil {
		log.WithField("key", l.cacheKey).WithError(err).Warn("translate: dictionary cache write failed")
	}
}

// checkLocaleName accepts any name that selects a single file in the
// dictionary source. Language tags are not required.
func checkLocaleName(locale string) error {
	if strings.TrimSpace(locale) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidLocale)
	}
	if strings.ContainsAny(locale, `/\`) || !fs.ValidPath(locale+".csv") {
		return fmt.Errorf("%w: %q", ErrInvalidLocale, locale)
	}
	return nil
}
