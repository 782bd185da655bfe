package translate

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MrEthical07/bossanova/metrics"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Translator applies Replace with the dictionary of a locale. It memoizes
// loaded dictionaries per locale and collapses concurrent loads of the same
// locale. It is safe for concurrent use.
type Translator struct {
	loader  *Loader
	metrics *metrics.Metrics
	now     func() time.Time

	mu    sync.RWMutex
	memo  map[string]Dictionary
	group singleflight.Group
}

// TranslatorOption configures a Translator.
type TranslatorOption func(*Translator)

// WithTranslatorMetrics records phrase counters and Run latency into m.
func WithTranslatorMetrics(m *metrics.Metrics) TranslatorOption {
	return func(t *Translator) { t.metrics = m }
}

// NewTranslator returns a translator over loader. A nil loader translates
// nothing: every Run strips markers and keeps phrases verbatim.
func NewTranslator(loader *Loader, opts ...TranslatorOption) *Translator {
	t := &Translator{
		loader: loader,
		now:    time.Now,
		memo:   map[string]Dictionary{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

// Run returns buffer with every marked phrase translated into locale. An
// empty locale or a locale without a dictionary leaves phrases untranslated.
// clearCache reloads the dictionary from its source, bypassing both the
// in-process memo and the shared cache. A failed reload drops the memo.
func (t *Translator) Run(ctx context.Context, buffer, locale string, clearCache bool) string {
	start := t.now()

	var dict Dictionary
	if locale != "" {
		dict = t.Dictionary(ctx, locale, clearCache)
	}

	out := scan(buffer, func(phrase string) (string, bool) {
		translated, ok := dict.Lookup(phrase)
		if ok {
			t.metrics.Inc(metrics.PhraseTranslated)
		} else {
			t.metrics.Inc(metrics.PhraseUntranslated)
		}
		return translated, ok
	})

	t.metrics.Observe(metrics.TranslateLatency, t.now().Sub(start))
	return out
}

// Dictionary returns the dictionary of locale, or an empty one when it cannot
// be loaded. Load failures are logged.
func (t *Translator) Dictionary(ctx context.Context, locale string, clearCache bool) Dictionary {
	if t.loader == nil {
		return Dictionary{}
	}

	if !clearCache {
		t.mu.RLock()
		dict, ok := t.memo[locale]
		t.mu.RUnlock()
		if ok {
			return dict
		}
	}

	key := locale
	if clearCache {
		key = "\x00reload:" + locale
	}
	v, err, _ := t.group.Do(key, func() (any, error) {
		dict, err := t.loader.LoadDictionary(ctx, locale, clearCache)
		if err != nil {
			if clearCache {
				t.Forget(locale)
			}
			return nil, err
		}
		t.mu.Lock()
		t.memo[locale] = dict
		t.mu.Unlock()
		return dict, nil
	})
	if err != nil {
		entry := log.WithField("locale", locale).WithError(err)
		if errors.Is(err, ErrDictionaryNotFound) {
			entry.Debug("translate: no dictionary for locale, passing through")
		} else {
			entry.Warn("translate: dictionary load failed, passing through")
		}
		return Dictionary{}
	}

	return v.(Dictionary)
}

// Forget drops the memoized dictionary of locale, or of every locale when
// locale is empty. The shared cache is left untouched.
func (t *Translator) Forget(locale string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if locale == "" {
		t.memo = map[string]Dictionary{}
		return
	}
	delete(t.memo, locale)
}
