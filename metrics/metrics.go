package metrics

import (
	"sync/atomic"
	"time"
)

// ID identifies a counter or histogram.
type ID uint16

const (
	// TokenIssued counts tokens created by CreateToken or Save.
	TokenIssued ID = iota
	// TokenVerified counts inbound tokens that passed verification.
	TokenVerified
	// TokenRejected counts inbound tokens rejected as malformed or badly signed.
	TokenRejected
	// TokenExpired counts correctly signed tokens rejected for exp.
	TokenExpired
	// SessionSaved counts session cookies written.
	SessionSaved
	// SessionDestroyed counts session cookies cleared.
	SessionDestroyed
	// SigningKeyMissing counts requests halted for a missing signing key.
	SigningKeyMissing
	// DictionaryCacheHit counts dictionary loads served by the shared cache.
	DictionaryCacheHit
	// DictionaryCacheMiss counts cache lookups that fell through to the source.
	DictionaryCacheMiss
	// DictionaryLoaded counts dictionaries parsed from their source.
	DictionaryLoaded
	// DictionaryMissing counts loads for locales without a source.
	DictionaryMissing
	// PhraseTranslated counts marked phrases replaced by a translation.
	PhraseTranslated
	// PhraseUntranslated counts marked phrases emitted verbatim.
	PhraseUntranslated
	// TranslateLatency is the histogram of full Run durations.
	TranslateLatency
	idCount
)

const (
	// BucketCount is the number of latency histogram buckets.
	BucketCount   = 8
	cacheLineSize = 64
)

type histogram struct {
	buckets [BucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Config toggles collection.
type Config struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// Metrics holds the counters. All methods are safe for concurrent use.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [idCount]paddedCounter
	histograms    [idCount]histogram
}

// Snapshot is a point-in-time copy of every counter and histogram.
type Snapshot struct {
	Counters   map[ID]uint64
	Histograms map[ID][]uint64
}

// New returns a Metrics configured by cfg.
func New(cfg Config) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counters are recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether the latency histogram is recorded.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc adds one to the counter id.
func (m *Metrics) Inc(id ID) {
	if m == nil || !m.enabled || id >= idCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Add adds n to the counter id.
func (m *Metrics) Add(id ID, n uint64) {
	if m == nil || !m.enabled || id >= idCount || n == 0 {
		return
	}
	atomic.AddUint64(&m.counters[id].value, n)
}

// Observe records d in the histogram id. Only TranslateLatency is a histogram.
func (m *Metrics) Observe(id ID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id != TranslateLatency {
		return
	}
	atomic.AddUint64(&m.histograms[id].buckets[bucketIndex(d)], 1)
}

// Value returns the current counter value.
func (m *Metrics) Value(id ID) uint64 {
	if m == nil || id >= idCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies all counters. Disabled metrics yield empty maps.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil || !m.enabled {
		return Snapshot{
			Counters:   map[ID]uint64{},
			Histograms: map[ID][]uint64{},
		}
	}

	s := Snapshot{
		Counters:   make(map[ID]uint64, int(idCount)),
		Histograms: make(map[ID][]uint64, 1),
	}
	for id := ID(0); id < idCount; id++ {
		if id == TranslateLatency {
			continue
		}
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, BucketCount)
		for i := 0; i < BucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[TranslateLatency].buckets[i])
		}
		s.Histograms[TranslateLatency] = buckets
	}

	return s
}

// MetricsSnapshot lets a *Metrics serve directly as an exporter source.
func (m *Metrics) MetricsSnapshot() Snapshot {
	return m.Snapshot()
}

func bucketIndex(d time.Duration) int {
	us := d.Microseconds()

	switch {
	case us <= 100:
		return 0
	case us <= 250:
		return 1
	case us <= 500:
		return 2
	case us <= 1000:
		return 3
	case us <= 2500:
		return 4
	case us <= 5000:
		return 5
	case us <= 10000:
		return 6
	default:
		return 7
	}
}
