package metrics

// CounterDef names a counter for exporters.
type CounterDef struct {
	ID   ID
	Name string
	Help string
}

// HistogramDef names a histogram for exporters.
type HistogramDef struct {
	ID   ID
	Name string
	Help string
}

// CounterDefs lists every exported counter in render order.
var CounterDefs = []CounterDef{
	{ID: TokenIssued, Name: "bossanova_token_issued_total", Help: "Tokens signed."},
	{ID: TokenVerified, Name: "bossanova_token_verified_total", Help: "Inbound tokens that passed verification."},
	{ID: TokenRejected, Name: "bossanova_token_rejected_total", Help: "Inbound tokens rejected as malformed or badly signed."},
	{ID: TokenExpired, Name: "bossanova_token_expired_total", Help: "Inbound tokens rejected for expiry."},
	{ID: SessionSaved, Name: "bossanova_session_saved_total", Help: "Session cookies written."},
	{ID: SessionDestroyed, Name: "bossanova_session_destroyed_total", Help: "Session cookies cleared."},
	{ID: SigningKeyMissing, Name: "bossanova_signing_key_missing_total", Help: "Requests halted because no signing key was configured."},
	{ID: DictionaryCacheHit, Name: "bossanova_dictionary_cache_hit_total", Help: "Dictionary loads served from the shared cache."},
	{ID: DictionaryCacheMiss, Name: "bossanova_dictionary_cache_miss_total", Help: "Dictionary cache lookups that missed."},
	{ID: DictionaryLoaded, Name: "bossanova_dictionary_loaded_total", Help: "Dictionaries parsed from their source."},
	{ID: DictionaryMissing, Name: "bossanova_dictionary_missing_total", Help: "Dictionary loads for locales without a source."},
	{ID: PhraseTranslated, Name: "bossanova_phrase_translated_total", Help: "Marked phrases replaced by a translation."},
	{ID: PhraseUntranslated, Name: "bossanova_phrase_untranslated_total", Help: "Marked phrases emitted untranslated."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: TranslateLatency, Name: "bossanova_translate_latency_seconds", Help: "Translation pass latency histogram."},
}

// HistogramBounds are the upper bounds, in seconds, of each bucket.
var HistogramBounds = []string{
	"0.0001",
	"0.00025",
	"0.0005",
	"0.001",
	"0.0025",
	"0.005",
	"0.01",
	"+Inf",
}

// HistogramBoundSuffix is HistogramBounds made safe for instrument names.
var HistogramBoundSuffix = []string{
	"0_0001",
	"0_00025",
	"0_0005",
	"0_001",
	"0_0025",
	"0_005",
	"0_01",
	"inf",
}

// NormalizeBuckets copies raw into a fixed-size array, zero-filling gaps.
func NormalizeBuckets(raw []uint64) [BucketCount]uint64 {
	var out [BucketCount]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [BucketCount]uint64) [BucketCount]uint64 {
	var out [BucketCount]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
