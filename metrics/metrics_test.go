package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestMetricsDisabledNoIncrement(t *testing.T) {
	m := New(Config{Enabled: false})
	m.Inc(TokenIssued)

	if got := m.Value(TokenIssued); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if snap := m.Snapshot(); len(snap.Counters) != 0 || len(snap.Histograms) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
}

func TestMetricsNilReceiverIsNoop(t *testing.T) {
	var m *Metrics
	m.Inc(TokenIssued)
	m.Add(PhraseTranslated, 3)
	m.Observe(TranslateLatency, time.Millisecond)

	if m.Enabled() || m.LatencyEnabled() {
		t.Fatal("nil metrics must report disabled")
	}
	if got := m.Value(TokenIssued); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestMetricsEnabledIncrement(t *testing.T) {
	m := New(Config{Enabled: true})
	m.Inc(TokenVerified)
	m.Inc(TokenVerified)
	m.Add(PhraseTranslated, 5)
	m.Add(PhraseTranslated, 0)

	if got := m.Value(TokenVerified); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	if got := m.Value(PhraseTranslated); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
}

func TestMetricsConcurrentIncrementSafe(t *testing.T) {
	m := New(Config{Enabled: true})

	const goroutines = 32
	const perG = 4000

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perG; j++ {
				m.Inc(DictionaryCacheHit)
			}
		}()
	}
	wg.Wait()

	want := uint64(goroutines * perG)
	if got := m.Value(DictionaryCacheHit); got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}
}

func TestMetricsHistogramBucketCorrectness(t *testing.T) {
	m := New(Config{Enabled: true, EnableLatencyHistograms: true})

	observations := []time.Duration{
		100 * time.Microsecond,
		250 * time.Microsecond,
		500 * time.Microsecond,
		time.Millisecond,
		2500 * time.Microsecond,
		5 * time.Millisecond,
		10 * time.Millisecond,
		time.Second,
	}
	for _, d := range observations {
		m.Observe(TranslateLatency, d)
	}
	// Counters are not histograms.
	m.Observe(TokenIssued, time.Millisecond)

	buckets := m.Snapshot().Histograms[TranslateLatency]
	if len(buckets) != BucketCount {
		t.Fatalf("expected %d buckets, got %d", BucketCount, len(buckets))
	}
	for i, got := range buckets {
		if got != 1 {
			t.Fatalf("bucket %d: expected 1, got %d", i, got)
		}
	}
}

func TestMetricsLatencyRequiresFlag(t *testing.T) {
	m := New(Config{Enabled: true})
	m.Observe(TranslateLatency, time.Millisecond)

	if _, ok := m.Snapshot().Histograms[TranslateLatency]; ok {
		t.Fatal("histogram must be absent when latency collection is off")
	}
}

func TestCumulativeBuckets(t *testing.T) {
	got := CumulativeBuckets(NormalizeBuckets([]uint64{1, 2, 3}))
	want := [BucketCount]uint64{1, 3, 6, 6, 6, 6, 6, 6}
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestCounterDefsCoverEveryCounter(t *testing.T) {
	seen := make(map[ID]bool, len(CounterDefs))
	for _, def := range CounterDefs {
		if seen[def.ID] {
			t.Fatalf("duplicate counter def %s", def.Name)
		}
		seen[def.ID] = true
	}
	for id := ID(0); id < idCount; id++ {
		if id == TranslateLatency {
			continue
		}
		if !seen[id] {
			t.Fatalf("counter %d has no export definition", id)
		}
	}
}
