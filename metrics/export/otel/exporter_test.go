package otel

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/bossanova/metrics"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

type fakeSource struct {
	mu       sync.RWMutex
	snapshot metrics.Snapshot
}

func (f *fakeSource) MetricsSnapshot() metrics.Snapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := metrics.Snapshot{
		Counters:   make(map[metrics.ID]uint64, len(f.snapshot.Counters)),
		Histograms: make(map[metrics.ID][]uint64, len(f.snapshot.Histograms)),
	}
	for k, v := range f.snapshot.Counters {
		out.Counters[k] = v
	}
	for k, buckets := range f.snapshot.Histograms {
		next := make([]uint64, len(buckets))
		copy(next, buckets)
		out.Histograms[k] = next
	}
	return out
}

func newTestMeter(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	return reader, provider
}

// findPoint returns the value of the data point of name whose attribute key
// equals value. An empty key matches a point without attributes.
func findPoint(rm metricdata.ResourceMetrics, name, key, value string) (int64, bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			var points []metricdata.DataPoint[int64]
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				points = data.DataPoints
			case metricdata.Gauge[int64]:
				points = data.DataPoints
			}
			for _, p := range points {
				if key == "" {
					if p.Attributes.Len() == 0 {
						return p.Value, true
					}
					continue
				}
				if v, ok := p.Attributes.Value(attribute.Key(key)); ok && v.AsString() == value {
					return p.Value, true
				}
			}
		}
	}
	return 0, false
}

func TestExporterRegistersAndCollects(t *testing.T) {
	reader, provider := newTestMeter(t)
	meter := provider.Meter("bossanova-test")

	m := metrics.New(metrics.Config{Enabled: true, EnableLatencyHistograms: true})
	m.Inc(metrics.TokenIssued)
	m.Inc(metrics.TokenIssued)
	m.Inc(metrics.TokenIssued)
	m.Inc(metrics.TokenExpired)
	m.Inc(metrics.SigningKeyMissing)
	m.Inc(metrics.DictionaryCacheHit)
	m.Observe(metrics.TranslateLatency, 50*time.Microsecond)
	m.Observe(metrics.TranslateLatency, 3*time.Millisecond)

	exp, err := NewOTelExporter(meter, m)
	if err != nil {
		t.Fatalf("NewOTelExporter failed: %v", err)
	}
	defer func() {
		if err := exp.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	checks := []struct {
		name, key, value string
		want             int64
	}{
		{"bossanova.token.operations", "outcome", "issued", 3},
		{"bossanova.token.operations", "outcome", "expired", 1},
		{"bossanova.token.operations", "outcome", "rejected", 0},
		{"bossanova.session.signing_key_missing", "", "", 1},
		{"bossanova.dictionary.loads", "result", "cache_hit", 1},
		{"bossanova.translate.latency.bucket", "le", "0.0001", 1},
		{"bossanova.translate.latency.bucket", "le", "0.005", 2},
		{"bossanova.translate.latency.bucket", "le", "+Inf", 2},
		{"bossanova.translate.latency.count", "", "", 2},
	}
	for _, c := range checks {
		got, ok := findPoint(rm, c.name, c.key, c.value)
		if !ok || got != c.want {
			t.Fatalf("%s{%s=%q}: got %d (found=%v), want %d", c.name, c.key, c.value, got, ok, c.want)
		}
	}
}

func TestFamiliesCoverEveryCounter(t *testing.T) {
	seen := map[metrics.ID]int{}
	for _, f := range families {
		for _, mb := range f.members {
			seen[mb.id]++
		}
	}
	for _, def := range metrics.CounterDefs {
		if seen[def.ID] != 1 {
			t.Fatalf("counter %s exported %d times, want 1", def.Name, seen[def.ID])
		}
	}
	if len(seen) != len(metrics.CounterDefs) {
		t.Fatalf("families export %d counters, CounterDefs lists %d", len(seen), len(metrics.CounterDefs))
	}
}

func TestExporterRejectsNilInputs(t *testing.T) {
	_, provider := newTestMeter(t)
	meter := provider.Meter("bossanova-test")

	if _, err := NewOTelExporterFromSource(meter, nil); err != ErrNilSource {
		t.Fatalf("expected ErrNilSource, got %v", err)
	}
	if _, err := NewOTelExporter(meter, nil); err != ErrNilSource {
		t.Fatalf("expected ErrNilSource, got %v", err)
	}
	if _, err := NewOTelExporterFromSource(nil, &fakeSource{}); err != ErrNilMeter {
		t.Fatalf("expected ErrNilMeter, got %v", err)
	}
}

func TestExporterConcurrentCollectNoPanic(t *testing.T) {
	reader, provider := newTestMeter(t)
	meter := provider.Meter("bossanova-test")

	src := &fakeSource{
		snapshot: metrics.Snapshot{
			Counters: map[metrics.ID]uint64{
				metrics.PhraseTranslated: 1,
			},
			Histograms: map[metrics.ID][]uint64{
				metrics.TranslateLatency: {1, 0, 0, 0, 0, 0, 0, 0},
			},
		},
	}

	exp, err := NewOTelExporterFromSource(meter, src)
	if err != nil {
		t.Fatalf("NewOTelExporterFromSource failed: %v", err)
	}
	defer func() {
		if err := exp.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(v uint64) {
			defer wg.Done()
			src.mu.Lock()
			src.snapshot.Counters[metrics.PhraseTranslated] = v
			src.mu.Unlock()

			var rm metricdata.ResourceMetrics
			_ = reader.Collect(context.Background(), &rm)
		}(uint64(i + 1))
	}
	wg.Wait()
}
