package otel

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/bossanova/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

// Source supplies snapshots to the exporter; *metrics.Metrics satisfies it.
type Source interface {
	MetricsSnapshot() metrics.Snapshot
}

// A family folds related counters into one instrument; each member is told
// apart by the value of attr.
type family struct {
	name    string
	help    string
	attr    string
	members []member
}

type member struct {
	id    metrics.ID
	value string
}

// families covers every counter in metrics.CounterDefs.
var families = []family{
	{
		name: "bossanova.token.operations",
		help: "Token operations by outcome.",
		attr: "outcome",
		members: []member{
			{metrics.TokenIssued, "issued"},
			{metrics.TokenVerified, "verified"},
			{metrics.TokenRejected, "rejected"},
			{metrics.TokenExpired, "expired"},
		},
	},
	{
		name: "bossanova.session.cookies",
		help: "Session cookies written by action.",
		attr: "action",
		members: []member{
			{metrics.SessionSaved, "saved"},
			{metrics.SessionDestroyed, "destroyed"},
		},
	},
	{
		name:    "bossanova.session.signing_key_missing",
		help:    "Requests halted because no signing key was configured.",
		members: []member{{metrics.SigningKeyMissing, ""}},
	},
	{
		name: "bossanova.dictionary.loads",
		help: "Dictionary lookups by result.",
		attr: "result",
		members: []member{
			{metrics.DictionaryCacheHit, "cache_hit"},
			{metrics.DictionaryCacheMiss, "cache_miss"},
			{metrics.DictionaryLoaded, "source"},
			{metrics.DictionaryMissing, "missing"},
		},
	},
	{
		name: "bossanova.translate.phrases",
		help: "Marked phrases by result.",
		attr: "result",
		members: []member{
			{metrics.PhraseTranslated, "translated"},
			{metrics.PhraseUntranslated, "untranslated"},
		},
	},
}

const (
	latencyBucketName = "bossanova.translate.latency.bucket"
	latencyCountName  = "bossanova.translate.latency.count"
)

type observation struct {
	id   metrics.ID
	ins  metric.Int64ObservableCounter
	opts []metric.ObserveOption
}

type OTelExporter struct {
	source       Source
	registration metric.Registration
	counters     []observation
	buckets      metric.Int64ObservableGauge
	bucketOpts   [metrics.BucketCount][]metric.ObserveOption
	count        metric.Int64ObservableGauge
}

func NewOTelExporter(meter metric.Meter, m *metrics.Metrics) (*OTelExporter, error) {
	if m == nil {
		return nil, ErrNilSource
	}
	return NewOTelExporterFromSource(meter, m)
}

// NewOTelExporterFromSource registers one observable counter per family and
// a pair of gauges for the translate latency histogram. The bucket gauge
// carries cumulative counts labelled by their "le" bound.
func NewOTelExporterFromSource(meter metric.Meter, source Source) (*OTelExporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	e := &OTelExporter{source: source}
	observables := make([]metric.Observable, 0, len(families)+2)

	for _, f := range families {
		ins, err := meter.Int64ObservableCounter(f.name, metric.WithDescription(f.help))
		if err != nil {
			return nil, fmt.Errorf("create observable counter %s: %w", f.name, err)
		}
		observables = append(observables, ins)

		for _, mb := range f.members {
			var opts []metric.ObserveOption
			if f.attr != "" {
				opts = append(opts, metric.WithAttributeSet(attribute.NewSet(attribute.String(f.attr, mb.value))))
			}
			e.counters = append(e.counters, observation{id: mb.id, ins: ins, opts: opts})
		}
	}

	var err error
	e.buckets, err = meter.Int64ObservableGauge(latencyBucketName, metric.WithDescription("Cumulative translate latency samples at or below le seconds."))
	if err != nil {
		return nil, fmt.Errorf("create gauge %s: %w", latencyBucketName, err)
	}
	e.count, err = meter.Int64ObservableGauge(latencyCountName, metric.WithDescription("Translate latency sample count."))
	if err != nil {
		return nil, fmt.Errorf("create gauge %s: %w", latencyCountName, err)
	}
	observables = append(observables, e.buckets, e.count)
	for i, bound := range metrics.HistogramBounds {
		e.bucketOpts[i] = []metric.ObserveOption{
			metric.WithAttributeSet(attribute.NewSet(attribute.String("le", bound))),
		}
	}

	e.registration, err = meter.RegisterCallback(e.observe, observables...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}
	return e, nil
}

func (e *OTelExporter) observe(_ context.Context, observer metric.Observer) error {
	snapshot := e.source.MetricsSnapshot()
	for _, c := range e.counters {
		observer.ObserveInt64(c.ins, int64(snapshot.Counters[c.id]), c.opts...)
	}

	raw, ok := snapshot.Histograms[metrics.TranslateLatency]
	if !ok {
		return nil
	}
	cumulative := metrics.CumulativeBuckets(metrics.NormalizeBuckets(raw))
	for i, n := range cumulative {
		observer.ObserveInt64(e.buckets, int64(n), e.bucketOpts[i]...)
	}
	observer.ObserveInt64(e.count, int64(cumulative[len(cumulative)-1]))
	return nil
}

func (e *OTelExporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
