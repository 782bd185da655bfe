package audit

import (
	"context"
	"sync"
	"time"
)

// Config controls which session events are recorded and how the queue
// behaves when the sink falls behind.
type Config struct {
	Enabled    bool
	BufferSize int
	// DropIfFull drops events when the queue is full instead of blocking the
	// request. EventSigningKeyMissing is never dropped for a full queue.
	DropIfFull bool
	// Events limits recording to these event types. Empty records all.
	Events []string
}

// Dispatcher queues session events for a sink on a single goroutine. A nil
// *Dispatcher is valid and records nothing.
type Dispatcher struct {
	sink       Sink
	dropIfFull bool
	events     map[string]bool

	// mu guards closed and serializes close(ch) against senders.
	mu      sync.RWMutex
	closed  bool
	ch      chan Event
	stopped chan struct{}

	dropMu  sync.Mutex
	dropped map[string]uint64
}

// NewDispatcher starts a dispatcher over sink. It returns nil when cfg is
// disabled.
func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &Dispatcher{
		sink:       sink,
		dropIfFull: cfg.DropIfFull,
		ch:         make(chan Event, cfg.BufferSize),
		stopped:    make(chan struct{}),
		dropped:    map[string]uint64{},
	}
	if len(cfg.Events) > 0 {
		d.events = make(map[string]bool, len(cfg.Events))
		for _, e := range cfg.Events {
			d.events[e] = true
		}
	}

	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer close(d.stopped)
	for event := range d.ch {
		d.sink.Emit(context.Background(), event)
	}
}

// Records reports whether events of eventType reach the sink.
func (d *Dispatcher) Records(eventType string) bool {
	if d == nil {
		return false
	}
	return d.events == nil || d.events[eventType]
}

// Emit queues event, stamping it with the current UTC time when it has none.
// Filtered event types are ignored. A full queue drops the event when
// DropIfFull is set, except EventSigningKeyMissing which waits for room like
// every event does otherwise. A wait ends early, and the event is counted as
// dropped, when ctx is done.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if !d.Records(event.EventType) {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}

	if d.dropIfFull && event.EventType != EventSigningKeyMissing {
		select {
		case d.ch <- event:
		default:
			d.drop(event.EventType)
		}
		return
	}

	select {
	case d.ch <- event:
	case <-ctx.Done():
		d.drop(event.EventType)
	}
}

func (d *Dispatcher) drop(eventType string) {
	d.dropMu.Lock()
	d.dropped[eventType]++
	d.dropMu.Unlock()
}

// Close stops accepting events, delivers the queued ones and waits for the
// sink to finish. It is idempotent.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.ch)
	}
	d.mu.Unlock()
	<-d.stopped
}

// Dropped returns the number of events that never reached the queue.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	d.dropMu.Lock()
	defer d.dropMu.Unlock()
	var n uint64
	for _, c := range d.dropped {
		n += c
	}
	return n
}

// DroppedByType returns the drop count of one event type.
func (d *Dispatcher) DroppedByType(eventType string) uint64 {
	if d == nil {
		return 0
	}
	d.dropMu.Lock()
	defer d.dropMu.Unlock()
	return d.dropped[eventType]
}
