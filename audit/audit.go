package audit

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Event types emitted by the session engine.
const (
	EventSessionSaved      = "session_saved"
	EventSessionDestroyed  = "session_destroyed"
	EventTokenRejected     = "token_rejected"
	EventSigningKeyMissing = "signing_key_missing"
)

// Event is one audit record.
type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType string            `json:"event_type"`
	Cookie    string            `json:"cookie,omitempty"`
	Subject   string            `json:"subject,omitempty"`
	IP        string            `json:"ip,omitempty"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Sink receives emitted audit events.
type Sink interface {
	Emit(ctx context.Context, event Event)
}

// NoOpSink drops audit events.
type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, Event) {}

// ChannelSink writes audit events into a buffered channel.
type ChannelSink struct {
	events chan Event
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan Event, buffer),
	}
}

func (s *ChannelSink) Emit(ctx context.Context, event Event) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

func (s *ChannelSink) Events() <-chan Event {
	return s.events
}

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

func (s *JSONWriterSink) Emit(_ context.Context, event Event) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = s.writer.Write(data)
}

// LogSink writes events through a logrus logger, failures at warn level.
type LogSink struct {
	logger *log.Logger
}

// NewLogSink returns a sink over logger, or the standard logger when nil.
func NewLogSink(logger *log.Logger) *LogSink {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Emit(_ context.Context, event Event) {
	fields := log.Fields{
		"event":   event.EventType,
		"success": event.Success,
	}
	if event.Cookie != "" {
		fields["cookie"] = event.Cookie
	}
	if event.Subject != "" {
		fields["subject"] = event.Subject
	}
	if event.IP != "" {
		fields["ip"] = event.IP
	}
	if event.Error != "" {
		fields["error"] = event.Error
	}
	for k, v := range event.Metadata {
		fields["meta."+k] = v
	}

	entry := s.logger.WithFields(fields).WithTime(event.Timestamp)
	if event.Success {
		entry.Info("audit")
		return
	}
	entry.Warn("audit")
}
