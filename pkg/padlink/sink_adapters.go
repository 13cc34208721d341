package padlink

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ghalamif/padlink/internal/domain"
	"github.com/ghalamif/padlink/internal/ports"
)

// ErrChannelSinkClosed is returned when a channel sink is written to after being closed.
var ErrChannelSinkClosed = errors.New("padlink: channel sink closed")

// TelemetryBatchSink is invoked with every batch of structured records.
type TelemetryBatchSink func([]TelemetryRecord) error

// NewCallbackSink adapts a function into a TelemetrySink.
func NewCallbackSink(name string, fn TelemetryBatchSink) TelemetrySink {
	if name == "" {
		name = "callback"
	}
	return &callbackSink{name: name, fn: fn}
}

// NewChannelSink exposes batches via a channel; it returns the sink, the
// read-only channel, and a close function to call during shutdown.
func NewChannelSink(name string, buffer int) (TelemetrySink, <-chan []TelemetryRecord, func()) {
	if name == "" {
		name = "channel"
	}
	if buffer < 0 {
		buffer = 0
	}
	ch := make(chan []TelemetryRecord, buffer)
	s := &channelSink{name: name, ch: ch}
	return s, ch, func() { s.close() }
}

type callbackSink struct {
	name string
	fn   TelemetryBatchSink
}

func (s *callbackSink) WriteBatch(records []domain.TelemetryRecord) error {
	if s.fn == nil {
		return fmt.Errorf("callback sink %q: nil handler", s.name)
	}
	if len(records) == 0 {
		return nil
	}
	return s.fn(copyBatch(records))
}

func (s *callbackSink) Name() string { return s.name }

type channelSink struct {
	name   string
	mu     sync.RWMutex
	ch     chan []TelemetryRecord
	closed bool
}

// WriteBatch never blocks the telemetry reader: a full channel drops the
// batch with an error.
func (s *channelSink) WriteBatch(records []domain.TelemetryRecord) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrChannelSinkClosed
	}
	if len(records) == 0 {
		return nil
	}

	select {
	case s.ch <- copyBatch(records):
		return nil
	default:
		return fmt.Errorf("channel sink %q: consumer is behind, batch of %d dropped", s.name, len(records))
	}
}

func (s *channelSink) Name() string { return s.name }

func (s *channelSink) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// fanout writes every batch to each sink; a failing sink does not stop the
// others.
type fanoutSink []ports.TelemetrySink

func fanout(sinks []ports.TelemetrySink) ports.TelemetrySink {
	switch len(sinks) {
	case 0:
		return nil
	case 1:
		return sinks[0]
	default:
		return fanoutSink(sinks)
	}
}

func (f fanoutSink) WriteBatch(records []domain.TelemetryRecord) error {
	var errs []error
	for _, s := range f {
		if err := s.WriteBatch(records); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (f fanoutSink) Name() string { return "fanout" }

func copyBatch(records []domain.TelemetryRecord) []TelemetryRecord {
	out := make([]TelemetryRecord, len(records))
	copy(out, records)
	return out
}
