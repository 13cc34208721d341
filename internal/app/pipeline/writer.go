package pipeline

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ghalamif/padlink/internal/bus"
	"github.com/ghalamif/padlink/internal/ports"
	"github.com/ghalamif/padlink/internal/protocol"
)

// Writer sends the latest snapshot to the device once per tick and carries
// the auxiliary edge frames in between.
type Writer struct {
	bus   *bus.SnapshotBus
	tr    ports.Transport
	queue ports.FrameQueue
	pol   ports.Policy
	obs   ports.Observability

	drainMu sync.Mutex
	auxSeq  atomic.Uint64
	auxFlag atomic.Bool
}

func NewWriter(b *bus.SnapshotBus, tr ports.Transport, q ports.FrameQueue, pol ports.Policy, obs ports.Observability) *Writer {
	return &Writer{bus: b, tr: tr, queue: q, pol: pol, obs: obs}
}

// Tick writes one control frame built from the latest snapshot, then any
// pending auxiliary frames. A timed out write is logged and skipped; the
// returned error is always terminal.
func (w *Writer) Tick() error {
	if s, ok := w.bus.ReadLatest(); ok {
		if err := w.write(protocol.Encode(s), false); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Toggle records a transition of the auxiliary input and queues exactly one
// frame carrying the new state.
func (w *Writer) Toggle(state bool) error {
	w.auxFlag.Store(state)
	frame := protocol.EncodeAuxiliary(state)
	seq := w.auxSeq.Add(1)

	if !w.enqueueWithPolicy(seq, frame) {
		w.obs.IncCounter(ports.MetricAuxFramesDropped, 1)
		return nil
	}
	w.obs.SetGauge(ports.MetricAuxQueueLength, float64(w.queue.Len()))
	return nil
}

// AuxState is the last state passed to Toggle.
func (w *Writer) AuxState() bool { return w.auxFlag.Load() }

// Flush writes queued auxiliary frames in arrival order, at most
// MaxAuxPerTick of them when that is set.
func (w *Writer) Flush() error {
	w.drainMu.Lock()
	defer w.drainMu.Unlock()

	batch := w.queue.DequeueBatch(w.pol.MaxAuxPerTick)
	for _, item := range batch {
		if err := w.write(item.Frame, true); err != nil {
			return err
		}
	}
	if len(batch) > 0 {
		w.obs.SetGauge(ports.MetricAuxQueueLength, float64(w.queue.Len()))
	}
	return nil
}

func (w *Writer) enqueueWithPolicy(seq uint64, frame []byte) bool {
	if w.queue.Enqueue(seq, frame) {
		return true
	}

	switch w.pol.OnQueueFull {
	case ports.QueueFullFlush:
		if err := w.Flush(); err != nil {
			w.obs.LogError("aux_flush_failed", err, ports.Field{Key: "seq", Value: seq})
			return false
		}
		if w.queue.Enqueue(seq, frame) {
			return true
		}
		w.obs.LogError("aux_queue_full_drop", ports.ErrQueueFull, ports.Field{Key: "seq", Value: seq})
		return false
	case ports.QueueFullDrop:
		w.obs.LogError("aux_queue_full_drop", ports.ErrQueueFull, ports.Field{Key: "seq", Value: seq})
		return false
	default:
		w.obs.LogError("queue_policy_invalid", fmt.Errorf("policy=%s", w.pol.OnQueueFull))
		return false
	}
}

func (w *Writer) write(frame []byte, aux bool) error {
	start := time.Now()
	n, err := w.tr.Write(frame)
	if err == nil && n < len(frame) {
		err = fmt.Errorf("%w: wrote %d of %d bytes", io.ErrShortWrite, n, len(frame))
	}
	w.obs.ObserveLatency(ports.MetricFrameWriteLatency, time.Since(start).Seconds())

	switch {
	case err == nil:
		if aux {
			w.obs.IncCounter(ports.MetricAuxFramesSent, 1)
		} else {
			w.obs.IncCounter(ports.MetricFramesSent, 1)
		}
		return nil
	case errors.Is(err, ports.ErrWriteTimeout):
		w.obs.IncCounter(ports.MetricWriteTimeouts, 1)
		if aux {
			w.obs.IncCounter(ports.MetricAuxFramesDropped, 1)
		}
		w.obs.LogError("frame_write_timeout", err, ports.Field{Key: "aux", Value: aux})
		return nil
	default:
		return fmt.Errorf("%w: %w", ports.ErrTransportWrite, err)
	}
}
