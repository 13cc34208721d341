package queue

import (
	"sync"

	"github.com/ghalamif/padlink/internal/ports"
)

// MemQueue is a bounded FIFO ring of encoded frames. Each enqueued frame is
// handed out exactly once; equal frames are kept as separate entries.
type MemQueue struct {
	mu    sync.Mutex
	ring  []ports.QueuedFrame
	head  int
	count int
}

func NewMemQueue(capacity int) *MemQueue {
	if capacity <= 0 {
		capacity = 1
	}
	return &MemQueue{ring: make([]ports.QueuedFrame, capacity)}
}

// Enqueue appends a frame; it returns false when the ring is full.
func (q *MemQueue) Enqueue(seq uint64, frame []byte) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.count == len(q.ring) {
		return false
	}
	q.ring[(q.head+q.count)%len(q.ring)] = ports.QueuedFrame{Seq: seq, Frame: frame}
	q.count++
	return true
}

// DequeueBatch removes up to max frames in arrival order. max <= 0 drains.
func (q *MemQueue) DequeueBatch(max int) []ports.QueuedFrame {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.count == 0 {
		return nil
	}
	if max <= 0 || max > q.count {
		max = q.count
	}
	out := make([]ports.QueuedFrame, max)
	for i := range out {
		idx := (q.head + i) % len(q.ring)
		out[i] = q.ring[idx]
		q.ring[idx] = ports.QueuedFrame{}
	}
	q.head = (q.head + max) % len(q.ring)
	q.count -= max
	return out
}

func (q *MemQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

var _ ports.FrameQueue = (*MemQueue)(nil)
