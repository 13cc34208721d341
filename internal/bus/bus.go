// Package bus holds the single most recent controller snapshot shared by the
// producer and every consumer.
//
// Only the latest value matters: a publish overwrites whatever was there and
// readers race for the newest value. The mutex is held for the assignment or
// the copy only, never across I/O.
package bus

import (
	"sync"

	"github.com/ghalamif/padlink/internal/domain"
)

// SnapshotBus is safe for one writer and any number of readers.
type SnapshotBus struct {
	mu        sync.Mutex
	latest    domain.ControllerSnapshot
	published bool
	seq       uint64
}

func New() *SnapshotBus {
	return &SnapshotBus{}
}

// Publish replaces the latest snapshot.
func (b *SnapshotBus) Publish(s domain.ControllerSnapshot) {
	b.mu.Lock()
	b.latest = s
	b.published = true
	b.seq++
	b.mu.Unlock()
}

// ReadLatest returns a copy of the latest snapshot. ok is false until the
// first Publish.
func (b *SnapshotBus) ReadLatest() (s domain.ControllerSnapshot, ok bool) {
	b.mu.Lock()
	s, ok = b.latest, b.published
	b.mu.Unlock()
	return s, ok
}

// Seq is the number of publishes so far.
func (b *SnapshotBus) Seq() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.seq
}
