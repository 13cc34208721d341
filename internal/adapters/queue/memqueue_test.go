package queue

import (
	"bytes"
	"testing"
)

func TestMemQueueEnqueueDequeueOrder(t *testing.T) {
	q := NewMemQueue(4)

	f1 := []byte{0xAA, 0x01}
	f2 := []byte{0xAA, 0x02}

	if !q.Enqueue(1, f1) || !q.Enqueue(2, f2) {
		t.Fatalf("expected successful enqueue")
	}

	batch := q.DequeueBatch(1)
	if len(batch) != 1 || batch[0].Seq != 1 || !bytes.Equal(batch[0].Frame, f1) {
		t.Fatalf("unexpected first batch: %+v", batch)
	}

	remaining := q.DequeueBatch(10)
	if len(remaining) != 1 || remaining[0].Seq != 2 {
		t.Fatalf("unexpected second batch: %+v", remaining)
	}

	if q.Len() != 0 {
		t.Fatalf("queue should be empty, got %d", q.Len())
	}
}

func TestMemQueueCapacity(t *testing.T) {
	q := NewMemQueue(2)

	frame := []byte{0xAA}

	if !q.Enqueue(1, frame) || !q.Enqueue(2, frame) {
		t.Fatalf("expected enqueue within capacity")
	}
	if q.Enqueue(3, frame) {
		t.Fatalf("enqueue should fail when capacity exceeded")
	}

	q.DequeueBatch(1)
	if !q.Enqueue(4, frame) {
		t.Fatalf("expected enqueue to succeed after dequeue")
	}
}

func TestMemQueueIdenticalFramesAreNotMerged(t *testing.T) {
	q := NewMemQueue(8)
	frame := []byte{0xAA, 0x55, 0x01}
	for i := uint64(1); i <= 4; i++ {
		if !q.Enqueue(i, frame) {
			t.Fatalf("enqueue %d failed", i)
		}
	}
	if got := len(q.DequeueBatch(0)); got != 4 {
		t.Fatalf("expected 4 frames, got %d", got)
	}
}

func TestMemQueueWrapsAround(t *testing.T) {
	q := NewMemQueue(3)
	var seq uint64
	for round := 0; round < 5; round++ {
		for i := 0; i < 2; i++ {
			seq++
			if !q.Enqueue(seq, []byte{byte(seq)}) {
				t.Fatalf("enqueue %d failed", seq)
			}
		}
		batch := q.DequeueBatch(0)
		if len(batch) != 2 || batch[0].Seq != seq-1 || batch[1].Seq != seq {
			t.Fatalf("round %d: unexpected batch %+v", round, batch)
		}
	}
}
