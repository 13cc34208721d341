package ports

// QueuedFrame is an encoded frame waiting for the writer.
type QueuedFrame struct {
	Seq   uint64
	Frame []byte
}

// FrameQueue buffers auxiliary frames in FIFO order. Every enqueued frame is
// delivered exactly once; frames are never merged.
type FrameQueue interface {
	Enqueue(seq uint64, frame []byte) bool
	DequeueBatch(max int) []QueuedFrame
	Len() int
}
