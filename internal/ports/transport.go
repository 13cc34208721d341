package ports

// Transport is the bidirectional byte link to the embedded device.
//
// Write and Read are used from different goroutines at the same time; an
// implementation must allow that. Read blocks for at most its poll interval
// and returns (0, nil) when nothing arrived.
type Transport interface {
	Write(p []byte) (int, error)
	Read(p []byte) (int, error)
	Close() error
	Name() string
}

// PortCandidate is one entry offered to a PortSelector.
type PortCandidate struct {
	ID          string
	Description string
}

// PortSelector picks a port among candidates. ok is false when the user
// declined or nothing is available.
type PortSelector interface {
	SelectPort(candidates []PortCandidate) (id string, ok bool)
}
