package pipeline

import (
	"sync"

	"github.com/ghalamif/padlink/internal/domain"
	"github.com/ghalamif/padlink/internal/ports"
)

type mockTransport struct {
	mu        sync.Mutex
	writes    [][]byte
	writeErrs []error
	chunks    [][]byte
	readErr   error
	readErrs  int
	short     int
}

func (m *mockTransport) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.writeErrs) > 0 {
		err := m.writeErrs[0]
		m.writeErrs = m.writeErrs[1:]
		if err != nil {
			return 0, err
		}
	}
	if m.short > 0 && m.short < len(p) {
		p = p[:m.short]
	}
	m.writes = append(m.writes, append([]byte(nil), p...))
	return len(p), nil
}

func (m *mockTransport) Read(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.chunks) > 0 {
		n := copy(p, m.chunks[0])
		m.chunks = m.chunks[1:]
		return n, nil
	}
	if m.readErr != nil {
		m.readErrs++
	}
	return 0, m.readErr
}

func (m *mockTransport) readErrCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.readErrs
}

func (m *mockTransport) Close() error { return nil }
func (m *mockTransport) Name() string { return "mock" }

func (m *mockTransport) written() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.writes...)
}

type mockObs struct {
	mu       sync.Mutex
	counters map[string]float64
	errors   []error
	infos    []string
	debugs   []string
}

func (m *mockObs) LogDebug(msg string, _ ...ports.Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.debugs = append(m.debugs, msg)
}

func (m *mockObs) LogInfo(msg string, _ ...ports.Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos = append(m.infos, msg)
}

func (m *mockObs) LogError(_ string, err error, _ ...ports.Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, err)
}

func (m *mockObs) LogCritical(msg string, err error, fields ...ports.Field) {
	m.LogError(msg, err, fields...)
}

func (m *mockObs) IncCounter(name string, v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counters == nil {
		m.counters = map[string]float64{}
	}
	m.counters[name] += v
}

func (m *mockObs) ObserveLatency(string, float64) {}
func (m *mockObs) SetGauge(string, float64)       {}

func (m *mockObs) counter(name string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[name]
}

type mockSink struct {
	mu      sync.Mutex
	records []domain.TelemetryRecord
	err     error
}

func (m *mockSink) WriteBatch(records []domain.TelemetryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, records...)
	return nil
}

func (m *mockSink) Name() string { return "mock" }

func (m *mockSink) snapshot() []domain.TelemetryRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.TelemetryRecord(nil), m.records...)
}

// scriptDevice replays one button mask per Read.
type scriptDevice struct {
	buttons []uint32
	calls   int
	err     error
}

func (d *scriptDevice) Name() string     { return "script" }
func (d *scriptDevice) AxisCount() int   { return 8 }
func (d *scriptDevice) ButtonCount() int { return 11 }
func (d *scriptDevice) Close() error     { return nil }

func (d *scriptDevice) Read() (domain.RawState, error) {
	if d.err != nil {
		return domain.RawState{}, d.err
	}
	var b uint32
	if d.calls < len(d.buttons) {
		b = d.buttons[d.calls]
	} else if len(d.buttons) > 0 {
		b = d.buttons[len(d.buttons)-1]
	}
	d.calls++
	return domain.RawState{Axes: make([]int, 8), Buttons: b}, nil
}
