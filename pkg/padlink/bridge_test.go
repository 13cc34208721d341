package padlink

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ghalamif/padlink/internal/adapters/serial"
	"github.com/ghalamif/padlink/internal/ports"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Controller.Platform = "linux"
	cfg.Metrics.Disabled = true
	cfg.Policy.SampleInterval = time.Millisecond
	cfg.Policy.DisplayInterval = time.Millisecond
	cfg.Policy.IdleSleep = time.Millisecond
	cfg.Telemetry.LogDir = t.TempDir()
	return cfg
}

type stubTransport struct {
	mu       sync.Mutex
	writes   int
	writeErr error
	chunks   [][]byte
	closed   bool
}

func (s *stubTransport) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrTransportClosed
	}
	if s.writeErr != nil {
		return 0, s.writeErr
	}
	s.writes++
	return len(p), nil
}

func (s *stubTransport) Read(p []byte) (int, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, ErrTransportClosed
	}
	if len(s.chunks) > 0 {
		n := copy(p, s.chunks[0])
		s.chunks = s.chunks[1:]
		s.mu.Unlock()
		return n, nil
	}
	s.mu.Unlock()
	time.Sleep(time.Millisecond)
	return 0, nil
}

func (s *stubTransport) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *stubTransport) Name() string { return "stub0" }

func (s *stubTransport) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *stubTransport) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type stubRenderer struct {
	mu      sync.Mutex
	frames  int
	closeAt int
}

func (r *stubRenderer) Render(ControllerSnapshot, string, bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames++
	if r.closeAt > 0 && r.frames >= r.closeAt {
		return ErrDisplayClosed
	}
	return nil
}

func (r *stubRenderer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

type stubSelector struct {
	pick    bool
	offered []PortCandidate
}

func (s *stubSelector) SelectPort(c []PortCandidate) (string, bool) {
	s.offered = c
	if !s.pick || len(c) == 0 {
		return "", false
	}
	return c[0].ID, true
}

type stubObservability struct{}

func (s *stubObservability) LogDebug(string, ...Field)           {}
func (s *stubObservability) LogInfo(string, ...Field)            {}
func (s *stubObservability) LogError(string, error, ...Field)    {}
func (s *stubObservability) LogCritical(string, error, ...Field) {}
func (s *stubObservability) IncCounter(string, float64)          {}
func (s *stubObservability) ObserveLatency(string, float64)      {}
func (s *stubObservability) SetGauge(string, float64)            {}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func runAsync(ctx context.Context, b *Bridge) <-chan error {
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()
	return done
}

func TestNewBridgeWithCustomAdapters(t *testing.T) {
	dev := NewExternalDevice("sim", 8, 11)
	tr := &stubTransport{}
	r := &stubRenderer{}
	obs := &stubObservability{}
	sel := &stubSelector{}
	snk := NewCallbackSink("cb", func([]TelemetryRecord) error { return nil })

	b, err := NewBridge(testConfig(t),
		WithDevice(dev),
		WithTransport(tr),
		WithRenderer(r),
		WithObservability(obs),
		WithPortSelector(sel),
		WithTelemetrySink(snk),
	)
	if err != nil {
		t.Fatalf("NewBridge returned error: %v", err)
	}

	if b.device != dev || b.transport != tr || b.renderer != r || b.obs != obs || b.selector != sel {
		t.Fatalf("expected custom adapters to be used")
	}
	if len(b.sinks) != 1 || b.sinks[0] != snk {
		t.Fatalf("expected custom sink to be used")
	}
	if b.ownedView != nil {
		t.Fatalf("expected no console when a renderer is injected")
	}
	if b.State() != StateIdle {
		t.Fatalf("expected idle bridge, got %s", b.State())
	}
}

func TestNewBridgeRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Controller.Platform = "plan9"
	if _, err := NewBridge(cfg); err == nil {
		t.Fatalf("expected unknown platform to be rejected")
	}
	if _, err := NewBridge(nil); err == nil {
		t.Fatalf("expected nil config to be rejected")
	}
}

func TestBridgeShutdownJoinsAllLoops(t *testing.T) {
	tr := &stubTransport{chunks: [][]byte{[]byte("MPU_DATA,1,2,3,4,5,6,7,8,9,10,11,12\n")}}
	r := &stubRenderer{}
	var (
		mu      sync.Mutex
		records []TelemetryRecord
	)
	snk := NewCallbackSink("cb", func(batch []TelemetryRecord) error {
		mu.Lock()
		defer mu.Unlock()
		records = append(records, batch...)
		return nil
	})

	b, err := NewBridge(testConfig(t),
		WithDevice(NewExternalDevice("sim", 8, 11)),
		WithTransport(tr),
		WithRenderer(r),
		WithTelemetrySink(snk),
		WithObservability(&stubObservability{}),
	)
	if err != nil {
		t.Fatalf("NewBridge: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, b)

	waitFor(t, "frames", func() bool { return tr.writeCount() >= 5 })
	waitFor(t, "renders", func() bool { return r.count() >= 2 })
	waitFor(t, "telemetry", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(records) == 1
	})
	if b.State() != StateRunning {
		t.Fatalf("expected running, got %s", b.State())
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("bridge did not join its loops")
	}

	if b.State() != StateStopped {
		t.Fatalf("expected stopped, got %s", b.State())
	}
	writes, frames := tr.writeCount(), r.count()
	time.Sleep(20 * time.Millisecond)
	if tr.writeCount() != writes || r.count() != frames {
		t.Fatalf("a loop kept running after Run returned")
	}
	if tr.isClosed() {
		t.Fatalf("an injected transport belongs to the caller and must stay open")
	}
}

func TestBridgeStopsOnWriteFailure(t *testing.T) {
	b, err := NewBridge(testConfig(t),
		WithDevice(NewExternalDevice("sim", 8, 11)),
		WithTransport(&stubTransport{writeErr: errors.New("usb gone")}),
		WithRenderer(&stubRenderer{}),
		WithTelemetrySink(NewCallbackSink("", func([]TelemetryRecord) error { return nil })),
		WithObservability(&stubObservability{}),
	)
	if err != nil {
		t.Fatalf("NewBridge: %v", err)
	}

	select {
	case err := <-runAsync(context.Background(), b):
		if !errors.Is(err, ErrTransportWrite) {
			t.Fatalf("expected ErrTransportWrite, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("bridge kept running after a terminal write error")
	}
	if b.State() != StateStopped {
		t.Fatalf("expected stopped, got %s", b.State())
	}
}

func TestBridgeStopsWhenDeviceDisappears(t *testing.T) {
	dev := NewExternalDevice("sim", 8, 11)
	tr := &stubTransport{}
	b, err := NewBridge(testConfig(t),
		WithDevice(dev),
		WithTransport(tr),
		WithRenderer(&stubRenderer{}),
		WithTelemetrySink(NewCallbackSink("", func([]TelemetryRecord) error { return nil })),
		WithObservability(&stubObservability{}),
	)
	if err != nil {
		t.Fatalf("NewBridge: %v", err)
	}
	done := runAsync(context.Background(), b)
	waitFor(t, "frames", func() bool { return tr.writeCount() > 0 })
	_ = dev.Close()

	select {
	case err := <-done:
		if !errors.Is(err, ErrDeviceSample) {
			t.Fatalf("expected ErrDeviceSample, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("bridge kept running without a device")
	}
}

func TestBridgeDisplayClosedIsCleanStop(t *testing.T) {
	b, err := NewBridge(testConfig(t),
		WithDevice(NewExternalDevice("sim", 8, 11)),
		WithTransport(&stubTransport{}),
		WithRenderer(&stubRenderer{closeAt: 3}),
		WithTelemetrySink(NewCallbackSink("", func([]TelemetryRecord) error { return nil })),
		WithObservability(&stubObservability{}),
	)
	if err != nil {
		t.Fatalf("NewBridge: %v", err)
	}
	select {
	case err := <-runAsync(context.Background(), b):
		if err != nil {
			t.Fatalf("expected closing the display to be a normal stop, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("bridge ignored the closed display")
	}
}

func TestBridgeRunsOnce(t *testing.T) {
	b, err := NewBridge(testConfig(t),
		WithDevice(NewExternalDevice("sim", 8, 11)),
		WithTransport(&stubTransport{}),
		WithRenderer(&stubRenderer{}),
		WithTelemetrySink(NewCallbackSink("", func([]TelemetryRecord) error { return nil })),
		WithObservability(&stubObservability{}),
	)
	if err != nil {
		t.Fatalf("NewBridge: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := b.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	if err := b.Run(context.Background()); !errors.Is(err, ErrNotIdle) {
		t.Fatalf("expected ErrNotIdle, got %v", err)
	}
}

func TestBridgeDeviceUnavailable(t *testing.T) {
	tr := &stubTransport{}
	b, err := NewBridge(testConfig(t), WithTransport(tr), WithObservability(&stubObservability{}))
	if err != nil {
		t.Fatalf("NewBridge: %v", err)
	}
	b.openDevice = func(int) (ports.Device, error) {
		return nil, ErrDeviceUnavailable
	}

	if err := b.Run(context.Background()); !errors.Is(err, ErrDeviceUnavailable) {
		t.Fatalf("expected ErrDeviceUnavailable, got %v", err)
	}
	if b.State() != StateStopped {
		t.Fatalf("expected stopped, got %s", b.State())
	}
	if tr.writeCount() != 0 {
		t.Fatalf("no frame may be sent when setup fails")
	}
}

func TestBridgeNoPortSelected(t *testing.T) {
	dev := NewExternalDevice("sim", 8, 11)
	sel := &stubSelector{}
	b, err := NewBridge(testConfig(t), WithPortSelector(sel), WithObservability(&stubObservability{}))
	if err != nil {
		t.Fatalf("NewBridge: %v", err)
	}
	b.openDevice = func(int) (ports.Device, error) { return dev, nil }
	b.listPorts = func() ([]ports.PortCandidate, error) {
		return []ports.PortCandidate{{ID: "/dev/ttyUSB0", Description: "CP2102"}}, nil
	}

	if err := b.Run(context.Background()); !errors.Is(err, ErrTransportOpen) {
		t.Fatalf("expected ErrTransportOpen, got %v", err)
	}
	if len(sel.offered) != 1 {
		t.Fatalf("expected the selector to see the listed port")
	}
	if _, err := dev.Read(); err == nil {
		t.Fatalf("expected the opened device to be released")
	}
}

func TestBridgeOwnsWhatItOpens(t *testing.T) {
	cfg := testConfig(t)
	dev := NewExternalDevice("sim", 8, 11)
	tr := &stubTransport{}
	var opened serial.Config

	var logs bytes.Buffer
	b, err := NewBridge(cfg,
		WithPortSelector(&stubSelector{pick: true}),
		WithRenderer(&stubRenderer{}),
		WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
	)
	if err != nil {
		t.Fatalf("NewBridge: %v", err)
	}
	b.openDevice = func(int) (ports.Device, error) { return dev, nil }
	b.listPorts = func() ([]ports.PortCandidate, error) {
		return []ports.PortCandidate{{ID: "/dev/ttyACM0", Description: "ESP32"}}, nil
	}
	b.openTransport = func(c serial.Config) (ports.Transport, error) {
		opened = c
		return tr, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, b)
	waitFor(t, "frames", func() bool { return tr.writeCount() >= 3 })
	b.Stop()
	if err := <-done; err != nil {
		t.Fatalf("run: %v", err)
	}
	cancel()

	if opened.Port != "/dev/ttyACM0" || opened.BaudRate != 115200 {
		t.Fatalf("unexpected serial config %+v", opened)
	}
	if !tr.isClosed() {
		t.Fatalf("expected the bridge to close the transport it opened")
	}
	if _, err := dev.Read(); err == nil {
		t.Fatalf("expected the bridge to close the device it opened")
	}

	files, _ := filepath.Glob(filepath.Join(cfg.Telemetry.LogDir, "mpu_data_log_*.csv"))
	if len(files) != 1 {
		t.Fatalf("expected one telemetry log, got %v", files)
	}
	raw, err := os.ReadFile(files[0])
	if err != nil || !strings.HasPrefix(string(raw), "timestamp,accel_x") {
		t.Fatalf("expected csv header, got %q (%v)", raw, err)
	}

	if !strings.Contains(logs.String(), "session="+b.SessionID()) {
		t.Fatalf("expected session id on log lines:\n%s", logs.String())
	}

	mfs, err := b.Registry().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var sent float64
	for _, mf := range mfs {
		if mf.GetName() == ports.MetricFramesSent {
			sent = mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	if sent < 3 {
		t.Fatalf("expected frames counted in the registry, got %v", sent)
	}
}
