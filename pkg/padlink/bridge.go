package padlink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/ghalamif/padlink/internal/adapters/display"
	"github.com/ghalamif/padlink/internal/adapters/joystick"
	"github.com/ghalamif/padlink/internal/adapters/observability"
	"github.com/ghalamif/padlink/internal/adapters/queue"
	"github.com/ghalamif/padlink/internal/adapters/serial"
	"github.com/ghalamif/padlink/internal/adapters/sink"
	"github.com/ghalamif/padlink/internal/app/pipeline"
	"github.com/ghalamif/padlink/internal/bus"
	"github.com/ghalamif/padlink/internal/controller"
	"github.com/ghalamif/padlink/internal/ports"
)

// State is the lifecycle stage of a Bridge.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// ErrNotIdle is returned by Run on a bridge that has already been started.
var ErrNotIdle = errors.New("padlink: bridge already started")

// BridgeOption customizes the dependencies used by Bridge.
type BridgeOption func(*bridgeOverrides)

type bridgeOverrides struct {
	device    ports.Device
	transport ports.Transport
	renderer  ports.Renderer
	sinks     []ports.TelemetrySink
	obs       ports.Observability
	selector  ports.PortSelector
	logger    *slog.Logger
}

// WithDevice injects an already opened gamepad (or a simulator).
func WithDevice(d Device) BridgeOption {
	return func(o *bridgeOverrides) {
		o.device = d
	}
}

// WithTransport injects the byte link instead of opening a serial port.
func WithTransport(t Transport) BridgeOption {
	return func(o *bridgeOverrides) {
		o.transport = t
	}
}

// WithRenderer replaces the console status line.
func WithRenderer(r Renderer) BridgeOption {
	return func(o *bridgeOverrides) {
		o.renderer = r
	}
}

// WithTelemetrySink adds a sink for structured telemetry. When at least one is
// given the CSV log is not opened.
func WithTelemetrySink(s TelemetrySink) BridgeOption {
	return func(o *bridgeOverrides) {
		if s != nil {
			o.sinks = append(o.sinks, s)
		}
	}
}

// WithObservability plugs in a custom logging/metrics backend.
func WithObservability(obs Observability) BridgeOption {
	return func(o *bridgeOverrides) {
		o.obs = obs
	}
}

// WithPortSelector is consulted when no serial port is configured.
func WithPortSelector(s PortSelector) BridgeOption {
	return func(o *bridgeOverrides) {
		o.selector = s
	}
}

// WithLogger sets the base logger for the default observability backend.
func WithLogger(l *slog.Logger) BridgeOption {
	return func(o *bridgeOverrides) {
		o.logger = l
	}
}

// Bridge samples a gamepad, streams control frames to the device and reads
// its telemetry back. It runs once: Idle → Running → Stopping → Stopped.
type Bridge struct {
	cfg       *Config
	policy    ports.Policy
	obs       ports.Observability
	logger    *slog.Logger
	registry  *prometheus.Registry
	sessionID string

	device    ports.Device
	transport ports.Transport
	renderer  ports.Renderer
	ownedView io.Closer
	sinks     []ports.TelemetrySink
	selector  ports.PortSelector
	queue     ports.FrameQueue
	bus       *bus.SnapshotBus
	sampler   *controller.Sampler

	openDevice    func(index int) (ports.Device, error)
	openTransport func(cfg serial.Config) (ports.Transport, error)
	listPorts     func() ([]ports.PortCandidate, error)

	state      atomic.Int32
	mu         sync.Mutex
	cancel     context.CancelFunc
	closers    []io.Closer
	metricsSrv *http.Server
}

// NewBridge validates cfg and prepares the collaborators that do not touch
// hardware. Device and transport are opened by Run.
func NewBridge(cfg *Config, opts ...BridgeOption) (*Bridge, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var overrides bridgeOverrides
	for _, opt := range opts {
		if opt != nil {
			opt(&overrides)
		}
	}

	layout, err := cfg.Layout()
	if err != nil {
		return nil, err
	}

	sessionID := uuid.NewString()
	logger := overrides.logger
	if logger == nil {
		logger, err = observability.NewLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return nil, err
		}
	}
	logger = logger.With(slog.String("session", sessionID))

	registry := prometheus.NewRegistry()
	obs := overrides.obs
	if obs == nil {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		obs = observability.NewPromObs(registry, logger)
	}

	selector := overrides.selector
	if selector == nil {
		selector = &serial.PromptSelector{In: os.Stdin, Out: os.Stdout}
	}

	var ownedView io.Closer
	renderer := overrides.renderer
	if renderer == nil && !cfg.Display.Disabled {
		console := display.NewConsole(os.Stdout)
		renderer, ownedView = console, console
	}

	return &Bridge{
		cfg:       cfg,
		policy:    cfg.Policy,
		obs:       obs,
		logger:    logger,
		registry:  registry,
		sessionID: sessionID,
		device:    overrides.device,
		transport: overrides.transport,
		renderer:  renderer,
		sinks:     overrides.sinks,
		selector:  selector,
		queue:     queue.NewMemQueue(cfg.Policy.AuxQueueLen),
		bus:       bus.New(),
		sampler:   controller.NewSampler(layout),
		ownedView: ownedView,
		openDevice: func(index int) (ports.Device, error) {
			d, err := joystick.Open(index)
			if err != nil {
				return nil, err
			}
			return d, nil
		},
		openTransport: func(c serial.Config) (ports.Transport, error) {
			t, err := serial.Open(c)
			if err != nil {
				return nil, err
			}
			return t, nil
		},
		listPorts: serial.ListPorts,
	}, nil
}

// SessionID identifies this run in logs.
func (b *Bridge) SessionID() string { return b.sessionID }

// State reports the lifecycle stage.
func (b *Bridge) State() State { return State(b.state.Load()) }

// Registry exposes the metrics of this bridge.
func (b *Bridge) Registry() *prometheus.Registry { return b.registry }

// Stop asks a running bridge to shut down. Run returns once every loop has
// exited and resources are released.
func (b *Bridge) Stop() {
	b.mu.Lock()
	cancel := b.cancel
	b.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Run opens the device and the transport, then runs every loop until ctx is
// done, Stop is called, the display is closed or a loop hits a terminal
// error. Setup failures are returned before any loop starts.
func (b *Bridge) Run(ctx context.Context) error {
	if !b.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return ErrNotIdle
	}

	if err := b.setup(); err != nil {
		b.obs.LogCritical("bridge_setup_failed", err)
		_ = b.release()
		b.state.Store(int32(StateStopped))
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	b.mu.Lock()
	b.cancel = cancel
	b.mu.Unlock()
	defer cancel()

	b.startMetrics()
	b.obs.LogInfo("bridge_started",
		ports.Field{Key: "device", Value: b.device.Name()},
		ports.Field{Key: "port", Value: b.transport.Name()})

	g, gctx := errgroup.WithContext(runCtx)
	stopWatch := context.AfterFunc(gctx, func() {
		b.state.CompareAndSwap(int32(StateRunning), int32(StateStopping))
	})
	defer stopWatch()

	writer := pipeline.NewWriter(b.bus, b.transport, b.queue, b.policy, b.obs)
	producer := pipeline.NewProducer(b.device, b.sampler, b.bus, writer, b.obs)
	g.Go(func() error {
		return pipeline.RunProducer(gctx, producer, b.policy.SampleInterval)
	})

	if b.renderer != nil {
		loop := &pipeline.DisplayLoop{
			Bus:       b.bus,
			Renderer:  b.renderer,
			PortLabel: b.transport.Name(),
			AuxState:  writer.AuxState,
			Interval:  b.policy.DisplayInterval,
			Obs:       b.obs,
		}
		g.Go(func() error { return loop.Run(gctx) })
	}

	if !b.cfg.Telemetry.Disabled {
		reader := &pipeline.TelemetryReader{
			Transport: b.transport,
			Parser:    pipeline.LineParser{Marker: b.cfg.Telemetry.Marker, Fields: b.cfg.Telemetry.Fields},
			Sink:      fanout(b.sinks),
			IdleSleep: b.policy.IdleSleep,
			Obs:       b.obs,
		}
		g.Go(func() error { return reader.Run(gctx) })
	}

	g.Go(func() error {
		b.recordGauges(gctx, time.Second)
		return nil
	})

	runErr := g.Wait()
	b.state.Store(int32(StateStopping))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	closeErr := b.shutdown(shutdownCtx)
	b.state.Store(int32(StateStopped))

	if errors.Is(runErr, ports.ErrDisplayClosed) {
		runErr = nil
	}
	if runErr != nil {
		b.obs.LogCritical("bridge_stopped", runErr)
	} else {
		b.obs.LogInfo("bridge_stopped")
	}
	return errors.Join(runErr, closeErr)
}

func (b *Bridge) setup() error {
	if b.device == nil {
		dev, err := b.openDevice(b.cfg.Controller.Index)
		if err != nil {
			return err
		}
		b.device = dev
		b.closers = append(b.closers, dev)
	}
	b.obs.LogInfo("controller_opened",
		ports.Field{Key: "name", Value: b.device.Name()},
		ports.Field{Key: "axes", Value: b.device.AxisCount()},
		ports.Field{Key: "buttons", Value: b.device.ButtonCount()})

	if b.transport == nil {
		tr, err := b.resolveTransport()
		if err != nil {
			return err
		}
		b.transport = tr
		b.closers = append(b.closers, tr)
	}

	if len(b.sinks) == 0 && !b.cfg.Telemetry.Disabled {
		path := b.cfg.TelemetryPath(time.Now(), sink.FileName)
		csvSink, err := sink.NewCSVSink(path)
		if err != nil {
			return fmt.Errorf("telemetry log: %w", err)
		}
		b.sinks = append(b.sinks, csvSink)
		b.closers = append(b.closers, csvSink)
		b.obs.LogInfo("telemetry_log_opened", ports.Field{Key: "path", Value: path})
	}
	if b.ownedView != nil {
		b.closers = append(b.closers, b.ownedView)
	}
	return nil
}

func (b *Bridge) resolveTransport() (ports.Transport, error) {
	scfg := b.cfg.Serial
	if scfg.Port == "" {
		candidates, err := b.listPorts()
		if err != nil {
			return nil, fmt.Errorf("%w: list ports: %v", ports.ErrTransportOpen, err)
		}
		id, ok := b.selector.SelectPort(candidates)
		if !ok {
			return nil, fmt.Errorf("%w: no port selected", ports.ErrTransportOpen)
		}
		scfg.Port = id
	}
	b.obs.LogInfo("serial_port_opening",
		ports.Field{Key: "port", Value: scfg.Port},
		ports.Field{Key: "baud", Value: scfg.BaudRate},
		ports.Field{Key: "settle", Value: scfg.SettleDelay.String()})
	return b.openTransport(scfg)
}

// shutdown runs after every loop has returned.
func (b *Bridge) shutdown(ctx context.Context) error {
	var errs []error

	if b.metricsSrv != nil {
		if err := b.metricsSrv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs = append(errs, err)
		}
	}
	if err := b.release(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// release closes what the bridge opened itself, most recent first.
func (b *Bridge) release() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}

func (b *Bridge) startMetrics() {
	if b.cfg.Metrics.Disabled {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(b.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if b.State() != StateRunning {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(b.State().String()))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	b.metricsSrv = &http.Server{
		Addr:              b.cfg.Metrics.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	srv := b.metricsSrv
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			b.obs.LogError("metrics_server_exited", err)
		}
	}()
}

func (b *Bridge) recordGauges(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.obs.SetGauge(ports.MetricSnapshotsPublished, float64(b.bus.Seq()))
			b.obs.SetGauge(ports.MetricAuxQueueLength, float64(b.queue.Len()))
		}
	}
}
