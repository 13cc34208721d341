package padlink

import (
	"context"
	"fmt"
)

// Flow is a convenience builder that lets callers say Conf → StreamIN →
// StreamOUT without touching the underlying wiring.
type Flow struct {
	cfg  *Config
	opts []BridgeOption
}

// FlowOption mutates the Flow after configuration is loaded.
type FlowOption func(*Flow)

// StreamInOption configures the input side: gamepad, link and port choice.
type StreamInOption func(*Flow)

// StreamOutOption configures the output side: telemetry sinks, display and
// observability.
type StreamOutOption func(*Flow)

// Conf loads YAML from disk, applies FlowOption values, and returns a Flow builder.
func Conf(path string, opts ...FlowOption) (*Flow, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return ConfFromConfig(cfg, opts...)
}

// ConfFromConfig bootstraps a Flow from an in-memory Config.
func ConfFromConfig(cfg *Config, opts ...FlowOption) (*Flow, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	f := &Flow{cfg: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f, nil
}

// Config returns the underlying configuration so callers can tweak it before building a bridge.
func (f *Flow) Config() *Config {
	if f == nil {
		return nil
	}
	return f.cfg
}

// Options appends raw BridgeOption values for advanced scenarios.
func (f *Flow) Options(opts ...BridgeOption) *Flow {
	if f == nil {
		return nil
	}
	f.appendOptions(opts...)
	return f
}

// StreamIN records input-side overrides.
func (f *Flow) StreamIN(opts ...StreamInOption) *Flow {
	if f == nil {
		return nil
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// StreamOUT records output-side overrides and builds a Bridge ready to run.
func (f *Flow) StreamOUT(opts ...StreamOutOption) (*Bridge, error) {
	if f == nil {
		return nil, fmt.Errorf("flow is nil")
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return NewBridge(f.cfg, f.opts...)
}

// Run is a shortcut for StreamOUT + Bridge.Run.
func (f *Flow) Run(ctx context.Context, opts ...StreamOutOption) error {
	b, err := f.StreamOUT(opts...)
	if err != nil {
		return err
	}
	return b.Run(ctx)
}

// WithFlowOptions appends BridgeOption values during Conf.
func WithFlowOptions(opts ...BridgeOption) FlowOption {
	return func(f *Flow) {
		if f != nil {
			f.appendOptions(opts...)
		}
	}
}

// StreamInDevice drives the bridge from a caller-provided device.
func StreamInDevice(d Device) StreamInOption {
	return func(f *Flow) {
		if f != nil && d != nil {
			f.appendOptions(WithDevice(d))
		}
	}
}

// StreamInTransport replaces the serial port.
func StreamInTransport(t Transport) StreamInOption {
	return func(f *Flow) {
		if f != nil && t != nil {
			f.appendOptions(WithTransport(t))
		}
	}
}

// StreamInPortSelector chooses the port when the config leaves it empty.
func StreamInPortSelector(s PortSelector) StreamInOption {
	return func(f *Flow) {
		if f != nil && s != nil {
			f.appendOptions(WithPortSelector(s))
		}
	}
}

// StreamOutSink adds a telemetry sink in place of the CSV log.
func StreamOutSink(s TelemetrySink) StreamOutOption {
	return func(f *Flow) {
		if f != nil && s != nil {
			f.appendOptions(WithTelemetrySink(s))
		}
	}
}

// StreamOutRenderer replaces the console status line.
func StreamOutRenderer(r Renderer) StreamOutOption {
	return func(f *Flow) {
		if f != nil && r != nil {
			f.appendOptions(WithRenderer(r))
		}
	}
}

// StreamOutObservability replaces the default observability backend.
func StreamOutObservability(obs Observability) StreamOutOption {
	return func(f *Flow) {
		if f != nil && obs != nil {
			f.appendOptions(WithObservability(obs))
		}
	}
}

// StreamOutCallback installs a sink built from a simple callback function.
func StreamOutCallback(name string, fn TelemetryBatchSink) StreamOutOption {
	return func(f *Flow) {
		if f != nil {
			f.appendOptions(WithTelemetrySink(NewCallbackSink(name, fn)))
		}
	}
}

func (f *Flow) appendOptions(opts ...BridgeOption) {
	for _, opt := range opts {
		if opt != nil {
			f.opts = append(f.opts, opt)
		}
	}
}
