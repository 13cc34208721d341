package padlink

import (
	base "github.com/ghalamif/padlink/pkg/padlink"
)

// Re-exported errors for convenience.
var (
	ErrDeviceUnavailable    = base.ErrDeviceUnavailable
	ErrTransportOpen        = base.ErrTransportOpen
	ErrWriteTimeout         = base.ErrWriteTimeout
	ErrTransportWrite       = base.ErrTransportWrite
	ErrTransportClosed      = base.ErrTransportClosed
	ErrDeviceSample         = base.ErrDeviceSample
	ErrDisplayClosed        = base.ErrDisplayClosed
	ErrNotIdle              = base.ErrNotIdle
	ErrChannelSinkClosed    = base.ErrChannelSinkClosed
	ErrExternalDeviceClosed = base.ErrExternalDeviceClosed
)

// Type aliases so consumers can import github.com/ghalamif/padlink directly.
type (
	Config             = base.Config
	Policy             = base.Policy
	SerialConfig       = base.SerialConfig
	ControllerConfig   = base.ControllerConfig
	TelemetryConfig    = base.TelemetryConfig
	DisplayConfig      = base.DisplayConfig
	MetricsConfig      = base.MetricsConfig
	LogConfig          = base.LogConfig
	Layout             = base.Layout
	Flow               = base.Flow
	FlowOption         = base.FlowOption
	StreamInOption     = base.StreamInOption
	StreamOutOption    = base.StreamOutOption
	Bridge             = base.Bridge
	BridgeOption       = base.BridgeOption
	State              = base.State
	ControllerSnapshot = base.ControllerSnapshot
	RawState           = base.RawState
	TelemetryRecord    = base.TelemetryRecord
	TelemetryBatchSink = base.TelemetryBatchSink
	Device             = base.Device
	Transport          = base.Transport
	TelemetrySink      = base.TelemetrySink
	Renderer           = base.Renderer
	PortSelector       = base.PortSelector
	PortCandidate      = base.PortCandidate
	Observability      = base.Observability
	Field              = base.Field
	ExternalDevice     = base.ExternalDevice
)

// Config helpers.
func LoadConfig(path string) (*Config, error) {
	return base.LoadConfig(path)
}

func DefaultConfig() *Config {
	return base.DefaultConfig()
}

// Flow builder helpers.
func Conf(path string, opts ...FlowOption) (*Flow, error) {
	return base.Conf(path, opts...)
}

func ConfFromConfig(cfg *Config, opts ...FlowOption) (*Flow, error) {
	return base.ConfFromConfig(cfg, opts...)
}

func WithFlowOptions(opts ...BridgeOption) FlowOption {
	return base.WithFlowOptions(opts...)
}

func StreamInDevice(d Device) StreamInOption {
	return base.StreamInDevice(d)
}

func StreamInTransport(t Transport) StreamInOption {
	return base.StreamInTransport(t)
}

func StreamInPortSelector(s PortSelector) StreamInOption {
	return base.StreamInPortSelector(s)
}

func StreamOutSink(s TelemetrySink) StreamOutOption {
	return base.StreamOutSink(s)
}

func StreamOutRenderer(r Renderer) StreamOutOption {
	return base.StreamOutRenderer(r)
}

func StreamOutObservability(obs Observability) StreamOutOption {
	return base.StreamOutObservability(obs)
}

func StreamOutCallback(name string, fn TelemetryBatchSink) StreamOutOption {
	return base.StreamOutCallback(name, fn)
}

// Bridge and options.
func NewBridge(cfg *Config, opts ...BridgeOption) (*Bridge, error) {
	return base.NewBridge(cfg, opts...)
}

func WithDevice(d Device) BridgeOption {
	return base.WithDevice(d)
}

func WithTransport(t Transport) BridgeOption {
	return base.WithTransport(t)
}

func WithRenderer(r Renderer) BridgeOption {
	return base.WithRenderer(r)
}

func WithTelemetrySink(s TelemetrySink) BridgeOption {
	return base.WithTelemetrySink(s)
}

func WithObservability(obs Observability) BridgeOption {
	return base.WithObservability(obs)
}

func WithPortSelector(s PortSelector) BridgeOption {
	return base.WithPortSelector(s)
}

// Sink adapters.
func NewCallbackSink(name string, fn TelemetryBatchSink) TelemetrySink {
	return base.NewCallbackSink(name, fn)
}

func NewChannelSink(name string, buffer int) (TelemetrySink, <-chan []TelemetryRecord, func()) {
	return base.NewChannelSink(name, buffer)
}

// Simulated input.
func NewExternalDevice(name string, axes, buttons int) *ExternalDevice {
	return base.NewExternalDevice(name, axes, buttons)
}
