package padlink

import (
	"github.com/ghalamif/padlink/internal/domain"
	"github.com/ghalamif/padlink/internal/ports"
)

// ControllerSnapshot is one normalized reading of every controller input.
type ControllerSnapshot = domain.ControllerSnapshot

// RawState is what a Device reports before normalization.
type RawState = domain.RawState

// TelemetryRecord is one line read back from the device.
type TelemetryRecord = domain.TelemetryRecord

// Device is an opened gamepad (or anything that can pretend to be one).
type Device = ports.Device

// Transport is the byte link to the microcontroller.
type Transport = ports.Transport

// TelemetrySink persists structured telemetry records.
type TelemetrySink = ports.TelemetrySink

// Renderer visualizes the latest snapshot.
type Renderer = ports.Renderer

// PortSelector picks a serial port when none is configured.
type PortSelector = ports.PortSelector

// PortCandidate is one port offered to a PortSelector.
type PortCandidate = ports.PortCandidate

// Observability emits logs and metrics about the bridge.
type Observability = ports.Observability

// Field is a structured log field used by Observability implementations.
type Field = ports.Field

var (
	ErrDeviceUnavailable = ports.ErrDeviceUnavailable
	ErrTransportOpen     = ports.ErrTransportOpen
	ErrWriteTimeout      = ports.ErrWriteTimeout
	ErrTransportWrite    = ports.ErrTransportWrite
	ErrTransportClosed   = ports.ErrTransportClosed
	ErrDeviceSample      = ports.ErrDeviceSample
	ErrDisplayClosed     = ports.ErrDisplayClosed
)
