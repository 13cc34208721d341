package ports

import "errors"

var (
	// ErrDeviceUnavailable means no input device could be opened at startup.
	ErrDeviceUnavailable = errors.New("padlink: input device unavailable")
	// ErrTransportOpen means the serial link could not be opened.
	ErrTransportOpen = errors.New("padlink: transport open failed")
	// ErrWriteTimeout is transient: the frame for this tick is skipped.
	ErrWriteTimeout = errors.New("padlink: transport write timeout")
	// ErrTransportWrite is terminal and stops the session.
	ErrTransportWrite = errors.New("padlink: transport write failed")
	// ErrTransportClosed is returned once the link is gone.
	ErrTransportClosed = errors.New("padlink: transport closed")
	// ErrDeviceSample means the device disappeared mid-session.
	ErrDeviceSample = errors.New("padlink: device sample failed")
	// ErrTelemetryParse marks a structured line that could not be decoded.
	ErrTelemetryParse = errors.New("padlink: malformed telemetry line")
	// ErrDisplayClosed is returned by a renderer whose window was closed.
	ErrDisplayClosed = errors.New("padlink: display closed")
	// ErrQueueFull indicates the auxiliary frame queue rejected a frame.
	ErrQueueFull = errors.New("padlink: aux queue full")
)
