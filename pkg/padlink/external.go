package padlink

import (
	"errors"
	"sync"
)

// ErrExternalDeviceClosed is returned by Read after Close.
var ErrExternalDeviceClosed = errors.New("padlink: external device closed")

// ExternalDevice is a Device fed by the caller instead of a driver, so
// simulators, replays and other programs can steer the bridge. Axis values use
// the driver range ±32767.
type ExternalDevice struct {
	name    string
	axes    int
	buttons int

	mu     sync.Mutex
	state  RawState
	closed bool
}

// NewExternalDevice creates a device reporting axes axes and buttons buttons,
// all at rest.
func NewExternalDevice(name string, axes, buttons int) *ExternalDevice {
	if name == "" {
		name = "external"
	}
	return &ExternalDevice{
		name:    name,
		axes:    axes,
		buttons: buttons,
		state:   RawState{Axes: make([]int, axes)},
	}
}

// Set replaces the reported state. Extra axes are ignored, missing ones read 0.
func (d *ExternalDevice) Set(axes []int, buttons uint32) {
	next := make([]int, d.axes)
	copy(next, axes)
	d.mu.Lock()
	d.state = RawState{Axes: next, Buttons: buttons}
	d.mu.Unlock()
}

// SetAxis changes one axis and leaves the rest untouched.
func (d *ExternalDevice) SetAxis(idx, value int) {
	if idx < 0 || idx >= d.axes {
		return
	}
	d.mu.Lock()
	next := append([]int(nil), d.state.Axes...)
	next[idx] = value
	d.state.Axes = next
	d.mu.Unlock()
}

// SetButton presses or releases one button.
func (d *ExternalDevice) SetButton(idx int, pressed bool) {
	if idx < 0 || idx > 31 {
		return
	}
	d.mu.Lock()
	if pressed {
		d.state.Buttons |= 1 << uint(idx)
	} else {
		d.state.Buttons &^= 1 << uint(idx)
	}
	d.mu.Unlock()
}

func (d *ExternalDevice) Name() string     { return d.name }
func (d *ExternalDevice) AxisCount() int   { return d.axes }
func (d *ExternalDevice) ButtonCount() int { return d.buttons }

func (d *ExternalDevice) Read() (RawState, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return RawState{}, ErrExternalDeviceClosed
	}
	return d.state, nil
}

// Close makes further reads fail, which ends a running bridge.
func (d *ExternalDevice) Close() error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return nil
}

var _ Device = (*ExternalDevice)(nil)
