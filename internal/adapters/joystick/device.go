// Package joystick opens gamepads through the OS joystick API.
package joystick

import (
	"fmt"

	js "github.com/0xcafed00d/joystick"

	"github.com/ghalamif/padlink/internal/domain"
	"github.com/ghalamif/padlink/internal/ports"
)

// Device adapts a joystick handle to ports.Device.
type Device struct {
	index int
	js    js.Joystick
}

// Open opens the gamepad at index. Any failure is reported as
// ports.ErrDeviceUnavailable.
func Open(index int) (*Device, error) {
	j, err := js.Open(index)
	if err != nil {
		return nil, fmt.Errorf("%w: joystick %d: %v", ports.ErrDeviceUnavailable, index, err)
	}
	return Wrap(index, j), nil
}

// Wrap adapts an already opened handle.
func Wrap(index int, j js.Joystick) *Device {
	return &Device{index: index, js: j}
}

func (d *Device) Name() string {
	if n := d.js.Name(); n != "" {
		return n
	}
	return fmt.Sprintf("joystick%d", d.index)
}

func (d *Device) AxisCount() int   { return d.js.AxisCount() }
func (d *Device) ButtonCount() int { return d.js.ButtonCount() }

// Read returns the current axes and buttons. The axis slice is copied so the
// caller may keep it.
func (d *Device) Read() (domain.RawState, error) {
	st, err := d.js.Read()
	if err != nil {
		return domain.RawState{}, err
	}
	axes := make([]int, len(st.AxisData))
	copy(axes, st.AxisData)
	return domain.RawState{Axes: axes, Buttons: st.Buttons}, nil
}

func (d *Device) Close() error {
	d.js.Close()
	return nil
}

var _ ports.Device = (*Device)(nil)
