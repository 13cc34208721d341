package controller

import (
	"fmt"

	"github.com/ghalamif/padlink/internal/domain"
	"github.com/ghalamif/padlink/internal/ports"
)

// RawAxisMax is the magnitude of a fully deflected axis as reported by the
// joystick driver.
const RawAxisMax = 32767

// Reading is a snapshot plus the state of the auxiliary input sampled in the
// same read.
type Reading struct {
	Snapshot domain.ControllerSnapshot
	Aux      bool
}

// Sampler turns raw device state into normalized snapshots using a layout
// resolved once at startup.
type Sampler struct {
	layout Layout
}

// NewSampler builds a sampler. layout.Buttons.Aux drives the auxiliary edge
// path; -1 disables it.
func NewSampler(layout Layout) *Sampler {
	return &Sampler{layout: layout}
}

// Sample reads the device once and returns a fresh snapshot.
func (s *Sampler) Sample(dev ports.Device) (domain.ControllerSnapshot, error) {
	r, err := s.Read(dev)
	if err != nil {
		return domain.ControllerSnapshot{}, err
	}
	return r.Snapshot, nil
}

// Read samples the device and also reports the auxiliary button.
func (s *Sampler) Read(dev ports.Device) (Reading, error) {
	raw, err := dev.Read()
	if err != nil {
		return Reading{}, fmt.Errorf("%w: %s: %v", ports.ErrDeviceSample, dev.Name(), err)
	}
	return Reading{
		Snapshot: s.Normalize(raw),
		Aux:      raw.Button(s.layout.Buttons.Aux),
	}, nil
}

// Normalize converts raw state to a snapshot. Every analog value is clamped
// to its declared range before it leaves this function.
func (s *Sampler) Normalize(raw domain.RawState) domain.ControllerSnapshot {
	l := s.layout
	b := l.Buttons

	up, down, left, right := DecomposeHat(s.hatX(raw), s.hatY(raw))

	return domain.ControllerSnapshot{
		LeftStickX:  s.stick(raw, l.LeftStickX),
		LeftStickY:  invert(s.stick(raw, l.LeftStickY)),
		RightStickX: s.stick(raw, l.RightStickX),
		RightStickY: invert(s.stick(raw, l.RightStickY)),

		LeftTrigger:  s.trigger(raw, l.LeftTrigger),
		RightTrigger: s.trigger(raw, l.RightTrigger),

		A:      raw.Button(b.A),
		B:      raw.Button(b.B),
		X:      raw.Button(b.X),
		Y:      raw.Button(b.Y),
		LB:     raw.Button(b.LB),
		RB:     raw.Button(b.RB),
		Back:   raw.Button(b.Back),
		Start:  raw.Button(b.Start),
		LThumb: raw.Button(b.LThumb),
		RThumb: raw.Button(b.RThumb),

		DPadUp:    up,
		DPadDown:  down,
		DPadLeft:  left,
		DPadRight: right,
	}
}

func (s *Sampler) stick(raw domain.RawState, idx int) float64 {
	v, ok := raw.Axis(idx)
	if !ok {
		return 0
	}
	return normalizeAxis(v)
}

// trigger reads a trigger axis; a missing axis reads as fully released.
func (s *Sampler) trigger(raw domain.RawState, idx int) float64 {
	v, ok := raw.Axis(idx)
	if !ok {
		return 0
	}
	n := normalizeAxis(v)
	if s.layout.Triggers == TriggerFull {
		n = (n + 1) / 2
	}
	return clamp(n, 0, 1)
}

func (s *Sampler) hatX(raw domain.RawState) int {
	v, _ := raw.Axis(s.layout.DPadX)
	return sign(v)
}

// hatY returns +1 for up.
func (s *Sampler) hatY(raw domain.RawState) int {
	v, _ := raw.Axis(s.layout.DPadY)
	if s.layout.DPadYDownPositive {
		return -sign(v)
	}
	return sign(v)
}

// DecomposeHat splits a (-1|0|+1, -1|0|+1) hat into four flags. The axes are
// independent so diagonals set two flags.
func DecomposeHat(x, y int) (up, down, left, right bool) {
	return y > 0, y < 0, x < 0, x > 0
}

func normalizeAxis(v int) float64 {
	return clamp(float64(v)/RawAxisMax, -1, 1)
}

// invert flips a vertical axis so that up is positive, without producing -0.
func invert(v float64) float64 {
	if v == 0 {
		return 0
	}
	return -v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
