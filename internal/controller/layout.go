package controller

import (
	"fmt"
	"runtime"
	"strings"
)

// Platform identifies the OS-specific axis/button numbering of the driver.
type Platform int

const (
	PlatformLinux Platform = iota
	PlatformWindows
	PlatformDarwin
)

func (p Platform) String() string {
	switch p {
	case PlatformWindows:
		return "windows"
	case PlatformDarwin:
		return "darwin"
	default:
		return "linux"
	}
}

// ParsePlatform resolves a configured platform tag. "" and "auto" select the
// platform the binary runs on.
func ParsePlatform(tag string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "", "auto":
		return ParsePlatform(runtime.GOOS)
	case "linux":
		return PlatformLinux, nil
	case "windows":
		return PlatformWindows, nil
	case "darwin", "macos":
		return PlatformDarwin, nil
	default:
		return 0, fmt.Errorf("unknown platform %q", tag)
	}
}

// TriggerRange describes how a trigger axis rests.
type TriggerRange string

const (
	// TriggerFull: released at -1, fully pressed at +1.
	TriggerFull TriggerRange = "full"
	// TriggerHalf: released at 0, fully pressed at +1.
	TriggerHalf TriggerRange = "half"
)

// ButtonLayout holds bit indices in the device button mask. -1 means absent.
type ButtonLayout struct {
	A      int `yaml:"a"`
	B      int `yaml:"b"`
	X      int `yaml:"x"`
	Y      int `yaml:"y"`
	LB     int `yaml:"lb"`
	RB     int `yaml:"rb"`
	Back   int `yaml:"back"`
	Start  int `yaml:"start"`
	LThumb int `yaml:"l_thumb"`
	RThumb int `yaml:"r_thumb"`
	// Aux drives the auxiliary edge frames. It must not share a bit with any
	// snapshot button.
	Aux int `yaml:"aux"`
}

// Layout maps physical axis/button slots to snapshot fields. Axis indices of
// -1 mark an input the platform does not report.
type Layout struct {
	LeftStickX   int          `yaml:"left_stick_x"`
	LeftStickY   int          `yaml:"left_stick_y"`
	RightStickX  int          `yaml:"right_stick_x"`
	RightStickY  int          `yaml:"right_stick_y"`
	LeftTrigger  int          `yaml:"left_trigger"`
	RightTrigger int          `yaml:"right_trigger"`
	Triggers     TriggerRange `yaml:"triggers"`

	DPadX int `yaml:"dpad_x"`
	DPadY int `yaml:"dpad_y"`
	// DPadYDownPositive is set when the driver reports "down" as a positive
	// hat value.
	DPadYDownPositive bool `yaml:"dpad_y_down_positive"`

	Buttons ButtonLayout `yaml:"buttons"`
}

// DefaultLayouts is the built-in table for an XInput-style pad, keyed by
// platform. Entries can be replaced per platform from configuration.
var DefaultLayouts = map[Platform]Layout{
	PlatformLinux: {
		LeftStickX: 0, LeftStickY: 1,
		LeftTrigger: 2,
		RightStickX: 3, RightStickY: 4,
		RightTrigger: 5,
		Triggers:     TriggerFull,
		DPadX:        6, DPadY: 7,
		DPadYDownPositive: true,
		Buttons: ButtonLayout{
			A: 0, B: 1, X: 2, Y: 3, LB: 4, RB: 5,
			Back: 6, Start: 7, LThumb: 9, RThumb: 10,
			Aux: 8,
		},
	},
	PlatformWindows: {
		LeftStickX: 0, LeftStickY: 1,
		RightStickX: 2, RightStickY: 3,
		LeftTrigger: 4, RightTrigger: 5,
		Triggers:          TriggerFull,
		DPadX:             6, DPadY: 7,
		DPadYDownPositive: true,
		Buttons: ButtonLayout{
			A: 0, B: 1, X: 2, Y: 3, LB: 4, RB: 5,
			Back: 6, Start: 7, LThumb: 8, RThumb: 9,
			// winmm does not report Guide.
			Aux: -1,
		},
	},
	PlatformDarwin: {
		LeftStickX: 0, LeftStickY: 1,
		RightStickX: 2, RightStickY: 3,
		LeftTrigger: -1, RightTrigger: -1,
		Triggers:          TriggerHalf,
		DPadX:             -1, DPadY: -1,
		DPadYDownPositive: true,
		Buttons: ButtonLayout{
			A: 0, B: 1, X: 2, Y: 3, LB: 4, RB: 5,
			Back: 8, Start: 9, LThumb: 6, RThumb: 7,
			Aux: 10,
		},
	},
}

// ResolveLayout returns the override for p when present, otherwise the
// built-in entry.
func ResolveLayout(p Platform, overrides map[Platform]Layout) (Layout, error) {
	if l, ok := overrides[p]; ok {
		if err := l.Validate(); err != nil {
			return Layout{}, fmt.Errorf("layout %s: %w", p, err)
		}
		return l, nil
	}
	l, ok := DefaultLayouts[p]
	if !ok {
		return Layout{}, fmt.Errorf("no layout for platform %s", p)
	}
	return l, nil
}

// Validate rejects indices the driver can never report.
func (l Layout) Validate() error {
	axes := map[string]int{
		"left_stick_x":  l.LeftStickX,
		"left_stick_y":  l.LeftStickY,
		"right_stick_x": l.RightStickX,
		"right_stick_y": l.RightStickY,
		"left_trigger":  l.LeftTrigger,
		"right_trigger": l.RightTrigger,
		"dpad_x":        l.DPadX,
		"dpad_y":        l.DPadY,
	}
	for name, idx := range axes {
		if idx < -1 {
			return fmt.Errorf("%s: invalid axis index %d", name, idx)
		}
	}
	b := l.Buttons
	buttons := []struct {
		name string
		idx  int
	}{
		{"a", b.A}, {"b", b.B}, {"x", b.X}, {"y", b.Y},
		{"lb", b.LB}, {"rb", b.RB}, {"back", b.Back}, {"start", b.Start},
		{"l_thumb", b.LThumb}, {"r_thumb", b.RThumb}, {"aux", b.Aux},
	}
	used := make(map[int]string, len(buttons))
	for _, btn := range buttons {
		if btn.idx < -1 || btn.idx > 31 {
			return fmt.Errorf("%s: invalid button index %d", btn.name, btn.idx)
		}
		if btn.idx < 0 {
			continue
		}
		if other, ok := used[btn.idx]; ok {
			return fmt.Errorf("%s and %s share button %d", other, btn.name, btn.idx)
		}
		used[btn.idx] = btn.name
	}
	switch l.Triggers {
	case TriggerFull, TriggerHalf:
	default:
		return fmt.Errorf("invalid trigger range %q", l.Triggers)
	}
	return nil
}
