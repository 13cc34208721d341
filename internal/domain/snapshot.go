package domain

// ControllerSnapshot is one complete reading of the gamepad. Values are
// normalized and clamped by the sampler; consumers receive copies and never
// mutate them.
type ControllerSnapshot struct {
	LeftStickX  float64 `json:"left_stick_x"`
	LeftStickY  float64 `json:"left_stick_y"`
	RightStickX float64 `json:"right_stick_x"`
	RightStickY float64 `json:"right_stick_y"`

	LeftTrigger  float64 `json:"left_trigger"`
	RightTrigger float64 `json:"right_trigger"`

	A      bool `json:"a"`
	B      bool `json:"b"`
	X      bool `json:"x"`
	Y      bool `json:"y"`
	LB     bool `json:"lb"`
	RB     bool `json:"rb"`
	Back   bool `json:"back"`
	Start  bool `json:"start"`
	LThumb bool `json:"l_thumb"`
	RThumb bool `json:"r_thumb"`

	DPadUp    bool `json:"dpad_up"`
	DPadDown  bool `json:"dpad_down"`
	DPadLeft  bool `json:"dpad_left"`
	DPadRight bool `json:"dpad_right"`
}

// RawState is what a device reports before normalization: signed axis
// positions in the device's native range and a button bitmask.
type RawState struct {
	Axes    []int
	Buttons uint32
}

// Axis returns the raw axis at idx and whether the device reported it.
func (r RawState) Axis(idx int) (int, bool) {
	if idx < 0 || idx >= len(r.Axes) {
		return 0, false
	}
	return r.Axes[idx], true
}

// Button reports whether the button at idx is held. Negative or out of
// range indices read as released.
func (r RawState) Button(idx int) bool {
	if idx < 0 || idx > 31 {
		return false
	}
	return r.Buttons&(1<<uint(idx)) != 0
}
