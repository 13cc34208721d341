package controller

import "math"

// RemapMax is the top of the 12-bit range used by the device firmware.
const RemapMax = 4095

// Remap maps a normalized axis to [0, RemapMax] with the axis inverted:
// -1 maps to RemapMax and +1 maps to 0. Inputs outside [-1, 1] are clamped;
// NaN is treated as centered.
func Remap(x float64) int {
	if math.IsNaN(x) {
		x = 0
	}
	x = clamp(x, -1, 1)
	v := int(math.Round((1 - x) * (RemapMax / 2.0)))
	if v < 0 {
		return 0
	}
	if v > RemapMax {
		return RemapMax
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
