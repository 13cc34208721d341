package domain

import "time"

// TelemetryKind tags a line read back from the device.
type TelemetryKind int

const (
	// TelemetryLog is free-form text printed by the firmware.
	TelemetryLog TelemetryKind = iota
	// TelemetryIMU is a structured inertial measurement line.
	TelemetryIMU
)

func (k TelemetryKind) String() string {
	switch k {
	case TelemetryIMU:
		return "imu"
	default:
		return "log"
	}
}

// IMUFields is the number of values on a structured telemetry line.
const IMUFields = 12

// Vector3 is a three-axis reading.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Orientation is the fused attitude reported by the device, in degrees.
type Orientation struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// TelemetryRecord is one line of device output, stamped on receipt.
type TelemetryRecord struct {
	ReceivedAt time.Time     `json:"ts"`
	Kind       TelemetryKind `json:"kind"`
	Text       string        `json:"text,omitempty"`

	Accel       Vector3     `json:"accel"`
	Gyro        Vector3     `json:"gyro"`
	Mag         Vector3     `json:"mag"`
	Orientation Orientation `json:"orientation"`

	// Raw holds the value fields as the device printed them, in wire order.
	Raw []string `json:"raw,omitempty"`
}

// Values flattens an IMU record in wire order: accel, gyro, mag, roll/pitch/yaw.
func (r TelemetryRecord) Values() [IMUFields]float64 {
	return [IMUFields]float64{
		r.Accel.X, r.Accel.Y, r.Accel.Z,
		r.Gyro.X, r.Gyro.Y, r.Gyro.Z,
		r.Mag.X, r.Mag.Y, r.Mag.Z,
		r.Orientation.Roll, r.Orientation.Pitch, r.Orientation.Yaw,
	}
}
