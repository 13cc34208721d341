package padlink

import (
	"github.com/ghalamif/padlink/internal/adapters/serial"
	"github.com/ghalamif/padlink/internal/app/config"
	"github.com/ghalamif/padlink/internal/controller"
	"github.com/ghalamif/padlink/internal/ports"
)

// Config re-exports the root configuration struct so downstream projects can
// construct or modify it programmatically.
type Config = config.Config

type (
	// Policy controls loop cadences and the auxiliary frame queue.
	Policy = ports.Policy
	// SerialConfig holds port, baud rate and timeouts.
	SerialConfig = serial.Config
	// ControllerConfig selects the gamepad, its layout and the aux button.
	ControllerConfig = config.ControllerConfig
	// TelemetryConfig configures the device line parser and CSV log.
	TelemetryConfig = config.TelemetryConfig
	// DisplayConfig toggles the console status line.
	DisplayConfig = config.DisplayConfig
	// MetricsConfig configures the metrics HTTP server.
	MetricsConfig = config.MetricsConfig
	// LogConfig sets the slog level and format.
	LogConfig = config.LogConfig
	// Layout maps driver axes and buttons to snapshot fields.
	Layout = controller.Layout
)

// LoadConfig loads YAML from disk using the internal config reader.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// DefaultConfig returns a configuration with every default applied.
func DefaultConfig() *Config {
	return config.Default()
}
