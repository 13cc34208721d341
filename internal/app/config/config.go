package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ghalamif/padlink/internal/adapters/serial"
	"github.com/ghalamif/padlink/internal/controller"
	"github.com/ghalamif/padlink/internal/domain"
	"github.com/ghalamif/padlink/internal/ports"
)

type Config struct {
	Serial     serial.Config    `yaml:"serial"`
	Controller ControllerConfig `yaml:"controller"`
	Policy     ports.Policy     `yaml:"policy"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Display    DisplayConfig    `yaml:"display"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Log        LogConfig        `yaml:"log"`
}

type ControllerConfig struct {
	Index    int    `yaml:"index"`
	Platform string `yaml:"platform"`
	// Layouts replaces the built-in layout of a platform. Entries must be
	// complete.
	Layouts map[string]controller.Layout `yaml:"layouts"`
	// AuxButton replaces the layout's auxiliary button; -1 disables it. Unset
	// keeps the platform default.
	AuxButton *int `yaml:"aux_button"`
}

type TelemetryConfig struct {
	Marker string `yaml:"marker"`
	Fields int    `yaml:"fields"`
	LogDir string `yaml:"log_dir"`
	// File overrides the generated per-session file name.
	File     string `yaml:"file"`
	Disabled bool   `yaml:"disabled"`
}

type DisplayConfig struct {
	Disabled bool `yaml:"disabled"`
}

type MetricsConfig struct {
	Addr     string `yaml:"addr"`
	Disabled bool   `yaml:"disabled"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	cfg.ApplyDefaults()
	return &cfg
}

func (c *Config) ApplyDefaults() {
	if c.Policy.SampleInterval == 0 {
		c.Policy.SampleInterval = 10 * time.Millisecond
	}
	if c.Policy.DisplayInterval == 0 {
		c.Policy.DisplayInterval = time.Second / 30
	}
	if c.Policy.IdleSleep == 0 {
		c.Policy.IdleSleep = 5 * time.Millisecond
	}
	if c.Policy.AuxQueueLen == 0 {
		c.Policy.AuxQueueLen = 64
	}
	if c.Policy.OnQueueFull == "" {
		c.Policy.OnQueueFull = ports.QueueFullFlush
	}
	if c.Telemetry.Marker == "" {
		c.Telemetry.Marker = "MPU_DATA"
	}
	if c.Telemetry.Fields == 0 {
		c.Telemetry.Fields = domain.IMUFields
	}
	if c.Telemetry.LogDir == "" {
		c.Telemetry.LogDir = "."
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9100"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Serial.SettleDelay == 0 {
		c.Serial.SettleDelay = 2 * time.Second
	}

	c.Serial.ApplyDefaults()
}

func (c *Config) Validate() error {
	if err := c.Serial.Validate(); err != nil {
		return fmt.Errorf("serial config: %w", err)
	}
	if c.Controller.Index < 0 {
		return fmt.Errorf("controller.index must be >= 0")
	}
	if _, err := c.Layout(); err != nil {
		return err
	}
	if c.Policy.SampleInterval <= 0 {
		return fmt.Errorf("policy.sample_interval must be > 0")
	}
	if c.Policy.DisplayInterval <= 0 {
		return fmt.Errorf("policy.display_interval must be > 0")
	}
	if c.Policy.IdleSleep <= 0 {
		return fmt.Errorf("policy.idle_sleep must be > 0")
	}
	if c.Policy.AuxQueueLen <= 0 {
		return fmt.Errorf("policy.aux_queue_len must be > 0")
	}
	switch c.Policy.OnQueueFull {
	case ports.QueueFullFlush, ports.QueueFullDrop:
	default:
		return fmt.Errorf("policy.on_queue_full: unknown policy %q", c.Policy.OnQueueFull)
	}
	if c.Telemetry.Fields != domain.IMUFields {
		return fmt.Errorf("telemetry.fields must be %d, got %d", domain.IMUFields, c.Telemetry.Fields)
	}
	if !c.Metrics.Disabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr is required")
	}
	return nil
}

// Layout resolves the controller layout for the configured platform, with
// the aux_button override applied.
func (c *Config) Layout() (controller.Layout, error) {
	platform, err := controller.ParsePlatform(c.Controller.Platform)
	if err != nil {
		return controller.Layout{}, fmt.Errorf("controller.platform: %w", err)
	}
	overrides, err := c.LayoutOverrides()
	if err != nil {
		return controller.Layout{}, err
	}
	l, err := controller.ResolveLayout(platform, overrides)
	if err != nil {
		return controller.Layout{}, err
	}
	if c.Controller.AuxButton != nil {
		l.Buttons.Aux = *c.Controller.AuxButton
		if err := l.Validate(); err != nil {
			return controller.Layout{}, fmt.Errorf("controller.aux_button: %w", err)
		}
	}
	return l, nil
}

// LayoutOverrides parses and validates the per-platform layout table.
func (c *Config) LayoutOverrides() (map[controller.Platform]controller.Layout, error) {
	if len(c.Controller.Layouts) == 0 {
		return nil, nil
	}
	out := make(map[controller.Platform]controller.Layout, len(c.Controller.Layouts))
	for tag, l := range c.Controller.Layouts {
		p, err := controller.ParsePlatform(tag)
		if err != nil {
			return nil, fmt.Errorf("controller.layouts: %w", err)
		}
		if err := l.Validate(); err != nil {
			return nil, fmt.Errorf("controller.layouts.%s: %w", tag, err)
		}
		out[p] = l
	}
	return out, nil
}

// TelemetryPath is the CSV file for a session started at start.
func (c *Config) TelemetryPath(start time.Time, name func(time.Time) string) string {
	file := c.Telemetry.File
	if file == "" {
		file = name(start)
	}
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(c.Telemetry.LogDir, file)
}
