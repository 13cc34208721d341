package ports

import "time"

type Policy struct {
	SampleInterval  time.Duration `yaml:"sample_interval"`
	DisplayInterval time.Duration `yaml:"display_interval"`
	IdleSleep       time.Duration `yaml:"idle_sleep"`
	AuxQueueLen     int           `yaml:"aux_queue_len"`
	MaxAuxPerTick   int           `yaml:"max_aux_per_tick"`

	OnQueueFull string `yaml:"on_queue_full"` // "flush", "drop"
}

const (
	// QueueFullFlush writes the pending auxiliary frames immediately to make
	// room for the new one.
	QueueFullFlush = "flush"
	// QueueFullDrop discards the new frame.
	QueueFullDrop = "drop"
)
