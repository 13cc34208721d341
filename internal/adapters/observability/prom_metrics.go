package observability

import (
	"context"
	"log/slog"

	"github.com/ghalamif/padlink/internal/ports"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	FramesSent         = ports.MetricFramesSent
	AuxFramesSent      = ports.MetricAuxFramesSent
	AuxFramesDropped   = ports.MetricAuxFramesDropped
	WriteTimeouts      = ports.MetricWriteTimeouts
	SampleErrors       = ports.MetricSampleErrors
	TelemetryLines     = ports.MetricTelemetryLines
	TelemetryRecords   = ports.MetricTelemetryRecords
	TelemetryDropped   = ports.MetricTelemetryDropped
	AuxQueueLength     = ports.MetricAuxQueueLength
	SnapshotsPublished = ports.MetricSnapshotsPublished
	FrameWriteLatency  = ports.MetricFrameWriteLatency
)

// PromObs logs through slog and records metrics in its own registry.
type PromObs struct {
	logger   *slog.Logger
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
	histos   map[string]prometheus.Observer
}

func NewPromObs(reg prometheus.Registerer, logger *slog.Logger) *PromObs {
	if logger == nil {
		logger = slog.Default()
	}

	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: help})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
	}

	p := &PromObs{
		logger: logger,
		counters: map[string]prometheus.Counter{
			FramesSent:       counter(FramesSent, "Control frames written to the transport."),
			AuxFramesSent:    counter(AuxFramesSent, "Auxiliary edge frames written to the transport."),
			AuxFramesDropped: counter(AuxFramesDropped, "Auxiliary frames lost to a full queue or a write timeout."),
			WriteTimeouts:    counter(WriteTimeouts, "Frames skipped because the transport write timed out."),
			SampleErrors:     counter(SampleErrors, "Controller reads that failed."),
			TelemetryLines:   counter(TelemetryLines, "Lines received from the device."),
			TelemetryRecords: counter(TelemetryRecords, "Structured telemetry records persisted."),
			TelemetryDropped: counter(TelemetryDropped, "Structured telemetry lines dropped as malformed."),
		},
		gauges: map[string]prometheus.Gauge{
			AuxQueueLength:     gauge(AuxQueueLength, "Auxiliary frames waiting for the writer."),
			SnapshotsPublished: gauge(SnapshotsPublished, "Snapshots published to the bus this session."),
		},
		histos: map[string]prometheus.Observer{
			FrameWriteLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
				Name:    FrameWriteLatency,
				Help:    "Time spent in a single transport write.",
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
			}),
		},
	}

	if reg != nil {
		for _, c := range p.counters {
			reg.MustRegister(c)
		}
		for _, g := range p.gauges {
			reg.MustRegister(g)
		}
		for _, h := range p.histos {
			reg.MustRegister(h.(prometheus.Collector))
		}
	}
	return p
}

func (p *PromObs) LogDebug(msg string, fields ...ports.Field) {
	p.logger.LogAttrs(context.Background(), slog.LevelDebug, msg, attrs(fields)...)
}

func (p *PromObs) LogInfo(msg string, fields ...ports.Field) {
	p.logger.LogAttrs(context.Background(), slog.LevelInfo, msg, attrs(fields)...)
}

func (p *PromObs) LogError(msg string, err error, fields ...ports.Field) {
	p.logger.LogAttrs(context.Background(), slog.LevelError, msg, append(attrs(fields), errAttr(err))...)
}

func (p *PromObs) LogCritical(msg string, err error, fields ...ports.Field) {
	a := append(attrs(fields), errAttr(err), slog.Bool("critical", true))
	p.logger.LogAttrs(context.Background(), slog.LevelError, msg, a...)
}

func (p *PromObs) IncCounter(name string, v float64) {
	if c, ok := p.counters[name]; ok {
		c.Add(v)
	}
}

func (p *PromObs) ObserveLatency(name string, seconds float64) {
	if h, ok := p.histos[name]; ok {
		h.Observe(seconds)
	}
}

func (p *PromObs) SetGauge(name string, v float64) {
	if g, ok := p.gauges[name]; ok {
		g.Set(v)
	}
}

func attrs(fields []ports.Field) []slog.Attr {
	out := make([]slog.Attr, 0, len(fields)+2)
	for _, f := range fields {
		out = append(out, slog.Any(f.Key, f.Value))
	}
	return out
}

func errAttr(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

var _ ports.Observability = (*PromObs)(nil)
