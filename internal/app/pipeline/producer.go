package pipeline

import (
	"context"
	"time"

	"github.com/ghalamif/padlink/internal/bus"
	"github.com/ghalamif/padlink/internal/controller"
	"github.com/ghalamif/padlink/internal/ports"
)

// Producer samples the device, publishes the snapshot and drives the writer
// on the same cadence.
type Producer struct {
	dev     ports.Device
	sampler *controller.Sampler
	bus     *bus.SnapshotBus
	writer  *Writer
	obs     ports.Observability
	aux     controller.EdgeDetector
}

func NewProducer(dev ports.Device, s *controller.Sampler, b *bus.SnapshotBus, w *Writer, obs ports.Observability) *Producer {
	return &Producer{dev: dev, sampler: s, bus: b, writer: w, obs: obs}
}

// Step runs one tick: sample, publish, queue an auxiliary frame on an edge,
// write. Any returned error ends the session.
func (p *Producer) Step() error {
	r, err := p.sampler.Read(p.dev)
	if err != nil {
		p.obs.IncCounter(ports.MetricSampleErrors, 1)
		return err
	}
	p.bus.Publish(r.Snapshot)

	if p.aux.Observe(r.Aux) {
		if err := p.writer.Toggle(r.Aux); err != nil {
			return err
		}
	}
	return p.writer.Tick()
}

// RunProducer calls Step every interval until ctx is done or a step fails.
func RunProducer(ctx context.Context, p *Producer, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if err := p.Step(); err != nil {
			p.obs.LogCritical("producer_stopped", err)
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
