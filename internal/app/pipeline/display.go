package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/ghalamif/padlink/internal/bus"
	"github.com/ghalamif/padlink/internal/ports"
)

// DisplayLoop feeds the renderer from the bus on its own cadence.
type DisplayLoop struct {
	Bus       *bus.SnapshotBus
	Renderer  ports.Renderer
	PortLabel string
	AuxState  func() bool
	Interval  time.Duration
	Obs       ports.Observability
}

// Run renders until ctx is done. A renderer reporting ErrDisplayClosed ends
// the loop with that error so the session shuts down; other render errors
// are logged.
func (d *DisplayLoop) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		s, ok := d.Bus.ReadLatest()
		if !ok {
			continue
		}
		aux := false
		if d.AuxState != nil {
			aux = d.AuxState()
		}
		if err := d.Renderer.Render(s, d.PortLabel, aux); err != nil {
			if errors.Is(err, ports.ErrDisplayClosed) {
				d.Obs.LogInfo("display_closed")
				return err
			}
			d.Obs.LogError("render_failed", err)
		}
	}
}
