package ports

import "github.com/ghalamif/padlink/internal/domain"

// Renderer visualizes the latest snapshot. It must return quickly and must
// not retain the snapshot beyond the call. Returning ErrDisplayClosed asks
// the bridge to shut down.
type Renderer interface {
	Render(s domain.ControllerSnapshot, portLabel string, auxFlag bool) error
}
