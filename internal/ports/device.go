package ports

import "github.com/ghalamif/padlink/internal/domain"

// Device is an opened gamepad.
type Device interface {
	Name() string
	AxisCount() int
	ButtonCount() int
	Read() (domain.RawState, error)
	Close() error
}
