package ports

import "github.com/ghalamif/padlink/internal/domain"

// TelemetrySink persists structured telemetry records.
type TelemetrySink interface {
	WriteBatch(records []domain.TelemetryRecord) error
	Name() string
}
