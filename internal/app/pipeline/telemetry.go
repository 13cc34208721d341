package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ghalamif/padlink/internal/domain"
	"github.com/ghalamif/padlink/internal/ports"
)

// DefaultMaxLine bounds how much unterminated input is buffered before it is
// emitted as a line anyway.
const DefaultMaxLine = 4096

// LineSplitter turns a byte stream into text lines. Invalid UTF-8 is
// replaced, never rejected.
type LineSplitter struct {
	pending []byte
	max     int
}

func NewLineSplitter(max int) *LineSplitter {
	if max <= 0 {
		max = DefaultMaxLine
	}
	return &LineSplitter{max: max}
}

// Feed consumes p and returns every line it completed, without terminators.
func (l *LineSplitter) Feed(p []byte) []string {
	l.pending = append(l.pending, p...)

	var lines []string
	for {
		i := bytes.IndexByte(l.pending, '\n')
		if i < 0 {
			break
		}
		lines = append(lines, decodeLine(l.pending[:i]))
		l.pending = l.pending[i+1:]
	}
	if len(l.pending) >= l.max {
		lines = append(lines, decodeLine(l.pending))
		l.pending = nil
	}
	if len(l.pending) == 0 {
		l.pending = nil
	}
	return lines
}

func decodeLine(b []byte) string {
	b = bytes.TrimRight(b, "\r")
	return strings.ToValidUTF8(string(b), "\uFFFD")
}

// LineParser classifies device lines.
type LineParser struct {
	Marker string
	Fields int
}

// Parse turns a line into a record. Lines starting with Marker must carry
// exactly domain.IMUFields numeric values after it; anything else is plain
// log text. A parser configured for any other count rejects every marked
// line.
func (p LineParser) Parse(line string, at time.Time) (domain.TelemetryRecord, error) {
	line = strings.TrimSpace(line)
	if p.Marker == "" || !strings.HasPrefix(line, p.Marker) {
		return domain.TelemetryRecord{ReceivedAt: at, Kind: domain.TelemetryLog, Text: line}, nil
	}
	if p.Fields != domain.IMUFields {
		return domain.TelemetryRecord{}, fmt.Errorf("%w: parser expects %d fields, records have %d", ports.ErrTelemetryParse, p.Fields, domain.IMUFields)
	}

	parts := strings.Split(line, ",")
	if len(parts) != domain.IMUFields+1 {
		return domain.TelemetryRecord{}, fmt.Errorf("%w: %d fields, want %d", ports.ErrTelemetryParse, len(parts)-1, domain.IMUFields)
	}
	var vals [domain.IMUFields]float64
	raw := make([]string, domain.IMUFields)
	for i, field := range parts[1:] {
		raw[i] = strings.TrimSpace(field)
		v, err := strconv.ParseFloat(raw[i], 64)
		if err != nil {
			return domain.TelemetryRecord{}, fmt.Errorf("%w: %v", ports.ErrTelemetryParse, err)
		}
		vals[i] = v
	}

	return domain.TelemetryRecord{
		ReceivedAt:  at,
		Kind:        domain.TelemetryIMU,
		Text:        line,
		Accel:       domain.Vector3{X: vals[0], Y: vals[1], Z: vals[2]},
		Gyro:        domain.Vector3{X: vals[3], Y: vals[4], Z: vals[5]},
		Mag:         domain.Vector3{X: vals[6], Y: vals[7], Z: vals[8]},
		Orientation: domain.Orientation{Roll: vals[9], Pitch: vals[10], Yaw: vals[11]},
		Raw:         raw,
	}, nil
}

// TelemetryReader drains the inbound direction of the transport.
type TelemetryReader struct {
	Transport ports.Transport
	Parser    LineParser
	Sink      ports.TelemetrySink
	IdleSleep time.Duration
	Obs       ports.Observability
	Now       func() time.Time

	splitter *LineSplitter
}

// Run reads until ctx is done or the transport closes. Closing while ctx is
// done is a normal exit.
func (r *TelemetryReader) Run(ctx context.Context) error {
	if r.splitter == nil {
		r.splitter = NewLineSplitter(DefaultMaxLine)
	}
	if r.Now == nil {
		r.Now = time.Now
	}
	idle := r.IdleSleep
	if idle <= 0 {
		idle = 5 * time.Millisecond
	}

	buf := make([]byte, 512)
	// A failing port keeps failing on every poll; log each distinct error once.
	var lastErr string
	var repeats int
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		n, err := r.Transport.Read(buf)
		if n > 0 {
			r.handle(r.splitter.Feed(buf[:n]))
		}
		if err != nil {
			if errors.Is(err, ports.ErrTransportClosed) {
				if ctx.Err() != nil {
					return nil
				}
				r.Obs.LogCritical("telemetry_transport_closed", err)
				return err
			}
			if msg := err.Error(); msg != lastErr {
				r.Obs.LogError("telemetry_read_failed", err)
				lastErr, repeats = msg, 0
			} else {
				repeats++
			}
		} else if lastErr != "" {
			r.Obs.LogInfo("telemetry_read_recovered", ports.Field{Key: "repeats", Value: repeats})
			lastErr, repeats = "", 0
		}
		if n == 0 {
			if !sleepCtx(ctx, idle) {
				return nil
			}
		}
	}
}

func (r *TelemetryReader) handle(lines []string) {
	if len(lines) == 0 {
		return
	}
	at := r.Now()
	var batch []domain.TelemetryRecord
	for _, line := range lines {
		if line == "" {
			continue
		}
		r.Obs.IncCounter(ports.MetricTelemetryLines, 1)

		rec, err := r.Parser.Parse(line, at)
		if err != nil {
			r.Obs.IncCounter(ports.MetricTelemetryDropped, 1)
			r.Obs.LogDebug("telemetry_line_dropped",
				ports.Field{Key: "line", Value: line},
				ports.Field{Key: "error", Value: err.Error()})
			continue
		}
		if rec.Kind == domain.TelemetryLog {
			r.Obs.LogInfo("device_log",
				ports.Field{Key: "text", Value: rec.Text},
				ports.Field{Key: "received_at", Value: at.Format("15:04:05.000")})
			continue
		}
		batch = append(batch, rec)
	}

	if len(batch) == 0 || r.Sink == nil {
		return
	}
	if err := r.Sink.WriteBatch(batch); err != nil {
		r.Obs.LogError("telemetry_sink_failed", err, ports.Field{Key: "sink", Value: r.Sink.Name()})
		return
	}
	r.Obs.IncCounter(ports.MetricTelemetryRecords, float64(len(batch)))
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
