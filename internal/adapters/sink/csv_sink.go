package sink

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/ghalamif/padlink/internal/domain"
	"github.com/ghalamif/padlink/internal/ports"
)

// Header is the first row of every telemetry log file.
var Header = []string{
	"timestamp",
	"accel_x", "accel_y", "accel_z",
	"gyro_x", "gyro_y", "gyro_z",
	"mag_x", "mag_y", "mag_z",
	"roll", "pitch", "yaw",
}

// TimestampLayout is local wall-clock time with milliseconds.
const TimestampLayout = "2006-01-02 15:04:05.000"

// FileName returns the default log file name for a session started at t.
func FileName(t time.Time) string {
	return fmt.Sprintf("mpu_data_log_%s-%03d.csv", t.Format("2006-01-02_15-04-05"), t.Nanosecond()/int(time.Millisecond))
}

// CSVSink appends IMU records to a CSV file. Values are written as the device
// printed them when the record carries its raw text. Log records are ignored.
type CSVSink struct {
	mu   sync.Mutex
	path string
	f    *os.File
	w    *csv.Writer
}

// NewCSVSink opens path for appending. The header is written only when the
// file is empty so a file can be continued across sessions.
func NewCSVSink(path string) (*CSVSink, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	s := &CSVSink{path: path, f: f, w: csv.NewWriter(f)}
	if info.Size() == 0 {
		if err := s.w.Write(Header); err != nil {
			_ = f.Close()
			return nil, err
		}
		s.w.Flush()
		if err := s.w.Error(); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *CSVSink) Name() string { return "csv:" + s.path }

// Path is the file being written.
func (s *CSVSink) Path() string { return s.path }

func (s *CSVSink) WriteBatch(records []domain.TelemetryRecord) error {
	if len(records) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.w == nil {
		return os.ErrClosed
	}

	row := make([]string, len(Header))
	for _, r := range records {
		if r.Kind != domain.TelemetryIMU {
			continue
		}
		row[0] = r.ReceivedAt.Local().Format(TimestampLayout)
		if len(r.Raw) == domain.IMUFields {
			copy(row[1:], r.Raw)
		} else {
			for i, v := range r.Values() {
				row[i+1] = strconv.FormatFloat(v, 'f', -1, 64)
			}
		}
		if err := s.w.Write(row); err != nil {
			return err
		}
	}
	s.w.Flush()
	return s.w.Error()
}

func (s *CSVSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.w == nil {
		return nil
	}
	s.w.Flush()
	err := s.w.Error()
	if cerr := s.f.Close(); err == nil {
		err = cerr
	}
	s.w = nil
	return err
}

var _ ports.TelemetrySink = (*CSVSink)(nil)
