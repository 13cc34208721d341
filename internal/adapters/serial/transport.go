package serial

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	bugst "go.bug.st/serial"

	"github.com/ghalamif/padlink/internal/ports"
)

// Config captures the runtime details required to open the serial link.
type Config struct {
	Port         string        `yaml:"port"`
	BaudRate     int           `yaml:"baud_rate"`
	WriteTimeout time.Duration `yaml:"write_timeout"` // negative disables the timeout
	ReadPoll     time.Duration `yaml:"read_poll"`
	SettleDelay  time.Duration `yaml:"settle_delay"`
}

func (c *Config) ApplyDefaults() {
	if c.BaudRate == 0 {
		c.BaudRate = 115200
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 50 * time.Millisecond
	}
	if c.ReadPoll <= 0 {
		c.ReadPoll = 100 * time.Millisecond
	}
	if c.SettleDelay < 0 {
		c.SettleDelay = 0
	}
}

func (c *Config) Validate() error {
	if c.BaudRate <= 0 {
		return errors.New("baud_rate must be > 0")
	}
	if c.ReadPoll <= 0 {
		return errors.New("read_poll must be > 0")
	}
	return nil
}

// Port is the subset of go.bug.st/serial.Port the transport uses.
type Port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
}

// Transport is a serial link to the device.
//
// Reads and writes use different directions of the same descriptor and may
// run concurrently. Writes are serialized by wmu; a write that outlives
// WriteTimeout keeps wmu until it completes and later writes report
// ErrWriteTimeout instead of queueing behind it.
type Transport struct {
	name         string
	port         Port
	writeTimeout time.Duration

	wmu       sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

// Open opens and configures the port named in cfg.
func Open(cfg Config) (*Transport, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrTransportOpen, err)
	}
	mode := &bugst.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   bugst.NoParity,
		StopBits: bugst.OneStopBit,
	}
	p, err := bugst.Open(cfg.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ports.ErrTransportOpen, cfg.Port, err)
	}
	t, err := NewTransport(cfg.Port, p, cfg)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	if cfg.SettleDelay > 0 {
		// opening the port toggles DTR, which resets most dev boards
		time.Sleep(cfg.SettleDelay)
	}
	return t, nil
}

// NewTransport wraps an already opened port.
func NewTransport(name string, p Port, cfg Config) (*Transport, error) {
	cfg.ApplyDefaults()
	if err := p.SetReadTimeout(cfg.ReadPoll); err != nil {
		return nil, fmt.Errorf("%w: set read timeout: %v", ports.ErrTransportOpen, err)
	}
	return &Transport{
		name:         name,
		port:         p,
		writeTimeout: cfg.WriteTimeout,
	}, nil
}

func (t *Transport) Name() string { return t.name }

type writeResult struct {
	n   int
	err error
}

func (t *Transport) Write(b []byte) (int, error) {
	if t.writeTimeout <= 0 {
		t.wmu.Lock()
		defer t.wmu.Unlock()
		n, err := t.port.Write(b)
		return n, checkWrite(n, len(b), err)
	}

	if !t.wmu.TryLock() {
		return 0, ports.ErrWriteTimeout
	}
	done := make(chan writeResult, 1)
	go func() {
		defer t.wmu.Unlock()
		n, err := t.port.Write(b)
		done <- writeResult{n: n, err: err}
	}()

	timer := time.NewTimer(t.writeTimeout)
	defer timer.Stop()
	select {
	case r := <-done:
		return r.n, checkWrite(r.n, len(b), r.err)
	case <-timer.C:
		return 0, ports.ErrWriteTimeout
	}
}

// Read blocks for at most the configured poll interval; (0, nil) means no
// data arrived.
func (t *Transport) Read(b []byte) (int, error) {
	n, err := t.port.Read(b)
	return n, classify(err)
}

func (t *Transport) Close() error {
	t.closeOnce.Do(func() {
		t.closeErr = t.port.Close()
	})
	return t.closeErr
}

// checkWrite reports a short write as io.ErrShortWrite; a partial frame
// leaves the device out of sync.
func checkWrite(n, want int, err error) error {
	if err != nil {
		return classify(err)
	}
	if n < want {
		return fmt.Errorf("%w: wrote %d of %d bytes", io.ErrShortWrite, n, want)
	}
	return nil
}

// classify maps driver errors onto the transport error taxonomy.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var pe *bugst.PortError
	if errors.As(err, &pe) && pe.Code() == bugst.PortClosed {
		return fmt.Errorf("%w: %v", ports.ErrTransportClosed, err)
	}
	if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
		return fmt.Errorf("%w: %v", ports.ErrTransportClosed, err)
	}
	return err
}

var _ ports.Transport = (*Transport)(nil)
