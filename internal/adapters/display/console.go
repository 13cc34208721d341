// Package display renders controller state as a single refreshing terminal
// line.
package display

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/ghalamif/padlink/internal/controller"
	"github.com/ghalamif/padlink/internal/domain"
	"github.com/ghalamif/padlink/internal/ports"
)

// Console writes one status line per Render, overwriting the previous one
// with a carriage return.
type Console struct {
	mu     sync.Mutex
	w      io.Writer
	closed bool
	last   string
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Render(s domain.ControllerSnapshot, portLabel string, auxFlag bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ports.ErrDisplayClosed
	}

	line := StatusLine(s, portLabel, auxFlag)
	if line == c.last {
		return nil
	}
	c.last = line
	_, err := fmt.Fprintf(c.w, "\r\033[K%s", line)
	return err
}

// Close ends the display; the next Render reports ErrDisplayClosed.
func (c *Console) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		if c.last != "" {
			fmt.Fprintln(c.w)
		}
	}
	return nil
}

// StatusLine formats a snapshot. Vertical stick values are also shown in the
// 0..4095 remapped space the firmware works in.
func StatusLine(s domain.ControllerSnapshot, portLabel string, auxFlag bool) string {
	if portLabel == "" {
		portLabel = "none"
	}
	aux := "released"
	if auxFlag {
		aux = "pressed"
	}
	return fmt.Sprintf(
		"LT %.2f RT %.2f | L (%+.2f,%+.2f) v=%4d | R (%+.2f,%+.2f) v=%4d | btn [%s] | dpad [%s] | port %s | aux %s",
		s.LeftTrigger, s.RightTrigger,
		s.LeftStickX, s.LeftStickY, controller.Remap(s.LeftStickY),
		s.RightStickX, s.RightStickY, controller.Remap(s.RightStickY),
		pressedButtons(s), dpad(s),
		portLabel, aux,
	)
}

func pressedButtons(s domain.ControllerSnapshot) string {
	named := []struct {
		name string
		on   bool
	}{
		{"A", s.A}, {"B", s.B}, {"X", s.X}, {"Y", s.Y},
		{"LB", s.LB}, {"RB", s.RB},
		{"Back", s.Back}, {"Start", s.Start},
		{"LS", s.LThumb}, {"RS", s.RThumb},
	}
	var out []string
	for _, n := range named {
		if n.on {
			out = append(out, n.name)
		}
	}
	return strings.Join(out, " ")
}

func dpad(s domain.ControllerSnapshot) string {
	var out []string
	if s.DPadUp {
		out = append(out, "up")
	}
	if s.DPadDown {
		out = append(out, "down")
	}
	if s.DPadLeft {
		out = append(out, "left")
	}
	if s.DPadRight {
		out = append(out, "right")
	}
	return strings.Join(out, " ")
}

var _ ports.Renderer = (*Console)(nil)
