package display

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/ghalamif/padlink/internal/domain"
	"github.com/ghalamif/padlink/internal/ports"
)

func TestStatusLine(t *testing.T) {
	s := domain.ControllerSnapshot{
		LeftStickY:   1,
		RightStickY:  -1,
		LeftTrigger:  0.5,
		A:            true,
		Start:        true,
		DPadUp:       true,
		DPadLeft:     true,
	}
	line := StatusLine(s, "/dev/ttyUSB0", true)

	for _, want := range []string{
		"LT 0.50",
		"v=   0",
		"v=4095",
		"btn [A Start]",
		"dpad [up left]",
		"port /dev/ttyUSB0",
		"aux pressed",
	} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
}

func TestConsoleSkipsUnchangedLines(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	s := domain.ControllerSnapshot{B: true}
	if err := c.Render(s, "", false); err != nil {
		t.Fatalf("render: %v", err)
	}
	n := buf.Len()
	if err := c.Render(s, "", false); err != nil {
		t.Fatalf("render: %v", err)
	}
	if buf.Len() != n {
		t.Fatalf("expected identical frame not to be rewritten")
	}
	if !strings.Contains(buf.String(), "port none") {
		t.Fatalf("expected placeholder port label, got %q", buf.String())
	}
}

func TestConsoleClosed(t *testing.T) {
	c := NewConsole(&bytes.Buffer{})
	_ = c.Close()
	if err := c.Render(domain.ControllerSnapshot{}, "p", false); !errors.Is(err, ports.ErrDisplayClosed) {
		t.Fatalf("expected ErrDisplayClosed, got %v", err)
	}
}
