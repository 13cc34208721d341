package serial

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.bug.st/serial/enumerator"

	"github.com/ghalamif/padlink/internal/ports"
)

// ListPorts returns the serial ports the OS currently exposes.
func ListPorts() ([]ports.PortCandidate, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, err
	}
	out := make([]ports.PortCandidate, 0, len(details))
	for _, d := range details {
		desc := d.Product
		if d.IsUSB {
			desc = strings.TrimSpace(fmt.Sprintf("%s USB %s:%s", d.Product, d.VID, d.PID))
		}
		if desc == "" {
			desc = "n/a"
		}
		out = append(out, ports.PortCandidate{ID: d.Name, Description: desc})
	}
	return out, nil
}

// PromptSelector asks on a terminal which port to use.
type PromptSelector struct {
	In  io.Reader
	Out io.Writer
}

// SelectPort prints the candidates and reads an index until a valid one is
// entered. It gives up when there are no candidates or input ends.
func (p *PromptSelector) SelectPort(candidates []ports.PortCandidate) (string, bool) {
	if len(candidates) == 0 {
		fmt.Fprintln(p.Out, "no serial port detected, is the board plugged in?")
		return "", false
	}

	fmt.Fprintln(p.Out, "available serial ports:")
	for i, c := range candidates {
		fmt.Fprintf(p.Out, "  [%d] %s (%s)\n", i, c.ID, c.Description)
	}

	sc := bufio.NewScanner(p.In)
	for {
		fmt.Fprintf(p.Out, "port number (0-%d): ", len(candidates)-1)
		if !sc.Scan() {
			return "", false
		}
		idx, err := strconv.Atoi(strings.TrimSpace(sc.Text()))
		if err != nil || idx < 0 || idx >= len(candidates) {
			fmt.Fprintln(p.Out, "invalid choice, try again")
			continue
		}
		return candidates[idx].ID, true
	}
}

var _ ports.PortSelector = (*PromptSelector)(nil)
