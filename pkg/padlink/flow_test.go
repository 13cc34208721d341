package padlink

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestConfFromConfigAndStreamBuilder(t *testing.T) {
	flow, err := ConfFromConfig(testConfig(t))
	if err != nil {
		t.Fatalf("ConfFromConfig returned error: %v", err)
	}

	dev := NewExternalDevice("sim", 8, 11)
	tr := &stubTransport{}
	r := &stubRenderer{}
	snk := NewCallbackSink("cb", func([]TelemetryRecord) error { return nil })

	b, err := flow.
		StreamIN(
			StreamInDevice(dev),
			StreamInTransport(tr),
			StreamInPortSelector(&stubSelector{}),
		).
		StreamOUT(
			StreamOutSink(snk),
			StreamOutRenderer(r),
			StreamOutObservability(&stubObservability{}),
		)
	if err != nil {
		t.Fatalf("StreamOUT returned error: %v", err)
	}
	if b.device != dev || b.transport != tr || b.renderer != r {
		t.Fatalf("expected custom adapters to be wired")
	}
	if len(b.sinks) != 1 || b.sinks[0] != snk {
		t.Fatalf("expected custom sink to be wired")
	}
}

func TestConfLoadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "padlink.yaml")
	data := "serial:\n  port: /dev/ttyUSB0\nmetrics:\n  disabled: true\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	flow, err := Conf(path, WithFlowOptions(WithObservability(&stubObservability{})))
	if err != nil {
		t.Fatalf("Conf: %v", err)
	}
	if flow.Config().Serial.Port != "/dev/ttyUSB0" {
		t.Fatalf("unexpected port %q", flow.Config().Serial.Port)
	}
	if len(flow.opts) != 1 {
		t.Fatalf("expected flow option to be recorded")
	}
}

func TestFlowRunUsesStreamOutOptions(t *testing.T) {
	flow, err := ConfFromConfig(testConfig(t))
	if err != nil {
		t.Fatalf("ConfFromConfig returned error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	// stop immediately; only the wiring is under test
	cancel()
	if err := flow.StreamIN(
		StreamInDevice(NewExternalDevice("sim", 8, 11)),
		StreamInTransport(&stubTransport{}),
	).Run(ctx,
		StreamOutCallback("stdout", func([]TelemetryRecord) error { return nil }),
		StreamOutRenderer(&stubRenderer{}),
		StreamOutObservability(&stubObservability{}),
	); err != nil {
		t.Fatalf("Run returned unexpected error: %v", err)
	}
}
