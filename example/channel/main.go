package main

import (
	"context"
	"fmt"
	"log"
	"math"
	"os/signal"
	"syscall"
	"time"

	"github.com/ghalamif/padlink"
)

// Drives the bridge from a simulated stick sweep instead of a gamepad and
// forwards telemetry through a channel.
func main() {
	flow, err := padlink.Conf("../../padlink.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dev := padlink.NewExternalDevice("sweep", 8, 11)
	go sweep(ctx, dev)

	sink, batches, closeBatches := padlink.NewChannelSink("fanout", 32)
	defer closeBatches()
	go fanoutWorker("imu", batches)

	err = flow.
		StreamIN(padlink.StreamInDevice(dev)).
		Run(ctx, padlink.StreamOutSink(sink))
	if err != nil {
		log.Fatalf("bridge exited: %v", err)
	}
}

func sweep(ctx context.Context, dev *padlink.ExternalDevice) {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			phase := now.Sub(start).Seconds()
			dev.SetAxis(1, int(32767*math.Sin(phase)))
			dev.SetAxis(4, int(32767*math.Cos(phase)))
		}
	}
}

func fanoutWorker(name string, batches <-chan []padlink.TelemetryRecord) {
	for batch := range batches {
		fmt.Printf("[%s] %d records at %s\n", name, len(batch), time.Now().Format(time.RFC3339))
	}
}
