package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/ghalamif/padlink"
)

func main() {
	flow, err := padlink.Conf("../../padlink.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	callback := func(batch []padlink.TelemetryRecord) error {
		for _, r := range batch {
			fmt.Printf("%s accel=%+v gyro=%+v rpy=%+v\n",
				r.ReceivedAt.Format(time.RFC3339Nano),
				r.Accel,
				r.Gyro,
				r.Orientation,
			)
		}
		return nil
	}

	if err := flow.Run(ctx, padlink.StreamOutCallback("stdout", callback)); err != nil {
		log.Fatalf("bridge exited: %v", err)
	}
}
