package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/ghalamif/padlink"
)

func main() {
	flow, err := padlink.Conf("../../padlink.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := flow.Run(ctx); err != nil {
		log.Fatalf("bridge exited: %v", err)
	}
}
