package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ghalamif/padlink"
	"github.com/ghalamif/padlink/internal/adapters/serial"
)

const defaultConfigPath = "./padlink.yaml"

const banner = `
 ┌─┐┌─┐┌┬┐┬  ┬┌┐┌┬┌─
 ├─┘├─┤ │││  ││││├┴┐
 ┴  ┴ ┴─┴┘┴─┘┴┘└┘┴ ┴  gamepad → serial bridge`

func main() {
	if os.Getenv("NO_COLOR") == "" {
		fmt.Print("\033[36m" + banner + "\033[0m\n\n")
	} else {
		fmt.Print(banner + "\n\n")
	}
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	var err error

	switch cmd {
	case "run":
		err = runCommand(os.Args[2:])
	case "validate":
		err = validateCommand(os.Args[2:])
	case "ports":
		err = portsCommand(os.Args[2:])
	case "stats":
		err = statsCommand(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		printUsage()
		err = fmt.Errorf("unknown command %q", cmd)
	}

	if err != nil {
		log.Fatalf("padlink %s: %v", cmd, err)
	}
}

func loadConfig(path string) (*padlink.Config, error) {
	cfg, err := padlink.LoadConfig(path)
	if errors.Is(err, os.ErrNotExist) && path == defaultConfigPath {
		return padlink.DefaultConfig(), nil
	}
	return cfg, err
}

func runCommand(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfgPath := fs.String("config", defaultConfigPath, "Path to bridge configuration file")
	port := fs.String("port", "", "Serial port, overrides the config (prompted when both are empty)")
	noDisplay := fs.Bool("no-display", false, "Disable the console status line")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *port != "" {
		cfg.Serial.Port = *port
	}
	if *noDisplay {
		cfg.Display.Disabled = true
	}

	flow, err := padlink.ConfFromConfig(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return flow.Run(ctx)
}

func validateCommand(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	cfgPath := fs.String("config", defaultConfigPath, "Path to configuration file to validate")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := padlink.LoadConfig(*cfgPath); err != nil {
		return err
	}
	fmt.Printf("config %s looks good ✅\n", *cfgPath)
	return nil
}

func portsCommand(args []string) error {
	fs := flag.NewFlagSet("ports", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	list, err := serial.ListPorts()
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("no serial port detected")
		return nil
	}
	for i, p := range list {
		fmt.Printf("[%d] %s (%s)\n", i, p.ID, p.Description)
	}
	return nil
}

func statsCommand(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	url := fs.String("url", "http://localhost:9100/metrics", "Prometheus metrics endpoint")
	interval := fs.Duration("interval", 2*time.Second, "Refresh interval")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	fmt.Printf("Streaming metrics from %s (Ctrl+C to stop)\n", *url)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := printMetricsSnapshot(*url); err != nil {
				fmt.Fprintf(os.Stderr, "stats error: %v\n", err)
			}
		}
	}
}

var statsTargets = []string{
	"padlink_frames_sent_total",
	"padlink_aux_frames_sent_total",
	"padlink_write_timeouts_total",
	"padlink_telemetry_records_total",
	"padlink_aux_queue_length",
}

func printMetricsSnapshot(url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	values := make(map[string]float64, len(statsTargets))
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		for _, key := range statsTargets {
			if strings.HasPrefix(line, key+" ") {
				var value float64
				if _, err := fmt.Sscanf(line, key+" %g", &value); err == nil {
					values[key] = value
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	fmt.Printf("[%s] frames=%.0f aux=%.0f timeouts=%.0f telemetry=%.0f aux_queue=%.0f\n",
		time.Now().Format(time.RFC3339),
		values["padlink_frames_sent_total"],
		values["padlink_aux_frames_sent_total"],
		values["padlink_write_timeouts_total"],
		values["padlink_telemetry_records_total"],
		values["padlink_aux_queue_length"],
	)
	return nil
}

func printUsage() {
	fmt.Printf(`padlink CLI

Usage:
  padlink <command> [flags]

Commands:
  run        Start the bridge using the provided config
  validate   Load and validate a config file without opening any device
  ports      List the serial ports the OS exposes
  stats      Poll the Prometheus metrics endpoint and print live counters

Examples:
  padlink run -config ./padlink.yaml -port /dev/ttyUSB0
  padlink validate -config ./padlink.yaml
  padlink ports
  padlink stats -url http://localhost:9100/metrics -interval 1s
`)
}
