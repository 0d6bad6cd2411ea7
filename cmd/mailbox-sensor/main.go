// Command mailbox-sensor reports mailbox lid transitions over MQTT, one boot
// cycle per wake, and suspends between cycles.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sweeney/mailbox-sensor/internal/config"
	"github.com/sweeney/mailbox-sensor/internal/cycle"
	"github.com/sweeney/mailbox-sensor/internal/gpio"
	"github.com/sweeney/mailbox-sensor/internal/logic"
	"github.com/sweeney/mailbox-sensor/internal/mqtt"
	"github.com/sweeney/mailbox-sensor/internal/sleep"
	"github.com/sweeney/mailbox-sensor/internal/status"
	"github.com/sweeney/mailbox-sensor/internal/store"
)

func main() {
	cfgPath := flag.String("config", config.DefaultPath, "Config file")
	printState := flag.Bool("print-state", false, "Print door and retained state and exit")
	resetState := flag.Bool("reset-state", false, "Reset retained state to cold start and exit")

	flag.Parse()

	if err := run(*cfgPath, *printState, *resetState); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfgPath string, printState, resetState bool) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	st := store.NewFileStore(cfg.StateFile)

	if resetState {
		return resetRetained(st)
	}

	reader, err := gpio.Open(cfg.GPIO())
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer reader.Close()

	if printState {
		return printStates(os.Stdout, gpio.NewSensor(reader, cfg.Polarity()), st)
	}

	waiter, ok := reader.(gpio.LevelWaiter)
	if !ok {
		return fmt.Errorf("gpio backend %q cannot wait for edges", cfg.Sensor.Backend)
	}

	publisher := mqtt.NewRealPublisher(cfg.Publisher())
	sleeper := sleep.New(waiter, publisher, reader)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = runCycle(ctx, cfg, reader, publisher, st, sleeper, cycle.RealClock{})
	if ctx.Err() != nil {
		log.Printf("received signal, shutting down")
		return nil
	}
	return err
}

// runCycle wires one boot cycle and runs it. It returns only if the
// suspend at the end of the cycle fails.
func runCycle(ctx context.Context, cfg config.Config, reader gpio.Reader, publisher mqtt.Publisher, st store.Store, sleeper sleep.Sleeper, clock cycle.Clock) error {
	c := cycle.New(cycle.Config{
		Thresholds: cfg.Thresholds(),
		Topics:     cfg.MQTT.Topics,
		Messages:   cfg.MQTT.Messages,
		Network:    readNetworkInfo(),
	}, st, gpio.NewSensor(reader, cfg.Polarity()), publisher, sleeper, clock)

	return c.Run(ctx)
}

func printStates(w io.Writer, sensor *gpio.Sensor, st store.Store) error {
	door, err := sensor.Sample()
	if err != nil {
		return fmt.Errorf("read gpio: %w", err)
	}
	state, err := st.Load()
	if err != nil {
		return fmt.Errorf("load retained state: %w", err)
	}
	fmt.Fprintf(w, "door: %s\n", door)
	fmt.Fprintf(w, "retained: last=%s boots=%d stuck=%d awake=%v\n",
		state.LastDoorState, state.BootCount, state.StuckBootCount, state.TimeAwake)
	return nil
}

func resetRetained(st store.Store) error {
	if err := st.Commit(logic.ColdStart()); err != nil {
		return fmt.Errorf("reset retained state: %w", err)
	}
	log.Printf("retained state reset")
	return nil
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

