// Package config loads the sensor's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/sweeney/mailbox-sensor/internal/gpio"
	"github.com/sweeney/mailbox-sensor/internal/logic"
	"github.com/sweeney/mailbox-sensor/internal/mqtt"
	"github.com/sweeney/mailbox-sensor/internal/store"
)

// DefaultPath is where the config file is looked up when -config is not given.
const DefaultPath = "/etc/mailbox-sensor.yaml"

// Config is the main configuration structure.
type Config struct {
	// StateFile holds the retained state.
	StateFile string `yaml:"state_file"`

	MQTT   MQTTConfig   `yaml:"mqtt"`
	Sensor SensorConfig `yaml:"sensor"`
	Cycle  CycleConfig  `yaml:"cycle"`
}

// MQTTConfig holds broker connection settings.
type MQTTConfig struct {
	Broker         string        `yaml:"broker"`
	Username       string        `yaml:"username"`
	Password       string        `yaml:"password"`
	ClientID       string        `yaml:"client_id"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	MaxRetries     int           `yaml:"max_retries"`
	RetryBackoff   time.Duration `yaml:"retry_backoff"`
	PublishTimeout time.Duration `yaml:"publish_timeout"`
	Topics         mqtt.Topics   `yaml:"topics"`
	Messages       mqtt.Messages `yaml:"messages"`
}

// SensorConfig selects the reed switch line.
type SensorConfig struct {
	Backend     string `yaml:"backend"` // "gpiocdev" or "gpiomem"
	Chip        string `yaml:"chip"`
	Pin         int    `yaml:"pin"`
	Bias        string `yaml:"bias"` // "up", "down", "none"
	ClosedIsLow bool   `yaml:"closed_is_low"`
}

// CycleConfig holds the boot cycle tunables.
type CycleConfig struct {
	StuckThreshold  uint64        `yaml:"stuck_threshold"`
	SettleDelay     time.Duration `yaml:"settle_delay"`
	StuckInterval   time.Duration `yaml:"stuck_interval"`
	MaxOpenDuration time.Duration `yaml:"max_open_duration"`
	PollInterval    time.Duration `yaml:"poll_interval"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	th := logic.DefaultThresholds()
	return Config{
		StateFile: store.DefaultPath,
		MQTT: MQTTConfig{
			Broker:         "tcp://192.168.1.200:1883",
			ConnectTimeout: 5 * time.Second,
			MaxRetries:     3,
			RetryBackoff:   time.Second,
			PublishTimeout: 2 * time.Second,
			Topics:         mqtt.DefaultTopics(),
			Messages:       mqtt.DefaultMessages(),
		},
		Sensor: SensorConfig{
			Backend:     gpio.BackendCdev,
			Chip:        gpio.DefaultChip,
			Pin:         gpio.DefaultPin,
			Bias:        string(gpio.BiasPullUp),
			ClosedIsLow: true,
		},
		Cycle: CycleConfig{
			StuckThreshold:  th.StuckThreshold,
			SettleDelay:     th.SettleDelay,
			StuckInterval:   th.StuckInterval,
			MaxOpenDuration: th.MaxOpenDuration,
			PollInterval:    th.PollInterval,
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("config %s not found, using defaults", path)
		cfg := Default()
		cfg.fill()
		return cfg, cfg.Validate()
	}
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses YAML from r over the defaults and validates the result.
// Unknown keys are rejected.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.fill()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// fill supplies values that have no static default.
func (c *Config) fill() {
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = defaultClientID(c.Sensor.Pin)
	}
}

// defaultClientID derives a client id from the host name and sensor pin, so
// every boot of the same device presents the same id to the broker.
func defaultClientID(pin int) string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "localhost"
	}
	id := uuid.NewSHA1(uuid.NameSpaceDNS, []byte(fmt.Sprintf("%s/gpio%d", host, pin)))
	return "mailbox-sensor-" + id.String()[:8]
}

// Validate rejects configurations the cycle cannot run with.
func (c Config) Validate() error {
	var errs []error

	if c.StateFile == "" {
		errs = append(errs, errors.New("state_file is empty"))
	}
	if c.MQTT.Broker == "" {
		errs = append(errs, errors.New("mqtt.broker is empty"))
	}
	if c.MQTT.MaxRetries < 1 {
		errs = append(errs, fmt.Errorf("mqtt.max_retries must be at least 1, got %d", c.MQTT.MaxRetries))
	}
	for name, d := range map[string]time.Duration{
		"mqtt.connect_timeout":    c.MQTT.ConnectTimeout,
		"mqtt.publish_timeout":    c.MQTT.PublishTimeout,
		"cycle.stuck_interval":    c.Cycle.StuckInterval,
		"cycle.max_open_duration": c.Cycle.MaxOpenDuration,
		"cycle.poll_interval":     c.Cycle.PollInterval,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", name, d))
		}
	}
	if c.MQTT.RetryBackoff < 0 {
		errs = append(errs, fmt.Errorf("mqtt.retry_backoff must not be negative, got %v", c.MQTT.RetryBackoff))
	}
	if c.Cycle.SettleDelay < 0 {
		errs = append(errs, fmt.Errorf("cycle.settle_delay must not be negative, got %v", c.Cycle.SettleDelay))
	}
	if t := c.MQTT.Topics; t.State == "" || t.Status == "" || t.Diag == "" {
		errs = append(errs, errors.New("mqtt.topics must all be set"))
	}
	switch c.Sensor.Backend {
	case gpio.BackendCdev, gpio.BackendMem:
	default:
		errs = append(errs, fmt.Errorf("unknown sensor.backend %q", c.Sensor.Backend))
	}
	switch gpio.Bias(c.Sensor.Bias) {
	case gpio.BiasPullUp, gpio.BiasPullDown, gpio.BiasNone:
	default:
		errs = append(errs, fmt.Errorf("unknown sensor.bias %q", c.Sensor.Bias))
	}
	if c.Sensor.Pin < 0 {
		errs = append(errs, fmt.Errorf("sensor.pin must not be negative, got %d", c.Sensor.Pin))
	}

	return errors.Join(errs...)
}

// Thresholds returns the decision engine tunables.
func (c Config) Thresholds() logic.Thresholds {
	return logic.Thresholds{
		StuckThreshold:  c.Cycle.StuckThreshold,
		SettleDelay:     c.Cycle.SettleDelay,
		StuckInterval:   c.Cycle.StuckInterval,
		MaxOpenDuration: c.Cycle.MaxOpenDuration,
		PollInterval:    c.Cycle.PollInterval,
	}
}

// Publisher returns the MQTT connection settings.
func (c Config) Publisher() mqtt.Config {
	return mqtt.Config{
		Broker:         c.MQTT.Broker,
		ClientID:       c.MQTT.ClientID,
		Username:       c.MQTT.Username,
		Password:       c.MQTT.Password,
		ConnectTimeout: c.MQTT.ConnectTimeout,
		MaxRetries:     c.MQTT.MaxRetries,
		RetryBackoff:   c.MQTT.RetryBackoff,
		PublishTimeout: c.MQTT.PublishTimeout,
	}
}

// GPIO returns the sensor line settings.
func (c Config) GPIO() gpio.Config {
	return gpio.Config{
		Backend: c.Sensor.Backend,
		Chip:    c.Sensor.Chip,
		Pin:     c.Sensor.Pin,
		Bias:    gpio.Bias(c.Sensor.Bias),
	}
}

// Polarity returns the sensor's level mapping.
func (c Config) Polarity() gpio.Polarity {
	return gpio.Polarity{ClosedIsLow: c.Sensor.ClosedIsLow}
}
