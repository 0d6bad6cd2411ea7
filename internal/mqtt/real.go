package mqtt

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// Config holds broker connection settings.
type Config struct {
	Broker         string
	ClientID       string
	Username       string
	Password       string
	ConnectTimeout time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	PublishTimeout time.Duration
}

// disconnectQuiesce bounds the wait for in-flight work on Close, in ms.
const disconnectQuiesce = 250

// RealPublisher publishes to an actual MQTT broker.
//
// Connect and KeepAlive draw on one budget of MaxRetries connect attempts
// per process, so a boot cycle never dials the broker more often than that.
type RealPublisher struct {
	cfg       Config
	client    paho.Client
	attempts  int
	lastTry   time.Time
	reconnect paho.Token
}

// NewRealPublisher creates a publisher for the given broker. It does not
// connect; the boot cycle connects only when it has something to say.
func NewRealPublisher(cfg Config) *RealPublisher {
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetProtocolVersion(4).
		SetCleanSession(true).
		SetAutoReconnect(false).
		SetConnectRetry(false).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetKeepAlive(30 * time.Second).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("mqtt: connection lost: %v", err)
		})
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	paho.ERROR = log.New(os.Stderr, "[MQTT ERROR] ", log.LstdFlags)
	paho.CRITICAL = log.New(os.Stderr, "[MQTT CRIT] ", log.LstdFlags)
	paho.WARN = log.New(os.Stderr, "[MQTT WARN] ", log.LstdFlags)

	return &RealPublisher{
		cfg:    cfg,
		client: paho.NewClient(opts),
	}
}

// Connect spends what is left of the attempt budget, each attempt bounded by
// ConnectTimeout with RetryBackoff between attempts. A failed Connect leaves
// nothing for KeepAlive.
func (p *RealPublisher) Connect(ctx context.Context) error {
	if p.client.IsConnected() {
		return nil
	}

	var lastErr error
	for p.attempts < p.cfg.MaxRetries {
		if p.attempts > 0 {
			select {
			case <-ctx.Done():
				p.exhaust()
				return fmt.Errorf("%w: %v", ErrConnectTimeout, ctx.Err())
			case <-time.After(p.cfg.RetryBackoff):
			}
		}

		attempt := p.attempt()
		token := p.client.Connect()
		if !token.WaitTimeout(p.cfg.ConnectTimeout) {
			lastErr = fmt.Errorf("attempt %d: timeout after %v", attempt, p.cfg.ConnectTimeout)
		} else if err := token.Error(); err != nil {
			lastErr = fmt.Errorf("attempt %d: %w", attempt, err)
		} else {
			log.Printf("mqtt: connected to %s", p.cfg.Broker)
			return nil
		}
		log.Printf("mqtt: connect %v", lastErr)
	}

	p.exhaust()
	if lastErr == nil {
		lastErr = fmt.Errorf("no attempts left of %d", p.cfg.MaxRetries)
	}
	return fmt.Errorf("%w: %v", ErrConnectTimeout, lastErr)
}

func (p *RealPublisher) attempt() int {
	p.attempts++
	p.lastTry = time.Now()
	return p.attempts
}

func (p *RealPublisher) exhaust() {
	p.attempts = p.cfg.MaxRetries
}

// Publish sends payload at QoS 0, never retained.
func (p *RealPublisher) Publish(topic, payload string) error {
	if !p.client.IsConnected() {
		return ErrNotConnected
	}

	token := p.client.Publish(topic, 0, false, payload)
	if !token.WaitTimeout(p.cfg.PublishTimeout) {
		return ErrPublishTimeout
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// KeepAlive restarts a lost connection in the background from the shared
// attempt budget, at most once per RetryBackoff. It never waits; paho's own
// ping loop covers a healthy connection.
func (p *RealPublisher) KeepAlive() {
	if p.client.IsConnectionOpen() {
		return
	}
	if p.reconnect != nil {
		select {
		case <-p.reconnect.Done():
		default:
			return // still trying
		}
	}
	if p.attempts >= p.cfg.MaxRetries || time.Since(p.lastTry) < p.cfg.RetryBackoff {
		return
	}
	p.attempt()
	p.reconnect = p.client.Connect()
}

// IsConnected reports whether the connection is open.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	if p.client.IsConnected() {
		p.client.Disconnect(disconnectQuiesce)
	}
	return nil
}
