package mqtt

import (
	"context"
	"fmt"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/gray-logic-node/internal/infrastructure/config"
)

// Client wraps paho.mqtt.golang as the MQTT 3.1.1 transport of a node.
//
// Publish and Subscribe match ha.Transport. Inbound messages and connection
// events are delivered through Hooks, installed before the first connect
// so no event is missed.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//   - Hooks run on paho goroutines and must not block.
type Client struct {
	client  pahomqtt.Client
	options *pahomqtt.ClientOptions
	cfg     config.MQTTConfig
	qos     byte
	hooks   Hooks

	// subscriptions tracks topics subscribed since the last connect.
	subscriptions map[string]struct{}
	subMu         sync.RWMutex

	connected bool
	connMu    sync.RWMutex

	logger   Logger
	loggerMu sync.RWMutex
}

// Hooks are the callbacks a Client delivers events through. Any may be nil.
type Hooks struct {
	// OnConnect runs after every successful connect, including reconnects.
	OnConnect func()

	// OnConnectionLost runs when an established connection drops.
	OnConnectionLost func(err error)

	// OnMessage receives every message on topics subscribed with Subscribe.
	OnMessage MessageHandler
}

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// MessageHandler is the callback signature for received messages.
//
// Parameters:
//   - topic: The topic the message was received on
//   - payload: The raw message payload
//
// Returns:
//   - error: Logged but does not affect message acknowledgment
type MessageHandler func(topic string, payload []byte) error

// NewClient prepares a client without connecting.
//
// Parameters:
//   - cfg: MQTT configuration from config.yaml
//   - will: Optional Last Will and Testament (nil for none)
//   - hooks: Event callbacks
func NewClient(cfg config.MQTTConfig, will *Will, hooks Hooks) *Client {
	opts := buildClientOptions(cfg)
	qos := byte(cfg.QoS)
	configureWill(opts, will, qos)

	c := &Client{
		cfg:           cfg,
		options:       opts,
		qos:           qos,
		hooks:         hooks,
		subscriptions: make(map[string]struct{}),
	}

	opts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		c.handleConnect()
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		c.handleDisconnect(err)
	})
	opts.SetReconnectingHandler(func(_ pahomqtt.Client, _ *pahomqtt.ClientOptions) {
		if logger := c.getLogger(); logger != nil {
			logger.Info("MQTT reconnecting", "broker", BrokerURL(cfg))
		}
	})

	c.client = pahomqtt.NewClient(opts)
	return c
}

// Connect starts connecting to the broker and waits until the first
// connection is up, ctx is done, or the connect timeout expires.
//
// The client keeps retrying in the background after a timeout; Hooks.OnConnect
// fires once it succeeds.
func (c *Client) Connect(ctx context.Context) error {
	token := c.client.Connect()

	timer := time.NewTimer(defaultConnectTimeout)
	defer timer.Stop()

	select {
	case <-token.Done():
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrConnectionFailed, ctx.Err())
	case <-timer.C:
		return fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	c.connMu.Lock()
	c.connected = true
	c.connMu.Unlock()

	return nil
}

// handleConnect is called when the connection is established.
func (c *Client) handleConnect() {
	c.connMu.Lock()
	c.connected = true
	c.connMu.Unlock()

	// Clean sessions start without subscriptions.
	c.subMu.Lock()
	clear(c.subscriptions)
	c.subMu.Unlock()

	if logger := c.getLogger(); logger != nil {
		logger.Info("MQTT connected", "broker", BrokerURL(c.cfg), "client_id", c.cfg.Broker.ClientID)
	}
	if c.hooks.OnConnect != nil {
		c.hooks.OnConnect()
	}
}

// handleDisconnect is called when the connection is lost.
func (c *Client) handleDisconnect(err error) {
	c.connMu.Lock()
	c.connected = false
	c.connMu.Unlock()

	if logger := c.getLogger(); logger != nil {
		logger.Warn("MQTT connection lost", "error", err)
	}
	if c.hooks.OnConnectionLost != nil {
		c.hooks.OnConnectionLost(err)
	}
}

// Close disconnects from the broker after a quiesce period for pending
// operations. The will is not published on a graceful disconnect, so
// callers publish offline availability first.
//
// Returns:
//   - error: Always nil (connection already closed is not an error)
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}

	c.client.Disconnect(defaultDisconnectQuiesce)

	c.connMu.Lock()
	c.connected = false
	c.connMu.Unlock()

	return nil
}

// HealthCheck verifies the MQTT connection is alive.
func (c *Client) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("mqtt health check: %w", ctx.Err())
	default:
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	return nil
}

// IsConnected returns the current connection state.
func (c *Client) IsConnected() bool {
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.connected && c.client != nil && c.client.IsConnected()
}

// SetLogger sets a logger for connection events and handler failures.
// If not set, they are silently ignored.
func (c *Client) SetLogger(logger Logger) {
	c.loggerMu.Lock()
	c.logger = logger
	c.loggerMu.Unlock()
}

// getLogger returns the current logger (may be nil).
func (c *Client) getLogger() Logger {
	c.loggerMu.RLock()
	defer c.loggerMu.RUnlock()
	return c.logger
}

// wrapHandler wraps a MessageHandler with panic recovery and optional logging.
func (c *Client) wrapHandler(handler MessageHandler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		defer func() {
			if r := recover(); r != nil {
				if logger := c.getLogger(); logger != nil {
					logger.Error("MQTT handler panic recovered",
						"topic", msg.Topic(),
						"panic", r,
					)
				}
			}
		}()

		if err := handler(msg.Topic(), msg.Payload()); err != nil {
			if logger := c.getLogger(); logger != nil {
				logger.Warn("MQTT handler returned error",
					"topic", msg.Topic(),
					"error", err,
				)
			}
		}
	}
}
