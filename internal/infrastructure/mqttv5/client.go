package mqttv5

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/eclipse/paho.golang/autopaho"
	"github.com/eclipse/paho.golang/paho"

	"github.com/nerrad567/gray-logic-node/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-node/internal/infrastructure/mqtt"
)

const (
	defaultConnectTimeout    = 10 * time.Second
	defaultPublishTimeout    = 5 * time.Second
	defaultDisconnectTimeout = 2 * time.Second
	defaultKeepAlive         = 60
)

// Client is an MQTT 5 transport backed by an autopaho ConnectionManager.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//   - Hooks run on autopaho goroutines and must not block.
type Client struct {
	cfg     config.MQTTConfig
	qos     byte
	hooks   mqtt.Hooks
	pahoCfg autopaho.ClientConfig

	cm     *autopaho.ConnectionManager
	cancel context.CancelFunc

	connected bool
	closed    bool
	connMu    sync.RWMutex

	logger   mqtt.Logger
	loggerMu sync.RWMutex
}

// NewClient prepares a client without connecting.
//
// Parameters:
//   - cfg: MQTT configuration from config.yaml
//   - will: Optional Last Will and Testament (nil for none)
//   - hooks: Event callbacks
//
// Returns:
//   - error: If the broker URL cannot be parsed
func NewClient(cfg config.MQTTConfig, will *mqtt.Will, hooks mqtt.Hooks) (*Client, error) {
	c := &Client{
		cfg:   cfg,
		qos:   byte(cfg.QoS),
		hooks: hooks,
	}
	pahoCfg, err := c.buildConfig(will)
	if err != nil {
		return nil, err
	}
	c.pahoCfg = pahoCfg
	return c, nil
}

// buildConfig creates the autopaho configuration from node config.
func (c *Client) buildConfig(will *mqtt.Will) (autopaho.ClientConfig, error) {
	brokerURL, err := url.Parse(mqtt.BrokerURL(c.cfg))
	if err != nil {
		return autopaho.ClientConfig{}, fmt.Errorf("%w: parse broker URL: %w", mqtt.ErrConnectionFailed, err)
	}

	keepAlive := c.cfg.KeepAlive
	if keepAlive <= 0 {
		keepAlive = defaultKeepAlive
	}

	pahoCfg := autopaho.ClientConfig{
		ServerUrls:                    []*url.URL{brokerURL},
		KeepAlive:                     uint16(keepAlive),
		CleanStartOnInitialConnection: true,
		ConnectTimeout:                defaultConnectTimeout,
		OnConnectionUp: func(cm *autopaho.ConnectionManager, _ *paho.Connack) {
			c.handleConnect(cm)
		},
		OnConnectError: func(err error) {
			if logger := c.getLogger(); logger != nil {
				logger.Warn("MQTT connection error", "broker", brokerURL.String(), "error", err)
			}
		},
		ClientConfig: paho.ClientConfig{
			ClientID: c.cfg.Broker.ClientID,
			OnPublishReceived: []func(paho.PublishReceived) (bool, error){
				c.handlePublish,
			},
			OnClientError: func(err error) {
				c.handleDisconnect(err)
			},
			OnServerDisconnect: func(d *paho.Disconnect) {
				c.handleDisconnect(fmt.Errorf("server disconnect, reason code %d", d.ReasonCode))
			},
		},
	}

	if c.cfg.Auth.Username != "" {
		pahoCfg.ConnectUsername = c.cfg.Auth.Username
		pahoCfg.ConnectPassword = []byte(c.cfg.Auth.Password)
	}

	if will != nil && will.Topic != "" {
		pahoCfg.WillMessage = &paho.WillMessage{
			Topic:   will.Topic,
			Payload: will.Payload,
			QoS:     c.qos,
			Retain:  true,
		}
	}

	if c.cfg.Broker.TLS {
		pahoCfg.TlsCfg = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}

	return pahoCfg, nil
}

// Connect starts the connection manager and waits for the first
// connection until ctx is done or the connect timeout expires. The manager
// keeps retrying in the background after a timeout.
func (c *Client) Connect(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(context.Background())
	cm, err := autopaho.NewConnection(runCtx, c.pahoCfg)
	if err != nil {
		cancel()
		return fmt.Errorf("%w: %w", mqtt.ErrConnectionFailed, err)
	}
	c.connMu.Lock()
	if c.closed {
		c.connMu.Unlock()
		cancel()
		return mqtt.ErrNotConnected
	}
	c.cm = cm
	c.cancel = cancel
	c.connMu.Unlock()

	waitCtx, waitCancel := context.WithTimeout(ctx, defaultConnectTimeout)
	defer waitCancel()
	if err := cm.AwaitConnection(waitCtx); err != nil {
		return fmt.Errorf("%w: %w", mqtt.ErrConnectionFailed, err)
	}
	return nil
}

// handleConnect records cm before running the hook. The first connection
// can come up before NewConnection returns to Connect, and the hook's
// publishes need the manager.
func (c *Client) handleConnect(cm *autopaho.ConnectionManager) {
	c.connMu.Lock()
	if c.closed {
		c.connMu.Unlock()
		return
	}
	if cm != nil {
		c.cm = cm
	}
	c.connected = true
	c.connMu.Unlock()

	if logger := c.getLogger(); logger != nil {
		logger.Info("MQTT connected", "broker", mqtt.BrokerURL(c.cfg), "client_id", c.cfg.Broker.ClientID, "protocol", 5)
	}
	if c.hooks.OnConnect != nil {
		c.hooks.OnConnect()
	}
}

func (c *Client) handleDisconnect(err error) {
	c.connMu.Lock()
	wasConnected := c.connected
	c.connected = false
	c.connMu.Unlock()

	if !wasConnected {
		return
	}
	if logger := c.getLogger(); logger != nil {
		logger.Warn("MQTT connection lost", "error", err)
	}
	if c.hooks.OnConnectionLost != nil {
		c.hooks.OnConnectionLost(err)
	}
}

// handlePublish delivers an inbound message to Hooks.OnMessage with panic
// recovery. Every message is reported as handled.
func (c *Client) handlePublish(pr paho.PublishReceived) (bool, error) {
	if c.hooks.OnMessage == nil || pr.Packet == nil {
		return false, nil
	}
	topic := pr.Packet.Topic

	defer func() {
		if r := recover(); r != nil {
			if logger := c.getLogger(); logger != nil {
				logger.Error("MQTT handler panic recovered", "topic", topic, "panic", r)
			}
		}
	}()

	if err := c.hooks.OnMessage(topic, pr.Packet.Payload); err != nil {
		if logger := c.getLogger(); logger != nil {
			logger.Warn("MQTT handler returned error", "topic", topic, "error", err)
		}
	}
	return true, nil
}

func (c *Client) manager() *autopaho.ConnectionManager {
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	if !c.connected {
		return nil
	}
	return c.cm
}

// Publish sends payload to topic at the configured QoS.
func (c *Client) Publish(topic string, payload []byte, retained bool) error {
	return c.PublishQoS(topic, payload, c.qos, retained)
}

// PublishQoS sends payload to topic at an explicit QoS level and waits for
// the acknowledgement up to the publish timeout.
func (c *Client) PublishQoS(topic string, payload []byte, qos byte, retained bool) error {
	if err := mqtt.ValidatePublish(topic, payload, qos); err != nil {
		return err
	}

	cm := c.manager()
	if cm == nil {
		return mqtt.ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultPublishTimeout)
	defer cancel()
	if _, err := cm.Publish(ctx, &paho.Publish{
		Topic:   topic,
		Payload: payload,
		QoS:     qos,
		Retain:  retained,
	}); err != nil {
		return fmt.Errorf("%w: %w", mqtt.ErrPublishFailed, err)
	}
	return nil
}

// Subscribe subscribes to topic at the configured QoS. Messages are
// delivered to Hooks.OnMessage.
func (c *Client) Subscribe(topic string) error {
	if topic == "" {
		return mqtt.ErrInvalidTopic
	}
	if c.hooks.OnMessage == nil {
		return fmt.Errorf("%w: no message hook installed", mqtt.ErrSubscribeFailed)
	}

	cm := c.manager()
	if cm == nil {
		return mqtt.ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultPublishTimeout)
	defer cancel()
	if _, err := cm.Subscribe(ctx, &paho.Subscribe{
		Subscriptions: []paho.SubscribeOptions{{Topic: topic, QoS: c.qos}},
	}); err != nil {
		return fmt.Errorf("%w: %w", mqtt.ErrSubscribeFailed, err)
	}
	return nil
}

// Close disconnects and stops the connection manager.
func (c *Client) Close() error {
	c.connMu.Lock()
	cm, cancel := c.cm, c.cancel
	c.cm, c.cancel = nil, nil
	c.connected = false
	c.closed = true
	c.connMu.Unlock()

	if cancel != nil {
		defer cancel()
	}
	if cm == nil {
		return nil
	}

	ctx, done := context.WithTimeout(context.Background(), defaultDisconnectTimeout)
	defer done()
	if err := cm.Disconnect(ctx); err != nil {
		return fmt.Errorf("mqtt disconnect: %w", err)
	}
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
		return mqtt.ErrNotConnected
	}
	return nil
}

// IsConnected returns the current connection state.
func (c *Client) IsConnected() bool {
	return c.manager() != nil
}

// SetLogger sets a logger for connection events and handler failures.
func (c *Client) SetLogger(logger mqtt.Logger) {
	c.loggerMu.Lock()
	c.logger = logger
	c.loggerMu.Unlock()
}

func (c *Client) getLogger() mqtt.Logger {
	c.loggerMu.RLock()
	defer c.loggerMu.RUnlock()
	return c.logger
}
