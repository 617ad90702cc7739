package ha

import (
	"errors"
	"fmt"
)

// Transport is the message transport the node publishes and subscribes
// through. Publish and Subscribe complete synchronously from the node's
// point of view; acknowledgement, reconnection and retry are the
// transport's concern.
type Transport interface {
	Publish(topic string, payload []byte, retain bool) error
	Subscribe(topic string) error
}

// Logger defines the logging interface used by the Node.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Node is the set of entities exposed by one device over one transport.
// It routes connect events and inbound messages to its entities.
//
// A Node is not safe for concurrent use. All calls, including the ones
// that deliver transport events, must come from a single goroutine.
type Node struct {
	transport  Transport
	device     []byte
	topics     Topics
	sharedID   string
	components []Component
	logger     Logger
}

// Option configures a Node.
type Option func(*Node)

// WithTopics sets the topic builder, e.g. to use a custom discovery prefix.
func WithTopics(t Topics) Option {
	return func(n *Node) { n.topics = t }
}

// WithSharedAvailability publishes one availability topic for the whole
// device, <prefix>/<deviceID>/avty_t, instead of one per entity.
func WithSharedAvailability(deviceID string) Option {
	return func(n *Node) { n.sharedID = deviceID }
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l Logger) Option {
	return func(n *Node) {
		if l != nil {
			n.logger = l
		}
	}
}

// NewNode creates a node publishing through transport. device is the
// serialized device descriptor (see DeviceInfo.Serialize) embedded in
// every discovery payload.
func NewNode(transport Transport, device []byte, opts ...Option) *Node {
	n := &Node{
		transport: transport,
		device:    device,
		logger:    noopLogger{},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// SetTransport replaces the transport. It lets a transport whose callbacks
// reference the node be created after it; call it before the first connect.
func (n *Node) SetTransport(t Transport) { n.transport = t }

// SetLogger sets the logger for the node.
func (n *Node) SetLogger(logger Logger) {
	if logger != nil {
		n.logger = logger
	}
}

// Add attaches components in order. Inactive components are accepted and
// skipped on connect. A component already attached to another node is
// rejected with ErrAlreadyAttached; components before it stay attached.
func (n *Node) Add(components ...Component) error {
	for _, c := range components {
		en := c.base()
		switch en.node {
		case nil:
		case n:
			continue
		default:
			return fmt.Errorf("%w: %s/%s", ErrAlreadyAttached, en.kind, en.uniqueID)
		}
		en.node = n
		n.components = append(n.components, c)
	}
	return nil
}

// Components returns the attached components in registration order.
func (n *Node) Components() []Component { return n.components }

// Topics returns the topic builder.
func (n *Node) Topics() Topics { return n.topics }

// Device returns the serialized device descriptor.
func (n *Node) Device() []byte { return n.device }

// WillTopic returns the shared availability topic the transport should
// register as its last will, or "" when availability is per entity.
func (n *Node) WillTopic() string {
	if n.sharedID == "" {
		return ""
	}
	return n.topics.DeviceAvailability(n.sharedID)
}

// HandleConnected runs the connect sequence for every active component in
// registration order: publish the discovery config, publish availability
// "online", subscribe to the command topics, and, unless the entity is
// retained, republish every cached trait value.
//
// With shared availability "online" is published once, after the first
// config. A failing step is logged and the sequence continues; all
// failures are returned joined.
func (n *Node) HandleConnected() error {
	if n.transport == nil {
		n.logger.Warn("connect sequence skipped", "error", ErrNotAttached)
		return ErrNotAttached
	}
	var errs []error
	sharedOnline := false
	for _, c := range n.components {
		en := c.base()
		if !en.Active() {
			continue
		}
		if err := n.PublishConfig(c); err != nil {
			errs = append(errs, err)
		}
		if en.availability {
			if n.sharedID == "" {
				errs = append(errs, en.publish(en.AvailabilityTopic(), []byte(PayloadOnline), true))
			} else if !sharedOnline {
				errs = append(errs, n.publishShared(true))
				sharedOnline = true
			}
		}
		for _, k := range c.commandTraits() {
			topic := en.Topic(k.CommandSuffix())
			if err := n.transport.Subscribe(topic); err != nil {
				errs = append(errs, fmt.Errorf("%w: %s: %w", ErrSubscribeFailed, topic, err))
			}
		}
		if !en.retain {
			errs = append(errs, c.republish())
		}
	}
	err := errors.Join(errs...)
	if err != nil {
		n.logger.Warn("connect sequence incomplete", "error", err)
	} else {
		n.logger.Debug("connect sequence complete", "components", len(n.components))
	}
	return err
}

// HandleMessage routes an inbound message to the first component whose
// command topic matches and reports whether one did. Payloads that fail to
// decode are dropped without changing state.
func (n *Node) HandleMessage(topic string, payload []byte) bool {
	for _, c := range n.components {
		if !c.base().Active() {
			continue
		}
		if c.dispatch(topic, payload) {
			return true
		}
	}
	n.logger.Debug("message for unknown topic", "topic", topic)
	return false
}

// PublishConfig publishes the retained discovery payload of c to
// <prefix>/<kind>/<unique_id>/config. The payload buffer is sized from the
// length pass.
func (n *Node) PublishConfig(c Component) error {
	en := c.base()
	if en.node != n {
		return ErrNotAttached
	}
	size := en.CalculateLength(n.device)
	if size == 0 {
		_, err := en.Discovery(n.device)
		return err
	}
	buf := NewBuffer(size)
	if err := en.WriteSerializedData(buf, n.device); err != nil {
		return err
	}
	return en.publish(n.topics.Config(en.kind, en.uniqueID), buf.Bytes(), true)
}

// SetAvailable publishes "online" or "offline" for every active component
// that tracks availability, or once on the shared topic.
func (n *Node) SetAvailable(online bool) error {
	if n.sharedID != "" {
		return n.publishShared(online)
	}
	payload := []byte(PayloadOffline)
	if online {
		payload = []byte(PayloadOnline)
	}
	var errs []error
	for _, c := range n.components {
		en := c.base()
		if !en.Active() || !en.availability {
			continue
		}
		errs = append(errs, en.publish(en.AvailabilityTopic(), payload, true))
	}
	return errors.Join(errs...)
}

func (n *Node) publishShared(online bool) error {
	if n.transport == nil {
		return ErrNotAttached
	}
	topic := n.WillTopic()
	payload := PayloadOffline
	if online {
		payload = PayloadOnline
	}
	if err := n.transport.Publish(topic, []byte(payload), true); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPublishFailed, topic, err)
	}
	return nil
}
