package mqtt

import (
	"fmt"
)

// Subscribe subscribes to topic at the configured QoS and delivers its
// messages to Hooks.OnMessage.
//
// Subscriptions do not survive a reconnect (clean session); the owner of
// the client resubscribes from its OnConnect hook.
func (c *Client) Subscribe(topic string) error {
	if c.hooks.OnMessage == nil {
		return fmt.Errorf("%w: no message hook installed", ErrSubscribeFailed)
	}
	return c.SubscribeWithHandler(topic, c.qos, c.hooks.OnMessage)
}

// SubscribeWithHandler registers handler for messages on topic.
//
// Topics can include MQTT wildcards:
//   - + (single-level): "homeassistant/+/garage_light/cmd_t"
//   - # (multi-level): "homeassistant/#"
//
// The handler runs on a paho goroutine and should not block.
func (c *Client) SubscribeWithHandler(topic string, qos byte, handler MessageHandler) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if handler == nil {
		return fmt.Errorf("%w: handler cannot be nil", ErrSubscribeFailed)
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Subscribe(topic, qos, c.wrapHandler(handler))
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: %w after %v", ErrSubscribeFailed, ErrTimeout, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrSubscribeFailed, err)
	}

	c.subMu.Lock()
	c.subscriptions[topic] = struct{}{}
	c.subMu.Unlock()

	return nil
}

// SubscriptionCount returns the number of subscriptions since the last connect.
func (c *Client) SubscriptionCount() int {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	return len(c.subscriptions)
}

// HasSubscription checks if a subscription exists for the given topic.
//
// Note: This checks only the exact topic string, not pattern matching.
func (c *Client) HasSubscription(topic string) bool {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	_, exists := c.subscriptions[topic]
	return exists
}
