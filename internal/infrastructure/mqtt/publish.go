package mqtt

import (
	"fmt"
)

// Publish sends payload to topic at the configured QoS. It blocks until the
// broker acknowledges or the publish timeout expires.
//
// Retained Messages:
//   - Discovery configs, availability and entity state are retained
//   - Tag scans are not
func (c *Client) Publish(topic string, payload []byte, retained bool) error {
	return c.PublishQoS(topic, payload, c.qos, retained)
}

// PublishQoS sends payload to topic at an explicit QoS level.
//
// QoS Levels:
//   - 0: At most once (fire and forget)
//   - 1: At least once (guaranteed delivery, may duplicate)
//   - 2: Exactly once (guaranteed, no duplicates, higher overhead)
//
// Returns:
//   - error: nil on success, or wrapped error describing the failure
func (c *Client) PublishQoS(topic string, payload []byte, qos byte, retained bool) error {
	if err := ValidatePublish(topic, payload, qos); err != nil {
		return err
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: %w after %v", ErrPublishFailed, ErrTimeout, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}
