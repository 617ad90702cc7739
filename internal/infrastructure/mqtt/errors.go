package mqtt

import (
	"errors"
	"fmt"
)

// Transport errors, shared by this package and mqttv5 so callers check one
// set with errors.Is whichever protocol version is configured.
var (
	ErrNotConnected     = errors.New("mqtt: client not connected")
	ErrConnectionFailed = errors.New("mqtt: connection failed")
	ErrPublishFailed    = errors.New("mqtt: publish failed")
	ErrSubscribeFailed  = errors.New("mqtt: subscribe failed")

	// ErrInvalidQoS is returned for QoS levels other than 0, 1 or 2.
	ErrInvalidQoS = errors.New("mqtt: invalid QoS level (must be 0, 1, or 2)")

	ErrInvalidTopic = errors.New("mqtt: topic cannot be empty")

	// ErrPayloadTooLarge wraps into ErrPublishFailed.
	ErrPayloadTooLarge = errors.New("mqtt: payload too large")

	// ErrTimeout is wrapped into ErrPublishFailed or ErrSubscribeFailed when
	// the broker does not acknowledge in time.
	ErrTimeout = errors.New("mqtt: operation timed out")
)

// MaxPayloadSize is the largest payload either client publishes (1MB).
const MaxPayloadSize = 1 << 20

// ValidatePublish checks the arguments of a publish before it reaches the
// network.
func ValidatePublish(topic string, payload []byte, qos byte) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > MaxPayloadSize {
		return fmt.Errorf("%w: %w: %d bytes exceeds %d", ErrPublishFailed, ErrPayloadTooLarge, len(payload), MaxPayloadSize)
	}
	return nil
}
