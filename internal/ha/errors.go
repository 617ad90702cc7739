package ha

import "errors"

// Domain errors for the ha package.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrInactiveEntity is returned by every publishing operation of an
	// entity constructed with an empty unique id. The condition is permanent.
	ErrInactiveEntity = errors.New("ha: entity has no unique id")

	// ErrInvalidAddressing is returned when a topic cannot be derived.
	ErrInvalidAddressing = errors.New("ha: invalid topic addressing")

	// ErrMalformedPayload is returned when an inbound command payload cannot
	// be decoded for its trait.
	ErrMalformedPayload = errors.New("ha: malformed command payload")

	// ErrPublishFailed wraps a failure reported by the transport.
	ErrPublishFailed = errors.New("ha: publish failed")

	// ErrSubscribeFailed wraps a subscribe failure reported by the transport.
	ErrSubscribeFailed = errors.New("ha: subscribe failed")

	// ErrBufferOverflow is returned when a write would exceed a Buffer's capacity.
	ErrBufferOverflow = errors.New("ha: buffer capacity exceeded")

	// ErrNoDevice is returned when a discovery payload is requested without
	// a device descriptor fragment.
	ErrNoDevice = errors.New("ha: device descriptor missing")

	// ErrNotAttached is returned when an entity publishes before being added
	// to a Node, or before the Node has a transport.
	ErrNotAttached = errors.New("ha: entity not attached to a node")

	// ErrAlreadyAttached is returned when an entity is added to a second Node.
	ErrAlreadyAttached = errors.New("ha: entity already attached to a node")

	// ErrEmptyTag is returned when a tag scanner is asked to publish an empty tag.
	ErrEmptyTag = errors.New("ha: tag value is empty")
)
