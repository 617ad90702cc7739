package ha

import (
	"errors"
	"fmt"
)

// Component is implemented by every entity kind in this package.
// The unexported methods keep the set of kinds closed.
type Component interface {
	UniqueID() string
	Kind() string

	base() *Entity

	// commandTraits lists the traits whose command topics are subscribed on connect.
	commandTraits() []TraitKind

	// republish publishes the cached value of every trait unconditionally.
	republish() error

	// dispatch decodes an inbound message addressed to one of the
	// command topics and reports whether the topic belonged to this entity.
	dispatch(topic string, payload []byte) bool
}

// Entity holds the identity and discovery metadata shared by all entity
// kinds. It is embedded by Light, Switch, Sensor, BinarySensor and TagScanner.
//
// An Entity constructed with an empty unique id is permanently inactive:
// serialization returns 0 and every publish fails with ErrInactiveEntity.
type Entity struct {
	kind     string
	uniqueID string
	name     string
	icon     string
	retain   bool

	// availability is false for kinds Home Assistant tracks without an
	// availability topic (tag scanners).
	availability bool

	node *Node
	body func(e *emitter)
}

func newEntity(kind, uniqueID string) Entity {
	return Entity{
		kind:         kind,
		uniqueID:     uniqueID,
		availability: true,
	}
}

// UniqueID returns the immutable unique id.
func (en *Entity) UniqueID() string { return en.uniqueID }

// Kind returns the component kind, e.g. "light".
func (en *Entity) Kind() string { return en.kind }

// Active reports whether the entity has a unique id.
func (en *Entity) Active() bool { return en.uniqueID != "" }

// Name returns the display name.
func (en *Entity) Name() string { return en.name }

// SetName sets the display name. Call before the first connection.
func (en *Entity) SetName(name string) { en.name = name }

// Icon returns the icon reference.
func (en *Entity) Icon() string { return en.icon }

// SetIcon sets the icon, e.g. "mdi:lightbulb". Empty removes the field.
func (en *Entity) SetIcon(icon string) { en.icon = icon }

// Retain reports whether Home Assistant is asked to retain commands.
func (en *Entity) Retain() bool { return en.retain }

// SetRetain sets the retain flag. When set, Home Assistant publishes
// commands retained and the entity does not republish its cached state on
// reconnect; the broker is trusted to hold the last values.
func (en *Entity) SetRetain(retain bool) { en.retain = retain }

func (en *Entity) base() *Entity { return en }

func (en *Entity) topics() Topics {
	if en.node != nil {
		return en.node.topics
	}
	return Topics{}
}

// Topic returns the entity's topic for suffix, or "" if inactive.
func (en *Entity) Topic(suffix string) string {
	return en.topics().String(en.kind, en.uniqueID, suffix)
}

// AvailabilityTopic returns the topic availability is published to: the
// node's shared topic when shared availability is enabled, otherwise the
// entity's own. It returns "" for entities without availability.
func (en *Entity) AvailabilityTopic() string {
	if !en.availability {
		return ""
	}
	if en.node != nil && en.node.sharedID != "" {
		return en.node.topics.DeviceAvailability(en.node.sharedID)
	}
	return en.Topic(SuffixAvailability)
}

// matches reports whether topic is the command topic of trait k.
func (en *Entity) matches(topic string, k TraitKind) bool {
	suffix := k.CommandSuffix()
	if suffix == "" {
		return false
	}
	return en.topics().Match(topic, en.kind, en.uniqueID, suffix)
}

func (en *Entity) publishState(k TraitKind, payload []byte) error {
	topic := en.Topic(k.StateSuffix())
	if topic == "" {
		return ErrInvalidAddressing
	}
	return en.publish(topic, payload, true)
}

func (en *Entity) publish(topic string, payload []byte, retain bool) error {
	if en.uniqueID == "" {
		return ErrInactiveEntity
	}
	if en.node == nil || en.node.transport == nil {
		return ErrNotAttached
	}
	if err := en.node.transport.Publish(topic, payload, retain); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPublishFailed, topic, err)
	}
	return nil
}

// logCommandError reports an inbound command that did not change state.
// Malformed payloads are expected noise and logged at debug level.
func (en *Entity) logCommandError(k TraitKind, err error) {
	if en.node == nil || err == nil {
		return
	}
	if errors.Is(err, ErrMalformedPayload) {
		en.node.logger.Debug("command payload dropped",
			"unique_id", en.uniqueID,
			"trait", k.String(),
			"error", err,
		)
		return
	}
	en.node.logger.Warn("command not applied",
		"unique_id", en.uniqueID,
		"trait", k.String(),
		"error", err,
	)
}
