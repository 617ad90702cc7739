package ha

import "strings"

// DefaultPrefix is the discovery prefix Home Assistant listens on.
const DefaultPrefix = "homeassistant"

// Topic suffixes shared by every entity kind. Suffixes are kept short
// because they are repeated in every discovery payload.
const (
	SuffixConfig       = "config"
	SuffixAvailability = "avty_t"
)

// Topics derives fully-qualified topic strings of the form
//
//	<prefix>/<kind>/<unique_id>/<suffix>
//
// Derivation is a pure function of its inputs. No escaping is performed:
// unique ids and suffixes must already be valid topic levels.
//
// The zero value uses DefaultPrefix.
type Topics struct {
	Prefix string
}

func (t Topics) prefix() string {
	if t.Prefix == "" {
		return DefaultPrefix
	}
	return t.Prefix
}

// emit writes the topic into s. It writes nothing and returns
// ErrInvalidAddressing when any part is empty.
func (t Topics) emit(s sink, kind, uniqueID, suffix string) error {
	if kind == "" || uniqueID == "" || suffix == "" {
		return ErrInvalidAddressing
	}
	s.writeString(t.prefix())
	s.writeByte('/')
	s.writeString(kind)
	s.writeByte('/')
	s.writeString(uniqueID)
	s.writeByte('/')
	s.writeString(suffix)
	return nil
}

// emitDevice writes <prefix>/<device_id>/<suffix>, the device-scoped form
// used for shared availability.
func (t Topics) emitDevice(s sink, deviceID, suffix string) error {
	if deviceID == "" || suffix == "" {
		return ErrInvalidAddressing
	}
	s.writeString(t.prefix())
	s.writeByte('/')
	s.writeString(deviceID)
	s.writeByte('/')
	s.writeString(suffix)
	return nil
}

// Length returns the byte length of the topic, or 0 when it cannot be
// derived (empty unique id, kind or suffix).
func (t Topics) Length(kind, uniqueID, suffix string) int {
	var c countingSink
	if t.emit(&c, kind, uniqueID, suffix) != nil {
		return 0
	}
	return c.n
}

// Write appends the topic to dst and returns the number of bytes written.
// dst must have at least Length(kind, uniqueID, suffix) bytes available.
// On failure dst is left unchanged.
func (t Topics) Write(dst *Buffer, kind, uniqueID, suffix string) (int, error) {
	start := dst.Len()
	bs := bufferSink{buf: dst}
	if err := t.emit(&bs, kind, uniqueID, suffix); err != nil {
		return 0, err
	}
	if bs.err != nil {
		dst.n = start
		return 0, bs.err
	}
	return dst.Len() - start, nil
}

// String returns the topic, or "" when it cannot be derived.
func (t Topics) String(kind, uniqueID, suffix string) string {
	n := t.Length(kind, uniqueID, suffix)
	if n == 0 {
		return ""
	}
	buf := NewBuffer(n)
	if _, err := t.Write(buf, kind, uniqueID, suffix); err != nil {
		return ""
	}
	return buf.String()
}

// Config returns the discovery config topic for an entity.
func (t Topics) Config(kind, uniqueID string) string {
	return t.String(kind, uniqueID, SuffixConfig)
}

// DeviceAvailability returns the shared availability topic for a device,
// or "" when deviceID is empty.
func (t Topics) DeviceAvailability(deviceID string) string {
	var c countingSink
	if t.emitDevice(&c, deviceID, SuffixAvailability) != nil {
		return ""
	}
	buf := NewBuffer(c.n)
	bs := bufferSink{buf: buf}
	_ = t.emitDevice(&bs, deviceID, SuffixAvailability)
	return buf.String()
}

// Match reports whether topic equals the topic derived from the other
// arguments. It does not allocate.
func (t Topics) Match(topic, kind, uniqueID, suffix string) bool {
	if kind == "" || uniqueID == "" || suffix == "" {
		return false
	}
	rest, ok := cutLevel(topic, t.prefix())
	if !ok {
		return false
	}
	if rest, ok = cutLevel(rest, kind); !ok {
		return false
	}
	if rest, ok = cutLevel(rest, uniqueID); !ok {
		return false
	}
	return rest == suffix
}

// cutLevel strips "level/" from the front of topic.
func cutLevel(topic, level string) (string, bool) {
	if !strings.HasPrefix(topic, level) || len(topic) <= len(level) || topic[len(level)] != '/' {
		return "", false
	}
	return topic[len(level)+1:], true
}
