package ha

// TagScanner is a "tag" entity. Home Assistant tracks scanned tags without
// availability, state or commands; the discovery payload names only the tag
// topic and the device.
type TagScanner struct {
	Entity
	lastTag string
}

// NewTagScanner creates a tag scanner. An empty uniqueID yields an
// inactive entity.
func NewTagScanner(uniqueID string) *TagScanner {
	t := &TagScanner{Entity: newEntity("tag", uniqueID)}
	t.availability = false
	t.body = t.emitBody
	return t
}

// TagScanned publishes tag, non-retained, to the tag topic. Every scan is
// published, including repeats of the previous tag.
func (t *TagScanner) TagScanned(tag string) error {
	if tag == "" {
		return ErrEmptyTag
	}
	if err := t.publish(t.Topic(TraitTag.StateSuffix()), []byte(tag), false); err != nil {
		return err
	}
	t.lastTag = tag
	return nil
}

// LastTag returns the most recently published tag.
func (t *TagScanner) LastTag() string { return t.lastTag }

func (t *TagScanner) emitBody(e *emitter) {
	e.stateField(TraitTag)
	e.rawField(keyDevice, e.device)
}

func (t *TagScanner) commandTraits() []TraitKind { return nil }

func (t *TagScanner) republish() error { return nil }

func (t *TagScanner) dispatch(string, []byte) bool { return false }
