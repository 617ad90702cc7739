package ha

// Discovery payload keys. Abbreviated forms keep payloads small.
const (
	keyIcon            = "ic"
	keyName            = "name"
	keyUniqueID        = "uniq_id"
	keyDevice          = "dev"
	keyAvailability    = "avty_t"
	keyRetain          = "ret"
	keyBrightnessScale = "bri_scl"
	keyUnit            = "unit_of_meas"
	keyDeviceClass     = "dev_cla"
)

// emitter writes the fields of one discovery payload into a sink and takes
// care of the separators between them. The first addressing failure is kept
// and fails the whole payload.
type emitter struct {
	s        sink
	topics   Topics
	kind     string
	id       string
	sharedID string
	device   []byte
	fields   int
	err      error
}

func (e *emitter) fail(err error) {
	if err != nil && e.err == nil {
		e.err = err
	}
}

// key writes `"k":` preceded by a comma for every field but the first.
func (e *emitter) key(k string) {
	if e.fields > 0 {
		e.s.writeByte(',')
	}
	e.fields++
	e.s.writeByte('"')
	e.s.writeString(k)
	e.s.writeString(`":`)
}

func (e *emitter) topicField(k, suffix string) {
	e.key(k)
	e.s.writeByte('"')
	e.fail(e.topics.emit(e.s, e.kind, e.id, suffix))
	e.s.writeByte('"')
}

// traitFields writes the command and state topic fields a trait exposes.
func (e *emitter) traitFields(k TraitKind) {
	t := traitTopics[k]
	if t.commandKey != "" {
		e.topicField(t.commandKey, t.commandSuffix)
	}
	if t.stateKey != "" {
		e.topicField(t.stateKey, t.stateSuffix)
	}
}

// stateField writes only the state topic field of a trait.
func (e *emitter) stateField(k TraitKind) {
	t := traitTopics[k]
	e.topicField(t.stateKey, t.stateSuffix)
}

func (e *emitter) stringField(k, v string) {
	e.key(k)
	writeJSONString(e.s, v)
}

func (e *emitter) uintField(k string, v uint64) {
	e.key(k)
	writeUint(e.s, v)
}

func (e *emitter) rawField(k string, raw []byte) {
	e.key(k)
	e.s.writeBytes(raw)
}

func (e *emitter) trueField(k string) {
	e.key(k)
	e.s.writeString("true")
}

func (e *emitter) availabilityField() {
	if e.sharedID == "" {
		e.topicField(keyAvailability, SuffixAvailability)
		return
	}
	e.key(keyAvailability)
	e.s.writeByte('"')
	e.fail(e.topics.emitDevice(e.s, e.sharedID, SuffixAvailability))
	e.s.writeByte('"')
}

// emitDiscovery is the single routine behind both serializer passes.
func (en *Entity) emitDiscovery(s sink, device []byte) error {
	if en.uniqueID == "" {
		return ErrInactiveEntity
	}
	if len(device) == 0 {
		return ErrNoDevice
	}
	e := emitter{
		s:      s,
		topics: en.topics(),
		kind:   en.kind,
		id:     en.uniqueID,
		device: device,
	}
	if en.node != nil {
		e.sharedID = en.node.sharedID
	}
	s.writeByte('{')
	en.body(&e)
	s.writeByte('}')
	return e.err
}

// emitIcon writes the optional icon field.
func (en *Entity) emitIcon(e *emitter) {
	if en.icon != "" {
		e.stringField(keyIcon, en.icon)
	}
}

// emitCommon writes the fields every availability-tracked entity ends with:
// name, unique id, device fragment, availability and the retain flag.
func (en *Entity) emitCommon(e *emitter) {
	if en.name != "" {
		e.stringField(keyName, en.name)
	}
	e.stringField(keyUniqueID, en.uniqueID)
	e.rawField(keyDevice, e.device)
	e.availabilityField()
	if en.retain {
		e.trueField(keyRetain)
	}
}

// CalculateLength returns the exact byte length of the discovery payload
// for the given device descriptor fragment. It returns 0 when the entity is
// inactive, the fragment is missing, or any topic cannot be derived.
func (en *Entity) CalculateLength(device []byte) int {
	var c countingSink
	if err := en.emitDiscovery(&c, device); err != nil {
		return 0
	}
	return c.n
}

// WriteSerializedData writes the discovery payload into dst, which must
// have at least CalculateLength(device) bytes available. The bytes written
// are exactly CalculateLength(device) long. On failure dst is restored to
// its previous length, so a partial payload is never left behind.
func (en *Entity) WriteSerializedData(dst *Buffer, device []byte) error {
	start := dst.Len()
	bs := bufferSink{buf: dst}
	err := en.emitDiscovery(&bs, device)
	if err == nil {
		err = bs.err
	}
	if err != nil {
		dst.n = start
		return err
	}
	return nil
}

// Discovery returns the discovery payload in a buffer sized from the length pass.
func (en *Entity) Discovery(device []byte) ([]byte, error) {
	n := en.CalculateLength(device)
	if n == 0 {
		if en.uniqueID == "" {
			return nil, ErrInactiveEntity
		}
		if len(device) == 0 {
			return nil, ErrNoDevice
		}
		return nil, ErrInvalidAddressing
	}
	buf := NewBuffer(n)
	if err := en.WriteSerializedData(buf, device); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
