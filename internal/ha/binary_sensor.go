package ha

// BinarySensor is a publish-only on/off "binary_sensor" entity.
type BinarySensor struct {
	Entity
	deviceClass string
	state       trait[bool]
}

// NewBinarySensor creates a binary sensor. An empty uniqueID yields an
// inactive entity.
func NewBinarySensor(uniqueID string) *BinarySensor {
	b := &BinarySensor{
		Entity: newEntity("binary_sensor", uniqueID),
		state:  trait[bool]{kind: TraitState, encode: encodeBool},
	}
	b.body = b.emitBody
	return b
}

// SetDeviceClass sets dev_cla, e.g. "motion". Empty removes the field.
func (b *BinarySensor) SetDeviceClass(class string) { b.deviceClass = class }

// DeviceClass returns the device class.
func (b *BinarySensor) DeviceClass() string { return b.deviceClass }

// State returns the last published state.
func (b *BinarySensor) State() bool { return b.state.value }

// SetState publishes the state. Unless force is set, an unchanged state
// succeeds without publishing.
func (b *BinarySensor) SetState(on, force bool) error {
	return setTrait(&b.Entity, &b.state, on, force)
}

// OnStateChanged registers the state observer, replacing any previous one.
func (b *BinarySensor) OnStateChanged(fn func(on bool)) { b.state.observer = fn }

func (b *BinarySensor) emitBody(e *emitter) {
	e.stateField(TraitState)
	b.emitIcon(e)
	if b.deviceClass != "" {
		e.stringField(keyDeviceClass, b.deviceClass)
	}
	b.emitCommon(e)
}

func (b *BinarySensor) commandTraits() []TraitKind { return nil }

func (b *BinarySensor) republish() error {
	return publishTrait(&b.Entity, &b.state, b.state.value)
}

func (b *BinarySensor) dispatch(string, []byte) bool { return false }
