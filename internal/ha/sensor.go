package ha

// Sensor is a publish-only "sensor" entity whose value is an opaque string,
// typically a formatted number.
type Sensor struct {
	Entity
	unit        string
	deviceClass string
	value       trait[string]
}

// NewSensor creates a sensor. An empty uniqueID yields an inactive entity.
func NewSensor(uniqueID string) *Sensor {
	s := &Sensor{
		Entity: newEntity("sensor", uniqueID),
		value:  trait[string]{kind: TraitValue, encode: encodeString},
	}
	s.body = s.emitBody
	return s
}

// SetUnitOfMeasurement sets unit_of_meas, e.g. "s". Empty removes the field.
func (s *Sensor) SetUnitOfMeasurement(unit string) { s.unit = unit }

// UnitOfMeasurement returns the unit.
func (s *Sensor) UnitOfMeasurement() string { return s.unit }

// SetDeviceClass sets dev_cla, e.g. "temperature". Empty removes the field.
func (s *Sensor) SetDeviceClass(class string) { s.deviceClass = class }

// DeviceClass returns the device class.
func (s *Sensor) DeviceClass() string { return s.deviceClass }

// Value returns the last published value ("" before any publish).
func (s *Sensor) Value() string { return s.value.value }

// SetValue publishes v. Unless force is set, an unchanged value succeeds
// without publishing.
func (s *Sensor) SetValue(v string, force bool) error {
	return setTrait(&s.Entity, &s.value, v, force)
}

// OnValueChanged registers the value observer, replacing any previous one.
func (s *Sensor) OnValueChanged(fn func(v string)) { s.value.observer = fn }

func (s *Sensor) emitBody(e *emitter) {
	e.stateField(TraitValue)
	s.emitIcon(e)
	if s.unit != "" {
		e.stringField(keyUnit, s.unit)
	}
	if s.deviceClass != "" {
		e.stringField(keyDeviceClass, s.deviceClass)
	}
	s.emitCommon(e)
}

func (s *Sensor) commandTraits() []TraitKind { return nil }

// republish skips a sensor that never had a value; an empty state would be
// recorded by Home Assistant as a real reading.
func (s *Sensor) republish() error {
	if s.value.value == "" {
		return nil
	}
	return publishTrait(&s.Entity, &s.value, s.value.value)
}

func (s *Sensor) dispatch(string, []byte) bool { return false }
