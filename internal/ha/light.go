package ha

import "errors"

// LightFeature selects the optional traits of a Light.
type LightFeature uint8

// Light features. The on/off state trait is always present.
const (
	LightBrightness LightFeature = 1 << iota
	LightColor
)

// DefaultBrightnessScale is the brightness range Home Assistant assumes
// when bri_scl is absent from the discovery payload.
const DefaultBrightnessScale = 255

// Light is a "light" entity with on/off state and optional brightness and
// RGB color.
type Light struct {
	Entity

	features        LightFeature
	brightnessScale uint8
	commands        []TraitKind

	state      trait[bool]
	brightness trait[uint8]
	color      trait[RGB]
}

// NewLight creates a light. An empty uniqueID yields an inactive entity.
func NewLight(uniqueID string, features LightFeature) *Light {
	l := &Light{
		Entity:          newEntity("light", uniqueID),
		features:        features,
		brightnessScale: DefaultBrightnessScale,
		state:           trait[bool]{kind: TraitState, encode: encodeBool},
		brightness:      trait[uint8]{kind: TraitBrightness, encode: encodeUint8},
		color:           trait[RGB]{kind: TraitColor, encode: encodeRGB},
	}
	l.commands = []TraitKind{TraitState}
	if l.hasBrightness() {
		l.commands = append(l.commands, TraitBrightness)
	}
	if l.hasColor() {
		l.commands = append(l.commands, TraitColor)
	}
	l.body = l.emitBody
	return l
}

func (l *Light) hasBrightness() bool { return l.features&LightBrightness != 0 }
func (l *Light) hasColor() bool      { return l.features&LightColor != 0 }

// Features returns the configured features.
func (l *Light) Features() LightFeature { return l.features }

// SetBrightnessScale sets bri_scl, the value Home Assistant treats as full
// brightness. 0 restores the default of 255.
func (l *Light) SetBrightnessScale(scale uint8) {
	if scale == 0 {
		scale = DefaultBrightnessScale
	}
	l.brightnessScale = scale
}

// BrightnessScale returns the brightness scale.
func (l *Light) BrightnessScale() uint8 { return l.brightnessScale }

// State returns the last published on/off state (false before any publish).
func (l *Light) State() bool { return l.state.value }

// SetState publishes the on/off state. Unless force is set, a state equal
// to the cached one succeeds without publishing. The cache is updated and
// the observer called only after a successful publish.
func (l *Light) SetState(on, force bool) error { return setTrait(&l.Entity, &l.state, on, force) }

// TurnOn is SetState(true, false).
func (l *Light) TurnOn() error { return l.SetState(true, false) }

// TurnOff is SetState(false, false).
func (l *Light) TurnOff() error { return l.SetState(false, false) }

// OnStateChanged registers the state observer, replacing any previous one.
func (l *Light) OnStateChanged(fn func(on bool)) { l.state.observer = fn }

// Brightness returns the last published brightness (0 before any publish).
func (l *Light) Brightness() uint8 { return l.brightness.value }

// SetBrightness publishes the brightness with the same rules as SetState.
func (l *Light) SetBrightness(v uint8, force bool) error {
	return setTrait(&l.Entity, &l.brightness, v, force)
}

// OnBrightnessChanged registers the brightness observer, replacing any previous one.
func (l *Light) OnBrightnessChanged(fn func(v uint8)) { l.brightness.observer = fn }

// Color returns the last published color (zero before any publish).
func (l *Light) Color() RGB { return l.color.value }

// SetColor publishes the color with the same rules as SetState.
func (l *Light) SetColor(c RGB, force bool) error { return setTrait(&l.Entity, &l.color, c, force) }

// OnColorChanged registers the color observer, replacing any previous one.
func (l *Light) OnColorChanged(fn func(c RGB)) { l.color.observer = fn }

func (l *Light) emitBody(e *emitter) {
	e.traitFields(TraitState)
	l.emitIcon(e)
	if l.hasBrightness() {
		e.traitFields(TraitBrightness)
		if l.brightnessScale != DefaultBrightnessScale {
			e.uintField(keyBrightnessScale, uint64(l.brightnessScale))
		}
	}
	if l.hasColor() {
		e.traitFields(TraitColor)
	}
	l.emitCommon(e)
}

func (l *Light) commandTraits() []TraitKind { return l.commands }

func (l *Light) republish() error {
	errs := []error{publishTrait(&l.Entity, &l.state, l.state.value)}
	if l.hasBrightness() {
		errs = append(errs, publishTrait(&l.Entity, &l.brightness, l.brightness.value))
	}
	if l.hasColor() {
		errs = append(errs, publishTrait(&l.Entity, &l.color, l.color.value))
	}
	return errors.Join(errs...)
}

func (l *Light) dispatch(topic string, payload []byte) bool {
	switch {
	case l.matches(topic, TraitState):
		l.logCommandError(TraitState, l.SetState(decodeBool(payload), true))
	case l.hasBrightness() && l.matches(topic, TraitBrightness):
		v, err := decodeUint8(payload)
		if err == nil {
			err = l.SetBrightness(v, true)
		}
		l.logCommandError(TraitBrightness, err)
	case l.hasColor() && l.matches(topic, TraitColor):
		c, err := decodeRGB(payload)
		if err == nil {
			err = l.SetColor(c, true)
		}
		l.logCommandError(TraitColor, err)
	default:
		return false
	}
	return true
}
