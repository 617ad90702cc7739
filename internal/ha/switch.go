package ha

// Switch is a "switch" entity with a commandable on/off state.
type Switch struct {
	Entity
	state trait[bool]
}

var switchCommands = []TraitKind{TraitState}

// NewSwitch creates a switch. An empty uniqueID yields an inactive entity.
func NewSwitch(uniqueID string) *Switch {
	s := &Switch{
		Entity: newEntity("switch", uniqueID),
		state:  trait[bool]{kind: TraitState, encode: encodeBool},
	}
	s.body = s.emitBody
	return s
}

// State returns the last published state.
func (s *Switch) State() bool { return s.state.value }

// SetState publishes the state. Unless force is set, an unchanged state
// succeeds without publishing.
func (s *Switch) SetState(on, force bool) error { return setTrait(&s.Entity, &s.state, on, force) }

// TurnOn is SetState(true, false).
func (s *Switch) TurnOn() error { return s.SetState(true, false) }

// TurnOff is SetState(false, false).
func (s *Switch) TurnOff() error { return s.SetState(false, false) }

// OnStateChanged registers the state observer, replacing any previous one.
func (s *Switch) OnStateChanged(fn func(on bool)) { s.state.observer = fn }

func (s *Switch) emitBody(e *emitter) {
	e.traitFields(TraitState)
	s.emitIcon(e)
	s.emitCommon(e)
}

func (s *Switch) commandTraits() []TraitKind { return switchCommands }

func (s *Switch) republish() error {
	return publishTrait(&s.Entity, &s.state, s.state.value)
}

func (s *Switch) dispatch(topic string, payload []byte) bool {
	if !s.matches(topic, TraitState) {
		return false
	}
	s.logCommandError(TraitState, s.SetState(decodeBool(payload), true))
	return true
}
