package ha

// TraitKind identifies one independently controllable or observable facet
// of an entity.
type TraitKind uint8

// Trait kinds.
const (
	TraitState TraitKind = iota
	TraitBrightness
	TraitColor
	TraitValue
	TraitTag

	traitCount
)

// traitTopic holds the topic suffixes and discovery keys for a trait.
// An empty command suffix means the trait is publish-only.
type traitTopic struct {
	name          string
	commandSuffix string
	stateSuffix   string
	commandKey    string
	stateKey      string
}

// traitTopics is the process-wide suffix table. It is never modified.
var traitTopics = [traitCount]traitTopic{
	TraitState:      {name: "state", commandSuffix: "cmd_t", stateSuffix: "stat_t", commandKey: "cmd_t", stateKey: "stat_t"},
	TraitBrightness: {name: "brightness", commandSuffix: "bct", stateSuffix: "bst", commandKey: "bri_cmd_t", stateKey: "bri_stat_t"},
	TraitColor:      {name: "color", commandSuffix: "rct", stateSuffix: "rst", commandKey: "rgb_cmd_t", stateKey: "rgb_stat_t"},
	TraitValue:      {name: "value", stateSuffix: "stat_t", stateKey: "stat_t"},
	TraitTag:        {name: "tag", stateSuffix: "t", stateKey: "t"},
}

// String returns the trait name, e.g. "brightness".
func (k TraitKind) String() string {
	if k >= traitCount {
		return "unknown"
	}
	return traitTopics[k].name
}

// CommandSuffix returns the command topic suffix, or "" for publish-only traits.
func (k TraitKind) CommandSuffix() string {
	if k >= traitCount {
		return ""
	}
	return traitTopics[k].commandSuffix
}

// StateSuffix returns the state topic suffix.
func (k TraitKind) StateSuffix() string {
	if k >= traitCount {
		return ""
	}
	return traitTopics[k].stateSuffix
}

// trait is the cached value of one trait plus its single observer slot.
// Registering a new observer replaces the previous one.
type trait[T comparable] struct {
	kind     TraitKind
	value    T
	observer func(T)
	encode   func(v T, dst []byte) []byte
}

// setTrait is the only mutation path for a trait's cached value. Unless
// force is set, a value equal to the cache succeeds without publishing.
// The cache and observer are only touched after a successful publish.
func setTrait[T comparable](en *Entity, t *trait[T], v T, force bool) error {
	if en.uniqueID == "" {
		return ErrInactiveEntity
	}
	if !force && v == t.value {
		return nil
	}
	if err := publishTrait(en, t, v); err != nil {
		return err
	}
	t.value = v
	if t.observer != nil {
		t.observer(v)
	}
	return nil
}

// publishTrait publishes v to the trait's state topic without touching the cache.
func publishTrait[T comparable](en *Entity, t *trait[T], v T) error {
	var scratch [32]byte
	return en.publishState(t.kind, t.encode(v, scratch[:0]))
}
