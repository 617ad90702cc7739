package ha

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNode_ReconnectRepublishesCachedState(t *testing.T) {
	n, tr := newTestNode(t)
	l := NewLight("lamp", LightBrightness)
	attach(t, n, l)

	require.NoError(t, l.TurnOn())
	require.NoError(t, l.SetBrightness(100, false))
	tr.reset()

	require.NoError(t, n.HandleConnected())

	assert.Equal(t, []string{
		"homeassistant/light/lamp/config",
		"homeassistant/light/lamp/avty_t",
		"homeassistant/light/lamp/stat_t",
		"homeassistant/light/lamp/bst",
	}, tr.topics())
	assert.Equal(t, "online", tr.published[1].payload)
	assert.Equal(t, "ON", tr.published[2].payload)
	assert.Equal(t, "100", tr.published[3].payload)
	for _, p := range tr.published {
		assert.True(t, p.retain, p.topic)
	}
	assert.Equal(t, []string{
		"homeassistant/light/lamp/cmd_t",
		"homeassistant/light/lamp/bct",
	}, tr.subscribed)
}

func TestNode_ReconnectRetainedSkipsState(t *testing.T) {
	n, tr := newTestNode(t)
	l := NewLight("lamp", LightBrightness)
	l.SetRetain(true)
	attach(t, n, l)

	require.NoError(t, l.TurnOn())
	require.NoError(t, l.SetBrightness(100, false))
	tr.reset()

	require.NoError(t, n.HandleConnected())
	assert.Equal(t, []string{
		"homeassistant/light/lamp/config",
		"homeassistant/light/lamp/avty_t",
	}, tr.topics())
	assert.Len(t, tr.subscribed, 2)
}

func TestNode_ConfigPayloadIsDiscovery(t *testing.T) {
	n, tr := newTestNode(t)
	sw := NewSwitch("pump")
	attach(t, n, sw)

	require.NoError(t, n.PublishConfig(sw))
	want, err := sw.Discovery(n.Device())
	require.NoError(t, err)

	require.Len(t, tr.published, 1)
	assert.Equal(t, "homeassistant/switch/pump/config", tr.published[0].topic)
	assert.Equal(t, string(want), tr.published[0].payload)
	assert.True(t, tr.published[0].retain)
}

func TestNode_SkipsInactive(t *testing.T) {
	n, tr := newTestNode(t)
	attach(t, n, NewLight("", LightBrightness), NewSwitch(""))

	require.NoError(t, n.HandleConnected())
	assert.Empty(t, tr.published)
	assert.Empty(t, tr.subscribed)
	assert.False(t, n.HandleMessage("homeassistant/light//cmd_t", []byte("ON")))
}

func TestNode_SharedAvailability(t *testing.T) {
	n, tr := newTestNode(t, WithSharedAvailability("node-01"))
	a, b := NewSwitch("a"), NewSwitch("b")
	attach(t, n, a, b)
	assert.Equal(t, "homeassistant/node-01/avty_t", n.WillTopic())

	require.NoError(t, n.HandleConnected())
	assert.Equal(t, []string{
		"homeassistant/switch/a/config",
		"homeassistant/node-01/avty_t",
		"homeassistant/switch/a/stat_t",
		"homeassistant/switch/b/config",
		"homeassistant/switch/b/stat_t",
	}, tr.topics())

	tr.reset()
	require.NoError(t, n.SetAvailable(false))
	require.Len(t, tr.published, 1)
	assert.Equal(t, published{topic: "homeassistant/node-01/avty_t", payload: "offline", retain: true}, tr.published[0])
}

func TestNode_SetAvailablePerEntity(t *testing.T) {
	n, tr := newTestNode(t)
	attach(t, n, NewSwitch("a"), NewTagScanner("reader"), NewSensor(""), NewBinarySensor("door"))
	assert.Empty(t, n.WillTopic())

	require.NoError(t, n.SetAvailable(false))
	assert.Equal(t, []string{
		"homeassistant/switch/a/avty_t",
		"homeassistant/binary_sensor/door/avty_t",
	}, tr.topics())
}

func TestNode_HandleMessageRoutes(t *testing.T) {
	n, tr := newTestNode(t)
	a, b := NewSwitch("a"), NewSwitch("b")
	attach(t, n, a, b)

	assert.True(t, n.HandleMessage("homeassistant/switch/b/cmd_t", []byte("ON")))
	assert.False(t, a.State())
	assert.True(t, b.State())
	assert.Equal(t, []string{"homeassistant/switch/b/stat_t"}, tr.topics())

	assert.False(t, n.HandleMessage("homeassistant/switch/c/cmd_t", []byte("ON")))
}

func TestNode_CustomPrefix(t *testing.T) {
	n, tr := newTestNode(t, WithTopics(Topics{Prefix: "hass"}))
	sw := NewSwitch("pump")
	attach(t, n, sw)

	require.NoError(t, sw.TurnOn())
	assert.Equal(t, []string{"hass/switch/pump/stat_t"}, tr.topics())
	assert.True(t, n.HandleMessage("hass/switch/pump/cmd_t", []byte("OFF")))
	assert.False(t, sw.State())
}

func TestNode_AddRejectsForeignEntity(t *testing.T) {
	n1, _ := newTestNode(t)
	n2, _ := newTestNode(t)
	sw := NewSwitch("pump")

	attach(t, n1, sw)
	require.NoError(t, n1.Add(sw), "re-adding to the same node is a no-op")
	assert.Len(t, n1.Components(), 1)
	assert.ErrorIs(t, n2.Add(sw), ErrAlreadyAttached)
}

func TestNode_ConnectFailuresJoined(t *testing.T) {
	n, tr := newTestNode(t)
	attach(t, n, NewSwitch("a"), NewSwitch("b"))
	tr.publishErr = errBrokerDown

	err := n.HandleConnected()
	assert.ErrorIs(t, err, ErrPublishFailed)
	assert.ErrorIs(t, err, errBrokerDown)
	assert.Len(t, tr.subscribed, 2, "subscriptions still attempted")
}

func TestNode_PublishConfigNotAttached(t *testing.T) {
	n, _ := newTestNode(t)
	assert.ErrorIs(t, n.PublishConfig(NewSwitch("pump")), ErrNotAttached)
}

func TestNode_SetTransport(t *testing.T) {
	n := NewNode(nil, []byte(testDevice))
	sw := NewSwitch("pump")
	attach(t, n, sw)

	tr := &fakeTransport{}
	n.SetTransport(tr)
	require.NoError(t, sw.TurnOn())

	assert.Equal(t, []string{"homeassistant/switch/pump/stat_t"}, tr.topics())
}

func TestNode_NoTransport(t *testing.T) {
	n := NewNode(nil, []byte(testDevice), WithSharedAvailability("node-01"))
	sw := NewSwitch("pump")
	attach(t, n, sw)

	assert.ErrorIs(t, sw.TurnOn(), ErrNotAttached)
	assert.False(t, sw.State())
	assert.ErrorIs(t, n.PublishConfig(sw), ErrNotAttached)
	assert.ErrorIs(t, n.HandleConnected(), ErrNotAttached)
	assert.ErrorIs(t, n.SetAvailable(false), ErrNotAttached)
}
