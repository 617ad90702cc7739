package ha

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discoveryComponents() map[string]Component {
	plain := NewLight("plain", 0)

	full := NewLight("full", LightBrightness|LightColor)
	full.SetName(`Say "hi"\ now`)
	full.SetIcon("mdi:lightbulb")
	full.SetBrightnessScale(100)
	full.SetRetain(true)

	sw := NewSwitch("pump")
	sw.SetName("Pump\tA")

	bs := NewBinarySensor("door")
	bs.SetDeviceClass("door")

	s := NewSensor("uptime")
	s.SetUnitOfMeasurement("s")
	s.SetDeviceClass("duration")
	s.SetName("Uptime °")

	return map[string]Component{
		"light":         plain,
		"light full":    full,
		"switch":        sw,
		"binary sensor": bs,
		"sensor":        s,
		"tag":           NewTagScanner("reader"),
	}
}

func TestDiscovery_LengthMatchesWrite(t *testing.T) {
	for name, c := range discoveryComponents() {
		t.Run(name, func(t *testing.T) {
			en := c.base()
			n := en.CalculateLength([]byte(testDevice))
			require.NotZero(t, n)

			buf := NewBuffer(n)
			require.NoError(t, en.WriteSerializedData(buf, []byte(testDevice)))
			assert.Equal(t, n, buf.Len())
			assert.Zero(t, buf.Available())
			assert.True(t, json.Valid(buf.Bytes()), "payload: %s", buf.String())
		})
	}
}

func TestDiscovery_LightBrightness(t *testing.T) {
	l := NewLight("garage_light", LightBrightness)
	l.SetName("Garage Light")

	got, err := l.Discovery([]byte(testDevice))
	require.NoError(t, err)

	want := `{"cmd_t":"homeassistant/light/garage_light/cmd_t",` +
		`"stat_t":"homeassistant/light/garage_light/stat_t",` +
		`"bri_cmd_t":"homeassistant/light/garage_light/bct",` +
		`"bri_stat_t":"homeassistant/light/garage_light/bst",` +
		`"name":"Garage Light","uniq_id":"garage_light",` +
		`"dev":` + testDevice + `,` +
		`"avty_t":"homeassistant/light/garage_light/avty_t"}`
	assert.Equal(t, want, string(got))
}

func TestDiscovery_OptionalFields(t *testing.T) {
	full := discoveryComponents()["light full"].(*Light)
	got, err := full.Discovery([]byte(testDevice))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(got, &decoded))
	assert.Equal(t, `Say "hi"\ now`, decoded["name"])
	assert.Equal(t, "mdi:lightbulb", decoded["ic"])
	assert.Equal(t, float64(100), decoded["bri_scl"])
	assert.Equal(t, "homeassistant/light/full/rct", decoded["rgb_cmd_t"])
	assert.Equal(t, "homeassistant/light/full/rst", decoded["rgb_stat_t"])
	assert.Equal(t, true, decoded["ret"])
}

func TestDiscovery_OmitsDefaults(t *testing.T) {
	l := NewLight("lamp", LightBrightness)
	got, err := l.Discovery([]byte(testDevice))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(got, &decoded))
	for _, key := range []string{"name", "ic", "bri_scl", "ret", "rgb_cmd_t"} {
		assert.NotContains(t, decoded, key)
	}
}

func TestDiscovery_SensorHasNoCommandTopic(t *testing.T) {
	s := discoveryComponents()["sensor"].(*Sensor)
	got, err := s.Discovery([]byte(testDevice))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(got, &decoded))
	assert.NotContains(t, decoded, "cmd_t")
	assert.Equal(t, "homeassistant/sensor/uptime/stat_t", decoded["stat_t"])
	assert.Equal(t, "s", decoded["unit_of_meas"])
	assert.Equal(t, "duration", decoded["dev_cla"])
}

func TestDiscovery_TagScanner(t *testing.T) {
	got, err := NewTagScanner("reader").Discovery([]byte(testDevice))
	require.NoError(t, err)
	assert.Equal(t, `{"t":"homeassistant/tag/reader/t","dev":`+testDevice+`}`, string(got))
}

func TestDiscovery_InactiveEntity(t *testing.T) {
	for _, c := range []Component{NewLight("", LightBrightness|LightColor), NewSwitch(""), NewSensor(""), NewTagScanner("")} {
		en := c.base()
		assert.Zero(t, en.CalculateLength([]byte(testDevice)))

		buf := NewBuffer(512)
		assert.ErrorIs(t, en.WriteSerializedData(buf, []byte(testDevice)), ErrInactiveEntity)
		assert.Zero(t, buf.Len())
	}
}

func TestDiscovery_MissingDevice(t *testing.T) {
	l := NewLight("lamp", 0)
	assert.Zero(t, l.CalculateLength(nil))

	_, err := l.Discovery(nil)
	assert.ErrorIs(t, err, ErrNoDevice)
}

func TestDiscovery_UndersizedBuffer(t *testing.T) {
	l := NewLight("lamp", LightColor)
	n := l.CalculateLength([]byte(testDevice))
	require.NotZero(t, n)

	buf := NewBuffer(n - 1)
	err := l.WriteSerializedData(buf, []byte(testDevice))
	assert.ErrorIs(t, err, ErrBufferOverflow)
	assert.Zero(t, buf.Len(), "partial payload must not be left behind")
}

func TestDiscovery_SharedAvailability(t *testing.T) {
	n, _ := newTestNode(t, WithSharedAvailability("node-01"))
	sw := NewSwitch("pump")
	attach(t, n, sw)

	got, err := sw.Discovery(n.Device())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(got, &decoded))
	assert.Equal(t, "homeassistant/node-01/avty_t", decoded["avty_t"])
	assert.Equal(t, len(got), sw.CalculateLength(n.Device()))
}

func TestDeviceInfo_Serialize(t *testing.T) {
	got, err := DeviceInfo{
		Identifiers:     []string{"node-01"},
		Name:            "Garage",
		Manufacturer:    "Gray Logic",
		SoftwareVersion: "1.2.0",
	}.Serialize()
	require.NoError(t, err)
	assert.Equal(t, `{"ids":["node-01"],"name":"Garage","mf":"Gray Logic","sw":"1.2.0"}`, string(got))

	_, err = DeviceInfo{Name: "anonymous"}.Serialize()
	assert.ErrorIs(t, err, ErrNoDevice)
}
