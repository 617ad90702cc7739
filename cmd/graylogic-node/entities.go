package main

import (
	"fmt"

	"github.com/nerrad567/gray-logic-node/internal/ha"
	"github.com/nerrad567/gray-logic-node/internal/infrastructure/config"
)

// telemetry receives entity state changes. *influxdb.Client implements it.
type telemetry interface {
	WriteTraitState(kind, uniqueID, trait string, value any)
	WriteSensorValue(uniqueID, value string)
	WriteTagScan(uniqueID, tag string)
}

// sensorBinding ties a sensor entity to the source it samples. value is
// the reported value of a static sensor.
type sensorBinding struct {
	sensor *ha.Sensor
	source string
	value  string
}

// entitySet holds the entities declared in config, grouped by what drives them.
type entitySet struct {
	components []ha.Component
	lights     []*ha.Light
	switches   []*ha.Switch
	binary     []*ha.BinarySensor
	sensors    []sensorBinding
	tags       []*ha.TagScanner
}

// deviceInfo builds the device descriptor from the node section.
func deviceInfo(node config.NodeConfig, version string) ha.DeviceInfo {
	sw := node.SWVersion
	if sw == "" {
		sw = version
	}
	return ha.DeviceInfo{
		Identifiers:     []string{node.ID},
		Name:            node.Name,
		Manufacturer:    node.Manufacturer,
		Model:           node.Model,
		SoftwareVersion: sw,
	}
}

// buildEntities creates one entity per config entry, in declaration order.
func buildEntities(entities []config.EntityConfig) (*entitySet, error) {
	set := &entitySet{}

	for _, ec := range entities {
		var c ha.Component
		switch ec.Type {
		case config.EntityLight:
			var features ha.LightFeature
			if ec.HasFeature(config.FeatureBrightness) {
				features |= ha.LightBrightness
			}
			if ec.HasFeature(config.FeatureColor) {
				features |= ha.LightColor
			}
			l := ha.NewLight(ec.UniqueID, features)
			l.SetBrightnessScale(uint8(ec.BrightnessScale)) // #nosec G115 -- validated 0-255
			set.lights = append(set.lights, l)
			c = l
		case config.EntitySwitch:
			s := ha.NewSwitch(ec.UniqueID)
			set.switches = append(set.switches, s)
			c = s
		case config.EntityBinarySensor:
			b := ha.NewBinarySensor(ec.UniqueID)
			b.SetDeviceClass(ec.DeviceClass)
			set.binary = append(set.binary, b)
			c = b
		case config.EntitySensor:
			s := ha.NewSensor(ec.UniqueID)
			s.SetUnitOfMeasurement(ec.Unit)
			s.SetDeviceClass(ec.DeviceClass)
			set.sensors = append(set.sensors, sensorBinding{sensor: s, source: ec.Source, value: ec.Value})
			c = s
		case config.EntityTag:
			t := ha.NewTagScanner(ec.UniqueID)
			set.tags = append(set.tags, t)
			c = t
		default:
			return nil, fmt.Errorf("entity %q: unknown type %q", ec.UniqueID, ec.Type)
		}

		if named, ok := c.(interface {
			SetName(string)
			SetIcon(string)
			SetRetain(bool)
		}); ok {
			named.SetName(ec.Name)
			named.SetIcon(ec.Icon)
			named.SetRetain(ec.Retain)
		}
		set.components = append(set.components, c)
	}
	return set, nil
}

// observe forwards every trait change to sink.
func (s *entitySet) observe(sink telemetry) {
	for _, l := range s.lights {
		id := l.UniqueID()
		l.OnStateChanged(func(on bool) { sink.WriteTraitState(config.EntityLight, id, "state", on) })
		l.OnBrightnessChanged(func(v uint8) {
			sink.WriteTraitState(config.EntityLight, id, "brightness", int64(v))
		})
		l.OnColorChanged(func(c ha.RGB) { sink.WriteTraitState(config.EntityLight, id, "color", c.String()) })
	}
	for _, sw := range s.switches {
		id := sw.UniqueID()
		sw.OnStateChanged(func(on bool) { sink.WriteTraitState(config.EntitySwitch, id, "state", on) })
	}
	for _, b := range s.binary {
		id := b.UniqueID()
		b.OnStateChanged(func(on bool) { sink.WriteTraitState(config.EntityBinarySensor, id, "state", on) })
	}
	for _, sb := range s.sensors {
		id := sb.sensor.UniqueID()
		sb.sensor.OnValueChanged(func(v string) { sink.WriteSensorValue(id, v) })
	}
}

// tagScanner returns the scanner with uniqueID, or nil.
func (s *entitySet) tagScanner(uniqueID string) *ha.TagScanner {
	for _, t := range s.tags {
		if t.UniqueID() == uniqueID {
			return t
		}
	}
	return nil
}
