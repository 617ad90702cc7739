package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names written by the node.
const (
	MeasurementEntityState = "entity_state"
	MeasurementTagScan     = "tag_scan"
)

// WriteTraitState records a change of one entity trait.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - kind: Entity kind (e.g., "light", "switch")
//   - uniqueID: Entity unique id
//   - trait: Trait name (e.g., "state", "brightness")
//   - value: New trait value; bool, integer, float and string are supported
//
// Example:
//
//	client.WriteTraitState("light", "garage_lamp", "brightness", 128)
func (c *Client) WriteTraitState(kind, uniqueID, trait string, value any) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(traitPoint(kind, uniqueID, trait, value, time.Now()))
}

// WriteSensorValue records a sensor reading. Numeric text is stored as a
// float so it can be aggregated; anything else is stored verbatim.
func (c *Client) WriteSensorValue(uniqueID, value string) {
	c.WriteTraitState("sensor", uniqueID, "value", sensorField(value))
}

// WriteTagScan records one tag scan event.
func (c *Client) WriteTagScan(uniqueID, tag string) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(tagScanPoint(uniqueID, tag, time.Now()))
}

func traitPoint(kind, uniqueID, trait string, value any, ts time.Time) *write.Point {
	return write.NewPoint(
		MeasurementEntityState,
		map[string]string{
			"kind":      kind,
			"unique_id": uniqueID,
			"trait":     trait,
		},
		map[string]interface{}{
			"value": value,
		},
		ts,
	)
}

func tagScanPoint(uniqueID, tag string, ts time.Time) *write.Point {
	return write.NewPoint(
		MeasurementTagScan,
		map[string]string{
			"unique_id": uniqueID,
		},
		map[string]interface{}{
			"tag": tag,
		},
		ts,
	)
}

func sensorField(value string) any {
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return value
}
