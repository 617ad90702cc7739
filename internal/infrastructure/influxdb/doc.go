// Package influxdb records node telemetry in InfluxDB.
//
// It wraps the official influxdb-client-go v2 library for connection
// management, non-blocking batched writes, and health monitoring.
//
// # Purpose
//
// The node is optional telemetry-wise: when enabled, every entity trait
// change, sensor reading, and tag scan becomes a point so the device's
// history can be graphed without Home Assistant's recorder.
//
// Measurements:
//   - entity_state: tags kind, unique_id, trait; field value
//   - tag_scan: tag unique_id; field tag
//
// Every point also carries a node_id tag.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB, cfg.Node.ID)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteTraitState("light", "garage_lamp", "state", true)
//
// # Error Handling
//
// Writes never return errors. Batch failures are delivered to the
// SetOnError callback wrapped in ErrWriteFailed. Connection and health
// check errors are returned directly.
package influxdb
